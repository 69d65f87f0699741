package ports

import (
	"context"
	"time"

	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
)

type RunRecord struct {
	RunID        string
	Mode         domain.RunMode
	ManifestPath string
	StartedAt    time.Time
	FinishedAt   time.Time
	Summary      domain.RunSummary
}

type ResultRecord struct {
	RunID   string
	Kind    domain.ResourceKind
	Name    string
	Target  domain.LifecycleState
	Outcome domain.ResourceOutcome
	Actions []string
	Changed bool
	Error   string
}

// Journal persists apply runs for the history command. Implementations must
// tolerate concurrent RecordResult calls from the engine's workers.
//
//go:generate mockery --name Journal --output ./mocks --outpkg mocks --case underscore
type Journal interface {
	StartRun(ctx context.Context, rec RunRecord) error
	RecordResult(ctx context.Context, rec ResultRecord) error
	FinishRun(ctx context.Context, runID string, finishedAt time.Time, summary domain.RunSummary) error
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
	GetRun(ctx context.Context, runID string) (RunRecord, []ResultRecord, error)
	Close() error
}
