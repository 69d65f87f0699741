package ports

import (
	"context"

	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
)

//go:generate mockery --name ReconcileEngine --output ./mocks --outpkg mocks --case underscore
type ReconcileEngine interface {
	// Plan computes pending actions without mutating anything.
	Plan(ctx context.Context, blocks []domain.ResourceBlock) (domain.RunReport, error)
	// Apply reconciles every block and reports what each resource needed.
	Apply(ctx context.Context, blocks []domain.ResourceBlock) (domain.RunReport, error)
}
