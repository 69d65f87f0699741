package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/viper"

	"github.com/olusolaa/anypoint-reconciler/internal/adapters/journal/sqlite"
	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
	"github.com/olusolaa/anypoint-reconciler/internal/core/ports"
)

// History reads past apply runs out of the journal. It needs no platform
// session: everything it shows is local.
type History struct {
	store  *sqlite.Store
	writer io.Writer
	logger ports.Logger
}

// OpenHistory builds a History from configuration alone. The journal is
// opened even when recording is disabled; disabling only stops new runs
// from being written.
func OpenHistory(ctx context.Context, v *viper.Viper) (*History, error) {
	cfg, logger, err := loadConfig(ctx, v)
	if err != nil {
		return nil, err
	}
	if cfg.Settings.NoColor {
		color.NoColor = true
	}
	store, err := openJournal(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &History{store: store, writer: os.Stdout, logger: logger}, nil
}

func (h *History) Close() error {
	return h.store.Close()
}

// List prints the most recent runs, newest first.
func (h *History) List(ctx context.Context, limit int) error {
	runs, err := h.store.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(h.writer, "No runs recorded yet.")
		return nil
	}

	tw := tabwriter.NewWriter(h.writer, 0, 8, 2, ' ', 0)
	defer tw.Flush()
	fmt.Fprintln(tw, "RUN\tSTARTED\tDURATION\tRESOURCES\tCHANGED\tFAILED\tMANIFEST")
	for _, run := range runs {
		changed := run.Summary.Created + run.Summary.Updated + run.Summary.Transitioned +
			run.Summary.Deleted + run.Summary.Replaced
		failed := fmt.Sprintf("%d", run.Summary.Failed)
		if run.Summary.Failed > 0 {
			failed = color.New(color.FgRed).Sprint(failed)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			run.RunID,
			run.StartedAt.Local().Format(time.RFC3339),
			runDuration(run),
			run.Summary.Total,
			changed,
			failed,
			run.ManifestPath)
	}
	return nil
}

// Show prints one run with its per-resource results.
func (h *History) Show(ctx context.Context, runID string) error {
	run, results, err := h.store.GetRun(ctx, runID)
	if err != nil {
		return err
	}

	fmt.Fprintf(h.writer, "Run %s (%s)\n", run.RunID, run.Mode)
	fmt.Fprintf(h.writer, "Started:  %s\n", run.StartedAt.Local().Format(time.RFC3339))
	if !run.FinishedAt.IsZero() {
		fmt.Fprintf(h.writer, "Finished: %s (%s)\n",
			run.FinishedAt.Local().Format(time.RFC3339), runDuration(run))
	}
	if run.ManifestPath != "" {
		fmt.Fprintf(h.writer, "Manifest: %s\n", run.ManifestPath)
	}
	fmt.Fprintln(h.writer)

	tw := tabwriter.NewWriter(h.writer, 0, 8, 2, ' ', 0)
	defer tw.Flush()
	fmt.Fprintln(tw, "KIND\tNAME\tTARGET\tOUTCOME\tACTIONS\tERROR")
	for _, res := range results {
		outcome := string(res.Outcome)
		switch res.Outcome {
		case domain.OutcomeError:
			outcome = color.New(color.FgRed).Sprint(outcome)
		case domain.OutcomeUnchanged:
			outcome = color.New(color.FgGreen).Sprint(outcome)
		default:
			outcome = color.New(color.FgYellow).Sprint(outcome)
		}
		actions := "-"
		if len(res.Actions) > 0 {
			actions = fmt.Sprintf("%v", res.Actions)
		}
		errText := res.Error
		if errText == "" {
			errText = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			res.Kind, res.Name, res.Target, outcome, actions, errText)
	}
	return nil
}

func runDuration(run ports.RunRecord) string {
	if run.FinishedAt.IsZero() {
		return "-"
	}
	return run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
}
