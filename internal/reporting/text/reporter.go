package text

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
	"github.com/olusolaa/anypoint-reconciler/internal/core/ports"
	apperrors "github.com/olusolaa/anypoint-reconciler/internal/errors"
)

const ReporterTypeText = "text"

type Config struct {
	NoColor bool `yaml:"no_color"`
}

type Reporter struct {
	config Config
	writer io.Writer
	logger ports.Logger
}

func NewReporter(cfg Config, logger ports.Logger) (*Reporter, error) {
	if cfg.NoColor || !isTerminal(os.Stdout) {
		color.NoColor = true
	}
	return &Reporter{
		config: cfg,
		writer: os.Stdout,
		logger: logger,
	}, nil
}

func NewReporterWithWriter(cfg Config, w io.Writer, logger ports.Logger) (*Reporter, error) {
	if cfg.NoColor {
		color.NoColor = true
	}
	return &Reporter{
		config: cfg,
		writer: w,
		logger: logger,
	}, nil
}

func isTerminal(f *os.File) bool {
	stat, _ := f.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

func (r *Reporter) Report(ctx context.Context, report domain.RunReport) error {
	results := make([]domain.ResourceResult, len(report.Results))
	copy(results, report.Results)
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Kind != results[j].Kind {
			return results[i].Kind < results[j].Kind
		}
		return results[i].Name < results[j].Name
	})

	tw := tabwriter.NewWriter(r.writer, 0, 8, 2, ' ', 0)
	defer tw.Flush()

	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	magenta := color.New(color.FgMagenta).SprintFunc()

	title := "Reconciliation Report"
	if report.Mode == domain.ModePlan {
		title = "Reconciliation Plan"
	}
	fmt.Fprintln(tw, title)
	fmt.Fprintln(tw, strings.Repeat("=", len(title)))
	fmt.Fprintf(tw, "Run %s (%s), %d resources, took %s\n\n",
		report.RunID, report.Mode, report.Summary.Total,
		report.FinishedAt.Sub(report.StartedAt).Round(10*time.Millisecond))

	if len(results) == 0 {
		fmt.Fprintln(tw, "No resources declared.")
		return nil
	}

	fmt.Fprintln(tw, "Outcome\tKind\tName\tTarget\tDetails")
	fmt.Fprintln(tw, "-------\t----\t----\t------\t-------")

	for _, res := range results {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		outcome := res.Outcome(report.Mode)
		label := "[" + string(outcome) + "]"
		switch outcome {
		case domain.OutcomeUnchanged:
			label = green(label)
		case domain.OutcomeCreated, domain.OutcomePending:
			label = cyan(label)
		case domain.OutcomeUpdated, domain.OutcomeTransitioned:
			label = yellow(label)
		case domain.OutcomeDeleted, domain.OutcomeReplaced:
			label = red(label)
		case domain.OutcomeError:
			label = magenta(label)
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", label, res.Kind, res.Name, res.Target, r.details(res, report.Mode))
	}

	fmt.Fprintln(tw, "\nSummary:")
	fmt.Fprintln(tw, "-------")
	fmt.Fprintf(tw, "Total Resources:\t%d\n", report.Summary.Total)
	if report.Mode == domain.ModePlan {
		fmt.Fprintf(tw, "Already Satisfied:\t%s\n", green(report.Summary.Unchanged))
		fmt.Fprintf(tw, "Pending Changes:\t%s\n", cyan(report.Summary.Pending))
	} else {
		fmt.Fprintf(tw, "Unchanged:\t%s\n", green(report.Summary.Unchanged))
		fmt.Fprintf(tw, "Created:\t%s\n", cyan(report.Summary.Created))
		fmt.Fprintf(tw, "Updated:\t%s\n", yellow(report.Summary.Updated))
		fmt.Fprintf(tw, "Transitioned:\t%s\n", yellow(report.Summary.Transitioned))
		fmt.Fprintf(tw, "Deleted:\t%s\n", red(report.Summary.Deleted))
		fmt.Fprintf(tw, "Replaced:\t%s\n", red(report.Summary.Replaced))
	}
	fmt.Fprintf(tw, "Errors:\t%s\n", magenta(report.Summary.Failed))

	return nil
}

func (r *Reporter) details(res domain.ResourceResult, mode domain.RunMode) string {
	if res.Err != nil {
		details := fmt.Sprintf("Reconciliation failed: %v", res.Err)
		if appErr := (*apperrors.AppError)(nil); errors.As(res.Err, &appErr) {
			if appErr.IsUserFacing {
				details += fmt.Sprintf(" (%s)", appErr.Message)
			}
		}
		return details
	}

	if len(res.Actions) == 0 {
		return "Remote state already matches."
	}

	verb := "Applied"
	if mode == domain.ModePlan {
		verb = "Planned"
	}
	details := verb + ": " + joinActions(res.Actions)
	if drift := r.formatFieldDiffs(res.Diff); drift != "" {
		details += " (" + drift + ")"
	}
	return details
}

func joinActions(actions []domain.Action) string {
	parts := make([]string, len(actions))
	for i, action := range actions {
		parts[i] = action.String()
	}
	return strings.Join(parts, "; ")
}

func (r *Reporter) formatFieldDiffs(diff domain.DiffResult) string {
	if len(diff.Fields) == 0 {
		return ""
	}
	if diff.ObservedAbsent {
		return "resource was absent"
	}
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("%d fields differed: ", len(diff.Fields)))
	for i, fd := range diff.Fields {
		if i > 0 {
			builder.WriteString("; ")
		}
		builder.WriteString(fmt.Sprintf("%s=[declared: %v, observed: %v]",
			fd.Field, r.formatValue(fd.Declared), r.formatValue(fd.Observed)))
		if fd.Details != "" {
			builder.WriteString(fmt.Sprintf(" (%s)", fd.Details))
		}
	}
	return builder.String()
}

func (r *Reporter) formatValue(value any) string {
	const maxLen = 100
	str := fmt.Sprintf("%v", value)
	if len(str) > maxLen {
		return str[:maxLen-3] + "..."
	}
	return str
}
