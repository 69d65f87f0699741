package json

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
	"github.com/olusolaa/anypoint-reconciler/internal/core/ports"
)

const ReporterTypeJSON = "json"

type Config struct{}

type Reporter struct {
	config Config
	writer io.Writer
	logger ports.Logger
	json   jsoniter.API
}

func NewReporter(cfg Config, logger ports.Logger) (*Reporter, error) {
	return NewReporterWithWriter(cfg, os.Stdout, logger)
}

func NewReporterWithWriter(cfg Config, w io.Writer, logger ports.Logger) (*Reporter, error) {
	return &Reporter{
		config: cfg,
		writer: w,
		logger: logger,
		json:   jsoniter.ConfigCompatibleWithStandardLibrary,
	}, nil
}

type jsonReport struct {
	RunID      string           `json:"run_id"`
	Mode       string           `json:"mode"`
	StartedAt  string           `json:"started_at"`
	FinishedAt string           `json:"finished_at"`
	Summary    jsonSummary      `json:"summary"`
	Results    []jsonResultItem `json:"results"`
}

type jsonSummary struct {
	Total        int `json:"total"`
	Unchanged    int `json:"unchanged"`
	Created      int `json:"created"`
	Updated      int `json:"updated"`
	Transitioned int `json:"transitioned"`
	Deleted      int `json:"deleted"`
	Replaced     int `json:"replaced"`
	Pending      int `json:"pending"`
	Failed       int `json:"failed"`
}

type jsonResultItem struct {
	Outcome        string          `json:"outcome"`
	Kind           string          `json:"kind"`
	Name           string          `json:"name"`
	Target         string          `json:"target"`
	Actions        []string        `json:"actions,omitempty"`
	Changed        bool            `json:"changed"`
	ResourceAbsent bool            `json:"resource_absent,omitempty"`
	Differences    []jsonFieldDiff `json:"differences,omitempty"`
	ErrorMessage   string          `json:"error_message,omitempty"`
}

type jsonFieldDiff struct {
	Field    string `json:"field"`
	Declared any    `json:"declared"`
	Observed any    `json:"observed"`
	Details  string `json:"details,omitempty"`
}

func (r *Reporter) Report(ctx context.Context, report domain.RunReport) error {
	out := jsonReport{
		RunID:      report.RunID,
		Mode:       string(report.Mode),
		StartedAt:  report.StartedAt.UTC().Format(time.RFC3339),
		FinishedAt: report.FinishedAt.UTC().Format(time.RFC3339),
		Summary: jsonSummary{
			Total:        report.Summary.Total,
			Unchanged:    report.Summary.Unchanged,
			Created:      report.Summary.Created,
			Updated:      report.Summary.Updated,
			Transitioned: report.Summary.Transitioned,
			Deleted:      report.Summary.Deleted,
			Replaced:     report.Summary.Replaced,
			Pending:      report.Summary.Pending,
			Failed:       report.Summary.Failed,
		},
		Results: make([]jsonResultItem, 0, len(report.Results)),
	}

	for _, res := range report.Results {
		if ctx.Err() != nil {
			r.logger.Warnf(ctx, "JSON report generation cancelled.")
			return ctx.Err()
		}

		item := jsonResultItem{
			Outcome:        string(res.Outcome(report.Mode)),
			Kind:           string(res.Kind),
			Name:           res.Name,
			Target:         string(res.Target),
			Changed:        res.Changed,
			ResourceAbsent: res.Diff.ObservedAbsent,
		}
		for _, action := range res.Actions {
			item.Actions = append(item.Actions, action.String())
		}
		if res.Err != nil {
			item.ErrorMessage = res.Err.Error()
		}
		if len(res.Diff.Fields) > 0 {
			item.Differences = make([]jsonFieldDiff, len(res.Diff.Fields))
			for i, fd := range res.Diff.Fields {
				item.Differences[i] = jsonFieldDiff{
					Field:    fd.Field,
					Declared: fd.Declared,
					Observed: fd.Observed,
					Details:  fd.Details,
				}
			}
		}
		out.Results = append(out.Results, item)
	}

	encoder := r.json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(out); err != nil {
		r.logger.Errorf(ctx, err, "Failed to encode JSON report")
		return fmt.Errorf("failed to encode JSON report: %w", err)
	}

	r.logger.Debugf(ctx, "JSON report successfully generated.")
	return nil
}
