package text

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
	"github.com/olusolaa/anypoint-reconciler/internal/core/ports"
	"github.com/olusolaa/anypoint-reconciler/internal/errors"
	"github.com/olusolaa/anypoint-reconciler/internal/log"
)

func testLogger(t *testing.T) ports.Logger {
	t.Helper()
	logger, err := log.NewLoggerWithWriter(log.Config{Level: log.LevelError, Format: log.FormatText}, io.Discard)
	require.NoError(t, err)
	return logger
}

func sampleReport(mode domain.RunMode) domain.RunReport {
	started := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	results := []domain.ResourceResult{
		{
			Kind:    domain.KindUser,
			Name:    "jdoe",
			Target:  domain.StatePresent,
			Actions: []domain.Action{domain.UpdateAction("u-1", nil, []string{"email"}, "declared fields differ from observed values")},
			Changed: mode == domain.ModeApply,
			Diff: domain.DiffResult{
				Fields: []domain.FieldDiff{
					{Field: "email", Declared: "jdoe@example.com", Observed: "old@example.com"},
				},
			},
		},
		{
			Kind:   domain.KindEnvironment,
			Name:   "sandbox",
			Target: domain.StatePresent,
		},
		{
			Kind:   domain.KindPolicy,
			Name:   "rate-limit",
			Target: domain.StateEnabled,
			Err:    errors.New(errors.CodeTransport, "HTTP 502"),
		},
	}
	return domain.RunReport{
		RunID:      "run-123",
		Mode:       mode,
		StartedAt:  started,
		FinishedAt: started.Add(2300 * time.Millisecond),
		Results:    results,
		Summary:    domain.Summarize(mode, results),
	}
}

func TestTextReporterPlan(t *testing.T) {
	var buf bytes.Buffer
	reporter, err := NewReporterWithWriter(Config{NoColor: true}, &buf, testLogger(t))
	require.NoError(t, err)

	require.NoError(t, reporter.Report(context.Background(), sampleReport(domain.ModePlan)))
	out := buf.String()

	assert.Contains(t, out, "Reconciliation Plan")
	assert.Contains(t, out, "Run run-123 (plan), 3 resources")
	assert.Contains(t, out, "[PENDING]")
	assert.Contains(t, out, "Planned: update(u-1, fields=[email])")
	assert.Contains(t, out, "email=[declared: jdoe@example.com, observed: old@example.com]")
	assert.Contains(t, out, "[UNCHANGED]")
	assert.Contains(t, out, "Remote state already matches.")
	assert.Contains(t, out, "Already Satisfied:")
	assert.Contains(t, out, "Pending Changes:")
	assert.Contains(t, out, "[ERROR]")
	assert.Contains(t, out, "HTTP 502")
}

func TestTextReporterApply(t *testing.T) {
	var buf bytes.Buffer
	reporter, err := NewReporterWithWriter(Config{NoColor: true}, &buf, testLogger(t))
	require.NoError(t, err)

	require.NoError(t, reporter.Report(context.Background(), sampleReport(domain.ModeApply)))
	out := buf.String()

	assert.Contains(t, out, "Reconciliation Report")
	assert.Contains(t, out, "[UPDATED]")
	assert.Contains(t, out, "Applied: update(u-1, fields=[email])")
	assert.Contains(t, out, "Updated:")
	assert.NotContains(t, out, "Pending Changes:")
}

func TestTextReporterSortsByKindThenName(t *testing.T) {
	var buf bytes.Buffer
	reporter, err := NewReporterWithWriter(Config{NoColor: true}, &buf, testLogger(t))
	require.NoError(t, err)

	report := sampleReport(domain.ModePlan)
	require.NoError(t, reporter.Report(context.Background(), report))
	out := buf.String()

	envIdx := bytes.Index(buf.Bytes(), []byte("sandbox"))
	policyIdx := bytes.Index(buf.Bytes(), []byte("rate-limit"))
	userIdx := bytes.Index(buf.Bytes(), []byte("jdoe"))
	require.NotEqual(t, -1, envIdx)
	assert.Less(t, envIdx, policyIdx, "environment sorts before policy: %s", out)
	assert.Less(t, policyIdx, userIdx, "policy sorts before user: %s", out)
}

func TestTextReporterEmptyRun(t *testing.T) {
	var buf bytes.Buffer
	reporter, err := NewReporterWithWriter(Config{NoColor: true}, &buf, testLogger(t))
	require.NoError(t, err)

	require.NoError(t, reporter.Report(context.Background(), domain.RunReport{RunID: "run-0", Mode: domain.ModePlan}))
	assert.Contains(t, buf.String(), "No resources declared.")
}
