package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
	"github.com/olusolaa/anypoint-reconciler/internal/core/ports"
	"github.com/olusolaa/anypoint-reconciler/internal/errors"
)

const defaultConcurrency = 4

// Engine turns a list of declared resource blocks into one run: validate
// everything up front, reconcile each block through the driver with bounded
// concurrency, and aggregate per-resource results into a RunReport. Blocks
// address disjoint remote resources, so they run independently; a failure
// in one never stops the others.
type Engine struct {
	registry     *PluginRegistry
	driver       *Driver
	journal      ports.Journal
	logger       ports.Logger
	concurrency  int
	manifestPath string
}

func NewEngine(
	registry *PluginRegistry,
	driver *Driver,
	journal ports.Journal,
	logger ports.Logger,
	concurrency int,
	manifestPath string,
) (*Engine, error) {
	if registry == nil {
		return nil, errors.New(errors.CodeInternal, "plugin registry cannot be nil")
	}
	if driver == nil {
		return nil, errors.New(errors.CodeInternal, "reconciliation driver cannot be nil")
	}
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Engine{
		registry:     registry,
		driver:       driver,
		journal:      journal,
		logger:       logger,
		concurrency:  concurrency,
		manifestPath: manifestPath,
	}, nil
}

func (e *Engine) Plan(ctx context.Context, blocks []domain.ResourceBlock) (domain.RunReport, error) {
	return e.run(ctx, domain.ModePlan, blocks)
}

func (e *Engine) Apply(ctx context.Context, blocks []domain.ResourceBlock) (domain.RunReport, error) {
	return e.run(ctx, domain.ModeApply, blocks)
}

type preparedResource struct {
	block  domain.ResourceBlock
	plugin ports.ResourcePlugin
	spec   domain.Reconcilable
	target domain.LifecycleState
}

func (e *Engine) run(ctx context.Context, mode domain.RunMode, blocks []domain.ResourceBlock) (domain.RunReport, error) {
	report := domain.RunReport{
		RunID:     uuid.NewString(),
		Mode:      mode,
		StartedAt: time.Now().UTC(),
	}

	prepared, err := e.prepare(blocks)
	if err != nil {
		return report, err
	}

	e.logger.Infof(ctx, "Starting %s run %s over %d resources (concurrency %d)",
		mode, report.RunID, len(prepared), e.concurrency)

	journaled := mode == domain.ModeApply && e.journal != nil
	if journaled {
		startErr := e.journal.StartRun(ctx, ports.RunRecord{
			RunID:        report.RunID,
			Mode:         mode,
			ManifestPath: e.manifestPath,
			StartedAt:    report.StartedAt,
		})
		if startErr != nil {
			e.logger.Warnf(ctx, "Journal unavailable for run %s: %v", report.RunID, startErr)
			journaled = false
		}
	}

	results := make([]domain.ResourceResult, len(prepared))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, p := range prepared {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			results[i] = e.reconcileOne(gctx, mode, p)
			return nil
		})
	}
	waitErr := g.Wait()

	report.Results = results
	report.FinishedAt = time.Now().UTC()
	report.Summary = domain.Summarize(mode, results)

	if journaled {
		e.recordRun(ctx, report)
	}

	if waitErr != nil {
		return report, waitErr
	}
	e.logger.Infof(ctx, "Run %s finished: %d resources, %d failed",
		report.RunID, report.Summary.Total, report.Summary.Failed)
	return report, nil
}

func (e *Engine) prepare(blocks []domain.ResourceBlock) ([]preparedResource, error) {
	if len(blocks) == 0 {
		return nil, errors.NewUserFacing(errors.CodeManifestInvalid,
			"the manifest declares no resources",
			"Add at least one resource block to the manifest.")
	}

	seen := make(map[string]struct{}, len(blocks))
	prepared := make([]preparedResource, 0, len(blocks))
	for _, block := range blocks {
		key := fmt.Sprintf("%s/%s", block.Kind, block.Name)
		if _, dup := seen[key]; dup {
			return nil, errors.NewUserFacing(errors.CodeManifestInvalid,
				fmt.Sprintf("resource '%s' is declared more than once", key),
				"Each kind/name pair may appear only once per manifest.")
		}
		seen[key] = struct{}{}

		plugin, err := e.registry.Get(block.Kind)
		if err != nil {
			return nil, err
		}

		target := block.State
		if target == "" {
			target = plugin.States()[0]
		}
		if !domain.StateSupported(plugin.States(), target) {
			return nil, errors.NewUserFacing(errors.CodeUnsupportedTransition,
				fmt.Sprintf("resource '%s': state '%s' is not supported for kind '%s'", key, target, block.Kind),
				fmt.Sprintf("Supported states: %v", plugin.States()))
		}

		spec, err := plugin.DecodeSpec(block.Name, block.Spec)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeSpecValidation,
				fmt.Sprintf("resource '%s': invalid spec", key))
		}

		prepared = append(prepared, preparedResource{
			block:  block,
			plugin: plugin,
			spec:   spec,
			target: target,
		})
	}
	return prepared, nil
}

func (e *Engine) reconcileOne(ctx context.Context, mode domain.RunMode, p preparedResource) domain.ResourceResult {
	result := domain.ResourceResult{
		Kind:   p.block.Kind,
		Name:   p.block.Name,
		Target: p.target,
	}
	log := e.logger.WithFields(map[string]any{
		"kind": string(p.block.Kind),
		"name": p.block.Name,
	})

	if mode == domain.ModePlan {
		action, diff, err := e.driver.Preview(ctx, p.plugin, p.spec, p.target)
		result.Diff = diff
		if err != nil {
			result.Err = err
			log.Errorf(ctx, err, "Plan failed")
			return result
		}
		if action.IsMutation() {
			result.Actions = []domain.Action{action}
		}
		return result
	}

	outcome, err := e.driver.Reconcile(ctx, p.plugin, p.spec, p.target)
	result.Actions = outcome.Actions
	result.Changed = outcome.Changed
	result.Diff = outcome.Diff
	result.FinalState = outcome.FinalState
	result.Err = err
	if err != nil {
		log.Errorf(ctx, err, "Reconciliation failed (changed=%t)", outcome.Changed)
	}
	return result
}

func (e *Engine) recordRun(ctx context.Context, report domain.RunReport) {
	for _, r := range report.Results {
		actions := make([]string, 0, len(r.Actions))
		for _, a := range r.Actions {
			actions = append(actions, a.String())
		}
		rec := ports.ResultRecord{
			RunID:   report.RunID,
			Kind:    r.Kind,
			Name:    r.Name,
			Target:  r.Target,
			Outcome: r.Outcome(report.Mode),
			Actions: actions,
			Changed: r.Changed,
		}
		if r.Err != nil {
			rec.Error = r.Err.Error()
		}
		if err := e.journal.RecordResult(ctx, rec); err != nil {
			e.logger.Warnf(ctx, "Failed to journal result for %s/%s: %v", r.Kind, r.Name, err)
		}
	}
	if err := e.journal.FinishRun(ctx, report.RunID, report.FinishedAt, report.Summary); err != nil {
		e.logger.Warnf(ctx, "Failed to finalize journal entry for run %s: %v", report.RunID, err)
	}
}
