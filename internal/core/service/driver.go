package service

import (
	"context"
	"fmt"

	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
	"github.com/olusolaa/anypoint-reconciler/internal/core/ports"
	"github.com/olusolaa/anypoint-reconciler/internal/errors"
)

// ReconcileOutcome is what one driver pass over a single resource produced.
// Actions lists every mutation attempted in order. Changed reports whether
// the remote system was modified; it stays true when a later call in the
// sequence failed after an earlier one succeeded. Diff is the field diff
// from the initial read, kept for reporting.
type ReconcileOutcome struct {
	FinalState domain.AttributeSet
	Actions    []domain.Action
	Changed    bool
	Diff       domain.DiffResult
}

// Driver owns the read-decide-mutate sequence for one resource. Decisions
// come from Decide; effects go through the plugin's reader and mutator. The
// driver never retries a failed call: transport retries belong to the
// adapters, and a mutation failure aborts the sequence with the error
// passed through unchanged.
type Driver struct {
	logger ports.Logger
}

func NewDriver(logger ports.Logger) *Driver {
	return &Driver{logger: logger}
}

// Preview runs the read and decision stages without mutating anything,
// returning the first action an apply would take and the field diff behind
// it.
func (d *Driver) Preview(ctx context.Context, plugin ports.ResourcePlugin, spec domain.Reconcilable, target domain.LifecycleState) (domain.Action, domain.DiffResult, error) {
	in, _, err := d.observe(ctx, plugin, spec, target)
	if err != nil {
		return domain.Action{}, domain.DiffResult{}, err
	}
	action, err := Decide(in)
	if err != nil {
		return domain.Action{}, in.Diff, err
	}
	return action, in.Diff, nil
}

// Reconcile converges one resource toward its declared state: one read, one
// decision, at most two mutations with a single follow-up read between them.
// The follow-up pass picks up the residual step of a two-call sequence
// (update then transition, delete then create, required transition then
// mutation); anything still outstanding after that is left for the next run.
func (d *Driver) Reconcile(ctx context.Context, plugin ports.ResourcePlugin, spec domain.Reconcilable, target domain.LifecycleState) (ReconcileOutcome, error) {
	log := d.logger.WithFields(map[string]any{
		"kind": string(plugin.Kind()),
		"name": spec.LookupKey().String(),
	})

	in, observed, err := d.observe(ctx, plugin, spec, target)
	if err != nil {
		return ReconcileOutcome{}, err
	}

	action, err := Decide(in)
	if err != nil {
		return ReconcileOutcome{FinalState: observed, Diff: in.Diff}, err
	}
	if !action.IsMutation() {
		log.Debugf(ctx, "No changes required: %s", action.Reason)
		return ReconcileOutcome{FinalState: observed, Diff: in.Diff}, nil
	}

	log.Infof(ctx, "Executing %s: %s", action.Op, action.Reason)
	firstDiff := in.Diff
	result, err := d.execute(ctx, plugin, action)
	if err != nil {
		return ReconcileOutcome{FinalState: observed, Actions: []domain.Action{action}, Diff: firstDiff}, err
	}

	outcome := ReconcileOutcome{FinalState: result, Actions: []domain.Action{action}, Changed: true, Diff: firstDiff}
	if action.Op == domain.OpDelete && target.IsAbsent() {
		return outcome, nil
	}

	in, observed, err = d.observe(ctx, plugin, spec, target)
	if err != nil {
		return outcome, err
	}
	outcome.FinalState = observed

	next, err := Decide(in)
	if err != nil {
		return outcome, err
	}
	if !next.IsMutation() {
		log.Debugf(ctx, "Converged after %s", action.Op)
		return outcome, nil
	}

	log.Infof(ctx, "Executing follow-up %s: %s", next.Op, next.Reason)
	result, err = d.execute(ctx, plugin, next)
	outcome.Actions = append(outcome.Actions, next)
	if err != nil {
		return outcome, err
	}
	outcome.FinalState = result
	return outcome, nil
}

func (d *Driver) observe(ctx context.Context, plugin ports.ResourcePlugin, spec domain.Reconcilable, target domain.LifecycleState) (DecisionInput, domain.AttributeSet, error) {
	observed, found, err := plugin.Reader().Find(ctx, spec.LookupKey())
	if err != nil {
		return DecisionInput{}, nil, err
	}

	declared := spec.ToAttributeSet()
	diff, err := ComputeDiff(declared, observed, found, spec.DiffPolicy())
	if err != nil {
		return DecisionInput{}, observed, err
	}

	in := DecisionInput{
		Declared:  declared,
		Found:     found,
		Target:    target,
		Diff:      diff,
		Behavior:  plugin.Behavior(),
		Supported: plugin.States(),
	}
	if found {
		in.Current = plugin.ObservedState(observed)
		in.ObservedID, _ = observed.GetString(domain.KeyID)
	}
	return in, observed, nil
}

func (d *Driver) execute(ctx context.Context, plugin ports.ResourcePlugin, action domain.Action) (domain.AttributeSet, error) {
	mutator := plugin.Mutator()
	switch action.Op {
	case domain.OpCreate:
		return mutator.Create(ctx, action.Payload)
	case domain.OpUpdate:
		return mutator.Update(ctx, action.ResourceID, action.Payload)
	case domain.OpTransition:
		return mutator.Transition(ctx, action.ResourceID, action.Target)
	case domain.OpDelete:
		return nil, mutator.Delete(ctx, action.ResourceID)
	default:
		return nil, errors.New(errors.CodeInternal, fmt.Sprintf("unexecutable action op '%s'", action.Op))
	}
}
