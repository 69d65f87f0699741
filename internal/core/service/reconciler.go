package service

import (
	"fmt"
	"strings"

	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
	"github.com/olusolaa/anypoint-reconciler/internal/errors"
)

// DecisionInput is one observation of a resource, assembled by the driver
// from a single read pass. Current is meaningful only when Found is true.
type DecisionInput struct {
	Declared   domain.AttributeSet
	Found      bool
	ObservedID string
	Current    domain.LifecycleState
	Target     domain.LifecycleState
	Diff       domain.DiffResult
	Behavior   domain.Behavior
	Supported  []domain.LifecycleState
}

// Decide maps one observation to the single next action that moves the
// resource toward its declared state. It is pure: no I/O, no retained state,
// same input same action. Convergence comes from the driver re-reading and
// deciding again, never from Decide planning more than one step ahead.
//
// When field drift and a lifecycle mismatch coexist, the update is emitted
// first and the remaining transition is picked up on the driver's follow-up
// pass. Transitions the remote API demands before a mutation (undeprecate
// before edit, revoke before delete) always come first instead.
func Decide(in DecisionInput) (domain.Action, error) {
	if !domain.StateSupported(in.Supported, in.Target) {
		return domain.Action{}, errors.New(errors.CodeUnsupportedTransition,
			fmt.Sprintf("state '%s' is not supported for this resource kind", in.Target))
	}

	if in.Target.IsAbsent() {
		return decideAbsent(in), nil
	}

	if !in.Found {
		if in.Behavior.SatisfiedByAbsence[in.Target] {
			return domain.NoOpAction(
				fmt.Sprintf("state '%s' is already satisfied by absence", in.Target)), nil
		}
		if in.Behavior.RequiresExisting[in.Target] {
			return domain.Action{}, errors.New(errors.CodeUnsupportedTransition,
				fmt.Sprintf("cannot reach state '%s': the resource does not exist", in.Target))
		}
		return domain.CreateAction(in.Declared.Clone(),
			fmt.Sprintf("resource absent, declared state '%s'", in.Target)), nil
	}

	if in.Diff.HasImmutableConflict() {
		return decideImmutableConflict(in)
	}

	if in.Behavior.TargetSatisfied(in.Current, in.Target) {
		if !in.Diff.NeedsUpdate() {
			return domain.NoOpAction("resource matches declared state"), nil
		}
		if in.Behavior.Frozen[in.Current] {
			return domain.NoOpAction(
				fmt.Sprintf("state '%s' pins content, field drift left in place", in.Current)), nil
		}
		return decideUpdate(in), nil
	}

	if in.Diff.NeedsUpdate() {
		if in.Behavior.Frozen[in.Current] {
			// Content cannot change while the resource sits in a pinning
			// state, so leave it first. The follow-up pass updates fields.
			if required, ok := in.Behavior.RequiredBeforeUpdate(in.Current); ok {
				return domain.TransitionAction(in.ObservedID, required,
					"leaving content-pinning state before updating fields"), nil
			}
			return domain.TransitionAction(in.ObservedID, in.Target,
				"leaving content-pinning state before updating fields"), nil
		}
		return decideUpdate(in), nil
	}

	return domain.TransitionAction(in.ObservedID, in.Target,
		fmt.Sprintf("lifecycle state '%s' differs from declared '%s'", in.Current, in.Target)), nil
}

func decideAbsent(in DecisionInput) domain.Action {
	if !in.Found {
		return domain.NoOpAction("resource already absent")
	}
	if required, ok := in.Behavior.RequiredBeforeDelete(in.Current); ok {
		return domain.TransitionAction(in.ObservedID, required,
			fmt.Sprintf("required before delete from state '%s'", in.Current))
	}
	return domain.DeleteAction(in.ObservedID, "declared state is absent")
}

func decideImmutableConflict(in DecisionInput) (domain.Action, error) {
	fields := strings.Join(in.Diff.ImmutableConflicts, ", ")
	if !in.Behavior.ReplaceOnImmutableChange {
		return domain.Action{}, errors.New(errors.CodeImmutableFieldConflict,
			fmt.Sprintf("declared values change immutable fields: %s", fields))
	}
	if required, ok := in.Behavior.RequiredBeforeDelete(in.Current); ok {
		return domain.TransitionAction(in.ObservedID, required,
			fmt.Sprintf("required before replacing for immutable fields: %s", fields)), nil
	}
	return domain.DeleteAction(in.ObservedID,
		fmt.Sprintf("immutable fields changed, replacing: %s", fields)), nil
}

func decideUpdate(in DecisionInput) domain.Action {
	if required, ok := in.Behavior.RequiredBeforeUpdate(in.Current); ok {
		return domain.TransitionAction(in.ObservedID, required,
			fmt.Sprintf("required before updating fields: %s",
				strings.Join(in.Diff.ChangedFields(), ", ")))
	}
	return domain.UpdateAction(in.ObservedID, in.Declared.Clone(), in.Diff.ChangedFields(),
		"declared fields differ from observed values")
}
