package domain

import (
	"fmt"
	"sort"
	"strings"
)

// LookupKey locates a resource before its server-assigned identifier is
// known, or addresses it directly once it is. Qualifiers carry the extra
// parts of composite natural keys (group/asset/version, region, parent id).
type LookupKey struct {
	ID         string
	Name       string
	Qualifiers map[string]string
}

func (k LookupKey) String() string {
	base := k.Name
	if base == "" {
		base = k.ID
	}
	if len(k.Qualifiers) == 0 {
		return base
	}
	parts := make([]string, 0, len(k.Qualifiers))
	for q, v := range k.Qualifiers {
		parts = append(parts, fmt.Sprintf("%s=%s", q, v))
	}
	sort.Strings(parts)
	return fmt.Sprintf("%s[%s]", base, strings.Join(parts, ","))
}

// Reconcilable is implemented by every typed resource spec record. It
// exposes what the reconciliation core needs and nothing else: identity,
// the declared attributes, and the comparison policy for the kind.
//
//go:generate mockery --name=Reconcilable --output=./mocks --outpkg=mocks --case underscore
type Reconcilable interface {
	Kind() ResourceKind
	LookupKey() LookupKey
	ToAttributeSet() AttributeSet
	DiffPolicy() DiffPolicy
}

// Behavior declares the kind-specific lifecycle rules the reconciler
// consults. All of it is configuration, not inference: a kind that does not
// declare a rule does not get it.
type Behavior struct {
	// RequiresExisting lists sub-states that have no path from absence:
	// targeting one while the resource does not exist is an unsupported
	// transition, not an implicit create.
	RequiresExisting map[LifecycleState]bool

	// SatisfiedBy lists, per target sub-state, observed sub-states that
	// already satisfy the target without a transition. A published design
	// project satisfies a plain present target: the project exists and
	// nothing asks for the asset to go away.
	SatisfiedBy map[LifecycleState][]LifecycleState

	// SatisfiedByAbsence marks target sub-states that absence satisfies.
	// An unpublished target asks for the Exchange asset to be gone; when
	// nothing exists at all, that is already true.
	SatisfiedByAbsence map[LifecycleState]bool

	// Frozen lists sub-states that pin content: while current and target
	// both sit in a frozen state, attribute drift is not acted on.
	Frozen map[LifecycleState]bool

	// PreUpdate and PreDelete name transitions the remote API requires
	// before a structural mutation, keyed by the observed sub-state. These
	// are never skipped.
	PreUpdate map[LifecycleState]LifecycleState
	PreDelete map[LifecycleState]LifecycleState

	// ReplaceOnImmutableChange turns an immutable-field conflict into a
	// delete-then-create sequence instead of an error.
	ReplaceOnImmutableChange bool
}

// TargetSatisfied reports whether the observed sub-state already meets
// the declared target, either by matching it or through SatisfiedBy.
func (b Behavior) TargetSatisfied(current, target LifecycleState) bool {
	if current == target {
		return true
	}
	for _, s := range b.SatisfiedBy[target] {
		if s == current {
			return true
		}
	}
	return false
}

func (b Behavior) requiredBefore(table map[LifecycleState]LifecycleState, current LifecycleState) (LifecycleState, bool) {
	target, ok := table[current]
	if !ok || target == current {
		return "", false
	}
	return target, true
}

// RequiredBeforeUpdate returns the transition the remote demands before an
// in-place update from the given observed sub-state.
func (b Behavior) RequiredBeforeUpdate(current LifecycleState) (LifecycleState, bool) {
	return b.requiredBefore(b.PreUpdate, current)
}

// RequiredBeforeDelete returns the transition the remote demands before a
// delete from the given observed sub-state.
func (b Behavior) RequiredBeforeDelete(current LifecycleState) (LifecycleState, bool) {
	return b.requiredBefore(b.PreDelete, current)
}
