package ports

import (
	"context"

	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
)

// ChildMatcher selects one entry while walking a parent's children.
type ChildMatcher func(domain.AttributeSet) bool

// StateReader fetches the current remote attributes of one resource.
// Implementations populate domain.KeyID in returned sets when the remote
// assigns an identifier. Absence is a normal outcome, not an error; errors
// are reserved for transport failures, missing dependencies, and ambiguous
// matches (two remote entries for one natural key).
//
//go:generate mockery --name=StateReader --output=./mocks --outpkg=mocks --case underscore
type StateReader interface {
	Find(ctx context.Context, key domain.LookupKey) (domain.AttributeSet, bool, error)
	// FindChild walks the children of parent when the remote only exposes
	// list or hierarchy endpoints for the kind.
	FindChild(ctx context.Context, parent domain.LookupKey, match ChildMatcher) (domain.AttributeSet, bool, error)
}

// Mutator executes exactly one named operation against the remote system.
// Successful calls return the post-mutation attributes, re-fetched by the
// implementation when the underlying call does not return them directly.
//
//go:generate mockery --name=Mutator --output=./mocks --outpkg=mocks --case underscore
type Mutator interface {
	Create(ctx context.Context, payload domain.AttributeSet) (domain.AttributeSet, error)
	Update(ctx context.Context, id string, payload domain.AttributeSet) (domain.AttributeSet, error)
	Transition(ctx context.Context, id string, target domain.LifecycleState) (domain.AttributeSet, error)
	Delete(ctx context.Context, id string) error
}

// ResourcePlugin binds one resource kind: spec decoding, lifecycle rules,
// and the reader/mutator pair wired to the platform session.
//
//go:generate mockery --name=ResourcePlugin --output=./mocks --outpkg=mocks --case underscore
type ResourcePlugin interface {
	Kind() domain.ResourceKind
	States() []domain.LifecycleState
	Behavior() domain.Behavior
	// DecodeSpec turns a raw manifest block into the kind's typed record,
	// validating required fields.
	DecodeSpec(name string, raw map[string]any) (domain.Reconcilable, error)
	// ObservedState derives the current sub-state from observed attributes.
	ObservedState(attrs domain.AttributeSet) domain.LifecycleState
	Reader() StateReader
	Mutator() Mutator
}
