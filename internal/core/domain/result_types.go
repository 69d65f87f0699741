package domain

import "time"

// ResourceBlock is one declared resource as loaded from the manifest,
// before the kind's plugin decodes Spec into a typed record. Explicit
// nulls in Spec survive loading (see AttributeSet).
type ResourceBlock struct {
	Kind  ResourceKind
	Name  string
	State LifecycleState
	Spec  map[string]any
}

type RunMode string

const (
	ModePlan  RunMode = "plan"
	ModeApply RunMode = "apply"
)

type ResourceOutcome string

const (
	OutcomeUnchanged    ResourceOutcome = "UNCHANGED"
	OutcomeCreated      ResourceOutcome = "CREATED"
	OutcomeUpdated      ResourceOutcome = "UPDATED"
	OutcomeTransitioned ResourceOutcome = "TRANSITIONED"
	OutcomeDeleted      ResourceOutcome = "DELETED"
	OutcomeReplaced     ResourceOutcome = "REPLACED"
	OutcomePending      ResourceOutcome = "PENDING" // plan mode, mutation required
	OutcomeError        ResourceOutcome = "ERROR"
)

// ResourceResult captures one resource's reconciliation: the actions the
// reconciler decided (executed in apply mode, pending in plan mode), the
// changed flag, the field diff from the initial read, and the final
// observed state when available.
type ResourceResult struct {
	Kind       ResourceKind
	Name       string
	Target     LifecycleState
	Actions    []Action
	Changed    bool
	Diff       DiffResult
	FinalState AttributeSet
	Err        error
}

// Outcome derives the reporting status from the executed actions. A delete
// followed by a create is a replace; an error always wins so a partial
// apply is never reported as clean.
func (r ResourceResult) Outcome(mode RunMode) ResourceOutcome {
	if r.Err != nil {
		return OutcomeError
	}
	if mode == ModePlan {
		if len(r.Actions) > 0 {
			return OutcomePending
		}
		return OutcomeUnchanged
	}
	if len(r.Actions) == 0 || !r.Changed {
		return OutcomeUnchanged
	}
	var sawDelete, sawCreate, sawUpdate, sawTransition bool
	for _, a := range r.Actions {
		switch a.Op {
		case OpDelete:
			sawDelete = true
		case OpCreate:
			sawCreate = true
		case OpUpdate:
			sawUpdate = true
		case OpTransition:
			sawTransition = true
		}
	}
	switch {
	case sawDelete && sawCreate:
		return OutcomeReplaced
	case sawCreate:
		return OutcomeCreated
	case sawDelete:
		return OutcomeDeleted
	case sawUpdate:
		return OutcomeUpdated
	case sawTransition:
		return OutcomeTransitioned
	default:
		return OutcomeUnchanged
	}
}

type RunSummary struct {
	Total        int
	Unchanged    int
	Created      int
	Updated      int
	Transitioned int
	Deleted      int
	Replaced     int
	Pending      int
	Failed       int
}

func Summarize(mode RunMode, results []ResourceResult) RunSummary {
	s := RunSummary{Total: len(results)}
	for _, r := range results {
		switch r.Outcome(mode) {
		case OutcomeError:
			s.Failed++
		case OutcomePending:
			s.Pending++
		case OutcomeCreated:
			s.Created++
		case OutcomeUpdated:
			s.Updated++
		case OutcomeTransitioned:
			s.Transitioned++
		case OutcomeDeleted:
			s.Deleted++
		case OutcomeReplaced:
			s.Replaced++
		default:
			s.Unchanged++
		}
	}
	return s
}

// HasChanges reports whether any resource needs (plan) or performed (apply)
// a mutation.
func (s RunSummary) HasChanges() bool {
	return s.Created+s.Updated+s.Transitioned+s.Deleted+s.Replaced+s.Pending > 0
}

// RunReport is the full outcome of one plan or apply invocation.
type RunReport struct {
	RunID      string
	Mode       RunMode
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []ResourceResult
	Summary    RunSummary
}
