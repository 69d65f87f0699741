package domain

import (
	"fmt"
	"sort"
	"strings"
)

type ActionOp string

const (
	OpNoOp       ActionOp = "noop"
	OpCreate     ActionOp = "create"
	OpUpdate     ActionOp = "update"
	OpTransition ActionOp = "transition"
	OpDelete     ActionOp = "delete"
)

// Action is the single decision produced by one reconciliation pass. It is
// constructed by the reconciler, executed immediately by the driver, and
// never persisted.
type Action struct {
	Op            ActionOp
	ResourceID    string
	Payload       AttributeSet
	ChangedFields []string
	Target        LifecycleState
	Reason        string
}

func NoOpAction(reason string) Action {
	return Action{Op: OpNoOp, Reason: reason}
}

func CreateAction(payload AttributeSet, reason string) Action {
	return Action{Op: OpCreate, Payload: payload, Reason: reason}
}

func UpdateAction(id string, payload AttributeSet, changedFields []string, reason string) Action {
	sorted := append([]string(nil), changedFields...)
	sort.Strings(sorted)
	return Action{Op: OpUpdate, ResourceID: id, Payload: payload, ChangedFields: sorted, Reason: reason}
}

func TransitionAction(id string, target LifecycleState, reason string) Action {
	return Action{Op: OpTransition, ResourceID: id, Target: target, Reason: reason}
}

func DeleteAction(id string, reason string) Action {
	return Action{Op: OpDelete, ResourceID: id, Reason: reason}
}

// IsMutation reports whether executing the action touches the remote system.
func (a Action) IsMutation() bool {
	return a.Op != OpNoOp
}

func (a Action) String() string {
	switch a.Op {
	case OpCreate:
		return "create"
	case OpUpdate:
		return fmt.Sprintf("update(%s, fields=[%s])", a.ResourceID, strings.Join(a.ChangedFields, ","))
	case OpTransition:
		return fmt.Sprintf("transition(%s -> %s)", a.ResourceID, a.Target)
	case OpDelete:
		return fmt.Sprintf("delete(%s)", a.ResourceID)
	default:
		return "noop"
	}
}
