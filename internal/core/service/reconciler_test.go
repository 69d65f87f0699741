package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
	"github.com/olusolaa/anypoint-reconciler/internal/errors"
)

func presentAbsentInput() DecisionInput {
	return DecisionInput{
		Declared:   domain.AttributeSet{"name": "orders", "type": "queue"},
		Found:      true,
		ObservedID: "res-1",
		Current:    domain.StatePresent,
		Target:     domain.StatePresent,
		Supported:  []domain.LifecycleState{domain.StatePresent, domain.StateAbsent},
	}
}

func driftOn(fields ...string) domain.DiffResult {
	d := domain.DiffResult{}
	for _, f := range fields {
		d.Fields = append(d.Fields, domain.FieldDiff{Field: f})
	}
	return d
}

func TestDecideRejectsUnsupportedTarget(t *testing.T) {
	in := presentAbsentInput()
	in.Target = domain.StateEnabled

	_, err := Decide(in)

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeUnsupportedTransition))
}

func TestDecideAbsentTarget(t *testing.T) {
	t.Run("already absent is a noop", func(t *testing.T) {
		in := presentAbsentInput()
		in.Target = domain.StateAbsent
		in.Found = false
		in.ObservedID = ""
		in.Diff = domain.DiffResult{ObservedAbsent: true}

		action, err := Decide(in)

		require.NoError(t, err)
		assert.Equal(t, domain.OpNoOp, action.Op)
		assert.False(t, action.IsMutation())
	})

	t.Run("existing resource is deleted", func(t *testing.T) {
		in := presentAbsentInput()
		in.Target = domain.StateAbsent

		action, err := Decide(in)

		require.NoError(t, err)
		assert.Equal(t, domain.OpDelete, action.Op)
		assert.Equal(t, "res-1", action.ResourceID)
	})

	t.Run("pre-delete transition comes first", func(t *testing.T) {
		in := presentAbsentInput()
		in.Target = domain.StateAbsent
		in.Current = "approved"
		in.Supported = []domain.LifecycleState{domain.StatePresent, domain.StateRevoked, domain.StateAbsent}
		in.Behavior = domain.Behavior{
			PreDelete: map[domain.LifecycleState]domain.LifecycleState{"approved": domain.StateRevoked},
		}

		action, err := Decide(in)

		require.NoError(t, err)
		assert.Equal(t, domain.OpTransition, action.Op)
		assert.Equal(t, domain.StateRevoked, action.Target)
	})
}

func TestDecideCreatePath(t *testing.T) {
	in := presentAbsentInput()
	in.Found = false
	in.ObservedID = ""
	in.Diff = domain.DiffResult{
		ObservedAbsent: true,
		Fields:         []domain.FieldDiff{{Field: "name"}, {Field: "type"}},
	}

	action, err := Decide(in)

	require.NoError(t, err)
	assert.Equal(t, domain.OpCreate, action.Op)
	assert.Equal(t, in.Declared, action.Payload)

	t.Run("same input yields same action", func(t *testing.T) {
		again, err := Decide(in)
		require.NoError(t, err)
		assert.Equal(t, action, again)
	})
}

func TestDecideRequiresExistingBlocksCreate(t *testing.T) {
	in := presentAbsentInput()
	in.Found = false
	in.Target = domain.StateEnabled
	in.Supported = []domain.LifecycleState{domain.StatePresent, domain.StateEnabled, domain.StateDisabled, domain.StateAbsent}
	in.Behavior = domain.Behavior{
		RequiresExisting: map[domain.LifecycleState]bool{
			domain.StateEnabled:  true,
			domain.StateDisabled: true,
		},
	}

	_, err := Decide(in)

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeUnsupportedTransition))
}

func TestDecideNoOpPrecision(t *testing.T) {
	in := presentAbsentInput()

	action, err := Decide(in)

	require.NoError(t, err)
	assert.Equal(t, domain.OpNoOp, action.Op)
}

func TestDecideUpdateOnDrift(t *testing.T) {
	in := presentAbsentInput()
	in.Diff = driftOn("type", "name")

	action, err := Decide(in)

	require.NoError(t, err)
	assert.Equal(t, domain.OpUpdate, action.Op)
	assert.Equal(t, "res-1", action.ResourceID)
	assert.Equal(t, []string{"name", "type"}, action.ChangedFields)
	assert.Equal(t, in.Declared, action.Payload)
}

func TestDecideFrozenStatePinsContent(t *testing.T) {
	in := presentAbsentInput()
	in.Current = domain.StateDeprecated
	in.Target = domain.StateDeprecated
	in.Supported = []domain.LifecycleState{domain.StatePresent, domain.StateDeprecated, domain.StateAbsent}
	in.Behavior = domain.Behavior{Frozen: map[domain.LifecycleState]bool{domain.StateDeprecated: true}}
	in.Diff = driftOn("description")

	action, err := Decide(in)

	require.NoError(t, err)
	assert.Equal(t, domain.OpNoOp, action.Op)
}

func TestDecideUpdateWinsOverTransition(t *testing.T) {
	in := presentAbsentInput()
	in.Current = domain.StateDisabled
	in.Target = domain.StateEnabled
	in.Supported = []domain.LifecycleState{domain.StateEnabled, domain.StateDisabled, domain.StateAbsent}
	in.Diff = driftOn("config")

	action, err := Decide(in)

	require.NoError(t, err)
	assert.Equal(t, domain.OpUpdate, action.Op, "content change must land before the lifecycle transition")
	assert.Equal(t, []string{"config"}, action.ChangedFields)
}

func TestDecideTransitionWhenOnlyStateDiffers(t *testing.T) {
	in := presentAbsentInput()
	in.Current = domain.StateDisabled
	in.Target = domain.StateEnabled
	in.Supported = []domain.LifecycleState{domain.StateEnabled, domain.StateDisabled, domain.StateAbsent}

	action, err := Decide(in)

	require.NoError(t, err)
	assert.Equal(t, domain.OpTransition, action.Op)
	assert.Equal(t, domain.StateEnabled, action.Target)
	assert.Equal(t, "res-1", action.ResourceID)
}

func TestDecideLeavesFrozenStateBeforeUpdate(t *testing.T) {
	t.Run("with an explicit pre-update transition", func(t *testing.T) {
		in := presentAbsentInput()
		in.Current = domain.StateDeprecated
		in.Target = domain.StatePresent
		in.Supported = []domain.LifecycleState{domain.StatePresent, domain.StateDeprecated, domain.StateAbsent}
		in.Behavior = domain.Behavior{
			Frozen:    map[domain.LifecycleState]bool{domain.StateDeprecated: true},
			PreUpdate: map[domain.LifecycleState]domain.LifecycleState{domain.StateDeprecated: domain.StatePresent},
		}
		in.Diff = driftOn("description")

		action, err := Decide(in)

		require.NoError(t, err)
		assert.Equal(t, domain.OpTransition, action.Op)
		assert.Equal(t, domain.StatePresent, action.Target)
	})

	t.Run("falls back to the declared target", func(t *testing.T) {
		in := presentAbsentInput()
		in.Current = "archived"
		in.Target = domain.StatePresent
		in.Supported = []domain.LifecycleState{domain.StatePresent, "archived", domain.StateAbsent}
		in.Behavior = domain.Behavior{Frozen: map[domain.LifecycleState]bool{"archived": true}}
		in.Diff = driftOn("description")

		action, err := Decide(in)

		require.NoError(t, err)
		assert.Equal(t, domain.OpTransition, action.Op)
		assert.Equal(t, domain.StatePresent, action.Target)
	})
}

func TestDecideImmutableConflict(t *testing.T) {
	conflicted := domain.DiffResult{
		Fields:             []domain.FieldDiff{{Field: "asset_version"}},
		ImmutableConflicts: []string{"asset_version"},
	}

	t.Run("error when replacement is not allowed", func(t *testing.T) {
		in := presentAbsentInput()
		in.Diff = conflicted

		_, err := Decide(in)

		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.CodeImmutableFieldConflict))
		assert.Contains(t, err.Error(), "asset_version")
	})

	t.Run("delete first when replacement is allowed", func(t *testing.T) {
		in := presentAbsentInput()
		in.Diff = conflicted
		in.Behavior = domain.Behavior{ReplaceOnImmutableChange: true}

		action, err := Decide(in)

		require.NoError(t, err)
		assert.Equal(t, domain.OpDelete, action.Op)
		assert.Equal(t, "res-1", action.ResourceID)
		assert.Contains(t, action.Reason, "asset_version")
	})

	t.Run("replacement still honors pre-delete", func(t *testing.T) {
		in := presentAbsentInput()
		in.Current = domain.StateEnabled
		in.Target = domain.StateEnabled
		in.Supported = []domain.LifecycleState{domain.StateEnabled, domain.StateDisabled, domain.StateAbsent}
		in.Diff = conflicted
		in.Behavior = domain.Behavior{
			ReplaceOnImmutableChange: true,
			PreDelete: map[domain.LifecycleState]domain.LifecycleState{
				domain.StateEnabled: domain.StateDisabled,
			},
		}

		action, err := Decide(in)

		require.NoError(t, err)
		assert.Equal(t, domain.OpTransition, action.Op)
		assert.Equal(t, domain.StateDisabled, action.Target)
	})
}

func TestDecideSatisfiedByEquivalentState(t *testing.T) {
	projectStates := []domain.LifecycleState{
		domain.StatePresent, domain.StatePublished, domain.StateUnpublished, domain.StateAbsent,
	}
	behavior := domain.Behavior{
		SatisfiedBy: map[domain.LifecycleState][]domain.LifecycleState{
			domain.StatePresent:     {domain.StatePublished},
			domain.StateUnpublished: {domain.StatePresent},
		},
	}

	t.Run("published project satisfies a present target", func(t *testing.T) {
		in := presentAbsentInput()
		in.Supported = projectStates
		in.Behavior = behavior
		in.Current = domain.StatePublished
		in.Target = domain.StatePresent

		action, err := Decide(in)

		require.NoError(t, err)
		assert.Equal(t, domain.OpNoOp, action.Op)
	})

	t.Run("bare project satisfies an unpublished target", func(t *testing.T) {
		in := presentAbsentInput()
		in.Supported = projectStates
		in.Behavior = behavior
		in.Current = domain.StatePresent
		in.Target = domain.StateUnpublished

		action, err := Decide(in)

		require.NoError(t, err)
		assert.Equal(t, domain.OpNoOp, action.Op)
	})

	t.Run("published project still transitions to unpublished", func(t *testing.T) {
		in := presentAbsentInput()
		in.Supported = projectStates
		in.Behavior = behavior
		in.Current = domain.StatePublished
		in.Target = domain.StateUnpublished

		action, err := Decide(in)

		require.NoError(t, err)
		assert.Equal(t, domain.OpTransition, action.Op)
		assert.Equal(t, domain.StateUnpublished, action.Target)
	})
}

func TestDecideSatisfiedByAbsence(t *testing.T) {
	in := presentAbsentInput()
	in.Supported = []domain.LifecycleState{
		domain.StatePresent, domain.StatePublished, domain.StateUnpublished, domain.StateAbsent,
	}
	in.Behavior = domain.Behavior{
		SatisfiedByAbsence: map[domain.LifecycleState]bool{domain.StateUnpublished: true},
	}
	in.Found = false
	in.ObservedID = ""
	in.Current = ""
	in.Target = domain.StateUnpublished
	in.Diff = domain.DiffResult{ObservedAbsent: true}

	action, err := Decide(in)

	require.NoError(t, err)
	assert.Equal(t, domain.OpNoOp, action.Op)
	assert.False(t, action.IsMutation())
}
