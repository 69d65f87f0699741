package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
	"github.com/olusolaa/anypoint-reconciler/internal/errors"
)

func TestComputeDiffObservedAbsent(t *testing.T) {
	declared := domain.AttributeSet{
		"name":   "orders",
		"type":   "queue",
		"ttl_ms": 60000,
		"id":     "ignored-anyway",
	}
	policy := domain.DiffPolicy{Rules: map[string]domain.ComparisonRule{
		"name":   domain.RuleExact,
		"type":   domain.RuleExact,
		"ttl_ms": domain.RuleExact,
	}}

	diff, err := ComputeDiff(declared, nil, false, policy)

	require.NoError(t, err)
	assert.True(t, diff.ObservedAbsent)
	assert.Equal(t, []string{"name", "ttl_ms", "type"}, diff.ChangedFields())
	assert.False(t, diff.HasImmutableConflict())
}

func TestComputeDiffNoDrift(t *testing.T) {
	declared := domain.AttributeSet{"name": "orders", "workers": 2}
	observed := domain.AttributeSet{"name": "orders", "workers": 2, "id": "abc-123", "created": "2024-01-01"}
	policy := domain.DiffPolicy{Rules: map[string]domain.ComparisonRule{
		"name":    domain.RuleExact,
		"workers": domain.RuleExact,
	}}

	diff, err := ComputeDiff(declared, observed, true, policy)

	require.NoError(t, err)
	assert.True(t, diff.Empty())
	assert.False(t, diff.NeedsUpdate())
	assert.False(t, diff.ObservedAbsent)
}

func TestComputeDiffExactRule(t *testing.T) {
	policy := domain.DiffPolicy{Rules: map[string]domain.ComparisonRule{"ttl_ms": domain.RuleExact}}

	t.Run("changed scalar flagged", func(t *testing.T) {
		diff, err := ComputeDiff(
			domain.AttributeSet{"ttl_ms": 60000},
			domain.AttributeSet{"ttl_ms": 120000},
			true, policy)
		require.NoError(t, err)
		require.Len(t, diff.Fields, 1)
		assert.Equal(t, "ttl_ms", diff.Fields[0].Field)
		assert.Equal(t, 60000, diff.Fields[0].Declared)
		assert.Equal(t, 120000, diff.Fields[0].Observed)
	})

	t.Run("numeric types normalized", func(t *testing.T) {
		diff, err := ComputeDiff(
			domain.AttributeSet{"ttl_ms": 60000},
			domain.AttributeSet{"ttl_ms": float64(60000)},
			true, policy)
		require.NoError(t, err)
		assert.True(t, diff.Empty())
	})

	t.Run("numeric string matches number", func(t *testing.T) {
		diff, err := ComputeDiff(
			domain.AttributeSet{"ttl_ms": "60000"},
			domain.AttributeSet{"ttl_ms": 60000},
			true, policy)
		require.NoError(t, err)
		assert.True(t, diff.Empty())
	})

	t.Run("nested maps compared recursively", func(t *testing.T) {
		p := domain.DiffPolicy{Rules: map[string]domain.ComparisonRule{"config": domain.RuleExact}}
		diff, err := ComputeDiff(
			domain.AttributeSet{"config": map[string]any{"rateLimit": 100, "window": "1m"}},
			domain.AttributeSet{"config": map[string]any{"rateLimit": 100, "window": "1m"}},
			true, p)
		require.NoError(t, err)
		assert.True(t, diff.Empty())

		diff, err = ComputeDiff(
			domain.AttributeSet{"config": map[string]any{"rateLimit": 100, "window": "1m"}},
			domain.AttributeSet{"config": map[string]any{"rateLimit": 250, "window": "1m"}},
			true, p)
		require.NoError(t, err)
		assert.Equal(t, []string{"config"}, diff.ChangedFields())
	})
}

func TestComputeDiffNullVersusUnspecified(t *testing.T) {
	policy := domain.DiffPolicy{Rules: map[string]domain.ComparisonRule{"description": domain.RuleExact}}

	t.Run("explicit null against remote value drifts", func(t *testing.T) {
		diff, err := ComputeDiff(
			domain.AttributeSet{"description": nil},
			domain.AttributeSet{"description": "legacy text"},
			true, policy)
		require.NoError(t, err)
		assert.Equal(t, []string{"description"}, diff.ChangedFields())
	})

	t.Run("explicit null against empty remote is clean", func(t *testing.T) {
		diff, err := ComputeDiff(
			domain.AttributeSet{"description": nil},
			domain.AttributeSet{"description": ""},
			true, policy)
		require.NoError(t, err)
		assert.True(t, diff.Empty())

		diff, err = ComputeDiff(
			domain.AttributeSet{"description": nil},
			domain.AttributeSet{},
			true, policy)
		require.NoError(t, err)
		assert.True(t, diff.Empty())
	})

	t.Run("unspecified field never drifts", func(t *testing.T) {
		diff, err := ComputeDiff(
			domain.AttributeSet{},
			domain.AttributeSet{"description": "whatever the remote holds"},
			true, policy)
		require.NoError(t, err)
		assert.True(t, diff.Empty())
	})
}

func TestComputeDiffSetRule(t *testing.T) {
	policy := domain.DiffPolicy{Rules: map[string]domain.ComparisonRule{"tags": domain.RuleSet}}

	t.Run("order does not matter", func(t *testing.T) {
		diff, err := ComputeDiff(
			domain.AttributeSet{"tags": []string{"prod", "billing"}},
			domain.AttributeSet{"tags": []any{"billing", "prod"}},
			true, policy)
		require.NoError(t, err)
		assert.True(t, diff.Empty())
	})

	t.Run("cardinality matters", func(t *testing.T) {
		diff, err := ComputeDiff(
			domain.AttributeSet{"tags": []string{"prod", "prod"}},
			domain.AttributeSet{"tags": []string{"prod"}},
			true, policy)
		require.NoError(t, err)
		require.Len(t, diff.Fields, 1)
		assert.NotEmpty(t, diff.Fields[0].Details)
	})

	t.Run("membership difference reported", func(t *testing.T) {
		diff, err := ComputeDiff(
			domain.AttributeSet{"tags": []string{"prod", "billing"}},
			domain.AttributeSet{"tags": []string{"prod", "legacy"}},
			true, policy)
		require.NoError(t, err)
		require.Len(t, diff.Fields, 1)
		assert.Contains(t, diff.Fields[0].Details, "billing")
		assert.Contains(t, diff.Fields[0].Details, "legacy")
	})

	t.Run("declared null equals remote empty", func(t *testing.T) {
		diff, err := ComputeDiff(
			domain.AttributeSet{"tags": nil},
			domain.AttributeSet{"tags": []string{}},
			true, policy)
		require.NoError(t, err)
		assert.True(t, diff.Empty())
	})

	t.Run("non-list value is a comparison error", func(t *testing.T) {
		_, err := ComputeDiff(
			domain.AttributeSet{"tags": "oops"},
			domain.AttributeSet{"tags": []string{"prod"}},
			true, policy)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.CodeComparisonError))
	})
}

func TestComputeDiffPresenceRule(t *testing.T) {
	policy := domain.DiffPolicy{Rules: map[string]domain.ComparisonRule{"icon_digest": domain.RulePresence}}

	t.Run("declared without remote counterpart drifts", func(t *testing.T) {
		diff, err := ComputeDiff(
			domain.AttributeSet{"icon_digest": "d41d8cd98f"},
			domain.AttributeSet{},
			true, policy)
		require.NoError(t, err)
		require.Len(t, diff.Fields, 1)
		assert.Equal(t, "declared but not present remotely", diff.Fields[0].Details)
	})

	t.Run("remote leftover with declared absence drifts", func(t *testing.T) {
		diff, err := ComputeDiff(
			domain.AttributeSet{"icon_digest": nil},
			domain.AttributeSet{"icon_digest": "d41d8cd98f"},
			true, policy)
		require.NoError(t, err)
		require.Len(t, diff.Fields, 1)
		assert.Equal(t, "present remotely but declared absent", diff.Fields[0].Details)
	})

	t.Run("matching digests are clean", func(t *testing.T) {
		diff, err := ComputeDiff(
			domain.AttributeSet{"icon_digest": "d41d8cd98f"},
			domain.AttributeSet{"icon_digest": "d41d8cd98f"},
			true, policy)
		require.NoError(t, err)
		assert.True(t, diff.Empty())
	})

	t.Run("digest mismatch drifts", func(t *testing.T) {
		diff, err := ComputeDiff(
			domain.AttributeSet{"icon_digest": "d41d8cd98f"},
			domain.AttributeSet{"icon_digest": "aab5d5fd8a"},
			true, policy)
		require.NoError(t, err)
		require.Len(t, diff.Fields, 1)
		assert.Equal(t, "content digest differs", diff.Fields[0].Details)
	})
}

func TestComputeDiffIgnoreRule(t *testing.T) {
	policy := domain.DiffPolicy{Rules: map[string]domain.ComparisonRule{
		"name": domain.RuleExact,
		"id":   domain.RuleIgnore,
	}}

	diff, err := ComputeDiff(
		domain.AttributeSet{"name": "orders", "id": "declared-id", "unlisted": "x"},
		domain.AttributeSet{"name": "orders", "id": "server-id"},
		true, policy)

	require.NoError(t, err)
	assert.True(t, diff.Empty(), "ignored and unlisted fields must not drift")
}

func TestComputeDiffImmutableConflict(t *testing.T) {
	policy := domain.DiffPolicy{
		Rules: map[string]domain.ComparisonRule{
			"asset_version": domain.RuleExact,
			"config":        domain.RuleExact,
		},
		Immutable: []string{"asset_version"},
	}

	diff, err := ComputeDiff(
		domain.AttributeSet{"asset_version": "1.2.0", "config": map[string]any{"limit": 10}},
		domain.AttributeSet{"asset_version": "1.1.0", "config": map[string]any{"limit": 10}},
		true, policy)

	require.NoError(t, err)
	assert.True(t, diff.HasImmutableConflict())
	assert.Equal(t, []string{"asset_version"}, diff.ImmutableConflicts)

	t.Run("unchanged immutable field is no conflict", func(t *testing.T) {
		diff, err := ComputeDiff(
			domain.AttributeSet{"asset_version": "1.1.0", "config": map[string]any{"limit": 99}},
			domain.AttributeSet{"asset_version": "1.1.0", "config": map[string]any{"limit": 10}},
			true, policy)
		require.NoError(t, err)
		assert.False(t, diff.HasImmutableConflict())
		assert.Equal(t, []string{"config"}, diff.ChangedFields())
	})
}
