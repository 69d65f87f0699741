package apiinstance

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/anypoint-reconciler/internal/adapters/transport/cli"
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

type fakeRunner struct {
	t       *testing.T
	calls   [][]string
	respond func(args []string) (cli.Result, error)
}

func (f *fakeRunner) Run(ctx context.Context, args ...string) (cli.Result, error) {
	f.calls = append(f.calls, args)
	return f.respond(args)
}

func (f *fakeRunner) RunJSON(ctx context.Context, out any, args ...string) (cli.Result, error) {
	res, err := f.Run(ctx, append(args, "--output", "json")...)
	if err != nil {
		return res, err
	}
	require.NoError(f.t, json.Unmarshal(res.Stdout, out))
	return res, nil
}

const listPayload = `[
	{
		"id": 16407698,
		"assetId": "orders-api",
		"assetVersion": "1.2.0",
		"instanceLabel": "prod",
		"deprecated": false,
		"endpoint": {"uri": "https://orders.internal:8081", "proxyUri": "https://0.0.0.0:8081"}
	},
	{
		"id": 16407699,
		"assetId": "orders-api",
		"assetVersion": "1.0.0",
		"instanceLabel": "legacy",
		"deprecated": true,
		"endpoint": {"uri": "https://orders-v1.internal:8081", "proxyUri": ""}
	}
]`

func listRunner(t *testing.T) *fakeRunner {
	return &fakeRunner{t: t, respond: func(args []string) (cli.Result, error) {
		if args[2] == "list" {
			return cli.Result{Stdout: []byte(listPayload)}, nil
		}
		return cli.Result{}, nil
	}}
}

func TestDecodeSpecRequiresAssetCoordinates(t *testing.T) {
	p := New(listRunner(t), testLogger(t))

	rec, err := p.DecodeSpec("orders", map[string]any{
		"asset_id":       "orders-api",
		"asset_version":  "1.2.0",
		"instance_label": "prod",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.LookupKey{
		Name: "orders",
		Qualifiers: map[string]string{
			domain.APIAssetIDKey:       "orders-api",
			domain.APIInstanceLabelKey: "prod",
		},
	}, rec.LookupKey())

	_, err = p.DecodeSpec("orders", map[string]any{"asset_id": "orders-api"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeSpecValidation, errors.GetCode(err))
}

func TestAssetChangeForcesReplace(t *testing.T) {
	p := New(listRunner(t), testLogger(t))

	rec, err := p.DecodeSpec("orders", map[string]any{
		"asset_id": "orders-api", "asset_version": "1.2.0",
	})
	require.NoError(t, err)
	assert.True(t, rec.DiffPolicy().IsImmutable(domain.APIAssetIDKey))
	assert.True(t, rec.DiffPolicy().IsImmutable(domain.APIAssetVersionKey))
	assert.True(t, p.Behavior().ReplaceOnImmutableChange)
}

func TestUndeprecateRequiredBeforeEdit(t *testing.T) {
	p := New(listRunner(t), testLogger(t))

	transition, required := p.Behavior().RequiredBeforeUpdate(domain.StateDeprecated)
	require.True(t, required)
	assert.Equal(t, domain.StatePresent, transition)

	assert.Equal(t, domain.StateDeprecated, p.ObservedState(domain.AttributeSet{domain.APIDeprecatedKey: true}))
	assert.Equal(t, domain.StatePresent, p.ObservedState(domain.AttributeSet{domain.APIDeprecatedKey: false}))
}

func TestReaderFindsInstanceByAssetAndLabel(t *testing.T) {
	run := listRunner(t)
	p := New(run, testLogger(t))

	attrs, found, err := p.Reader().Find(context.Background(), domain.LookupKey{
		Qualifiers: map[string]string{
			domain.APIAssetIDKey:       "orders-api",
			domain.APIInstanceLabelKey: "prod",
		},
	})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "16407698", attrs[domain.KeyID])
	assert.Equal(t, "https://orders.internal:8081", attrs[domain.APIURIKey])
	assert.Equal(t, []string{"api-mgr", "api", "list", "--assetId", "orders-api", "--output", "json"}, run.calls[0])
}

func TestReaderFindsInstanceByID(t *testing.T) {
	run := listRunner(t)
	p := New(run, testLogger(t))

	attrs, found, err := p.Reader().Find(context.Background(), domain.LookupKey{ID: "16407699"})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "legacy", attrs[domain.APIInstanceLabelKey])
	assert.Equal(t, []string{"api-mgr", "api", "list", "--output", "json"}, run.calls[0])
}

func TestReaderAmbiguousWhenLabelsCollide(t *testing.T) {
	run := &fakeRunner{t: t, respond: func(args []string) (cli.Result, error) {
		return cli.Result{Stdout: []byte(`[
			{"id": 1, "assetId": "orders-api", "instanceLabel": "prod"},
			{"id": 2, "assetId": "orders-api", "instanceLabel": "prod"}
		]`)}, nil
	}}
	p := New(run, testLogger(t))

	_, _, err := p.Reader().Find(context.Background(), domain.LookupKey{
		Qualifiers: map[string]string{domain.APIAssetIDKey: "orders-api"},
	})
	require.Error(t, err)
	assert.Equal(t, errors.CodeAmbiguousState, errors.GetCode(err))
}

func TestMutatorCreateManagesAndRefetches(t *testing.T) {
	run := listRunner(t)
	p := New(run, testLogger(t))

	attrs, err := p.Mutator().Create(context.Background(), domain.AttributeSet{
		domain.APIAssetIDKey:       "orders-api",
		domain.APIAssetVersionKey:  "1.2.0",
		domain.APIInstanceLabelKey: "prod",
		domain.APIURIKey:           "https://orders.internal:8081",
	})
	require.NoError(t, err)
	assert.Equal(t, "16407698", attrs[domain.KeyID])

	require.Len(t, run.calls, 2)
	assert.Equal(t, []string{"api-mgr", "api", "manage", "orders-api", "1.2.0",
		"--uri", "https://orders.internal:8081", "--instanceLabel", "prod"}, run.calls[0])
}

func TestMutatorTransitionDeprecateAndBack(t *testing.T) {
	run := listRunner(t)
	p := New(run, testLogger(t))

	_, err := p.Mutator().Transition(context.Background(), "16407699", domain.StateDeprecated)
	require.NoError(t, err)
	assert.Equal(t, []string{"api-mgr", "api", "deprecate", "16407699"}, run.calls[0])

	_, err = p.Mutator().Transition(context.Background(), "16407699", domain.StatePresent)
	require.NoError(t, err)
	assert.Equal(t, []string{"api-mgr", "api", "undeprecate", "16407699"}, run.calls[2])

	_, err = p.Mutator().Transition(context.Background(), "16407699", domain.StateStarted)
	require.Error(t, err)
	assert.Equal(t, errors.CodeUnsupportedTransition, errors.GetCode(err))
}

func TestMutatorDeleteRemovesInstance(t *testing.T) {
	run := listRunner(t)
	p := New(run, testLogger(t))

	require.NoError(t, p.Mutator().Delete(context.Background(), "16407698"))
	assert.Equal(t, []string{"api-mgr", "api", "delete", "16407698"}, run.calls[0])
}
