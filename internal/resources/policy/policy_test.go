package policy

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
		"policyId": 101,
		"policyTemplateId": "rate-limiting",
		"version": "1.3.0",
		"groupId": "68ef9520-24e9-4cf2-b2f5-620025690913",
		"configurationData": {"maximumRequests": 100, "timePeriodInMilliseconds": 60000},
		"disabled": false
	},
	{
		"policyId": 102,
		"policyTemplateId": "spike-control",
		"version": "1.1.0",
		"groupId": "68ef9520-24e9-4cf2-b2f5-620025690913",
		"configurationData": {"maximumRequests": 10},
		"disabled": true
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

func TestDecodeSpecDefaultsGroupAndValidates(t *testing.T) {
	p := New(listRunner(t), testLogger(t))

	rec, err := p.DecodeSpec("orders-rate-limit", map[string]any{
		"api_instance_id": "16407698",
		"asset_id":        "rate-limiting",
		"policy_version":  "1.3.0",
		"config":          map[string]any{"maximumRequests": 100},
	})
	require.NoError(t, err)

	attrs := rec.ToAttributeSet()
	assert.Equal(t, defaultGroupID, attrs[domain.PolicyGroupIDKey])
	assert.Equal(t, domain.LookupKey{
		Name: "orders-rate-limit",
		Qualifiers: map[string]string{
			domain.PolicyAPIInstanceKey: "16407698",
			domain.PolicyAssetIDKey:     "rate-limiting",
		},
	}, rec.LookupKey())

	_, err = p.DecodeSpec("bad", map[string]any{"asset_id": "rate-limiting"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeSpecValidation, errors.GetCode(err))
}

func TestReplaceDeclaredForVersionChanges(t *testing.T) {
	p := New(listRunner(t), testLogger(t))

	assert.True(t, p.Behavior().ReplaceOnImmutableChange)

	rec, err := p.DecodeSpec("x", map[string]any{
		"api_instance_id": "1", "asset_id": "rate-limiting", "policy_version": "1.3.0",
	})
	require.NoError(t, err)
	assert.True(t, rec.DiffPolicy().IsImmutable(domain.PolicyVersionKey))
}

func TestReaderFindsPolicyByTemplate(t *testing.T) {
	run := listRunner(t)
	p := New(run, testLogger(t))

	attrs, found, err := p.Reader().Find(context.Background(), domain.LookupKey{
		Qualifiers: map[string]string{
			domain.PolicyAPIInstanceKey: "16407698",
			domain.PolicyAssetIDKey:     "spike-control",
		},
	})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "16407698/102", attrs[domain.KeyID])
	assert.Equal(t, "1.1.0", attrs[domain.PolicyVersionKey])
	assert.Equal(t, true, attrs[domain.PolicyDisabledKey])
	assert.Equal(t, []string{"api-mgr", "policy", "list", "16407698", "--output", "json"}, run.calls[0])
}

func TestReaderFindsPolicyByCompositeID(t *testing.T) {
	p := New(listRunner(t), testLogger(t))

	attrs, found, err := p.Reader().Find(context.Background(), domain.LookupKey{ID: "16407698/101"})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "rate-limiting", attrs[domain.PolicyAssetIDKey])

	_, _, err = p.Reader().Find(context.Background(), domain.LookupKey{ID: "101"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInternal, errors.GetCode(err))
}

func TestReaderAmbiguousWhenTemplateAppliedTwice(t *testing.T) {
	run := &fakeRunner{t: t, respond: func(args []string) (cli.Result, error) {
		return cli.Result{Stdout: []byte(`[
			{"policyId": 1, "policyTemplateId": "rate-limiting", "version": "1.0.0"},
			{"policyId": 2, "policyTemplateId": "rate-limiting", "version": "1.3.0"}
		]`)}, nil
	}}
	p := New(run, testLogger(t))

	_, _, err := p.Reader().Find(context.Background(), domain.LookupKey{
		Qualifiers: map[string]string{
			domain.PolicyAPIInstanceKey: "16407698",
			domain.PolicyAssetIDKey:     "rate-limiting",
		},
	})
	require.Error(t, err)
	assert.Equal(t, errors.CodeAmbiguousState, errors.GetCode(err))
}

func TestMutatorCreateAppliesAndRefetches(t *testing.T) {
	run := listRunner(t)
	p := New(run, testLogger(t))

	attrs, err := p.Mutator().Create(context.Background(), domain.AttributeSet{
		domain.PolicyAPIInstanceKey: "16407698",
		domain.PolicyAssetIDKey:     "rate-limiting",
		domain.PolicyVersionKey:     "1.3.0",
		domain.PolicyGroupIDKey:     defaultGroupID,
		domain.PolicyConfigKey:      map[string]any{"maximumRequests": 100},
	})
	require.NoError(t, err)
	assert.Equal(t, "16407698/101", attrs[domain.KeyID])

	require.Len(t, run.calls, 2)
	apply := run.calls[0]
	assert.Equal(t, []string{"api-mgr", "policy", "apply", "16407698", "rate-limiting",
		"--policyVersion", "1.3.0", "--groupId", defaultGroupID}, apply[:9])
	require.Len(t, apply, 11)
	assert.Equal(t, "--config", apply[9])
	assert.JSONEq(t, `{"maximumRequests": 100}`, apply[10])
}

func TestMutatorTransitionEnableDisable(t *testing.T) {
	run := listRunner(t)
	p := New(run, testLogger(t))

	_, err := p.Mutator().Transition(context.Background(), "16407698/102", domain.StatePresent)
	require.NoError(t, err)
	assert.Equal(t, []string{"api-mgr", "policy", "enable", "16407698", "102"}, run.calls[0])

	_, err = p.Mutator().Transition(context.Background(), "16407698/102", domain.StateEnabled)
	require.NoError(t, err)
	assert.Equal(t, []string{"api-mgr", "policy", "enable", "16407698", "102"}, run.calls[2])

	_, err = p.Mutator().Transition(context.Background(), "16407698/102", domain.StateDisabled)
	require.NoError(t, err)
	assert.Equal(t, []string{"api-mgr", "policy", "disable", "16407698", "102"}, run.calls[4])
}

func TestEnableDisableActOnAppliedPoliciesOnly(t *testing.T) {
	p := New(listRunner(t), testLogger(t))

	assert.Contains(t, p.States(), domain.StateEnabled)

	behavior := p.Behavior()
	assert.True(t, behavior.RequiresExisting[domain.StateEnabled])
	assert.True(t, behavior.RequiresExisting[domain.StateDisabled])
	assert.False(t, behavior.RequiresExisting[domain.StatePresent])
	assert.True(t, behavior.TargetSatisfied(domain.StatePresent, domain.StateEnabled))
	assert.False(t, behavior.TargetSatisfied(domain.StateDisabled, domain.StateEnabled))
}

func TestMutatorDeleteRemoves(t *testing.T) {
	run := listRunner(t)
	p := New(run, testLogger(t))

	require.NoError(t, p.Mutator().Delete(context.Background(), "16407698/101"))
	assert.Equal(t, []string{"api-mgr", "policy", "remove", "16407698", "101"}, run.calls[0])
}
