// Package policy reconciles API Manager policies on one API instance.
// A policy is identified by its template asset on the instance; since
// mutations need both the instance id and the policy id, observed
// identifiers are composite "<apiInstanceID>/<policyID>" strings.
//
// A declared version change cannot be edited in place: the policy is
// removed and re-applied at the new version.
package policy

import (
	"context"

	"github.com/olusolaa/anypoint-reconciler/internal/adapters/transport/cli"
	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
	"github.com/olusolaa/anypoint-reconciler/internal/core/ports"
	"github.com/olusolaa/anypoint-reconciler/internal/resources/spec"
)

// Group id of the MuleSoft-provided policy templates, used when the
// manifest does not name a custom policy group.
const defaultGroupID = "68ef9520-24e9-4cf2-b2f5-620025690913"

type runner interface {
	Run(ctx context.Context, args ...string) (cli.Result, error)
	RunJSON(ctx context.Context, out any, args ...string) (cli.Result, error)
}

type Spec struct {
	APIInstanceID string           `mapstructure:"api_instance_id" validate:"required"`
	AssetID       string           `mapstructure:"asset_id" validate:"required"`
	PolicyVersion string           `mapstructure:"policy_version" validate:"required"`
	GroupID       string           `mapstructure:"group_id"`
	Config        map[string]any   `mapstructure:"config"`
	Pointcut      []map[string]any `mapstructure:"pointcut"`
}

var diffPolicy = domain.DiffPolicy{
	Rules: map[string]domain.ComparisonRule{
		domain.PolicyAPIInstanceKey: domain.RuleExact,
		domain.PolicyAssetIDKey:     domain.RuleExact,
		domain.PolicyVersionKey:     domain.RuleExact,
		domain.PolicyGroupIDKey:     domain.RuleExact,
		domain.PolicyConfigKey:      domain.RuleExact,
		domain.PolicyPointcutKey:    domain.RuleExact,
	},
	Immutable: []string{domain.PolicyVersionKey},
}

type record struct {
	name  string
	attrs domain.AttributeSet
}

func (r record) Kind() domain.ResourceKind { return domain.KindPolicy }

func (r record) LookupKey() domain.LookupKey {
	apiID, _ := r.attrs.GetString(domain.PolicyAPIInstanceKey)
	assetID, _ := r.attrs.GetString(domain.PolicyAssetIDKey)
	return domain.LookupKey{
		Name: r.name,
		Qualifiers: map[string]string{
			domain.PolicyAPIInstanceKey: apiID,
			domain.PolicyAssetIDKey:     assetID,
		},
	}
}

func (r record) ToAttributeSet() domain.AttributeSet { return r.attrs.Clone() }

func (r record) DiffPolicy() domain.DiffPolicy { return diffPolicy }

type Plugin struct {
	reader  *Reader
	mutator *Mutator
}

var _ ports.ResourcePlugin = (*Plugin)(nil)

func New(run runner, logger ports.Logger) *Plugin {
	reader := &Reader{run: run}
	return &Plugin{
		reader:  reader,
		mutator: newMutator(run, reader, logger),
	}
}

func (p *Plugin) Kind() domain.ResourceKind { return domain.KindPolicy }

// States lists present, enabled, disabled and absent. An applied
// policy is enabled unless it was explicitly disabled, so an observed
// present also satisfies a declared enabled.
func (p *Plugin) States() []domain.LifecycleState {
	return []domain.LifecycleState{
		domain.StatePresent, domain.StateEnabled, domain.StateDisabled, domain.StateAbsent,
	}
}

// Behavior: enable and disable flip an already-applied policy, so both
// refuse to run against an absent one rather than applying it as a
// side effect. Only present applies a missing policy.
func (p *Plugin) Behavior() domain.Behavior {
	return domain.Behavior{
		SatisfiedBy: map[domain.LifecycleState][]domain.LifecycleState{
			domain.StateEnabled: {domain.StatePresent},
		},
		RequiresExisting: map[domain.LifecycleState]bool{
			domain.StateEnabled:  true,
			domain.StateDisabled: true,
		},
		ReplaceOnImmutableChange: true,
	}
}

func (p *Plugin) DecodeSpec(name string, raw map[string]any) (domain.Reconcilable, error) {
	var s Spec
	if err := spec.Decode(domain.KindPolicy, name, raw, &s); err != nil {
		return nil, err
	}
	attrs := spec.Attributes(raw, map[string]any{
		domain.PolicyGroupIDKey: defaultGroupID,
	})
	return record{name: name, attrs: attrs}, nil
}

func (p *Plugin) ObservedState(attrs domain.AttributeSet) domain.LifecycleState {
	if disabled, ok := attrs.GetBool(domain.PolicyDisabledKey); ok && disabled {
		return domain.StateDisabled
	}
	return domain.StatePresent
}

func (p *Plugin) Reader() ports.StateReader { return p.reader }

func (p *Plugin) Mutator() ports.Mutator { return p.mutator }
