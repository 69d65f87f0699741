// Package automatedpolicy reconciles API Manager automated policies,
// which a business group applies across every API in an environment
// instead of on one instance. The platform edits configuration in
// place but cannot change the policy version of an applied policy, so
// a declared version change removes the policy and re-applies it.
package automatedpolicy

import (
	"github.com/olusolaa/anypoint-reconciler/internal/adapters/transport/rest"
	"github.com/olusolaa/anypoint-reconciler/internal/anypoint"
	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
	"github.com/olusolaa/anypoint-reconciler/internal/core/ports"
	"github.com/olusolaa/anypoint-reconciler/internal/resources/spec"
)

// Group id of the MuleSoft-provided policy templates, used when the
// manifest does not name a custom policy group.
const defaultGroupID = "68ef9520-24e9-4cf2-b2f5-620025690913"

type Spec struct {
	AssetID       string           `mapstructure:"asset_id" validate:"required"`
	PolicyVersion string           `mapstructure:"policy_version" validate:"required"`
	GroupID       string           `mapstructure:"group_id"`
	Config        map[string]any   `mapstructure:"config" validate:"required"`
	Pointcut      []map[string]any `mapstructure:"pointcut"`
}

var diffPolicy = domain.DiffPolicy{
	Rules: map[string]domain.ComparisonRule{
		domain.PolicyAssetIDKey:  domain.RuleExact,
		domain.PolicyVersionKey:  domain.RuleExact,
		domain.PolicyGroupIDKey:  domain.RuleExact,
		domain.PolicyConfigKey:   domain.RuleExact,
		domain.PolicyPointcutKey: domain.RuleExact,
	},
	Immutable: []string{domain.PolicyVersionKey},
}

type record struct {
	name  string
	attrs domain.AttributeSet
}

func (r record) Kind() domain.ResourceKind { return domain.KindAutomatedPolicy }

func (r record) LookupKey() domain.LookupKey {
	assetID, _ := r.attrs.GetString(domain.PolicyAssetIDKey)
	return domain.LookupKey{
		Name:       r.name,
		Qualifiers: map[string]string{domain.PolicyAssetIDKey: assetID},
	}
}

func (r record) ToAttributeSet() domain.AttributeSet { return r.attrs.Clone() }

func (r record) DiffPolicy() domain.DiffPolicy { return diffPolicy }

type Plugin struct {
	session anypoint.Session
	reader  *Reader
	mutator *Mutator
}

var _ ports.ResourcePlugin = (*Plugin)(nil)

func New(client *rest.Client, session anypoint.Session, logger ports.Logger) *Plugin {
	reader := &Reader{client: client, session: session}
	return &Plugin{
		session: session,
		reader:  reader,
		mutator: &Mutator{client: client, session: session, reader: reader, logger: logger},
	}
}

func (p *Plugin) Kind() domain.ResourceKind { return domain.KindAutomatedPolicy }

func (p *Plugin) States() []domain.LifecycleState {
	return []domain.LifecycleState{domain.StatePresent, domain.StateAbsent}
}

func (p *Plugin) Behavior() domain.Behavior {
	return domain.Behavior{ReplaceOnImmutableChange: true}
}

func (p *Plugin) DecodeSpec(name string, raw map[string]any) (domain.Reconcilable, error) {
	if _, err := p.session.RequireEnvironment(); err != nil {
		return nil, err
	}
	var s Spec
	if err := spec.Decode(domain.KindAutomatedPolicy, name, raw, &s); err != nil {
		return nil, err
	}
	attrs := spec.Attributes(raw, map[string]any{
		domain.PolicyGroupIDKey: defaultGroupID,
	})
	return record{name: name, attrs: attrs}, nil
}

func (p *Plugin) ObservedState(attrs domain.AttributeSet) domain.LifecycleState {
	return domain.StatePresent
}

func (p *Plugin) Reader() ports.StateReader { return p.reader }

func (p *Plugin) Mutator() ports.Mutator { return p.mutator }
