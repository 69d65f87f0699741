// Package organization reconciles business groups. A group is located
// by walking the children of its declared parent, since the accounts
// API has no lookup-by-name endpoint.
package organization

import (
	"github.com/olusolaa/anypoint-reconciler/internal/adapters/transport/rest"
	"github.com/olusolaa/anypoint-reconciler/internal/anypoint"
	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
	"github.com/olusolaa/anypoint-reconciler/internal/core/ports"
	"github.com/olusolaa/anypoint-reconciler/internal/resources/spec"
)

type Spec struct {
	ParentID           string  `mapstructure:"parent_id"`
	OwnerID            string  `mapstructure:"owner_id"`
	CreateSubOrgs      bool    `mapstructure:"create_suborgs"`
	CreateEnvironments bool    `mapstructure:"create_environments"`
	GlobalDeployment   bool    `mapstructure:"global_deployment"`
	VCoresProduction   float64 `mapstructure:"vcores_production" validate:"gte=0"`
	VCoresSandbox      float64 `mapstructure:"vcores_sandbox" validate:"gte=0"`
	VCoresDesign       float64 `mapstructure:"vcores_design" validate:"gte=0"`
	StaticIPs          int     `mapstructure:"static_ips" validate:"gte=0"`
	VPCs               int     `mapstructure:"vpcs" validate:"gte=0"`
	LoadBalancer       int     `mapstructure:"load_balancer" validate:"gte=0"`
	VPNs               int     `mapstructure:"vpns" validate:"gte=0"`
}

// Moving a business group to another parent is not supported by the
// platform, and deleting one to recreate it elsewhere would take its
// environments with it. A parent change is therefore a hard conflict.
var diffPolicy = domain.DiffPolicy{
	Rules: map[string]domain.ComparisonRule{
		domain.KeyName:                  domain.RuleExact,
		domain.OrgParentIDKey:           domain.RuleExact,
		domain.OrgOwnerIDKey:            domain.RuleExact,
		domain.OrgCreateSubOrgsKey:      domain.RuleExact,
		domain.OrgCreateEnvironmentsKey: domain.RuleExact,
		domain.OrgGlobalDeploymentKey:   domain.RuleExact,
		domain.OrgVCoresProductionKey:   domain.RuleExact,
		domain.OrgVCoresSandboxKey:      domain.RuleExact,
		domain.OrgVCoresDesignKey:       domain.RuleExact,
		domain.OrgStaticIPsKey:          domain.RuleExact,
		domain.OrgVPCsKey:               domain.RuleExact,
		domain.OrgLoadBalancerKey:       domain.RuleExact,
		domain.OrgVPNsKey:               domain.RuleExact,
	},
	Immutable: []string{domain.OrgParentIDKey},
}

type record struct {
	attrs domain.AttributeSet
}

func (r record) Kind() domain.ResourceKind { return domain.KindOrganization }

func (r record) LookupKey() domain.LookupKey {
	name, _ := r.attrs.GetString(domain.KeyName)
	parentID, _ := r.attrs.GetString(domain.OrgParentIDKey)
	return domain.LookupKey{
		Name:       name,
		Qualifiers: map[string]string{domain.OrgParentIDKey: parentID},
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
		mutator: &Mutator{client: client, session: session, logger: logger},
	}
}

func (p *Plugin) Kind() domain.ResourceKind { return domain.KindOrganization }

func (p *Plugin) States() []domain.LifecycleState {
	return []domain.LifecycleState{domain.StatePresent, domain.StateAbsent}
}

func (p *Plugin) Behavior() domain.Behavior { return domain.Behavior{} }

func (p *Plugin) DecodeSpec(name string, raw map[string]any) (domain.Reconcilable, error) {
	var s Spec
	if err := spec.Decode(domain.KindOrganization, name, raw, &s); err != nil {
		return nil, err
	}
	attrs := spec.Attributes(raw, map[string]any{
		domain.OrgParentIDKey: p.session.OrganizationID,
	})
	attrs[domain.KeyName] = name
	return record{attrs: attrs}, nil
}

func (p *Plugin) ObservedState(attrs domain.AttributeSet) domain.LifecycleState {
	return domain.StatePresent
}

func (p *Plugin) Reader() ports.StateReader { return p.reader }

func (p *Plugin) Mutator() ports.Mutator { return p.mutator }
