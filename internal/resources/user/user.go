// Package user reconciles platform user accounts inside a business
// group. Users are matched by username; enablement is modeled as the
// present/disabled lifecycle pair rather than as an attribute.
package user

import (
	"github.com/olusolaa/anypoint-reconciler/internal/adapters/transport/rest"
	"github.com/olusolaa/anypoint-reconciler/internal/anypoint"
	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
	"github.com/olusolaa/anypoint-reconciler/internal/core/ports"
	"github.com/olusolaa/anypoint-reconciler/internal/resources/spec"
)

type Spec struct {
	Username  string `mapstructure:"username"`
	FirstName string `mapstructure:"first_name"`
	LastName  string `mapstructure:"last_name"`
	Email     string `mapstructure:"email" validate:"omitempty,email"`
	Password  string `mapstructure:"password"`
}

var diffPolicy = domain.DiffPolicy{
	Rules: map[string]domain.ComparisonRule{
		domain.UserUsernameKey:  domain.RuleExact,
		domain.UserFirstNameKey: domain.RuleExact,
		domain.UserLastNameKey:  domain.RuleExact,
		domain.UserEmailKey:     domain.RuleExact,
	},
	Immutable: []string{domain.UserUsernameKey},
}

type record struct {
	attrs domain.AttributeSet
}

func (r record) Kind() domain.ResourceKind { return domain.KindUser }

func (r record) LookupKey() domain.LookupKey {
	username, _ := r.attrs.GetString(domain.UserUsernameKey)
	return domain.LookupKey{Name: username}
}

func (r record) ToAttributeSet() domain.AttributeSet { return r.attrs.Clone() }

func (r record) DiffPolicy() domain.DiffPolicy { return diffPolicy }

type Plugin struct {
	reader  *Reader
	mutator *Mutator
}

var _ ports.ResourcePlugin = (*Plugin)(nil)

func New(client *rest.Client, session anypoint.Session, logger ports.Logger) *Plugin {
	reader := &Reader{client: client, session: session}
	return &Plugin{
		reader:  reader,
		mutator: &Mutator{client: client, session: session, logger: logger},
	}
}

func (p *Plugin) Kind() domain.ResourceKind { return domain.KindUser }

func (p *Plugin) States() []domain.LifecycleState {
	return []domain.LifecycleState{domain.StatePresent, domain.StateDisabled, domain.StateAbsent}
}

func (p *Plugin) Behavior() domain.Behavior { return domain.Behavior{} }

func (p *Plugin) DecodeSpec(name string, raw map[string]any) (domain.Reconcilable, error) {
	var s Spec
	if err := spec.Decode(domain.KindUser, name, raw, &s); err != nil {
		return nil, err
	}
	attrs := spec.Attributes(raw, nil)
	if _, ok := attrs.GetString(domain.UserUsernameKey); !ok {
		attrs[domain.UserUsernameKey] = name
	}
	return record{attrs: attrs}, nil
}

// ObservedState maps the remote enabled flag onto the lifecycle:
// disabled accounts are observed as disabled, everything else as present.
func (p *Plugin) ObservedState(attrs domain.AttributeSet) domain.LifecycleState {
	if enabled, ok := attrs.GetBool(domain.UserEnabledKey); ok && !enabled {
		return domain.StateDisabled
	}
	return domain.StatePresent
}

func (p *Plugin) Reader() ports.StateReader { return p.reader }

func (p *Plugin) Mutator() ports.Mutator { return p.mutator }
