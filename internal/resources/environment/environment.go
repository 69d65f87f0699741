// Package environment reconciles environments inside a business group
// through anypoint-cli, which addresses environments by name. The name
// therefore doubles as the mutation identifier.
package environment

import (
	"context"

	"github.com/olusolaa/anypoint-reconciler/internal/adapters/transport/cli"
	"github.com/olusolaa/anypoint-reconciler/internal/anypoint"
	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
	"github.com/olusolaa/anypoint-reconciler/internal/core/ports"
	"github.com/olusolaa/anypoint-reconciler/internal/errors"
	"github.com/olusolaa/anypoint-reconciler/internal/resources/spec"
)

type runner interface {
	Run(ctx context.Context, args ...string) (cli.Result, error)
	RunJSON(ctx context.Context, out any, args ...string) (cli.Result, error)
}

type Spec struct {
	Type string `mapstructure:"type" validate:"omitempty,oneof=production sandbox design"`
}

// Environment type cannot change in place. The platform has no edit
// call at all, so a declared type change is honored by deleting the
// environment and creating it again under the new type.
var diffPolicy = domain.DiffPolicy{
	Rules: map[string]domain.ComparisonRule{
		domain.KeyName:    domain.RuleExact,
		domain.EnvTypeKey: domain.RuleExact,
	},
	Immutable: []string{domain.EnvTypeKey},
}

type record struct {
	attrs domain.AttributeSet
}

func (r record) Kind() domain.ResourceKind { return domain.KindEnvironment }

func (r record) LookupKey() domain.LookupKey {
	name, _ := r.attrs.GetString(domain.KeyName)
	envType, _ := r.attrs.GetString(domain.EnvTypeKey)
	return domain.LookupKey{
		Name:       name,
		Qualifiers: map[string]string{domain.EnvTypeKey: envType},
	}
}

func (r record) ToAttributeSet() domain.AttributeSet { return r.attrs.Clone() }

func (r record) DiffPolicy() domain.DiffPolicy { return diffPolicy }

type Plugin struct {
	reader  *Reader
	mutator *Mutator
}

var _ ports.ResourcePlugin = (*Plugin)(nil)

func New(run runner, session anypoint.Session, logger ports.Logger) *Plugin {
	reader := &Reader{run: run}
	return &Plugin{
		reader:  reader,
		mutator: &Mutator{run: run, reader: reader, logger: logger},
	}
}

func (p *Plugin) Kind() domain.ResourceKind { return domain.KindEnvironment }

func (p *Plugin) States() []domain.LifecycleState {
	return []domain.LifecycleState{domain.StatePresent, domain.StateAbsent}
}

func (p *Plugin) Behavior() domain.Behavior {
	return domain.Behavior{ReplaceOnImmutableChange: true}
}

func (p *Plugin) DecodeSpec(name string, raw map[string]any) (domain.Reconcilable, error) {
	var s Spec
	if err := spec.Decode(domain.KindEnvironment, name, raw, &s); err != nil {
		return nil, err
	}
	attrs := spec.Attributes(raw, map[string]any{
		domain.EnvTypeKey: "production",
	})
	attrs[domain.KeyName] = name
	return record{attrs: attrs}, nil
}

func (p *Plugin) ObservedState(attrs domain.AttributeSet) domain.LifecycleState {
	return domain.StatePresent
}

func (p *Plugin) Reader() ports.StateReader { return p.reader }

func (p *Plugin) Mutator() ports.Mutator { return p.mutator }

type envRecord struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	IsProduction bool   `json:"isProduction"`
}

func envAttributes(e envRecord) domain.AttributeSet {
	return domain.AttributeSet{
		domain.KeyID:      e.Name,
		domain.KeyName:    e.Name,
		domain.EnvTypeKey: e.Type,
	}
}

type Reader struct {
	run runner
}

// Find matches by name first. The platform allows the same name under
// different types, so when several environments share it, the declared
// type qualifier picks one. A single name match wins even when its type
// differs, so a type change surfaces as drift rather than absence.
func (r *Reader) Find(ctx context.Context, key domain.LookupKey) (domain.AttributeSet, bool, error) {
	name := key.Name
	if key.ID != "" {
		name = key.ID
	}

	var envs []envRecord
	if _, err := r.run.RunJSON(ctx, &envs, "account", "environment", "list"); err != nil {
		return nil, false, err
	}

	var matches []domain.AttributeSet
	for _, e := range envs {
		if e.Name == name {
			matches = append(matches, envAttributes(e))
		}
	}
	if len(matches) > 1 {
		if envType, ok := key.Qualifiers[domain.EnvTypeKey]; ok && envType != "" {
			var narrowed []domain.AttributeSet
			for _, attrs := range matches {
				if t, _ := attrs.GetString(domain.EnvTypeKey); t == envType {
					narrowed = append(narrowed, attrs)
				}
			}
			matches = narrowed
		}
	}

	switch len(matches) {
	case 0:
		return nil, false, nil
	case 1:
		return matches[0], true, nil
	default:
		return nil, false, errors.Newf(errors.CodeAmbiguousState,
			"more than one environment is named '%s'", name)
	}
}

func (r *Reader) FindChild(ctx context.Context, parent domain.LookupKey, match ports.ChildMatcher) (domain.AttributeSet, bool, error) {
	var envs []envRecord
	if _, err := r.run.RunJSON(ctx, &envs, "account", "environment", "list"); err != nil {
		return nil, false, err
	}

	var found domain.AttributeSet
	for _, e := range envs {
		attrs := envAttributes(e)
		if !match(attrs) {
			continue
		}
		if found != nil {
			return nil, false, errors.New(errors.CodeAmbiguousState,
				"more than one environment matches the lookup")
		}
		found = attrs
	}
	return found, found != nil, nil
}

type Mutator struct {
	run    runner
	reader *Reader
	logger ports.Logger
}

func (m *Mutator) Create(ctx context.Context, payload domain.AttributeSet) (domain.AttributeSet, error) {
	name, _ := payload.GetString(domain.KeyName)
	envType, _ := payload.GetString(domain.EnvTypeKey)

	args := []string{"account", "environment", "create", name}
	if envType != "" {
		args = append(args, "--type", envType)
	}
	if _, err := m.run.Run(ctx, args...); err != nil {
		return nil, err
	}
	m.logger.Infof(ctx, "Created environment '%s' (%s)", name, envType)

	attrs, found, err := m.reader.Find(ctx, domain.LookupKey{
		Name:       name,
		Qualifiers: map[string]string{domain.EnvTypeKey: envType},
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Newf(errors.CodeTransport,
			"environment '%s' was created but does not appear in the listing", name)
	}
	return attrs, nil
}

func (m *Mutator) Update(ctx context.Context, id string, payload domain.AttributeSet) (domain.AttributeSet, error) {
	return nil, errors.New(errors.CodeInternal, "environments have no updatable fields")
}

func (m *Mutator) Transition(ctx context.Context, id string, target domain.LifecycleState) (domain.AttributeSet, error) {
	return nil, errors.Newf(errors.CodeUnsupportedTransition,
		"environments have no '%s' lifecycle transition", target)
}

func (m *Mutator) Delete(ctx context.Context, id string) error {
	if _, err := m.run.Run(ctx, "account", "environment", "delete", id); err != nil {
		return err
	}
	m.logger.Infof(ctx, "Deleted environment '%s'", id)
	return nil
}
