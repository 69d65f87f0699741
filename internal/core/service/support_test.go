package service

import (
	"context"

	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
	"github.com/olusolaa/anypoint-reconciler/internal/core/ports"
)

// noopLogger keeps service tests quiet without mock expectations.
type noopLogger struct{}

func (noopLogger) Debugf(ctx context.Context, format string, args ...any)            {}
func (noopLogger) Infof(ctx context.Context, format string, args ...any)             {}
func (noopLogger) Warnf(ctx context.Context, format string, args ...any)             {}
func (noopLogger) Errorf(ctx context.Context, err error, format string, args ...any) {}
func (noopLogger) WithFields(fields map[string]any) ports.Logger                     { return noopLogger{} }

// testSpec is a minimal Reconcilable for exercising the core without any
// real resource plugin.
type testSpec struct {
	kind   domain.ResourceKind
	key    domain.LookupKey
	attrs  domain.AttributeSet
	policy domain.DiffPolicy
}

func (s testSpec) Kind() domain.ResourceKind         { return s.kind }
func (s testSpec) LookupKey() domain.LookupKey       { return s.key }
func (s testSpec) ToAttributeSet() domain.AttributeSet { return s.attrs }
func (s testSpec) DiffPolicy() domain.DiffPolicy     { return s.policy }

// fakePlugin wires arbitrary reader/mutator implementations behind the
// plugin interface.
type fakePlugin struct {
	kind     domain.ResourceKind
	states   []domain.LifecycleState
	behavior domain.Behavior
	reader   ports.StateReader
	mutator  ports.Mutator
	observed func(domain.AttributeSet) domain.LifecycleState
	decode   func(name string, raw map[string]any) (domain.Reconcilable, error)
}

func (p *fakePlugin) Kind() domain.ResourceKind { return p.kind }

func (p *fakePlugin) States() []domain.LifecycleState {
	if len(p.states) == 0 {
		return []domain.LifecycleState{domain.StatePresent, domain.StateAbsent}
	}
	return p.states
}

func (p *fakePlugin) Behavior() domain.Behavior { return p.behavior }

func (p *fakePlugin) DecodeSpec(name string, raw map[string]any) (domain.Reconcilable, error) {
	if p.decode != nil {
		return p.decode(name, raw)
	}
	attrs := domain.AttributeSet{domain.KeyName: name}
	for k, v := range raw {
		attrs[k] = v
	}
	rules := make(map[string]domain.ComparisonRule, len(attrs))
	for k := range attrs {
		rules[k] = domain.RuleExact
	}
	return testSpec{
		kind:   p.kind,
		key:    domain.LookupKey{Name: name},
		attrs:  attrs,
		policy: domain.DiffPolicy{Rules: rules},
	}, nil
}

func (p *fakePlugin) ObservedState(attrs domain.AttributeSet) domain.LifecycleState {
	if p.observed != nil {
		return p.observed(attrs)
	}
	if s, ok := attrs.GetString(domain.KeyStatus); ok {
		return domain.LifecycleState(s)
	}
	return domain.StatePresent
}

func (p *fakePlugin) Reader() ports.StateReader { return p.reader }
func (p *fakePlugin) Mutator() ports.Mutator    { return p.mutator }
