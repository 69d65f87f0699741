// Package apiinstance reconciles API Manager instances. An instance is
// located by its Exchange asset and instance label. The platform
// refuses edits on a deprecated instance, so an update from that state
// is preceded by an undeprecate; changing the managed asset or its
// version re-manages the instance from scratch.
package apiinstance

import (
	"context"

	"github.com/olusolaa/anypoint-reconciler/internal/adapters/transport/cli"
	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
	"github.com/olusolaa/anypoint-reconciler/internal/core/ports"
	"github.com/olusolaa/anypoint-reconciler/internal/resources/spec"
)

type runner interface {
	Run(ctx context.Context, args ...string) (cli.Result, error)
	RunJSON(ctx context.Context, out any, args ...string) (cli.Result, error)
}

type Spec struct {
	AssetID       string `mapstructure:"asset_id" validate:"required"`
	AssetVersion  string `mapstructure:"asset_version" validate:"required"`
	InstanceLabel string `mapstructure:"instance_label"`
	URI           string `mapstructure:"uri"`
	ProxyURI      string `mapstructure:"proxy_uri"`
}

var diffPolicy = domain.DiffPolicy{
	Rules: map[string]domain.ComparisonRule{
		domain.APIAssetIDKey:       domain.RuleExact,
		domain.APIAssetVersionKey:  domain.RuleExact,
		domain.APIInstanceLabelKey: domain.RuleExact,
		domain.APIURIKey:           domain.RuleExact,
		domain.APIProxyURIKey:      domain.RuleExact,
	},
	Immutable: []string{domain.APIAssetIDKey, domain.APIAssetVersionKey},
}

type record struct {
	name  string
	attrs domain.AttributeSet
}

func (r record) Kind() domain.ResourceKind { return domain.KindAPIInstance }

func (r record) LookupKey() domain.LookupKey {
	assetID, _ := r.attrs.GetString(domain.APIAssetIDKey)
	label, _ := r.attrs.GetString(domain.APIInstanceLabelKey)
	return domain.LookupKey{
		Name: r.name,
		Qualifiers: map[string]string{
			domain.APIAssetIDKey:       assetID,
			domain.APIInstanceLabelKey: label,
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
		mutator: &Mutator{run: run, reader: reader, logger: logger},
	}
}

func (p *Plugin) Kind() domain.ResourceKind { return domain.KindAPIInstance }

func (p *Plugin) States() []domain.LifecycleState {
	return []domain.LifecycleState{domain.StatePresent, domain.StateDeprecated, domain.StateAbsent}
}

func (p *Plugin) Behavior() domain.Behavior {
	return domain.Behavior{
		PreUpdate: map[domain.LifecycleState]domain.LifecycleState{
			domain.StateDeprecated: domain.StatePresent,
		},
		ReplaceOnImmutableChange: true,
	}
}

func (p *Plugin) DecodeSpec(name string, raw map[string]any) (domain.Reconcilable, error) {
	var s Spec
	if err := spec.Decode(domain.KindAPIInstance, name, raw, &s); err != nil {
		return nil, err
	}
	return record{name: name, attrs: spec.Attributes(raw, nil)}, nil
}

func (p *Plugin) ObservedState(attrs domain.AttributeSet) domain.LifecycleState {
	if deprecated, ok := attrs.GetBool(domain.APIDeprecatedKey); ok && deprecated {
		return domain.StateDeprecated
	}
	return domain.StatePresent
}

func (p *Plugin) Reader() ports.StateReader { return p.reader }

func (p *Plugin) Mutator() ports.Mutator { return p.mutator }
