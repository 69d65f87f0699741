package apiinstance

import (
	"context"

	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
	"github.com/olusolaa/anypoint-reconciler/internal/core/ports"
	"github.com/olusolaa/anypoint-reconciler/internal/errors"
)

type Mutator struct {
	run    runner
	reader *Reader
	logger ports.Logger
}

func endpointFlags(payload domain.AttributeSet) []string {
	var flags []string
	add := func(flag, key string) {
		if v, ok := payload.GetString(key); ok {
			flags = append(flags, flag, v)
		}
	}
	add("--uri", domain.APIURIKey)
	add("--proxyUri", domain.APIProxyURIKey)
	add("--instanceLabel", domain.APIInstanceLabelKey)
	return flags
}

func (m *Mutator) Create(ctx context.Context, payload domain.AttributeSet) (domain.AttributeSet, error) {
	assetID, _ := payload.GetString(domain.APIAssetIDKey)
	assetVersion, _ := payload.GetString(domain.APIAssetVersionKey)

	args := append([]string{"api-mgr", "api", "manage", assetID, assetVersion}, endpointFlags(payload)...)
	if _, err := m.run.Run(ctx, args...); err != nil {
		return nil, err
	}
	m.logger.Infof(ctx, "Managing API instance for asset '%s' %s", assetID, assetVersion)

	label, _ := payload.GetString(domain.APIInstanceLabelKey)
	attrs, found, err := m.reader.Find(ctx, domain.LookupKey{Qualifiers: map[string]string{
		domain.APIAssetIDKey:       assetID,
		domain.APIInstanceLabelKey: label,
	}})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Newf(errors.CodeTransport,
			"asset '%s' was managed but its API instance is not listed", assetID)
	}
	return attrs, nil
}

func (m *Mutator) Update(ctx context.Context, id string, payload domain.AttributeSet) (domain.AttributeSet, error) {
	args := append([]string{"api-mgr", "api", "edit", id}, endpointFlags(payload)...)
	if _, err := m.run.Run(ctx, args...); err != nil {
		return nil, err
	}
	return m.refetch(ctx, id)
}

func (m *Mutator) Transition(ctx context.Context, id string, target domain.LifecycleState) (domain.AttributeSet, error) {
	var verb string
	switch target {
	case domain.StateDeprecated:
		verb = "deprecate"
	case domain.StatePresent:
		verb = "undeprecate"
	default:
		return nil, errors.Newf(errors.CodeUnsupportedTransition,
			"API instances cannot transition to '%s'", target)
	}

	if _, err := m.run.Run(ctx, "api-mgr", "api", verb, id); err != nil {
		return nil, err
	}
	m.logger.Infof(ctx, "API instance %s: %sd", id, verb)
	return m.refetch(ctx, id)
}

func (m *Mutator) Delete(ctx context.Context, id string) error {
	if _, err := m.run.Run(ctx, "api-mgr", "api", "delete", id); err != nil {
		return err
	}
	m.logger.Infof(ctx, "Deleted API instance %s", id)
	return nil
}

func (m *Mutator) refetch(ctx context.Context, id string) (domain.AttributeSet, error) {
	attrs, found, err := m.reader.Find(ctx, domain.LookupKey{ID: id})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Newf(errors.CodeTransport,
			"API instance %s disappeared between mutation and re-read", id)
	}
	return attrs, nil
}
