package automatedpolicy

import (
	"context"

	"github.com/olusolaa/anypoint-reconciler/internal/adapters/transport/rest"
	"github.com/olusolaa/anypoint-reconciler/internal/anypoint"
	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
	"github.com/olusolaa/anypoint-reconciler/internal/core/ports"
	"github.com/olusolaa/anypoint-reconciler/internal/errors"
)

// Oldest Mule runtime automated policies cover. The platform requires a
// rule of application on every write and this is the range it applies
// by default.
const minRuntimeVersion = "4.1.1"

type Mutator struct {
	client  *rest.Client
	session anypoint.Session
	reader  *Reader
	logger  ports.Logger
}

// body assembles the write payload. Create and edit share it; only the
// id differs, which the endpoint wants inside the body as well as in
// the path.
func (m *Mutator) body(id any, payload domain.AttributeSet) map[string]any {
	assetID, _ := payload.GetString(domain.PolicyAssetIDKey)
	version, _ := payload.GetString(domain.PolicyVersionKey)
	groupID, _ := payload.GetString(domain.PolicyGroupIDKey)

	var pointcut any
	if payload.Has(domain.PolicyPointcutKey) && !payload.IsNull(domain.PolicyPointcutKey) {
		pointcut = payload[domain.PolicyPointcutKey]
	}

	return map[string]any{
		"configurationData": payload[domain.PolicyConfigKey],
		"id":                id,
		"pointcutData":      pointcut,
		"ruleOfApplication": map[string]any{
			"environmentId":  m.session.EnvironmentID,
			"organizationId": m.session.OrganizationID,
			"range":          map[string]any{"from": minRuntimeVersion},
		},
		"groupId":      groupID,
		"assetId":      assetID,
		"assetVersion": version,
	}
}

func (m *Mutator) Create(ctx context.Context, payload domain.AttributeSet) (domain.AttributeSet, error) {
	assetID, _ := payload.GetString(domain.PolicyAssetIDKey)

	if err := m.client.Post(ctx, m.reader.basePath(), m.body(nil, payload), nil); err != nil {
		return nil, err
	}
	m.logger.Infof(ctx, "Applied automated policy '%s' to environment %s",
		assetID, m.session.EnvironmentID)

	attrs, found, err := m.reader.Find(ctx, domain.LookupKey{
		Qualifiers: map[string]string{domain.PolicyAssetIDKey: assetID},
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Newf(errors.CodeTransport,
			"automated policy '%s' was applied but is not listed", assetID)
	}
	return attrs, nil
}

func (m *Mutator) Update(ctx context.Context, id string, payload domain.AttributeSet) (domain.AttributeSet, error) {
	if err := m.client.Patch(ctx, m.reader.basePath()+"/"+id, m.body(id, payload), nil); err != nil {
		return nil, err
	}
	m.logger.Infof(ctx, "Updated automated policy %s", id)

	attrs, found, err := m.reader.Find(ctx, domain.LookupKey{ID: id})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Newf(errors.CodeTransport,
			"automated policy %s disappeared between mutation and re-read", id)
	}
	return attrs, nil
}

func (m *Mutator) Transition(ctx context.Context, id string, target domain.LifecycleState) (domain.AttributeSet, error) {
	return nil, errors.Newf(errors.CodeUnsupportedTransition,
		"automated policies cannot transition to '%s'", target)
}

func (m *Mutator) Delete(ctx context.Context, id string) error {
	if err := m.client.Delete(ctx, m.reader.basePath()+"/"+id); err != nil {
		return err
	}
	m.logger.Infof(ctx, "Removed automated policy %s", id)
	return nil
}
