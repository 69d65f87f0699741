package organization

import (
	"context"
	"fmt"

	"github.com/olusolaa/anypoint-reconciler/internal/adapters/transport/rest"
	"github.com/olusolaa/anypoint-reconciler/internal/anypoint"
	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
	"github.com/olusolaa/anypoint-reconciler/internal/core/ports"
	"github.com/olusolaa/anypoint-reconciler/internal/errors"
)

type Mutator struct {
	client  *rest.Client
	session anypoint.Session
	logger  ports.Logger
}

func entitlementsBody(payload domain.AttributeSet) map[string]any {
	body := map[string]any{}
	setBool := func(field, key string) {
		if payload.Has(key) {
			body[field] = payload[key]
		}
	}
	setAssigned := func(field, key string) {
		if payload.Has(key) {
			body[field] = map[string]any{"assigned": payload[key]}
		}
	}
	setBool("createSubOrgs", domain.OrgCreateSubOrgsKey)
	setBool("createEnvironments", domain.OrgCreateEnvironmentsKey)
	setBool("globalDeployment", domain.OrgGlobalDeploymentKey)
	setAssigned("vCoresProduction", domain.OrgVCoresProductionKey)
	setAssigned("vCoresSandbox", domain.OrgVCoresSandboxKey)
	setAssigned("vCoresDesign", domain.OrgVCoresDesignKey)
	setAssigned("staticIps", domain.OrgStaticIPsKey)
	setAssigned("vpcs", domain.OrgVPCsKey)
	setAssigned("loadBalancer", domain.OrgLoadBalancerKey)
	setAssigned("vpns", domain.OrgVPNsKey)
	return body
}

func (m *Mutator) Create(ctx context.Context, payload domain.AttributeSet) (domain.AttributeSet, error) {
	ownerID, ok := payload.GetString(domain.OrgOwnerIDKey)
	if !ok {
		ownerID = m.session.UserID
	}
	parentID, ok := payload.GetString(domain.OrgParentIDKey)
	if !ok {
		parentID = m.session.OrganizationID
	}

	body := map[string]any{
		"name":                 payload[domain.KeyName],
		"parentOrganizationId": parentID,
		"ownerId":              ownerID,
		"entitlements":         entitlementsBody(payload),
	}

	var created orgRecord
	if err := m.client.Post(ctx, "/accounts/api/organizations", body, &created); err != nil {
		return nil, err
	}
	m.logger.Infof(ctx, "Created business group '%s' (id %s) under %s", created.Name, created.ID, parentID)
	return orgAttributes(created), nil
}

func (m *Mutator) Update(ctx context.Context, id string, payload domain.AttributeSet) (domain.AttributeSet, error) {
	body := map[string]any{
		"name":         payload[domain.KeyName],
		"entitlements": entitlementsBody(payload),
	}
	if ownerID, ok := payload.GetString(domain.OrgOwnerIDKey); ok {
		body["ownerId"] = ownerID
	}

	var updated orgRecord
	path := fmt.Sprintf("/accounts/api/organizations/%s", id)
	if err := m.client.Put(ctx, path, body, &updated); err != nil {
		return nil, err
	}
	return orgAttributes(updated), nil
}

func (m *Mutator) Transition(ctx context.Context, id string, target domain.LifecycleState) (domain.AttributeSet, error) {
	return nil, errors.Newf(errors.CodeUnsupportedTransition,
		"business groups have no '%s' lifecycle transition", target)
}

func (m *Mutator) Delete(ctx context.Context, id string) error {
	path := fmt.Sprintf("/accounts/api/organizations/%s", id)
	if err := m.client.Delete(ctx, path); err != nil {
		return err
	}
	m.logger.Infof(ctx, "Deleted business group id %s", id)
	return nil
}
