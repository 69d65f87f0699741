package contract

import (
	"context"
	"fmt"

	"github.com/olusolaa/anypoint-reconciler/internal/adapters/transport/rest"
	"github.com/olusolaa/anypoint-reconciler/internal/anypoint"
	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
	"github.com/olusolaa/anypoint-reconciler/internal/core/ports"
	"github.com/olusolaa/anypoint-reconciler/internal/errors"
)

type apiInfo struct {
	GroupID        string `json:"groupId"`
	AssetID        string `json:"assetId"`
	AssetVersion   string `json:"assetVersion"`
	ProductVersion string `json:"productVersion"`
}

type Mutator struct {
	client  *rest.Client
	session anypoint.Session
	reader  *Reader
	logger  ports.Logger
}

// Create requests a contract through the Exchange application endpoint.
// The payload the endpoint wants describes the API's Exchange asset, so
// the instance is fetched first; a missing instance is a missing
// dependency.
func (m *Mutator) Create(ctx context.Context, payload domain.AttributeSet) (domain.AttributeSet, error) {
	apiID, _ := payload.GetString(domain.ContractAPIInstanceKey)
	appID, _ := payload.GetString(domain.ContractApplicationKey)

	var api apiInfo
	if err := m.client.Get(ctx, m.reader.apiPath(apiID), nil, &api); err != nil {
		if rest.IsNotFound(err) {
			return nil, errors.NewUserFacing(errors.CodeDependencyNotFound,
				fmt.Sprintf("API instance '%s' not found", apiID),
				"Check api_instance_id against the APIs managed in this environment.")
		}
		return nil, err
	}

	body := map[string]any{
		"apiId":          apiID,
		"environmentId":  m.session.EnvironmentID,
		"organizationId": m.session.OrganizationID,
		"acceptedTerms":  true,
		"groupId":        api.GroupID,
		"assetId":        api.AssetID,
		"version":        api.AssetVersion,
		"versionGroup":   api.ProductVersion,
	}
	path := fmt.Sprintf("/exchange/api/v1/organizations/%s/applications/%s/contracts",
		m.session.OrganizationID, appID)
	if err := m.client.Post(ctx, path, body, nil); err != nil {
		return nil, err
	}
	m.logger.Infof(ctx, "Granted contract for application %s on API instance %s", appID, apiID)

	attrs, found, err := m.reader.Find(ctx, domain.LookupKey{Qualifiers: map[string]string{
		domain.ContractAPIInstanceKey: apiID,
		domain.ContractApplicationKey: appID,
	}})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Newf(errors.CodeTransport,
			"contract for application %s was granted on API instance %s but is not listed", appID, apiID)
	}
	return attrs, nil
}

// Update has no meaning for contracts: every managed field is part of
// the contract's identity.
func (m *Mutator) Update(ctx context.Context, id string, payload domain.AttributeSet) (domain.AttributeSet, error) {
	return nil, errors.New(errors.CodeInternal, "API contracts carry no updatable fields")
}

// Transition revokes or restores the contract through the experimental
// API Manager endpoint, the same one the platform UI uses.
func (m *Mutator) Transition(ctx context.Context, id string, target domain.LifecycleState) (domain.AttributeSet, error) {
	apiID, contractID, err := splitCompositeID(id)
	if err != nil {
		return nil, err
	}

	var verb string
	switch target {
	case domain.StateRevoked:
		verb = "revoke"
	case domain.StatePresent:
		verb = "restore"
	default:
		return nil, errors.Newf(errors.CodeUnsupportedTransition,
			"contracts cannot transition to '%s'", target)
	}

	path := fmt.Sprintf("/apimanager/xapi/v1/organizations/%s/environments/%s/apis/%s/contracts/%s/%s",
		m.session.OrganizationID, m.session.EnvironmentID, apiID, contractID, verb)
	if err := m.client.Post(ctx, path, map[string]any{}, nil); err != nil {
		return nil, err
	}
	m.logger.Infof(ctx, "Contract %s on API instance %s: %sd", contractID, apiID, verb)

	attrs, found, err := m.reader.Find(ctx, domain.LookupKey{ID: id})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Newf(errors.CodeTransport,
			"contract %s disappeared between transition and re-read", id)
	}
	return attrs, nil
}

func (m *Mutator) Delete(ctx context.Context, id string) error {
	apiID, contractID, err := splitCompositeID(id)
	if err != nil {
		return err
	}
	if err := m.client.Delete(ctx, m.reader.apiPath(apiID)+"/contracts/"+contractID); err != nil {
		return err
	}
	m.logger.Infof(ctx, "Deleted contract %s from API instance %s", contractID, apiID)
	return nil
}
