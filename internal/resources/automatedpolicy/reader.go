package automatedpolicy

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/olusolaa/anypoint-reconciler/internal/adapters/transport/rest"
	"github.com/olusolaa/anypoint-reconciler/internal/anypoint"
	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
	"github.com/olusolaa/anypoint-reconciler/internal/core/ports"
	"github.com/olusolaa/anypoint-reconciler/internal/errors"
)

type policyRecord struct {
	ID                int64          `json:"id"`
	AssetID           string         `json:"assetId"`
	AssetVersion      string         `json:"assetVersion"`
	GroupID           string         `json:"groupId"`
	Disabled          bool           `json:"disabled"`
	ConfigurationData map[string]any `json:"configurationData"`
	PointcutData      any            `json:"pointcutData"`
}

type policiesResponse struct {
	AutomatedPolicies []policyRecord `json:"automatedPolicies"`
}

func policyAttributes(p policyRecord) domain.AttributeSet {
	return domain.AttributeSet{
		domain.KeyID:             strconv.FormatInt(p.ID, 10),
		domain.PolicyAssetIDKey:  p.AssetID,
		domain.PolicyVersionKey:  p.AssetVersion,
		domain.PolicyGroupIDKey:  p.GroupID,
		domain.PolicyDisabledKey: p.Disabled,
		domain.PolicyConfigKey:   p.ConfigurationData,
		domain.PolicyPointcutKey: p.PointcutData,
	}
}

type Reader struct {
	client  *rest.Client
	session anypoint.Session
}

// The mutation endpoint lives on the public API; only the listing goes
// through the experimental one, the same split the platform UI uses.
func (r *Reader) basePath() string {
	return fmt.Sprintf("/apimanager/api/v1/organizations/%s/automated-policies",
		r.session.OrganizationID)
}

func (r *Reader) listPath() string {
	return fmt.Sprintf("/apimanager/xapi/v1/organizations/%s/automated-policies",
		r.session.OrganizationID)
}

// Find lists the environment's automated policies and matches by policy
// id or by the declared template asset. One environment applies each
// template at most once, so a second match is an inconsistency.
func (r *Reader) Find(ctx context.Context, key domain.LookupKey) (domain.AttributeSet, bool, error) {
	var resp policiesResponse
	query := url.Values{"environmentId": {r.session.EnvironmentID}}
	if err := r.client.Get(ctx, r.listPath(), query, &resp); err != nil {
		return nil, false, err
	}

	assetID := key.Qualifiers[domain.PolicyAssetIDKey]
	if key.ID == "" && assetID == "" {
		return nil, false, errors.New(errors.CodeInternal,
			"automated policy lookup needs an id or an asset_id qualifier")
	}

	var found domain.AttributeSet
	for _, p := range resp.AutomatedPolicies {
		attrs := policyAttributes(p)
		if key.ID != "" {
			if id, _ := attrs.GetString(domain.KeyID); id != key.ID {
				continue
			}
		} else if p.AssetID != assetID {
			continue
		}
		if found != nil {
			return nil, false, errors.Newf(errors.CodeAmbiguousState,
				"environment %s lists automated policy '%s' more than once",
				r.session.EnvironmentID, assetID)
		}
		found = attrs
	}
	return found, found != nil, nil
}

func (r *Reader) FindChild(ctx context.Context, parent domain.LookupKey, match ports.ChildMatcher) (domain.AttributeSet, bool, error) {
	return nil, false, errors.New(errors.CodeInternal,
		"automated policies are scoped to the session environment, not to a parent resource")
}
