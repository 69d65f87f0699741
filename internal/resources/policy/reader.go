package policy

import (
	"context"
	"strconv"
	"strings"

	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
	"github.com/olusolaa/anypoint-reconciler/internal/core/ports"
	"github.com/olusolaa/anypoint-reconciler/internal/errors"
)

type policyRecord struct {
	PolicyID          int64            `json:"policyId"`
	PolicyTemplateID  string           `json:"policyTemplateId"`
	Version           string           `json:"version"`
	GroupID           string           `json:"groupId"`
	ConfigurationData map[string]any   `json:"configurationData"`
	PointcutData      []map[string]any `json:"pointcutData"`
	Disabled          bool             `json:"disabled"`
}

func policyAttributes(apiID string, p policyRecord) domain.AttributeSet {
	attrs := domain.AttributeSet{
		domain.KeyID:                compositeID(apiID, strconv.FormatInt(p.PolicyID, 10)),
		domain.PolicyAPIInstanceKey: apiID,
		domain.PolicyAssetIDKey:     p.PolicyTemplateID,
		domain.PolicyVersionKey:     p.Version,
		domain.PolicyGroupIDKey:     p.GroupID,
		domain.PolicyDisabledKey:    p.Disabled,
	}
	if p.ConfigurationData != nil {
		attrs[domain.PolicyConfigKey] = p.ConfigurationData
	}
	if p.PointcutData != nil {
		attrs[domain.PolicyPointcutKey] = p.PointcutData
	}
	return attrs
}

func compositeID(apiID, policyID string) string {
	return apiID + "/" + policyID
}

func splitCompositeID(id string) (apiID, policyID string, err error) {
	parts := strings.SplitN(id, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.Newf(errors.CodeInternal,
			"malformed policy identifier %q, want <apiInstanceID>/<policyID>", id)
	}
	return parts[0], parts[1], nil
}

type Reader struct {
	run runner
}

func (r *Reader) list(ctx context.Context, apiID string) ([]policyRecord, error) {
	var policies []policyRecord
	if _, err := r.run.RunJSON(ctx, &policies, "api-mgr", "policy", "list", apiID); err != nil {
		return nil, err
	}
	return policies, nil
}

// Find locates a policy either by composite id or by the template asset
// declared in the lookup qualifiers.
func (r *Reader) Find(ctx context.Context, key domain.LookupKey) (domain.AttributeSet, bool, error) {
	if key.ID != "" {
		apiID, policyID, err := splitCompositeID(key.ID)
		if err != nil {
			return nil, false, err
		}
		return r.FindChild(ctx, domain.LookupKey{ID: apiID}, func(attrs domain.AttributeSet) bool {
			id, _ := attrs.GetString(domain.KeyID)
			return id == compositeID(apiID, policyID)
		})
	}

	apiID := key.Qualifiers[domain.PolicyAPIInstanceKey]
	assetID := key.Qualifiers[domain.PolicyAssetIDKey]
	if apiID == "" || assetID == "" {
		return nil, false, errors.New(errors.CodeInternal,
			"policy lookup needs api_instance_id and asset_id qualifiers")
	}
	return r.FindChild(ctx, domain.LookupKey{ID: apiID}, func(attrs domain.AttributeSet) bool {
		got, _ := attrs.GetString(domain.PolicyAssetIDKey)
		return got == assetID
	})
}

// FindChild lists the policies of one API instance, identified by
// parent.ID.
func (r *Reader) FindChild(ctx context.Context, parent domain.LookupKey, match ports.ChildMatcher) (domain.AttributeSet, bool, error) {
	policies, err := r.list(ctx, parent.ID)
	if err != nil {
		return nil, false, err
	}

	var found domain.AttributeSet
	for _, p := range policies {
		attrs := policyAttributes(parent.ID, p)
		if !match(attrs) {
			continue
		}
		if found != nil {
			return nil, false, errors.Newf(errors.CodeAmbiguousState,
				"API instance %s carries the same policy template more than once", parent.ID)
		}
		found = attrs
	}
	return found, found != nil, nil
}
