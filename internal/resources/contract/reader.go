package contract

import (
	"context"
	"fmt"
	"strconv"

	"github.com/olusolaa/anypoint-reconciler/internal/adapters/transport/rest"
	"github.com/olusolaa/anypoint-reconciler/internal/anypoint"
	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
	"github.com/olusolaa/anypoint-reconciler/internal/core/ports"
	"github.com/olusolaa/anypoint-reconciler/internal/errors"
)

type contractRecord struct {
	ID              int64  `json:"id"`
	Status          string `json:"status"`
	ApplicationID   int64  `json:"applicationId"`
	ApplicationName string `json:"applicationName"`
}

type contractsResponse struct {
	Contracts []contractRecord `json:"contracts"`
}

func contractAttributes(apiID string, c contractRecord) domain.AttributeSet {
	return domain.AttributeSet{
		domain.KeyID:                  compositeID(apiID, strconv.FormatInt(c.ID, 10)),
		domain.KeyName:                c.ApplicationName,
		domain.KeyStatus:              c.Status,
		domain.ContractAPIInstanceKey: apiID,
		domain.ContractApplicationKey: strconv.FormatInt(c.ApplicationID, 10),
	}
}

type Reader struct {
	client  *rest.Client
	session anypoint.Session
}

func (r *Reader) apiPath(apiID string) string {
	return fmt.Sprintf("/apimanager/api/v1/organizations/%s/environments/%s/apis/%s",
		r.session.OrganizationID, r.session.EnvironmentID, apiID)
}

// Find locates a contract either by composite id or by the client
// application id declared in the lookup qualifiers. An unknown API
// instance is a missing dependency, not an absent contract.
func (r *Reader) Find(ctx context.Context, key domain.LookupKey) (domain.AttributeSet, bool, error) {
	if key.ID != "" {
		apiID, contractID, err := splitCompositeID(key.ID)
		if err != nil {
			return nil, false, err
		}
		return r.FindChild(ctx, domain.LookupKey{ID: apiID}, func(attrs domain.AttributeSet) bool {
			id, _ := attrs.GetString(domain.KeyID)
			return id == compositeID(apiID, contractID)
		})
	}

	apiID := key.Qualifiers[domain.ContractAPIInstanceKey]
	appID := key.Qualifiers[domain.ContractApplicationKey]
	if apiID == "" || appID == "" {
		return nil, false, errors.New(errors.CodeInternal,
			"contract lookup needs api_instance_id and application_id qualifiers")
	}
	return r.FindChild(ctx, domain.LookupKey{ID: apiID}, func(attrs domain.AttributeSet) bool {
		got, _ := attrs.GetString(domain.ContractApplicationKey)
		return got == appID
	})
}

// FindChild lists the contracts of one API instance, identified by
// parent.ID.
func (r *Reader) FindChild(ctx context.Context, parent domain.LookupKey, match ports.ChildMatcher) (domain.AttributeSet, bool, error) {
	var resp contractsResponse
	if err := r.client.Get(ctx, r.apiPath(parent.ID)+"/contracts", nil, &resp); err != nil {
		if rest.IsNotFound(err) {
			return nil, false, errors.NewUserFacing(errors.CodeDependencyNotFound,
				fmt.Sprintf("API instance '%s' not found", parent.ID),
				"Check api_instance_id against the APIs managed in this environment.")
		}
		return nil, false, err
	}

	var found domain.AttributeSet
	for _, c := range resp.Contracts {
		attrs := contractAttributes(parent.ID, c)
		if !match(attrs) {
			continue
		}
		if found != nil {
			return nil, false, errors.Newf(errors.CodeAmbiguousState,
				"API instance %s lists more than one contract for the same client application", parent.ID)
		}
		found = attrs
	}
	return found, found != nil, nil
}
