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

type assignedEntitlement struct {
	Assigned float64 `json:"assigned"`
}

type orgEntitlements struct {
	CreateSubOrgs      bool                `json:"createSubOrgs"`
	CreateEnvironments bool                `json:"createEnvironments"`
	GlobalDeployment   bool                `json:"globalDeployment"`
	VCoresProduction   assignedEntitlement `json:"vCoresProduction"`
	VCoresSandbox      assignedEntitlement `json:"vCoresSandbox"`
	VCoresDesign       assignedEntitlement `json:"vCoresDesign"`
	StaticIPs          assignedEntitlement `json:"staticIps"`
	VPCs               assignedEntitlement `json:"vpcs"`
	LoadBalancer       assignedEntitlement `json:"loadBalancer"`
	VPNs               assignedEntitlement `json:"vpns"`
}

type orgRecord struct {
	ID                   string          `json:"id"`
	Name                 string          `json:"name"`
	ParentOrganizationID string          `json:"parentOrganizationId"`
	OwnerID              string          `json:"ownerId"`
	ClientID             string          `json:"clientId"`
	SubOrganizationIDs   []string        `json:"subOrganizationIds"`
	Entitlements         orgEntitlements `json:"entitlements"`
}

func orgAttributes(o orgRecord) domain.AttributeSet {
	return domain.AttributeSet{
		domain.KeyID:                    o.ID,
		domain.KeyName:                  o.Name,
		domain.OrgParentIDKey:           o.ParentOrganizationID,
		domain.OrgOwnerIDKey:            o.OwnerID,
		domain.OrgClientIDKey:           o.ClientID,
		domain.OrgCreateSubOrgsKey:      o.Entitlements.CreateSubOrgs,
		domain.OrgCreateEnvironmentsKey: o.Entitlements.CreateEnvironments,
		domain.OrgGlobalDeploymentKey:   o.Entitlements.GlobalDeployment,
		domain.OrgVCoresProductionKey:   o.Entitlements.VCoresProduction.Assigned,
		domain.OrgVCoresSandboxKey:      o.Entitlements.VCoresSandbox.Assigned,
		domain.OrgVCoresDesignKey:       o.Entitlements.VCoresDesign.Assigned,
		domain.OrgStaticIPsKey:          o.Entitlements.StaticIPs.Assigned,
		domain.OrgVPCsKey:               o.Entitlements.VPCs.Assigned,
		domain.OrgLoadBalancerKey:       o.Entitlements.LoadBalancer.Assigned,
		domain.OrgVPNsKey:               o.Entitlements.VPNs.Assigned,
	}
}

type Reader struct {
	client  *rest.Client
	session anypoint.Session
}

func (r *Reader) fetch(ctx context.Context, orgID string) (orgRecord, error) {
	var org orgRecord
	path := fmt.Sprintf("/accounts/api/organizations/%s", orgID)
	if err := r.client.Get(ctx, path, nil, &org); err != nil {
		return orgRecord{}, err
	}
	return org, nil
}

func (r *Reader) Find(ctx context.Context, key domain.LookupKey) (domain.AttributeSet, bool, error) {
	parentID := key.Qualifiers[domain.OrgParentIDKey]
	if parentID == "" {
		parentID = r.session.OrganizationID
	}
	return r.FindChild(ctx, domain.LookupKey{ID: parentID}, func(attrs domain.AttributeSet) bool {
		if key.ID != "" {
			id, _ := attrs.GetString(domain.KeyID)
			return id == key.ID
		}
		name, _ := attrs.GetString(domain.KeyName)
		return name == key.Name
	})
}

// FindChild walks the direct sub-groups of parent. The accounts API
// exposes children as a list of ids on the parent, so each candidate
// costs one extra call.
func (r *Reader) FindChild(ctx context.Context, parent domain.LookupKey, match ports.ChildMatcher) (domain.AttributeSet, bool, error) {
	parentOrg, err := r.fetch(ctx, parent.ID)
	if err != nil {
		if rest.IsNotFound(err) {
			return nil, false, errors.WrapUserFacing(err, errors.CodeDependencyNotFound,
				fmt.Sprintf("parent business group %s does not exist", parent.ID),
				"Declare the parent group in the manifest or check its id.")
		}
		return nil, false, err
	}

	var found domain.AttributeSet
	for _, subID := range parentOrg.SubOrganizationIDs {
		sub, err := r.fetch(ctx, subID)
		if err != nil {
			return nil, false, err
		}
		attrs := orgAttributes(sub)
		if !match(attrs) {
			continue
		}
		if found != nil {
			return nil, false, errors.Newf(errors.CodeAmbiguousState,
				"more than one sub-group of %s matches the lookup", parentOrg.Name)
		}
		found = attrs
	}
	return found, found != nil, nil
}
