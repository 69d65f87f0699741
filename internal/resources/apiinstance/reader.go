package apiinstance

import (
	"context"
	"strconv"

	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
	"github.com/olusolaa/anypoint-reconciler/internal/core/ports"
	"github.com/olusolaa/anypoint-reconciler/internal/errors"
)

type apiRecord struct {
	ID            int64  `json:"id"`
	AssetID       string `json:"assetId"`
	AssetVersion  string `json:"assetVersion"`
	InstanceLabel string `json:"instanceLabel"`
	Deprecated    bool   `json:"deprecated"`
	Endpoint      struct {
		URI      string `json:"uri"`
		ProxyURI string `json:"proxyUri"`
	} `json:"endpoint"`
}

func apiAttributes(a apiRecord) domain.AttributeSet {
	return domain.AttributeSet{
		domain.KeyID:               strconv.FormatInt(a.ID, 10),
		domain.APIAssetIDKey:       a.AssetID,
		domain.APIAssetVersionKey:  a.AssetVersion,
		domain.APIInstanceLabelKey: a.InstanceLabel,
		domain.APIURIKey:           a.Endpoint.URI,
		domain.APIProxyURIKey:      a.Endpoint.ProxyURI,
		domain.APIDeprecatedKey:    a.Deprecated,
	}
}

type Reader struct {
	run runner
}

// Find matches by instance id when the key carries one, otherwise by
// asset id plus instance label. Several instances of one asset are
// normal; several with the same label are not.
func (r *Reader) Find(ctx context.Context, key domain.LookupKey) (domain.AttributeSet, bool, error) {
	if key.ID != "" {
		return r.FindChild(ctx, domain.LookupKey{}, func(attrs domain.AttributeSet) bool {
			id, _ := attrs.GetString(domain.KeyID)
			return id == key.ID
		})
	}

	assetID := key.Qualifiers[domain.APIAssetIDKey]
	if assetID == "" {
		return nil, false, errors.New(errors.CodeInternal,
			"API instance lookup needs an asset_id qualifier")
	}
	label := key.Qualifiers[domain.APIInstanceLabelKey]
	return r.FindChild(ctx, domain.LookupKey{ID: assetID}, func(attrs domain.AttributeSet) bool {
		got, _ := attrs.GetString(domain.APIInstanceLabelKey)
		return got == label
	})
}

// FindChild lists the API instances of the session environment,
// narrowed to one asset when parent.ID names it.
func (r *Reader) FindChild(ctx context.Context, parent domain.LookupKey, match ports.ChildMatcher) (domain.AttributeSet, bool, error) {
	args := []string{"api-mgr", "api", "list"}
	if parent.ID != "" {
		args = append(args, "--assetId", parent.ID)
	}

	var instances []apiRecord
	if _, err := r.run.RunJSON(ctx, &instances, args...); err != nil {
		return nil, false, err
	}

	var found domain.AttributeSet
	for _, inst := range instances {
		attrs := apiAttributes(inst)
		if !match(attrs) {
			continue
		}
		if found != nil {
			return nil, false, errors.New(errors.CodeAmbiguousState,
				"more than one API instance matches the asset and label")
		}
		found = attrs
	}
	return found, found != nil, nil
}
