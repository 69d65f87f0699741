package exchangeasset

import (
	"context"
	"fmt"

	"github.com/olusolaa/anypoint-reconciler/internal/adapters/transport/rest"
	"github.com/olusolaa/anypoint-reconciler/internal/anypoint"
	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
	"github.com/olusolaa/anypoint-reconciler/internal/core/ports"
	"github.com/olusolaa/anypoint-reconciler/internal/errors"
)

type assetFile struct {
	Classifier string `json:"classifier"`
	Packaging  string `json:"packaging"`
	MD5        string `json:"md5"`
}

type assetRecord struct {
	GroupID     string      `json:"groupId"`
	AssetID     string      `json:"assetId"`
	Version     string      `json:"version"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Status      string      `json:"status"`
	Labels      []string    `json:"labels"`
	Files       []assetFile `json:"files"`
}

func assetAttributes(a assetRecord) domain.AttributeSet {
	attrs := domain.AttributeSet{
		domain.KeyID:               assetCoordinates(a.GroupID, a.AssetID, a.Version),
		domain.KeyName:             a.Name,
		domain.KeyStatus:           a.Status,
		domain.AssetGroupIDKey:     a.GroupID,
		domain.AssetIDKey:          a.AssetID,
		domain.AssetVersionKey:     a.Version,
		domain.AssetDescriptionKey: a.Description,
		domain.KeyTags:             a.Labels,
	}
	// The icon travels as its digest. Exchange reports the md5 of every
	// asset file, so no icon bytes are fetched for the comparison.
	for _, f := range a.Files {
		if f.Classifier == "icon" {
			attrs[domain.AssetIconKey] = f.MD5
			break
		}
	}
	return attrs
}

type Reader struct {
	client  *rest.Client
	session anypoint.Session
}

// Find fetches the asset detail by its coordinates. Exchange answers
// 404 for unknown coordinates, which is plain absence here.
func (r *Reader) Find(ctx context.Context, key domain.LookupKey) (domain.AttributeSet, bool, error) {
	groupID, assetID, version, err := splitCoordinates(key.ID)
	if err != nil {
		return nil, false, err
	}

	var asset assetRecord
	path := fmt.Sprintf("/exchange/api/v2/assets/%s/%s/%s", groupID, assetID, version)
	if err := r.client.Get(ctx, path, nil, &asset); err != nil {
		if rest.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return assetAttributes(asset), true, nil
}

func (r *Reader) FindChild(ctx context.Context, parent domain.LookupKey, match ports.ChildMatcher) (domain.AttributeSet, bool, error) {
	return nil, false, errors.New(errors.CodeInternal,
		"Exchange assets are addressed by coordinates, not by parent walk")
}
