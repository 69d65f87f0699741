package designproject

import (
	"context"
	"fmt"

	"github.com/olusolaa/anypoint-reconciler/internal/adapters/transport/rest"
	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
	"github.com/olusolaa/anypoint-reconciler/internal/core/ports"
	"github.com/olusolaa/anypoint-reconciler/internal/errors"
)

type projectEntry struct {
	ID   string `json:"ID"`
	Name string `json:"Name"`
}

type assetFile struct {
	Classifier string `json:"classifier"`
	MD5        string `json:"md5"`
}

type assetRecord struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Labels      []string    `json:"labels"`
	Files       []assetFile `json:"files"`
}

type Reader struct {
	run    runner
	client *rest.Client
	specs  *specStore
}

// Find observes both halves of the resource: the Design Center project
// through the CLI list and, when the spec declares coordinates, the
// Exchange asset through the REST API. The resource counts as found
// when either half exists, so an orphaned asset still shows up after
// its project was deleted.
func (r *Reader) Find(ctx context.Context, key domain.LookupKey) (domain.AttributeSet, bool, error) {
	name := key.Name
	if name == "" {
		name = key.ID
	}

	projectID, projectFound, err := r.findProject(ctx, name)
	if err != nil {
		return nil, false, err
	}

	asset, assetFound, err := r.findAsset(ctx, name)
	if err != nil {
		return nil, false, err
	}

	if !projectFound && !assetFound {
		return nil, false, nil
	}

	attrs := domain.AttributeSet{
		domain.KeyID:     name,
		domain.KeyName:   name,
		domain.KeyStatus: "DRAFT",
	}
	if projectFound {
		attrs[domain.ProjectIDKey] = projectID
	}
	if assetFound {
		attrs[domain.KeyStatus] = "PUBLISHED"
		if asset.Name != "" {
			attrs[domain.KeyName] = asset.Name
		}
		attrs[domain.AssetDescriptionKey] = asset.Description
		attrs[domain.KeyTags] = asset.Labels
		// The icon travels as its digest; Exchange reports the md5 of
		// every asset file, so no icon bytes are fetched.
		for _, f := range asset.Files {
			if f.Classifier == "icon" {
				attrs[domain.AssetIconKey] = f.MD5
				break
			}
		}
	}
	return attrs, true, nil
}

func (r *Reader) FindChild(ctx context.Context, parent domain.LookupKey, match ports.ChildMatcher) (domain.AttributeSet, bool, error) {
	return nil, false, errors.New(errors.CodeInternal,
		"Design Center projects are looked up by name, not by parent walk")
}

// findProject matches the project by exact name in the paged CLI list.
func (r *Reader) findProject(ctx context.Context, name string) (string, bool, error) {
	var entries []projectEntry
	_, err := r.run.RunJSON(ctx, &entries,
		"designcenter", "project", "list", "--pageIndex", "0", "--pageSize", "500", name)
	if err != nil {
		return "", false, err
	}
	for _, e := range entries {
		if e.Name == name {
			return e.ID, true, nil
		}
	}
	return "", false, nil
}

// findAsset checks Exchange for the published asset. A project whose
// spec never declared coordinates has nothing to look for.
func (r *Reader) findAsset(ctx context.Context, name string) (assetRecord, bool, error) {
	sp, ok := r.specs.get(name)
	if !ok || sp.GroupID == "" || sp.AssetID == "" || sp.Version == "" {
		return assetRecord{}, false, nil
	}

	var asset assetRecord
	path := fmt.Sprintf("/exchange/api/v2/assets/%s/%s/%s", sp.GroupID, sp.AssetID, sp.Version)
	if err := r.client.Get(ctx, path, nil, &asset); err != nil {
		if rest.IsNotFound(err) {
			return assetRecord{}, false, nil
		}
		return assetRecord{}, false, err
	}
	return asset, true, nil
}
