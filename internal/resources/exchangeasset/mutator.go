package exchangeasset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/olusolaa/anypoint-reconciler/internal/adapters/transport/rest"
	"github.com/olusolaa/anypoint-reconciler/internal/anypoint"
	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
	"github.com/olusolaa/anypoint-reconciler/internal/core/ports"
	"github.com/olusolaa/anypoint-reconciler/internal/errors"
)

type Mutator struct {
	run     runner
	client  *rest.Client
	session anypoint.Session
	reader  *Reader
	logger  ports.Logger
}

// Create uploads the asset through anypoint-cli with its classifier,
// main file and content archive when the manifest declares them.
// Metadata drift (description, tags, icon) is settled by the follow-up
// update, not here.
func (m *Mutator) Create(ctx context.Context, payload domain.AttributeSet) (domain.AttributeSet, error) {
	groupID, _ := payload.GetString(domain.AssetGroupIDKey)
	assetID, _ := payload.GetString(domain.AssetIDKey)
	version, _ := payload.GetString(domain.AssetVersionKey)
	name, _ := payload.GetString(domain.KeyName)
	classifier, _ := payload.GetString(domain.AssetTypeKey)
	id := assetCoordinates(groupID, assetID, version)

	args := []string{"exchange", "asset", "upload", "--name", name}
	if mainFile, ok := payload.GetString(domain.AssetMainFileKey); ok && mainFile != "" {
		args = append(args, "--mainFile", mainFile)
	}
	args = append(args, "--classifier", classifier, id)
	if filePath, ok := payload.GetString(domain.AssetFilePathKey); ok && filePath != "" {
		args = append(args, filePath)
	}

	if _, err := m.run.Run(ctx, args...); err != nil {
		return nil, err
	}
	m.logger.Infof(ctx, "Uploaded Exchange asset %s", id)
	return m.refetch(ctx, id)
}

// Update patches the asset's mutable metadata field by field. Tags go
// through the v1 tag endpoint; name and description through the v2
// PATCH; the icon is uploaded or deleted as raw bytes.
func (m *Mutator) Update(ctx context.Context, id string, payload domain.AttributeSet) (domain.AttributeSet, error) {
	groupID, assetID, version, err := splitCoordinates(id)
	if err != nil {
		return nil, err
	}

	patch := map[string]any{}
	if name, ok := payload.GetString(domain.KeyName); ok {
		patch["name"] = name
	}
	if payload.Has(domain.AssetDescriptionKey) {
		description, _ := payload.GetString(domain.AssetDescriptionKey)
		patch["description"] = description
	}
	if len(patch) > 0 {
		path := fmt.Sprintf("/exchange/api/v2/assets/%s/%s", groupID, assetID)
		if err := m.client.Patch(ctx, path, patch, nil); err != nil {
			return nil, err
		}
	}

	if payload.Has(domain.KeyTags) {
		if err := m.putTags(ctx, groupID, assetID, version, payload[domain.KeyTags]); err != nil {
			return nil, err
		}
	}

	if payload.Has(domain.AssetIconKey) {
		if err := m.putIcon(ctx, groupID, assetID, payload); err != nil {
			return nil, err
		}
	}

	m.logger.Infof(ctx, "Updated Exchange asset %s", id)
	return m.refetch(ctx, id)
}

// Transition flips the asset's deprecation status. Exchange exposes it
// as the status field of the asset itself.
func (m *Mutator) Transition(ctx context.Context, id string, target domain.LifecycleState) (domain.AttributeSet, error) {
	groupID, assetID, version, err := splitCoordinates(id)
	if err != nil {
		return nil, err
	}

	var status string
	switch target {
	case domain.StateDeprecated:
		status = "deprecated"
	case domain.StatePresent:
		status = "published"
	default:
		return nil, errors.Newf(errors.CodeUnsupportedTransition,
			"Exchange assets cannot transition to '%s'", target)
	}

	path := fmt.Sprintf("/exchange/api/v2/assets/%s/%s/%s", groupID, assetID, version)
	if err := m.client.Patch(ctx, path, map[string]any{"status": status}, nil); err != nil {
		return nil, err
	}
	m.logger.Infof(ctx, "Exchange asset %s status set to %s", id, status)
	return m.refetch(ctx, id)
}

func (m *Mutator) Delete(ctx context.Context, id string) error {
	groupID, assetID, version, err := splitCoordinates(id)
	if err != nil {
		return err
	}
	path := fmt.Sprintf("/exchange/api/v1/organizations/%s/assets/%s/%s/%s",
		m.session.OrganizationID, groupID, assetID, version)
	if err := m.client.Delete(ctx, path); err != nil {
		return err
	}
	m.logger.Infof(ctx, "Deleted Exchange asset %s", id)
	return nil
}

func (m *Mutator) putTags(ctx context.Context, groupID, assetID, version string, tags any) error {
	type tagEntry struct {
		Value string `json:"value"`
	}
	entries := []tagEntry{}
	if list, ok := tags.([]any); ok {
		for _, t := range list {
			entries = append(entries, tagEntry{Value: fmt.Sprintf("%v", t)})
		}
	} else if list, ok := tags.([]string); ok {
		for _, t := range list {
			entries = append(entries, tagEntry{Value: t})
		}
	}
	path := fmt.Sprintf("/exchange/api/v1/organizations/%s/assets/%s/%s/%s/tags",
		m.session.OrganizationID, groupID, assetID, version)
	return m.client.Put(ctx, path, entries, nil)
}

func (m *Mutator) putIcon(ctx context.Context, groupID, assetID string, payload domain.AttributeSet) error {
	path := fmt.Sprintf("/exchange/api/v2/assets/%s/%s/icon", groupID, assetID)

	if payload.IsNull(domain.AssetIconKey) {
		return m.client.Delete(ctx, path)
	}

	iconPath, ok := payload.GetString(domain.AssetIconPathKey)
	if !ok {
		return errors.New(errors.CodeInternal, "icon declared without its source path")
	}
	contentType, err := iconContentType(iconPath)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(iconPath)
	if err != nil {
		return errors.Wrapf(err, errors.CodeSpecValidation, "reading icon file '%s'", iconPath)
	}
	return m.client.Upload(ctx, path, contentType, data)
}

func iconContentType(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png", nil
	case ".jpg", ".jpeg":
		return "image/jpeg", nil
	case ".svg":
		return "image/svg+xml", nil
	default:
		return "", errors.NewUserFacing(errors.CodeSpecValidation,
			fmt.Sprintf("unsupported icon extension on '%s'", path),
			"Use a png, jpg, jpeg or svg file.")
	}
}

func (m *Mutator) refetch(ctx context.Context, id string) (domain.AttributeSet, error) {
	attrs, found, err := m.reader.Find(ctx, domain.LookupKey{ID: id})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Newf(errors.CodeTransport,
			"Exchange asset %s disappeared between mutation and re-read", id)
	}
	return attrs, nil
}
