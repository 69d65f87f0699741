package designproject

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
	specs   *specStore
	reader  *Reader
	logger  ports.Logger
}

// Create makes an empty project of the declared type and uploads the
// project directory when one is declared. Content comes in at creation
// and publication; it is not observable afterwards, so it never drives
// an update.
func (m *Mutator) Create(ctx context.Context, payload domain.AttributeSet) (domain.AttributeSet, error) {
	name, _ := payload.GetString(domain.KeyName)
	sp, ok := m.specs.get(name)
	if !ok {
		return nil, errors.Newf(errors.CodeInternal, "no decoded spec for project '%s'", name)
	}

	args := []string{"designcenter", "project", "create", "--type", sp.Type}
	if sp.Type == "raml-fragment" {
		args = append(args, "--fragment-type", sp.FragmentType)
	}
	args = append(args, name)
	if _, err := m.run.Run(ctx, args...); err != nil {
		return nil, err
	}
	m.logger.Infof(ctx, "Created Design Center project '%s'", name)

	if sp.ProjectDir != "" {
		if err := m.upload(ctx, name, sp.ProjectDir); err != nil {
			return nil, err
		}
	}
	return m.refetch(ctx, name)
}

// Update patches the published asset's Exchange metadata field by
// field, the same endpoints the exchange-asset kind uses. It is only
// reached while the asset exists: drift on an unpublished project is
// pinned by the present state.
func (m *Mutator) Update(ctx context.Context, id string, payload domain.AttributeSet) (domain.AttributeSet, error) {
	sp, ok := m.specs.get(id)
	if !ok {
		return nil, errors.Newf(errors.CodeInternal, "no decoded spec for project '%s'", id)
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
		path := fmt.Sprintf("/exchange/api/v2/assets/%s/%s", sp.GroupID, sp.AssetID)
		if err := m.client.Patch(ctx, path, patch, nil); err != nil {
			return nil, err
		}
	}

	if payload.Has(domain.KeyTags) {
		if err := m.putTags(ctx, sp, payload[domain.KeyTags]); err != nil {
			return nil, err
		}
	}

	if payload.Has(domain.AssetIconKey) {
		if err := m.putIcon(ctx, sp, payload); err != nil {
			return nil, err
		}
	}

	m.logger.Infof(ctx, "Updated Exchange metadata of project '%s'", id)
	return m.refetch(ctx, id)
}

// Transition publishes the project to Exchange or deletes the asset
// back out of it. Publication re-uploads the project directory first
// when one is declared, so the published content is current.
func (m *Mutator) Transition(ctx context.Context, id string, target domain.LifecycleState) (domain.AttributeSet, error) {
	switch target {
	case domain.StatePublished:
		if err := m.publish(ctx, id); err != nil {
			return nil, err
		}
	case domain.StateUnpublished:
		if err := m.unpublish(ctx, id); err != nil {
			return nil, err
		}
	default:
		return nil, errors.Newf(errors.CodeUnsupportedTransition,
			"Design Center projects cannot transition to '%s'", target)
	}
	return m.refetch(ctx, id)
}

// Delete removes the Design Center project only. A published asset the
// project left behind stays in Exchange; unpublishing is its own state.
func (m *Mutator) Delete(ctx context.Context, id string) error {
	_, found, err := m.reader.findProject(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		m.logger.Debugf(ctx, "Design Center project '%s' already gone, asset left in place", id)
		return nil
	}
	if _, err := m.run.Run(ctx, "designcenter", "project", "delete", id); err != nil {
		return err
	}
	m.logger.Infof(ctx, "Deleted Design Center project '%s'", id)
	return nil
}

func (m *Mutator) publish(ctx context.Context, name string) error {
	sp, ok := m.specs.get(name)
	if !ok {
		return errors.Newf(errors.CodeInternal, "no decoded spec for project '%s'", name)
	}
	if sp.Main == "" {
		return errors.NewUserFacing(errors.CodeSpecValidation,
			fmt.Sprintf("project '%s': publishing needs the 'main' file", name),
			"Declare main with the entry file of the project, e.g. api.raml.")
	}

	if sp.ProjectDir != "" {
		if err := m.upload(ctx, name, sp.ProjectDir); err != nil {
			return err
		}
	}

	args := []string{
		"designcenter", "project", "publish",
		"--main", sp.Main,
		"--apiVersion", sp.APIVersion,
		"--groupId", sp.GroupID,
		"--assetId", sp.AssetID,
		"--version", sp.Version,
	}
	if len(sp.Tags) > 0 {
		args = append(args, "--tags", strings.Join(sp.Tags, ","))
	}
	args = append(args, name)
	if _, err := m.run.Run(ctx, args...); err != nil {
		return err
	}
	m.logger.Infof(ctx, "Published project '%s' to Exchange as %s/%s/%s",
		name, sp.GroupID, sp.AssetID, sp.Version)

	// Tags travel with the publish command; description and icon do not.
	if sp.Description != "" {
		path := fmt.Sprintf("/exchange/api/v2/assets/%s/%s", sp.GroupID, sp.AssetID)
		if err := m.client.Patch(ctx, path, map[string]any{"description": sp.Description}, nil); err != nil {
			return err
		}
	}
	if sp.Icon != "" {
		return m.uploadIcon(ctx, sp, sp.Icon)
	}
	return nil
}

func (m *Mutator) unpublish(ctx context.Context, name string) error {
	sp, ok := m.specs.get(name)
	if !ok {
		return errors.Newf(errors.CodeInternal, "no decoded spec for project '%s'", name)
	}
	path := fmt.Sprintf("/exchange/api/v1/organizations/%s/assets/%s/%s/%s",
		m.session.OrganizationID, sp.GroupID, sp.AssetID, sp.Version)
	if err := m.client.Delete(ctx, path); err != nil {
		return err
	}
	m.logger.Infof(ctx, "Unpublished asset %s/%s/%s of project '%s'",
		sp.GroupID, sp.AssetID, sp.Version, name)
	return nil
}

func (m *Mutator) upload(ctx context.Context, name, dir string) error {
	if _, err := m.run.Run(ctx, "designcenter", "project", "upload", name, dir); err != nil {
		return err
	}
	m.logger.Infof(ctx, "Uploaded '%s' into Design Center project '%s'", dir, name)
	return nil
}

func (m *Mutator) putTags(ctx context.Context, sp Spec, tags any) error {
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
		m.session.OrganizationID, sp.GroupID, sp.AssetID, sp.Version)
	return m.client.Put(ctx, path, entries, nil)
}

func (m *Mutator) putIcon(ctx context.Context, sp Spec, payload domain.AttributeSet) error {
	if payload.IsNull(domain.AssetIconKey) {
		path := fmt.Sprintf("/exchange/api/v2/assets/%s/%s/icon", sp.GroupID, sp.AssetID)
		return m.client.Delete(ctx, path)
	}
	iconPath, ok := payload.GetString(domain.AssetIconPathKey)
	if !ok {
		return errors.New(errors.CodeInternal, "icon declared without its source path")
	}
	return m.uploadIcon(ctx, sp, iconPath)
}

func (m *Mutator) uploadIcon(ctx context.Context, sp Spec, iconPath string) error {
	var contentType string
	switch strings.ToLower(filepath.Ext(iconPath)) {
	case ".png", ".jpg", ".jpeg":
		contentType = "image/png"
	case ".svg":
		contentType = "image/svg+xml"
	default:
		return errors.NewUserFacing(errors.CodeSpecValidation,
			fmt.Sprintf("unsupported icon extension on '%s'", iconPath),
			"Use a png, jpg, jpeg or svg file.")
	}
	data, err := os.ReadFile(iconPath)
	if err != nil {
		return errors.Wrapf(err, errors.CodeSpecValidation, "reading icon file '%s'", iconPath)
	}
	path := fmt.Sprintf("/exchange/api/v2/assets/%s/%s/icon", sp.GroupID, sp.AssetID)
	return m.client.Upload(ctx, path, contentType, data)
}

func (m *Mutator) refetch(ctx context.Context, name string) (domain.AttributeSet, error) {
	attrs, found, err := m.reader.Find(ctx, domain.LookupKey{Name: name})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Newf(errors.CodeTransport,
			"project '%s' disappeared between mutation and re-read", name)
	}
	return attrs, nil
}
