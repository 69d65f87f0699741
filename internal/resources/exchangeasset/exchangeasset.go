// Package exchangeasset reconciles Exchange assets: the upload itself,
// metadata, tags, the icon and the deprecation lifecycle. Asset
// coordinates are composite "<groupId>/<assetId>/<version>"
// identifiers. Uploads go through anypoint-cli; metadata reads and
// edits use the Exchange REST API directly.
//
// The manifest declares the icon as a local file path. The declared
// attribute carries the file's digest so drift shows up without
// shipping bytes through the diff engine.
package exchangeasset

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/olusolaa/anypoint-reconciler/internal/adapters/transport/cli"
	"github.com/olusolaa/anypoint-reconciler/internal/adapters/transport/rest"
	"github.com/olusolaa/anypoint-reconciler/internal/anypoint"
	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
	"github.com/olusolaa/anypoint-reconciler/internal/core/ports"
	"github.com/olusolaa/anypoint-reconciler/internal/errors"
	"github.com/olusolaa/anypoint-reconciler/internal/resources/spec"
)

type runner interface {
	Run(ctx context.Context, args ...string) (cli.Result, error)
	RunJSON(ctx context.Context, out any, args ...string) (cli.Result, error)
}

type Spec struct {
	GroupID     string   `mapstructure:"group_id"`
	AssetID     string   `mapstructure:"asset_id"`
	Version     string   `mapstructure:"version" validate:"required"`
	Type        string   `mapstructure:"type" validate:"omitempty,oneof=custom oas wsdl"`
	MainFile    string   `mapstructure:"main_file"`
	FilePath    string   `mapstructure:"file_path"`
	Description string   `mapstructure:"description"`
	Tags        []string `mapstructure:"tags"`
	Icon        string   `mapstructure:"icon"`
}

// Classifier, main file and content archive are consumed by the upload
// only, so they carry no comparison rule and never produce drift.
var diffPolicy = domain.DiffPolicy{
	Rules: map[string]domain.ComparisonRule{
		domain.KeyName:             domain.RuleExact,
		domain.AssetGroupIDKey:     domain.RuleExact,
		domain.AssetIDKey:          domain.RuleExact,
		domain.AssetVersionKey:     domain.RuleExact,
		domain.AssetDescriptionKey: domain.RuleExact,
		domain.KeyTags:             domain.RuleSet,
		domain.AssetIconKey:        domain.RulePresence,
	},
	Immutable: []string{domain.AssetGroupIDKey, domain.AssetIDKey, domain.AssetVersionKey},
}

type record struct {
	attrs domain.AttributeSet
}

func (r record) Kind() domain.ResourceKind { return domain.KindExchangeAsset }

func (r record) LookupKey() domain.LookupKey {
	groupID, _ := r.attrs.GetString(domain.AssetGroupIDKey)
	assetID, _ := r.attrs.GetString(domain.AssetIDKey)
	version, _ := r.attrs.GetString(domain.AssetVersionKey)
	return domain.LookupKey{ID: assetCoordinates(groupID, assetID, version)}
}

func (r record) ToAttributeSet() domain.AttributeSet { return r.attrs.Clone() }

func (r record) DiffPolicy() domain.DiffPolicy { return diffPolicy }

func assetCoordinates(groupID, assetID, version string) string {
	return groupID + "/" + assetID + "/" + version
}

func splitCoordinates(id string) (groupID, assetID, version string, err error) {
	parts := strings.SplitN(id, "/", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", errors.Newf(errors.CodeInternal,
			"malformed asset identifier %q, want <groupId>/<assetId>/<version>", id)
	}
	return parts[0], parts[1], parts[2], nil
}

type Plugin struct {
	session anypoint.Session
	reader  *Reader
	mutator *Mutator
}

var _ ports.ResourcePlugin = (*Plugin)(nil)

func New(run runner, client *rest.Client, session anypoint.Session, logger ports.Logger) *Plugin {
	reader := &Reader{client: client, session: session}
	return &Plugin{
		session: session,
		reader:  reader,
		mutator: &Mutator{run: run, client: client, session: session, reader: reader, logger: logger},
	}
}

func (p *Plugin) Kind() domain.ResourceKind { return domain.KindExchangeAsset }

func (p *Plugin) States() []domain.LifecycleState {
	return []domain.LifecycleState{domain.StatePresent, domain.StateDeprecated, domain.StateAbsent}
}

// Behavior: Exchange rejects edits on a deprecated asset, so an update
// undeprecates first; a deprecated target pins content in place. The
// coordinates are the asset's identity, so changing any of them
// replaces the asset. An absent asset is uploaded, then deprecated on
// the follow-up pass when that is the target.
func (p *Plugin) Behavior() domain.Behavior {
	return domain.Behavior{
		PreUpdate: map[domain.LifecycleState]domain.LifecycleState{
			domain.StateDeprecated: domain.StatePresent,
		},
		Frozen: map[domain.LifecycleState]bool{
			domain.StateDeprecated: true,
		},
		ReplaceOnImmutableChange: true,
	}
}

func (p *Plugin) DecodeSpec(name string, raw map[string]any) (domain.Reconcilable, error) {
	var s Spec
	if err := spec.Decode(domain.KindExchangeAsset, name, raw, &s); err != nil {
		return nil, err
	}

	attrs := spec.Attributes(raw, map[string]any{
		domain.AssetGroupIDKey: p.session.OrganizationID,
		domain.AssetIDKey:      name,
		domain.AssetTypeKey:    "custom",
	})
	attrs[domain.KeyName] = name

	// The icon spec field is a path; the compared attribute is the
	// file's digest, with the path kept aside for the uploader.
	if s.Icon != "" {
		digest, err := fileDigest(s.Icon)
		if err != nil {
			return nil, errors.NewUserFacing(errors.CodeSpecValidation,
				fmt.Sprintf("asset '%s': cannot read icon file '%s': %v", name, s.Icon, err),
				"Point icon at a readable image file.")
		}
		attrs[domain.AssetIconKey] = digest
		attrs[domain.AssetIconPathKey] = s.Icon
	}
	return record{attrs: attrs}, nil
}

func (p *Plugin) ObservedState(attrs domain.AttributeSet) domain.LifecycleState {
	if status, _ := attrs.GetString(domain.KeyStatus); status == "deprecated" {
		return domain.StateDeprecated
	}
	return domain.StatePresent
}

func (p *Plugin) Reader() ports.StateReader { return p.reader }

func (p *Plugin) Mutator() ports.Mutator { return p.mutator }

func fileDigest(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:]), nil
}
