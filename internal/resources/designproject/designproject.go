// Package designproject reconciles Design Center projects and their
// published Exchange asset as one resource. The project side goes
// through anypoint-cli designcenter commands; the Exchange side through
// the Exchange REST API.
//
// The lifecycle states overlap rather than exclude each other: a
// published project is also present, and "unpublished" asks only for
// the Exchange asset to be gone while the project stays. Publishing an
// absent project creates it first. Deleting removes the project only;
// an already-published asset is left alone.
package designproject

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"sync"

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
	Type         string   `mapstructure:"type" validate:"omitempty,oneof=raml raml-fragment"`
	FragmentType string   `mapstructure:"fragment_type" validate:"omitempty,oneof=trait resource-type library type user-documentation example"`
	ProjectDir   string   `mapstructure:"project_dir"`
	Main         string   `mapstructure:"main"`
	APIVersion   string   `mapstructure:"api_version"`
	GroupID      string   `mapstructure:"group_id"`
	AssetID      string   `mapstructure:"asset_id"`
	Version      string   `mapstructure:"version"`
	Description  string   `mapstructure:"description"`
	Tags         []string `mapstructure:"tags"`
	Icon         string   `mapstructure:"icon"`
}

var diffPolicy = domain.DiffPolicy{
	Rules: map[string]domain.ComparisonRule{
		domain.KeyName:             domain.RuleExact,
		domain.AssetDescriptionKey: domain.RuleExact,
		domain.KeyTags:             domain.RuleSet,
		domain.AssetIconKey:        domain.RulePresence,
	},
}

type record struct {
	attrs domain.AttributeSet
}

func (r record) Kind() domain.ResourceKind { return domain.KindDesignProject }

func (r record) LookupKey() domain.LookupKey {
	name, _ := r.attrs.GetString(domain.KeyName)
	return domain.LookupKey{Name: name}
}

func (r record) ToAttributeSet() domain.AttributeSet { return r.attrs.Clone() }

func (r record) DiffPolicy() domain.DiffPolicy { return diffPolicy }

// specStore keeps the decoded spec of every project by name. Transitions
// carry only an identifier, but publishing needs the declared main file,
// coordinates and tags; the mutator looks them up here. Specs are stored
// serially during manifest validation and read concurrently afterwards.
type specStore struct {
	mu    sync.RWMutex
	specs map[string]Spec
}

func newSpecStore() *specStore {
	return &specStore{specs: map[string]Spec{}}
}

func (s *specStore) put(name string, sp Spec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.specs[name] = sp
}

func (s *specStore) get(name string) (Spec, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sp, ok := s.specs[name]
	return sp, ok
}

type Plugin struct {
	session anypoint.Session
	specs   *specStore
	reader  *Reader
	mutator *Mutator
}

var _ ports.ResourcePlugin = (*Plugin)(nil)

func New(run runner, client *rest.Client, session anypoint.Session, logger ports.Logger) *Plugin {
	specs := newSpecStore()
	reader := &Reader{run: run, client: client, specs: specs}
	return &Plugin{
		session: session,
		specs:   specs,
		reader:  reader,
		mutator: &Mutator{run: run, client: client, session: session, specs: specs, reader: reader, logger: logger},
	}
}

func (p *Plugin) Kind() domain.ResourceKind { return domain.KindDesignProject }

func (p *Plugin) States() []domain.LifecycleState {
	return []domain.LifecycleState{
		domain.StatePresent, domain.StatePublished, domain.StateUnpublished, domain.StateAbsent,
	}
}

// Behavior: published implies present, so a published project satisfies
// a plain present target. Unpublished only asks for the asset to be
// gone, which a bare project, or nothing at all, already satisfies.
// While the project sits unpublished its Exchange metadata does not
// exist, so present pins content and drift on the metadata fields is
// not acted on.
func (p *Plugin) Behavior() domain.Behavior {
	return domain.Behavior{
		SatisfiedBy: map[domain.LifecycleState][]domain.LifecycleState{
			domain.StatePresent:     {domain.StatePublished},
			domain.StateUnpublished: {domain.StatePresent},
		},
		SatisfiedByAbsence: map[domain.LifecycleState]bool{
			domain.StateUnpublished: true,
		},
		Frozen: map[domain.LifecycleState]bool{
			domain.StatePresent: true,
		},
	}
}

func (p *Plugin) DecodeSpec(name string, raw map[string]any) (domain.Reconcilable, error) {
	var s Spec
	if err := spec.Decode(domain.KindDesignProject, name, raw, &s); err != nil {
		return nil, err
	}
	if s.Type == "" {
		s.Type = "raml"
	}
	if s.FragmentType == "" {
		s.FragmentType = "trait"
	}
	if s.APIVersion == "" {
		s.APIVersion = "1.0"
	}
	if s.Version == "" {
		s.Version = "1.0.0"
	}
	if s.GroupID == "" {
		s.GroupID = p.session.OrganizationID
	}
	if s.AssetID == "" {
		s.AssetID = name
	}
	p.specs.put(name, s)

	attrs := spec.Attributes(raw, map[string]any{
		domain.ProjectTypeKey: s.Type,
	})
	attrs[domain.KeyName] = name

	// The icon spec field is a path; the compared attribute is the
	// file's digest, with the path kept aside for the uploader.
	if s.Icon != "" {
		digest, err := fileDigest(s.Icon)
		if err != nil {
			return nil, errors.NewUserFacing(errors.CodeSpecValidation,
				fmt.Sprintf("project '%s': cannot read icon file '%s': %v", name, s.Icon, err),
				"Point icon at a readable image file.")
		}
		attrs[domain.AssetIconKey] = digest
		attrs[domain.AssetIconPathKey] = s.Icon
	}
	return record{attrs: attrs}, nil
}

func (p *Plugin) ObservedState(attrs domain.AttributeSet) domain.LifecycleState {
	if status, _ := attrs.GetString(domain.KeyStatus); status == "PUBLISHED" {
		return domain.StatePublished
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
