// Package contract reconciles API contracts between a client application
// and a managed API instance. A contract is located by its client
// application id in the instance's contract list; mutations need both
// the instance id and the contract id, so observed identifiers are
// composite "<apiInstanceID>/<contractID>" strings.
//
// The platform only deletes revoked contracts, so a delete from an
// approved contract always revokes first.
package contract

import (
	"strings"

	"github.com/olusolaa/anypoint-reconciler/internal/adapters/transport/rest"
	"github.com/olusolaa/anypoint-reconciler/internal/anypoint"
	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
	"github.com/olusolaa/anypoint-reconciler/internal/core/ports"
	"github.com/olusolaa/anypoint-reconciler/internal/errors"
	"github.com/olusolaa/anypoint-reconciler/internal/resources/spec"
)

type Spec struct {
	APIInstanceID string `mapstructure:"api_instance_id" validate:"required"`
	ApplicationID string `mapstructure:"application_id" validate:"required"`
}

var diffPolicy = domain.DiffPolicy{
	Rules: map[string]domain.ComparisonRule{
		domain.ContractAPIInstanceKey: domain.RuleExact,
		domain.ContractApplicationKey: domain.RuleExact,
	},
}

type record struct {
	name  string
	attrs domain.AttributeSet
}

func (r record) Kind() domain.ResourceKind { return domain.KindContract }

func (r record) LookupKey() domain.LookupKey {
	apiID, _ := r.attrs.GetString(domain.ContractAPIInstanceKey)
	appID, _ := r.attrs.GetString(domain.ContractApplicationKey)
	return domain.LookupKey{
		Name: r.name,
		Qualifiers: map[string]string{
			domain.ContractAPIInstanceKey: apiID,
			domain.ContractApplicationKey: appID,
		},
	}
}

func (r record) ToAttributeSet() domain.AttributeSet { return r.attrs.Clone() }

func (r record) DiffPolicy() domain.DiffPolicy { return diffPolicy }

func compositeID(apiID, contractID string) string {
	return apiID + "/" + contractID
}

func splitCompositeID(id string) (apiID, contractID string, err error) {
	parts := strings.SplitN(id, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.Newf(errors.CodeInternal,
			"malformed contract identifier %q, want <apiInstanceID>/<contractID>", id)
	}
	return parts[0], parts[1], nil
}

type Plugin struct {
	session anypoint.Session
	reader  *Reader
	mutator *Mutator
}

var _ ports.ResourcePlugin = (*Plugin)(nil)

func New(client *rest.Client, session anypoint.Session, logger ports.Logger) *Plugin {
	reader := &Reader{client: client, session: session}
	return &Plugin{
		session: session,
		reader:  reader,
		mutator: &Mutator{client: client, session: session, reader: reader, logger: logger},
	}
}

func (p *Plugin) Kind() domain.ResourceKind { return domain.KindContract }

func (p *Plugin) States() []domain.LifecycleState {
	return []domain.LifecycleState{domain.StatePresent, domain.StateRevoked, domain.StateAbsent}
}

// Behavior: revoking a contract that was never granted has no meaning,
// and the delete endpoint rejects contracts that are still approved.
func (p *Plugin) Behavior() domain.Behavior {
	return domain.Behavior{
		RequiresExisting: map[domain.LifecycleState]bool{
			domain.StateRevoked: true,
		},
		PreDelete: map[domain.LifecycleState]domain.LifecycleState{
			domain.StatePresent: domain.StateRevoked,
		},
	}
}

func (p *Plugin) DecodeSpec(name string, raw map[string]any) (domain.Reconcilable, error) {
	if _, err := p.session.RequireEnvironment(); err != nil {
		return nil, err
	}
	var s Spec
	if err := spec.Decode(domain.KindContract, name, raw, &s); err != nil {
		return nil, err
	}
	return record{name: name, attrs: spec.Attributes(raw, nil)}, nil
}

func (p *Plugin) ObservedState(attrs domain.AttributeSet) domain.LifecycleState {
	if status, _ := attrs.GetString(domain.KeyStatus); status == "REVOKED" {
		return domain.StateRevoked
	}
	return domain.StatePresent
}

func (p *Plugin) Reader() ports.StateReader { return p.reader }

func (p *Plugin) Mutator() ports.Mutator { return p.mutator }
