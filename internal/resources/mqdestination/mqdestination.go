// Package mqdestination reconciles Anypoint MQ queues and exchanges.
// MQ destinations are addressed by region, type and name together, so
// observed identifiers are composite "<region>/<type>/<name>" strings.
package mqdestination

import (
	"strings"

	"github.com/olusolaa/anypoint-reconciler/internal/adapters/transport/rest"
	"github.com/olusolaa/anypoint-reconciler/internal/anypoint"
	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
	"github.com/olusolaa/anypoint-reconciler/internal/core/ports"
	"github.com/olusolaa/anypoint-reconciler/internal/errors"
	"github.com/olusolaa/anypoint-reconciler/internal/resources/spec"
)

const (
	typeQueue    = "queue"
	typeExchange = "exchange"

	defaultRegion  = "us-east-1"
	defaultTTL     = 604800000
	defaultLockTTL = 120000
	defaultMaxDel  = 10
)

type Spec struct {
	Type            string   `mapstructure:"type" validate:"omitempty,oneof=queue exchange"`
	Region          string   `mapstructure:"region"`
	Encrypted       bool     `mapstructure:"encrypted"`
	FIFO            bool     `mapstructure:"fifo"`
	DefaultTTL      int      `mapstructure:"default_ttl" validate:"omitempty,gte=0"`
	DefaultLockTTL  int      `mapstructure:"default_lock_ttl" validate:"omitempty,gte=0"`
	DeadLetterQueue string   `mapstructure:"dead_letter_queue"`
	MaxDeliveries   int      `mapstructure:"max_deliveries" validate:"omitempty,gte=1"`
	BoundQueues     []string `mapstructure:"bound_queues"`
}

// FIFO, type and region are fixed at creation; MQ destinations hold no
// configuration worth preserving, so a conflict on them recreates the
// destination.
var diffPolicy = domain.DiffPolicy{
	Rules: map[string]domain.ComparisonRule{
		domain.KeyName:              domain.RuleExact,
		domain.KeyRegion:            domain.RuleExact,
		domain.MQTypeKey:            domain.RuleExact,
		domain.MQEncryptedKey:       domain.RuleExact,
		domain.MQFIFOKey:            domain.RuleExact,
		domain.MQDefaultTTLKey:      domain.RuleExact,
		domain.MQDefaultLockTTLKey:  domain.RuleExact,
		domain.MQDeadLetterQueueKey: domain.RuleExact,
		domain.MQMaxDeliveriesKey:   domain.RuleExact,
		domain.MQBoundQueuesKey:     domain.RuleSet,
	},
	Immutable: []string{domain.MQTypeKey, domain.KeyRegion, domain.MQFIFOKey},
}

type record struct {
	attrs domain.AttributeSet
}

func (r record) Kind() domain.ResourceKind { return domain.KindMQDestination }

func (r record) LookupKey() domain.LookupKey {
	name, _ := r.attrs.GetString(domain.KeyName)
	region, _ := r.attrs.GetString(domain.KeyRegion)
	destType, _ := r.attrs.GetString(domain.MQTypeKey)
	return domain.LookupKey{
		Name: name,
		Qualifiers: map[string]string{
			domain.KeyRegion: region,
			domain.MQTypeKey: destType,
		},
	}
}

func (r record) ToAttributeSet() domain.AttributeSet { return r.attrs.Clone() }

func (r record) DiffPolicy() domain.DiffPolicy { return diffPolicy }

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

func (p *Plugin) Kind() domain.ResourceKind { return domain.KindMQDestination }

func (p *Plugin) States() []domain.LifecycleState {
	return []domain.LifecycleState{domain.StatePresent, domain.StateAbsent}
}

func (p *Plugin) Behavior() domain.Behavior {
	return domain.Behavior{ReplaceOnImmutableChange: true}
}

func (p *Plugin) DecodeSpec(name string, raw map[string]any) (domain.Reconcilable, error) {
	if _, err := p.session.RequireEnvironment(); err != nil {
		return nil, err
	}

	var s Spec
	if err := spec.Decode(domain.KindMQDestination, name, raw, &s); err != nil {
		return nil, err
	}
	if len(s.BoundQueues) > 0 && s.Type != typeExchange {
		return nil, errors.NewUserFacing(errors.CodeSpecValidation,
			"bound_queues is only valid for destinations of type 'exchange'",
			"Set type: exchange on the destination or remove bound_queues.")
	}

	defaults := map[string]any{
		domain.MQTypeKey: typeQueue,
		domain.KeyRegion: defaultRegion,
	}
	destType, _ := raw[domain.MQTypeKey].(string)
	if destType == "" {
		destType = typeQueue
	}
	if destType == typeQueue {
		defaults[domain.MQDefaultTTLKey] = defaultTTL
		defaults[domain.MQDefaultLockTTLKey] = defaultLockTTL
		if s.DeadLetterQueue != "" {
			defaults[domain.MQMaxDeliveriesKey] = defaultMaxDel
		}
	}

	attrs := spec.Attributes(raw, defaults)
	attrs[domain.KeyName] = name
	return record{attrs: attrs}, nil
}

func (p *Plugin) ObservedState(attrs domain.AttributeSet) domain.LifecycleState {
	return domain.StatePresent
}

func (p *Plugin) Reader() ports.StateReader { return p.reader }

func (p *Plugin) Mutator() ports.Mutator { return p.mutator }

func compositeID(region, destType, name string) string {
	return region + "/" + destType + "/" + name
}

func splitCompositeID(id string) (region, destType, name string, err error) {
	parts := strings.SplitN(id, "/", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", errors.Newf(errors.CodeInternal,
			"malformed MQ destination identifier %q, want <region>/<type>/<name>", id)
	}
	return parts[0], parts[1], parts[2], nil
}
