package mqdestination

import (
	"context"
	"fmt"

	"github.com/olusolaa/anypoint-reconciler/internal/adapters/transport/rest"
	"github.com/olusolaa/anypoint-reconciler/internal/anypoint"
	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
	"github.com/olusolaa/anypoint-reconciler/internal/core/ports"
	"github.com/olusolaa/anypoint-reconciler/internal/errors"
)

type Mutator struct {
	client  *rest.Client
	session anypoint.Session
	reader  *Reader
	logger  ports.Logger
}

// stringSlice widens the manifest loader's []any lists to []string.
func stringSlice(v any) ([]string, bool) {
	switch vv := v.(type) {
	case []string:
		return vv, true
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

func queueBody(payload domain.AttributeSet) map[string]any {
	body := map[string]any{}
	set := func(field, key string) {
		if payload.Has(key) {
			body[field] = payload[key]
		}
	}
	set("defaultTtl", domain.MQDefaultTTLKey)
	set("defaultLockTtl", domain.MQDefaultLockTTLKey)
	set("encrypted", domain.MQEncryptedKey)
	set("fifo", domain.MQFIFOKey)
	set("deadLetterQueueId", domain.MQDeadLetterQueueKey)
	set("maxDeliveries", domain.MQMaxDeliveriesKey)
	return body
}

func (m *Mutator) Create(ctx context.Context, payload domain.AttributeSet) (domain.AttributeSet, error) {
	name, _ := payload.GetString(domain.KeyName)
	region, _ := payload.GetString(domain.KeyRegion)
	destType, _ := payload.GetString(domain.MQTypeKey)

	base := m.reader.regionPath(region)
	switch destType {
	case typeQueue:
		path := fmt.Sprintf("%s/queues/%s", base, name)
		if err := m.client.Put(ctx, path, queueBody(payload), nil); err != nil {
			return nil, err
		}
	case typeExchange:
		path := fmt.Sprintf("%s/exchanges/%s", base, name)
		body := map[string]any{}
		if payload.Has(domain.MQEncryptedKey) {
			body["encrypted"] = payload[domain.MQEncryptedKey]
		}
		if err := m.client.Put(ctx, path, body, nil); err != nil {
			return nil, err
		}
		if queues, ok := stringSlice(payload[domain.MQBoundQueuesKey]); ok {
			for _, q := range queues {
				if err := m.bind(ctx, region, name, q); err != nil {
					return nil, err
				}
			}
		}
	default:
		return nil, errors.Newf(errors.CodeInternal, "MQ destination create with unknown type %q", destType)
	}
	m.logger.Infof(ctx, "Created MQ %s '%s' in %s", destType, name, region)

	return m.refetch(ctx, compositeID(region, destType, name))
}

func (m *Mutator) Update(ctx context.Context, id string, payload domain.AttributeSet) (domain.AttributeSet, error) {
	region, destType, name, err := splitCompositeID(id)
	if err != nil {
		return nil, err
	}

	base := m.reader.regionPath(region)
	switch destType {
	case typeQueue:
		path := fmt.Sprintf("%s/queues/%s", base, name)
		if err := m.client.Patch(ctx, path, queueBody(payload), nil); err != nil {
			return nil, err
		}
	case typeExchange:
		if payload.Has(domain.MQEncryptedKey) {
			path := fmt.Sprintf("%s/exchanges/%s", base, name)
			body := map[string]any{"encrypted": payload[domain.MQEncryptedKey]}
			if err := m.client.Patch(ctx, path, body, nil); err != nil {
				return nil, err
			}
		}
		if declared, ok := stringSlice(payload[domain.MQBoundQueuesKey]); ok {
			if err := m.reconcileBindings(ctx, region, name, declared); err != nil {
				return nil, err
			}
		}
	default:
		return nil, errors.Newf(errors.CodeInternal, "MQ destination update with unknown type %q", destType)
	}

	return m.refetch(ctx, id)
}

func (m *Mutator) Transition(ctx context.Context, id string, target domain.LifecycleState) (domain.AttributeSet, error) {
	return nil, errors.Newf(errors.CodeUnsupportedTransition,
		"MQ destinations have no '%s' lifecycle transition", target)
}

func (m *Mutator) Delete(ctx context.Context, id string) error {
	region, destType, name, err := splitCompositeID(id)
	if err != nil {
		return err
	}

	kind := "queues"
	if destType == typeExchange {
		kind = "exchanges"
	}
	path := fmt.Sprintf("%s/%s/%s", m.reader.regionPath(region), kind, name)
	if err := m.client.Delete(ctx, path); err != nil {
		return err
	}
	m.logger.Infof(ctx, "Deleted MQ %s '%s' in %s", destType, name, region)
	return nil
}

// reconcileBindings converges the exchange's queue bindings onto the
// declared set, binding missing queues and unbinding extra ones.
func (m *Mutator) reconcileBindings(ctx context.Context, region, exchange string, declared []string) error {
	var current []bindingEntry
	path := fmt.Sprintf("%s/exchanges/%s/queues", m.reader.regionPath(region), exchange)
	if err := m.client.Get(ctx, path, nil, &current); err != nil {
		return err
	}

	have := make(map[string]bool, len(current))
	for _, b := range current {
		have[b.QueueID] = true
	}
	want := make(map[string]bool, len(declared))
	for _, q := range declared {
		want[q] = true
	}

	for _, q := range declared {
		if !have[q] {
			if err := m.bind(ctx, region, exchange, q); err != nil {
				return err
			}
		}
	}
	for _, b := range current {
		if !want[b.QueueID] {
			if err := m.unbind(ctx, region, exchange, b.QueueID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Mutator) bind(ctx context.Context, region, exchange, queue string) error {
	path := fmt.Sprintf("%s/bindings/exchanges/%s/queues/%s", m.reader.regionPath(region), exchange, queue)
	return m.client.Put(ctx, path, nil, nil)
}

func (m *Mutator) unbind(ctx context.Context, region, exchange, queue string) error {
	path := fmt.Sprintf("%s/bindings/exchanges/%s/queues/%s", m.reader.regionPath(region), exchange, queue)
	return m.client.Delete(ctx, path)
}

func (m *Mutator) refetch(ctx context.Context, id string) (domain.AttributeSet, error) {
	attrs, found, err := m.reader.Find(ctx, domain.LookupKey{ID: id})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Newf(errors.CodeTransport,
			"MQ destination %s disappeared between mutation and re-read", id)
	}
	return attrs, nil
}
