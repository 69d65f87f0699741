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

type queueResponse struct {
	QueueID           string `json:"queueId"`
	DefaultTTL        int    `json:"defaultTtl"`
	DefaultLockTTL    int    `json:"defaultLockTtl"`
	Encrypted         bool   `json:"encrypted"`
	FIFO              bool   `json:"fifo"`
	DeadLetterQueueID string `json:"deadLetterQueueId"`
	MaxDeliveries     *int   `json:"maxDeliveries"`
}

type exchangeResponse struct {
	ExchangeID string `json:"exchangeId"`
	Encrypted  bool   `json:"encrypted"`
}

type bindingEntry struct {
	QueueID string `json:"queueId"`
}

type Reader struct {
	client  *rest.Client
	session anypoint.Session
}

func (r *Reader) regionPath(region string) string {
	return fmt.Sprintf("/mq/admin/api/v1/organizations/%s/environments/%s/regions/%s/destinations",
		r.session.OrganizationID, r.session.EnvironmentID, region)
}

func (r *Reader) Find(ctx context.Context, key domain.LookupKey) (domain.AttributeSet, bool, error) {
	region := key.Qualifiers[domain.KeyRegion]
	destType := key.Qualifiers[domain.MQTypeKey]
	name := key.Name
	if key.ID != "" {
		var err error
		region, destType, name, err = splitCompositeID(key.ID)
		if err != nil {
			return nil, false, err
		}
	}

	switch destType {
	case typeQueue:
		return r.findQueue(ctx, region, name)
	case typeExchange:
		return r.findExchange(ctx, region, name)
	default:
		return nil, false, errors.Newf(errors.CodeInternal,
			"MQ destination lookup with unknown type %q", destType)
	}
}

func (r *Reader) findQueue(ctx context.Context, region, name string) (domain.AttributeSet, bool, error) {
	var q queueResponse
	path := fmt.Sprintf("%s/queues/%s", r.regionPath(region), name)
	if err := r.client.Get(ctx, path, nil, &q); err != nil {
		if rest.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	attrs := domain.AttributeSet{
		domain.KeyID:               compositeID(region, typeQueue, q.QueueID),
		domain.KeyName:             q.QueueID,
		domain.KeyRegion:           region,
		domain.MQTypeKey:           typeQueue,
		domain.MQEncryptedKey:      q.Encrypted,
		domain.MQFIFOKey:           q.FIFO,
		domain.MQDefaultTTLKey:     q.DefaultTTL,
		domain.MQDefaultLockTTLKey: q.DefaultLockTTL,
	}
	if q.DeadLetterQueueID != "" {
		attrs[domain.MQDeadLetterQueueKey] = q.DeadLetterQueueID
	}
	if q.MaxDeliveries != nil {
		attrs[domain.MQMaxDeliveriesKey] = *q.MaxDeliveries
	}
	return attrs, true, nil
}

func (r *Reader) findExchange(ctx context.Context, region, name string) (domain.AttributeSet, bool, error) {
	var ex exchangeResponse
	base := r.regionPath(region)
	path := fmt.Sprintf("%s/exchanges/%s", base, name)
	if err := r.client.Get(ctx, path, nil, &ex); err != nil {
		if rest.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var bindings []bindingEntry
	if err := r.client.Get(ctx, fmt.Sprintf("%s/exchanges/%s/queues", base, name), nil, &bindings); err != nil {
		return nil, false, err
	}
	bound := make([]string, 0, len(bindings))
	for _, b := range bindings {
		bound = append(bound, b.QueueID)
	}

	return domain.AttributeSet{
		domain.KeyID:            compositeID(region, typeExchange, ex.ExchangeID),
		domain.KeyName:          ex.ExchangeID,
		domain.KeyRegion:        region,
		domain.MQTypeKey:        typeExchange,
		domain.MQEncryptedKey:   ex.Encrypted,
		domain.MQBoundQueuesKey: bound,
	}, true, nil
}

func (r *Reader) FindChild(ctx context.Context, parent domain.LookupKey, match ports.ChildMatcher) (domain.AttributeSet, bool, error) {
	return nil, false, errors.New(errors.CodeInternal,
		"MQ destinations are addressed directly, not by parent walk")
}
