package mqdestination

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/anypoint-reconciler/internal/adapters/transport/rest"
	"github.com/olusolaa/anypoint-reconciler/internal/anypoint"
	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
	"github.com/olusolaa/anypoint-reconciler/internal/core/ports"
	"github.com/olusolaa/anypoint-reconciler/internal/errors"
	"github.com/olusolaa/anypoint-reconciler/internal/log"
)

const regionBase = "/mq/admin/api/v1/organizations/org-1/environments/env-1/regions/us-east-1/destinations"

func testLogger(t *testing.T) ports.Logger {
	t.Helper()
	logger, err := log.NewLoggerWithWriter(log.Config{Level: log.LevelError, Format: log.FormatText}, io.Discard)
	require.NoError(t, err)
	return logger
}

func newPlugin(t *testing.T, handler http.Handler) *Plugin {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := rest.NewClient(server.URL, "tok", testLogger(t))
	session := anypoint.Session{OrganizationID: "org-1", EnvironmentID: "env-1"}
	return New(client, session, testLogger(t))
}

func TestDecodeSpecAppliesQueueDefaults(t *testing.T) {
	p := newPlugin(t, http.NotFoundHandler())

	rec, err := p.DecodeSpec("orders-q", map[string]any{"encrypted": true})
	require.NoError(t, err)

	attrs := rec.ToAttributeSet()
	assert.Equal(t, typeQueue, attrs[domain.MQTypeKey])
	assert.Equal(t, defaultRegion, attrs[domain.KeyRegion])
	assert.Equal(t, defaultTTL, attrs[domain.MQDefaultTTLKey])
	assert.Equal(t, defaultLockTTL, attrs[domain.MQDefaultLockTTLKey])
	assert.False(t, attrs.Has(domain.MQMaxDeliveriesKey))

	rec, err = p.DecodeSpec("orders-q", map[string]any{"dead_letter_queue": "orders-dlq"})
	require.NoError(t, err)
	assert.Equal(t, defaultMaxDel, rec.ToAttributeSet()[domain.MQMaxDeliveriesKey])
}

func TestDecodeSpecRejectsBoundQueuesOnQueues(t *testing.T) {
	p := newPlugin(t, http.NotFoundHandler())

	_, err := p.DecodeSpec("orders-q", map[string]any{"bound_queues": []any{"a"}})
	require.Error(t, err)
	assert.Equal(t, errors.CodeSpecValidation, errors.GetCode(err))
}

func TestDecodeSpecNeedsEnvironment(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(server.Close)
	client := rest.NewClient(server.URL, "tok", testLogger(t))
	p := New(client, anypoint.Session{OrganizationID: "org-1"}, testLogger(t))

	_, err := p.DecodeSpec("orders-q", map[string]any{})
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigValidation, errors.GetCode(err))
}

func TestReaderFindQueue(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(regionBase+"/queues/orders-q", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"queueId": "orders-q",
			"defaultTtl": 604800000,
			"defaultLockTtl": 120000,
			"encrypted": true,
			"fifo": false,
			"deadLetterQueueId": "orders-dlq",
			"maxDeliveries": 10
		}`))
	})
	p := newPlugin(t, mux)

	attrs, found, err := p.Reader().Find(context.Background(), domain.LookupKey{
		Name: "orders-q",
		Qualifiers: map[string]string{
			domain.KeyRegion: "us-east-1",
			domain.MQTypeKey: typeQueue,
		},
	})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "us-east-1/queue/orders-q", attrs[domain.KeyID])
	assert.Equal(t, true, attrs[domain.MQEncryptedKey])
	assert.Equal(t, "orders-dlq", attrs[domain.MQDeadLetterQueueKey])
	assert.Equal(t, 10, attrs[domain.MQMaxDeliveriesKey])
}

func TestReaderQueueAbsentOn404(t *testing.T) {
	p := newPlugin(t, http.NotFoundHandler())

	_, found, err := p.Reader().Find(context.Background(), domain.LookupKey{
		Name: "ghost-q",
		Qualifiers: map[string]string{
			domain.KeyRegion: "us-east-1",
			domain.MQTypeKey: typeQueue,
		},
	})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestReaderFindExchangeCollectsBindings(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(regionBase+"/exchanges/events-x", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"exchangeId": "events-x", "encrypted": false}`))
	})
	mux.HandleFunc(regionBase+"/exchanges/events-x/queues", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"queueId": "audit-q"}, {"queueId": "orders-q"}]`))
	})
	p := newPlugin(t, mux)

	attrs, found, err := p.Reader().Find(context.Background(), domain.LookupKey{
		Name: "events-x",
		Qualifiers: map[string]string{
			domain.KeyRegion: "us-east-1",
			domain.MQTypeKey: typeExchange,
		},
	})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"audit-q", "orders-q"}, attrs[domain.MQBoundQueuesKey])
}

func TestMutatorCreateQueue(t *testing.T) {
	var gotBody string
	mux := http.NewServeMux()
	mux.HandleFunc(regionBase+"/queues/orders-q", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			data, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			gotBody = string(data)
			w.WriteHeader(http.StatusNoContent)
		case http.MethodGet:
			_, _ = w.Write([]byte(`{"queueId": "orders-q", "defaultTtl": 604800000, "defaultLockTtl": 120000, "encrypted": true}`))
		}
	})
	p := newPlugin(t, mux)

	attrs, err := p.Mutator().Create(context.Background(), domain.AttributeSet{
		domain.KeyName:             "orders-q",
		domain.KeyRegion:           "us-east-1",
		domain.MQTypeKey:           typeQueue,
		domain.MQEncryptedKey:      true,
		domain.MQDefaultTTLKey:     604800000,
		domain.MQDefaultLockTTLKey: 120000,
	})
	require.NoError(t, err)
	assert.Equal(t, "us-east-1/queue/orders-q", attrs[domain.KeyID])
	assert.JSONEq(t, `{"defaultTtl": 604800000, "defaultLockTtl": 120000, "encrypted": true}`, gotBody)
}

func TestMutatorUpdateReconcilesBindings(t *testing.T) {
	var boundCalls, unboundCalls []string
	mux := http.NewServeMux()
	mux.HandleFunc(regionBase+"/exchanges/events-x", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"exchangeId": "events-x", "encrypted": false}`))
	})
	mux.HandleFunc(regionBase+"/exchanges/events-x/queues", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"queueId": "audit-q"}, {"queueId": "legacy-q"}]`))
	})
	mux.HandleFunc(regionBase+"/bindings/exchanges/events-x/queues/orders-q", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		boundCalls = append(boundCalls, "orders-q")
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc(regionBase+"/bindings/exchanges/events-x/queues/legacy-q", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		unboundCalls = append(unboundCalls, "legacy-q")
		w.WriteHeader(http.StatusNoContent)
	})
	p := newPlugin(t, mux)

	_, err := p.Mutator().Update(context.Background(), "us-east-1/exchange/events-x", domain.AttributeSet{
		domain.KeyName:          "events-x",
		domain.KeyRegion:        "us-east-1",
		domain.MQTypeKey:        typeExchange,
		domain.MQBoundQueuesKey: []any{"audit-q", "orders-q"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"orders-q"}, boundCalls)
	assert.Equal(t, []string{"legacy-q"}, unboundCalls)
}

func TestMutatorDeleteParsesCompositeID(t *testing.T) {
	deleted := false
	mux := http.NewServeMux()
	mux.HandleFunc(regionBase+"/exchanges/events-x", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		deleted = true
		w.WriteHeader(http.StatusNoContent)
	})
	p := newPlugin(t, mux)

	require.NoError(t, p.Mutator().Delete(context.Background(), "us-east-1/exchange/events-x"))
	assert.True(t, deleted)

	err := p.Mutator().Delete(context.Background(), "events-x")
	require.Error(t, err)
	assert.Equal(t, errors.CodeInternal, errors.GetCode(err))
}
