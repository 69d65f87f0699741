package organization

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
	session := anypoint.Session{UserID: "u-1", OrganizationID: "org-root", OrganizationName: "Acme"}
	return New(client, session, testLogger(t))
}

func hierarchyServer(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/accounts/api/organizations/org-root", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"id": "org-root", "name": "Acme", "ownerId": "u-1",
			"subOrganizationIds": ["org-a", "org-b"]
		}`))
	})
	mux.HandleFunc("/accounts/api/organizations/org-a", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"id": "org-a", "name": "Billing", "parentOrganizationId": "org-root",
			"ownerId": "u-1", "clientId": "c-a",
			"entitlements": {
				"createSubOrgs": true,
				"createEnvironments": true,
				"vCoresProduction": {"assigned": 1.5},
				"vpcs": {"assigned": 2}
			}
		}`))
	})
	mux.HandleFunc("/accounts/api/organizations/org-b", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"id": "org-b", "name": "Support", "parentOrganizationId": "org-root",
			"ownerId": "u-2", "entitlements": {}
		}`))
	})
	return mux
}

func TestDecodeSpecDefaultsParentToSessionGroup(t *testing.T) {
	p := newPlugin(t, http.NotFoundHandler())

	rec, err := p.DecodeSpec("Billing", map[string]any{"create_environments": true})
	require.NoError(t, err)

	attrs := rec.ToAttributeSet()
	assert.Equal(t, "Billing", attrs[domain.KeyName])
	assert.Equal(t, "org-root", attrs[domain.OrgParentIDKey])
	assert.Equal(t, domain.LookupKey{
		Name:       "Billing",
		Qualifiers: map[string]string{domain.OrgParentIDKey: "org-root"},
	}, rec.LookupKey())
}

func TestDecodeSpecRejectsNegativeEntitlements(t *testing.T) {
	p := newPlugin(t, http.NotFoundHandler())

	_, err := p.DecodeSpec("Billing", map[string]any{"vcores_production": -1})
	require.Error(t, err)
	assert.Equal(t, errors.CodeSpecValidation, errors.GetCode(err))
}

func TestReaderWalksParentChildren(t *testing.T) {
	p := newPlugin(t, hierarchyServer(t))

	attrs, found, err := p.Reader().Find(context.Background(), domain.LookupKey{
		Name:       "Billing",
		Qualifiers: map[string]string{domain.OrgParentIDKey: "org-root"},
	})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "org-a", attrs[domain.KeyID])
	assert.Equal(t, true, attrs[domain.OrgCreateSubOrgsKey])
	assert.Equal(t, 1.5, attrs[domain.OrgVCoresProductionKey])
	assert.Equal(t, float64(2), attrs[domain.OrgVPCsKey])
}

func TestReaderMissAndMissingParent(t *testing.T) {
	p := newPlugin(t, hierarchyServer(t))

	_, found, err := p.Reader().Find(context.Background(), domain.LookupKey{
		Name:       "Ghost",
		Qualifiers: map[string]string{domain.OrgParentIDKey: "org-root"},
	})
	require.NoError(t, err)
	assert.False(t, found)

	_, _, err = p.Reader().Find(context.Background(), domain.LookupKey{
		Name:       "Billing",
		Qualifiers: map[string]string{domain.OrgParentIDKey: "org-gone"},
	})
	require.Error(t, err)
	assert.Equal(t, errors.CodeDependencyNotFound, errors.GetCode(err))
}

func TestMutatorCreateBuildsEntitlements(t *testing.T) {
	var gotBody string
	mux := http.NewServeMux()
	mux.HandleFunc("/accounts/api/organizations", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		gotBody = string(data)
		_, _ = w.Write([]byte(`{"id": "org-new", "name": "Billing", "parentOrganizationId": "org-root", "ownerId": "u-1", "entitlements": {}}`))
	})
	p := newPlugin(t, mux)

	attrs, err := p.Mutator().Create(context.Background(), domain.AttributeSet{
		domain.KeyName:                  "Billing",
		domain.OrgParentIDKey:           "org-root",
		domain.OrgCreateEnvironmentsKey: true,
		domain.OrgVCoresSandboxKey:      0.5,
	})
	require.NoError(t, err)
	assert.Equal(t, "org-new", attrs[domain.KeyID])
	assert.JSONEq(t, `{
		"name": "Billing",
		"parentOrganizationId": "org-root",
		"ownerId": "u-1",
		"entitlements": {
			"createEnvironments": true,
			"vCoresSandbox": {"assigned": 0.5}
		}
	}`, gotBody)
}

func TestMutatorTransitionUnsupported(t *testing.T) {
	p := newPlugin(t, http.NotFoundHandler())

	_, err := p.Mutator().Transition(context.Background(), "org-a", domain.StateDisabled)
	require.Error(t, err)
	assert.Equal(t, errors.CodeUnsupportedTransition, errors.GetCode(err))
}
