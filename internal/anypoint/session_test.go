package anypoint

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/anypoint-reconciler/internal/adapters/transport/rest"
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

func accountServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/accounts/api/me", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{
			"user": {
				"id": "u-1",
				"username": "jdoe",
				"organization": {"id": "org-home", "name": "Acme"},
				"memberOfOrganizations": [
					{"id": "org-home", "name": "Acme"},
					{"id": "org-sub", "name": "Acme Billing"}
				]
			}
		}`))
	})
	mux.HandleFunc("/accounts/api/organizations/org-sub/environments", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"data": [
				{"id": "env-1", "name": "Sandbox", "type": "sandbox", "isProduction": false},
				{"id": "env-2", "name": "Production", "type": "production", "isProduction": true}
			],
			"total": 2
		}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestOpenResolvesNamesToIDs(t *testing.T) {
	server := accountServer(t)
	client := rest.NewClient(server.URL, "tok", testLogger(t))

	session, err := Open(context.Background(), client, "Acme Billing", "Production", testLogger(t))
	require.NoError(t, err)
	assert.Equal(t, "org-sub", session.OrganizationID)
	assert.Equal(t, "Acme Billing", session.OrganizationName)
	assert.Equal(t, "env-2", session.EnvironmentID)
	assert.Equal(t, "Production", session.EnvironmentName)
	assert.Equal(t, "jdoe", session.Username)
}

func TestOpenAcceptsIDsDirectly(t *testing.T) {
	server := accountServer(t)
	client := rest.NewClient(server.URL, "tok", testLogger(t))

	session, err := Open(context.Background(), client, "org-sub", "env-1", testLogger(t))
	require.NoError(t, err)
	assert.Equal(t, "org-sub", session.OrganizationID)
	assert.Equal(t, "env-1", session.EnvironmentID)
	assert.Equal(t, "Sandbox", session.EnvironmentName)
}

func TestOpenDefaultsToHomeOrganization(t *testing.T) {
	server := accountServer(t)
	client := rest.NewClient(server.URL, "tok", testLogger(t))

	session, err := Open(context.Background(), client, "", "", testLogger(t))
	require.NoError(t, err)
	assert.Equal(t, "org-home", session.OrganizationID)
	assert.Empty(t, session.EnvironmentID)
}

func TestOpenUnknownBusinessGroup(t *testing.T) {
	server := accountServer(t)
	client := rest.NewClient(server.URL, "tok", testLogger(t))

	_, err := Open(context.Background(), client, "Globex", "", testLogger(t))
	require.Error(t, err)
	assert.Equal(t, errors.CodeDependencyNotFound, errors.GetCode(err))

	msg, _, ok := errors.GetUserFacingMessage(err)
	assert.True(t, ok)
	assert.Equal(t, "Business Group 'Globex' not found", msg)
}

func TestOpenUnknownEnvironment(t *testing.T) {
	server := accountServer(t)
	client := rest.NewClient(server.URL, "tok", testLogger(t))

	_, err := Open(context.Background(), client, "Acme Billing", "Staging", testLogger(t))
	require.Error(t, err)
	assert.Equal(t, errors.CodeDependencyNotFound, errors.GetCode(err))

	msg, _, ok := errors.GetUserFacingMessage(err)
	assert.True(t, ok)
	assert.Contains(t, msg, "Environment 'Staging' not found")
}

func TestRequireEnvironment(t *testing.T) {
	withEnv := Session{EnvironmentID: "env-1"}
	id, err := withEnv.RequireEnvironment()
	require.NoError(t, err)
	assert.Equal(t, "env-1", id)

	_, err = Session{}.RequireEnvironment()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigValidation, errors.GetCode(err))
}
