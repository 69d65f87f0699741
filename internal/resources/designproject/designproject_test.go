package designproject

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/anypoint-reconciler/internal/adapters/transport/cli"
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

type fakeRunner struct {
	t       *testing.T
	calls   [][]string
	respond func(args []string) (cli.Result, error)
}

func (f *fakeRunner) Run(ctx context.Context, args ...string) (cli.Result, error) {
	f.calls = append(f.calls, args)
	return f.respond(args)
}

func (f *fakeRunner) RunJSON(ctx context.Context, out any, args ...string) (cli.Result, error) {
	res, err := f.Run(ctx, append(args, "--output", "json")...)
	if err != nil {
		return res, err
	}
	require.NoError(f.t, json.Unmarshal(res.Stdout, out))
	return res, nil
}

func newPlugin(t *testing.T, run *fakeRunner, handler http.Handler) *Plugin {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := rest.NewClient(server.URL, "tok", testLogger(t))
	session := anypoint.Session{OrganizationID: "org-1", EnvironmentID: "env-1"}
	return New(run, client, session, testLogger(t))
}

func listResponse(entries string) func(args []string) (cli.Result, error) {
	return func(args []string) (cli.Result, error) {
		if args[2] == "list" {
			return cli.Result{Stdout: []byte(entries)}, nil
		}
		return cli.Result{}, nil
	}
}

func decode(t *testing.T, p *Plugin, name string, raw map[string]any) domain.Reconcilable {
	t.Helper()
	rec, err := p.DecodeSpec(name, raw)
	require.NoError(t, err)
	return rec
}

const assetJSON = `{
	"name": "Orders API",
	"description": "Order intake",
	"labels": ["orders", "b2b"],
	"files": [{"classifier": "raml", "md5": "aa"}, {"classifier": "icon", "md5": "f00d"}]
}`

func TestDecodeSpecAppliesDefaults(t *testing.T) {
	p := newPlugin(t, &fakeRunner{t: t}, http.NotFoundHandler())

	rec := decode(t, p, "orders-spec", map[string]any{"main": "api.raml"})
	assert.Equal(t, domain.LookupKey{Name: "orders-spec"}, rec.LookupKey())
	assert.Equal(t, "raml", rec.ToAttributeSet()[domain.ProjectTypeKey])

	sp, ok := p.specs.get("orders-spec")
	require.True(t, ok)
	assert.Equal(t, "org-1", sp.GroupID)
	assert.Equal(t, "orders-spec", sp.AssetID)
	assert.Equal(t, "1.0.0", sp.Version)
	assert.Equal(t, "1.0", sp.APIVersion)
}

func TestDecodeSpecRejectsUnknownType(t *testing.T) {
	p := newPlugin(t, &fakeRunner{t: t}, http.NotFoundHandler())

	_, err := p.DecodeSpec("orders-spec", map[string]any{"type": "openapi"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeSpecValidation, errors.GetCode(err))
}

func TestDecodeSpecDigestsIcon(t *testing.T) {
	p := newPlugin(t, &fakeRunner{t: t}, http.NotFoundHandler())
	iconFile := filepath.Join(t.TempDir(), "icon.png")
	require.NoError(t, os.WriteFile(iconFile, []byte("png-bytes"), 0o600))

	rec := decode(t, p, "orders-spec", map[string]any{"icon": iconFile})
	attrs := rec.ToAttributeSet()
	assert.NotEmpty(t, attrs[domain.AssetIconKey])
	assert.Equal(t, iconFile, attrs[domain.AssetIconPathKey])
}

func TestReaderFindsDraftProject(t *testing.T) {
	run := &fakeRunner{t: t, respond: listResponse(`[{"ID": "p-1", "Name": "orders-spec"}]`)}
	p := newPlugin(t, run, http.NotFoundHandler())
	decode(t, p, "orders-spec", map[string]any{})

	attrs, found, err := p.Reader().Find(context.Background(), domain.LookupKey{Name: "orders-spec"})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "DRAFT", attrs[domain.KeyStatus])
	assert.Equal(t, "p-1", attrs[domain.ProjectIDKey])
	assert.Equal(t, domain.StatePresent, p.ObservedState(attrs))

	require.Len(t, run.calls, 1)
	assert.Equal(t, []string{
		"designcenter", "project", "list",
		"--pageIndex", "0", "--pageSize", "500", "orders-spec", "--output", "json",
	}, run.calls[0])
}

func TestReaderFindsPublishedAsset(t *testing.T) {
	run := &fakeRunner{t: t, respond: listResponse(`[{"ID": "p-1", "Name": "orders-spec"}]`)}
	p := newPlugin(t, run, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/exchange/api/v2/assets/org-1/orders-spec/1.0.0", r.URL.Path)
		_, _ = w.Write([]byte(assetJSON))
	}))
	decode(t, p, "orders-spec", map[string]any{})

	attrs, found, err := p.Reader().Find(context.Background(), domain.LookupKey{Name: "orders-spec"})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "PUBLISHED", attrs[domain.KeyStatus])
	assert.Equal(t, "Orders API", attrs[domain.KeyName])
	assert.Equal(t, "Order intake", attrs[domain.AssetDescriptionKey])
	assert.Equal(t, "f00d", attrs[domain.AssetIconKey])
	assert.Equal(t, domain.StatePublished, p.ObservedState(attrs))
}

func TestReaderOrphanedAssetStillFound(t *testing.T) {
	run := &fakeRunner{t: t, respond: listResponse(`[]`)}
	p := newPlugin(t, run, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(assetJSON))
	}))
	decode(t, p, "orders-spec", map[string]any{})

	attrs, found, err := p.Reader().Find(context.Background(), domain.LookupKey{Name: "orders-spec"})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "PUBLISHED", attrs[domain.KeyStatus])
	assert.False(t, attrs.Has(domain.ProjectIDKey))
}

func TestReaderAbsentWhenNeitherHalfExists(t *testing.T) {
	run := &fakeRunner{t: t, respond: listResponse(`[]`)}
	p := newPlugin(t, run, http.NotFoundHandler())
	decode(t, p, "orders-spec", map[string]any{})

	_, found, err := p.Reader().Find(context.Background(), domain.LookupKey{Name: "orders-spec"})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestBehaviorStateEquivalences(t *testing.T) {
	p := newPlugin(t, &fakeRunner{t: t}, http.NotFoundHandler())
	behavior := p.Behavior()

	assert.True(t, behavior.TargetSatisfied(domain.StatePublished, domain.StatePresent))
	assert.True(t, behavior.TargetSatisfied(domain.StatePresent, domain.StateUnpublished))
	assert.False(t, behavior.TargetSatisfied(domain.StatePresent, domain.StatePublished))
	assert.True(t, behavior.SatisfiedByAbsence[domain.StateUnpublished])
	assert.True(t, behavior.Frozen[domain.StatePresent])
}

func TestMutatorCreateUploadsDeclaredDirectory(t *testing.T) {
	run := &fakeRunner{t: t, respond: listResponse(`[{"ID": "p-1", "Name": "orders-spec"}]`)}
	p := newPlugin(t, run, http.NotFoundHandler())
	decode(t, p, "orders-spec", map[string]any{
		"type":          "raml-fragment",
		"fragment_type": "library",
		"project_dir":   "/tmp/orders-spec",
	})

	_, err := p.Mutator().Create(context.Background(), domain.AttributeSet{domain.KeyName: "orders-spec"})
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(run.calls), 2)
	assert.Equal(t, []string{
		"designcenter", "project", "create",
		"--type", "raml-fragment", "--fragment-type", "library", "orders-spec",
	}, run.calls[0])
	assert.Equal(t, []string{
		"designcenter", "project", "upload", "orders-spec", "/tmp/orders-spec",
	}, run.calls[1])
}

func TestMutatorPublishSendsFlagsAndMetadata(t *testing.T) {
	var patched map[string]any
	run := &fakeRunner{t: t, respond: listResponse(`[{"ID": "p-1", "Name": "orders-spec"}]`)}
	p := newPlugin(t, run, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPatch && r.URL.Path == "/exchange/api/v2/assets/org-1/orders-spec":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&patched))
		case r.Method == http.MethodGet:
			_, _ = w.Write([]byte(assetJSON))
		default:
			t.Fatalf("unexpected call %s %s", r.Method, r.URL.Path)
		}
	}))
	decode(t, p, "orders-spec", map[string]any{
		"main":        "api.raml",
		"tags":        []string{"orders", "b2b"},
		"description": "Order intake",
	})

	attrs, err := p.Mutator().Transition(context.Background(), "orders-spec", domain.StatePublished)
	require.NoError(t, err)

	require.NotEmpty(t, run.calls)
	assert.Equal(t, []string{
		"designcenter", "project", "publish",
		"--main", "api.raml",
		"--apiVersion", "1.0",
		"--groupId", "org-1",
		"--assetId", "orders-spec",
		"--version", "1.0.0",
		"--tags", "orders,b2b",
		"orders-spec",
	}, run.calls[0])
	assert.Equal(t, map[string]any{"description": "Order intake"}, patched)
	assert.Equal(t, "PUBLISHED", attrs[domain.KeyStatus])
}

func TestMutatorPublishNeedsMainFile(t *testing.T) {
	p := newPlugin(t, &fakeRunner{t: t}, http.NotFoundHandler())
	decode(t, p, "orders-spec", map[string]any{})

	_, err := p.Mutator().Transition(context.Background(), "orders-spec", domain.StatePublished)
	require.Error(t, err)
	assert.Equal(t, errors.CodeSpecValidation, errors.GetCode(err))
}

func TestMutatorUnpublishDeletesExchangeAsset(t *testing.T) {
	var deleted string
	run := &fakeRunner{t: t, respond: listResponse(`[{"ID": "p-1", "Name": "orders-spec"}]`)}
	p := newPlugin(t, run, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			deleted = r.URL.Path
			return
		}
		http.NotFound(w, r)
	}))
	decode(t, p, "orders-spec", map[string]any{})

	attrs, err := p.Mutator().Transition(context.Background(), "orders-spec", domain.StateUnpublished)
	require.NoError(t, err)
	assert.Equal(t, "/exchange/api/v1/organizations/org-1/assets/org-1/orders-spec/1.0.0", deleted)
	assert.Equal(t, "DRAFT", attrs[domain.KeyStatus])
}

func TestMutatorDeleteRemovesProjectOnly(t *testing.T) {
	run := &fakeRunner{t: t, respond: listResponse(`[{"ID": "p-1", "Name": "orders-spec"}]`)}
	p := newPlugin(t, run, http.NotFoundHandler())
	decode(t, p, "orders-spec", map[string]any{})

	require.NoError(t, p.Mutator().Delete(context.Background(), "orders-spec"))
	require.Len(t, run.calls, 2)
	assert.Equal(t, []string{"designcenter", "project", "delete", "orders-spec"}, run.calls[1])
}

func TestMutatorDeleteToleratesMissingProject(t *testing.T) {
	run := &fakeRunner{t: t, respond: listResponse(`[]`)}
	p := newPlugin(t, run, http.NotFoundHandler())
	decode(t, p, "orders-spec", map[string]any{})

	require.NoError(t, p.Mutator().Delete(context.Background(), "orders-spec"))
	require.Len(t, run.calls, 1)
}
