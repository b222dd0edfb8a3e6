package agentbay_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentbay/agentbay-go/internal/testutil"
	"github.com/agentbay/agentbay-go/pkg/agentbay"
	"github.com/agentbay/agentbay-go/pkg/agentbay/api"
	"github.com/agentbay/agentbay-go/pkg/agentbay/session"
	"github.com/agentbay/agentbay-go/pkg/agentbay/storage"
)

func newTestClient(t *testing.T, opts ...agentbay.Option) (*agentbay.Client, *testutil.Backend) {
	t.Helper()
	backend := testutil.NewBackend()
	t.Cleanup(backend.Close)

	opts = append([]agentbay.Option{agentbay.WithEndpoint(backend.URL())}, opts...)
	client, err := agentbay.NewClient("test-key", opts...)
	require.NoError(t, err)
	return client, backend
}

func TestNewClient_EnvCredential(t *testing.T) {
	t.Setenv(api.EnvAPIKey, "from-env")

	client, err := agentbay.NewClient("")
	require.NoError(t, err)
	assert.NotNil(t, client.Sessions)
	assert.NotNil(t, client.Contexts)
}

func TestNewClient_MissingCredential(t *testing.T) {
	t.Setenv(api.EnvAPIKey, "")

	_, err := agentbay.NewClient("")
	require.Error(t, err)
}

func TestClient_SessionLifecycle(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	created, err := client.Create(ctx, &session.CreateSessionParams{})
	require.NoError(t, err)
	require.True(t, created.Success)
	assert.NotEmpty(t, created.RequestID)
	assert.NotEmpty(t, created.Session.SessionID)

	deleted, err := client.Delete(ctx, created.Session, false)
	require.NoError(t, err)
	assert.True(t, deleted.Success)

	// Registry snapshot no longer contains the id
	for _, s := range client.List() {
		assert.NotEqual(t, created.Session.SessionID, s.SessionID)
	}
}

func TestClient_Get_EmptyID(t *testing.T) {
	client, _ := newTestClient(t)

	result, err := client.Get(context.Background(), "")
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Contains(t, result.ErrorMessage, "session_id is required")
}

func TestClient_CreateWithContextSync(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	contextResult, err := client.Contexts.Create(ctx, "persistent-data")
	require.NoError(t, err)
	require.True(t, contextResult.Success)

	sync := storage.NewContextSync(contextResult.Context.ID, "/data", nil)
	created, err := client.Create(ctx, &session.CreateSessionParams{
		ContextSyncs: []storage.ContextSync{*sync},
	})
	require.NoError(t, err)
	require.True(t, created.Success)
	require.Len(t, created.Session.ContextSyncs, 1)
	assert.Equal(t, contextResult.Context.ID, created.Session.ContextSyncs[0].ContextID)
}

func TestClient_CommandInSession(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	created, err := client.Create(ctx, nil)
	require.NoError(t, err)
	require.True(t, created.Success)

	result, err := created.Session.Command.ExecuteCommand(ctx, "uname -a", 0)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.NotEmpty(t, result.Output)
}

func TestClient_MetricsOption(t *testing.T) {
	registry := prometheus.NewRegistry()
	client, _ := newTestClient(t, agentbay.WithMetrics(registry))

	_, err := client.Create(context.Background(), nil)
	require.NoError(t, err)

	families, err := registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
