package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/agentbay/agentbay-go/pkg/agentbay/errors"

	"github.com/agentbay/agentbay-go/pkg/agentbay/api"
)

func TestClient_Call_Success(t *testing.T) {
	var gotAuth, gotRegion, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRegion = r.Header.Get("X-Agentbay-Region")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"requestId":"req-1","success":true,"data":{"value":"hello"}}`))
	}))
	defer server.Close()

	client := api.NewClient(api.StaticCredential("secret"),
		api.WithEndpoint(server.URL),
		api.WithRegion("eu-central-1"))

	var out struct {
		Value string `json:"value"`
	}
	result, err := client.Call(context.Background(), "TestAction", map[string]string{"a": "b"}, &out)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "req-1", result.RequestID)
	assert.Equal(t, "hello", out.Value)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "eu-central-1", gotRegion)
	assert.Equal(t, "/api/v1/TestAction", gotPath)
}

func TestClient_Call_LogicalFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"requestId":"req-2","success":false,"errorMessage":"quota exceeded"}`))
	}))
	defer server.Close()

	client := api.NewClient(api.StaticCredential("secret"), api.WithEndpoint(server.URL))

	result, err := client.Call(context.Background(), "TestAction", nil, nil)
	require.NoError(t, err, "logical failure is an envelope, not an error")

	assert.False(t, result.Success)
	assert.Equal(t, "req-2", result.RequestID)
	assert.Equal(t, "quota exceeded", result.ErrorMessage)
}

func TestClient_Call_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := api.NewClient(api.StaticCredential("secret"), api.WithEndpoint(server.URL))

	result, err := client.Call(context.Background(), "TestAction", nil, nil)
	require.Error(t, err)
	assert.Nil(t, result)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeTransport, appErr.Code)
}

func TestClient_Call_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer server.Close()

	client := api.NewClient(api.StaticCredential("secret"), api.WithEndpoint(server.URL))

	_, err := client.Call(context.Background(), "TestAction", nil, nil)
	require.Error(t, err)
}

func TestClient_CallIdempotent_RetriesTransportFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"requestId":"req-3","success":true}`))
	}))
	defer server.Close()

	client := api.NewClient(api.StaticCredential("secret"),
		api.WithEndpoint(server.URL),
		api.WithMaxRetries(4))

	result, err := client.CallIdempotent(context.Background(), "TestAction", nil, nil)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_CallIdempotent_DoesNotRetryLogicalFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"requestId":"req-4","success":false,"errorMessage":"not found"}`))
	}))
	defer server.Close()

	client := api.NewClient(api.StaticCredential("secret"),
		api.WithEndpoint(server.URL),
		api.WithMaxRetries(4))

	result, err := client.CallIdempotent(context.Background(), "TestAction", nil, nil)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_Metrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"requestId":"req-5","success":true}`))
	}))
	defer server.Close()

	registry := prometheus.NewRegistry()
	client := api.NewClient(api.StaticCredential("secret"),
		api.WithEndpoint(server.URL),
		api.WithMetrics(api.NewMetrics(registry)))

	_, err := client.Call(context.Background(), "TestAction", nil, nil)
	require.NoError(t, err)

	families, err := registry.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, family := range families {
		names[family.GetName()] = true
	}
	assert.True(t, names["agentbay_api_requests_total"])
	assert.True(t, names["agentbay_api_request_duration_seconds"])
}

func TestCredentialFromEnv(t *testing.T) {
	t.Setenv(api.EnvAPIKey, "env-key")

	credential, err := api.CredentialFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "env-key", credential.APIKey())
}

func TestCredentialFromEnv_Missing(t *testing.T) {
	t.Setenv(api.EnvAPIKey, "")

	_, err := api.CredentialFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), api.EnvAPIKey)
}
