package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentbay/agentbay-go/pkg/agentbay/label"
)

func createTestSession(t *testing.T, m *Manager) *Session {
	t.Helper()
	result, err := m.Create(context.Background(), nil)
	require.NoError(t, err)
	require.True(t, result.Success)
	return result.Session
}

func TestSession_SetLabels(t *testing.T) {
	m, _ := newTestManager(t)
	s := createTestSession(t, m)

	result, err := s.SetLabels(context.Background(), map[string]string{"owner": "team-b"})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.NotEmpty(t, result.RequestID)
	assert.Equal(t, map[string]string{"owner": "team-b"}, s.Labels)
}

func TestSession_SetLabels_EmptySet(t *testing.T) {
	m, backend := newTestManager(t)
	s := createTestSession(t, m)
	before := backend.CallCount(ActionSetLabels)

	result, err := s.SetLabels(context.Background(), map[string]string{})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, "Labels cannot be empty. Please provide at least one label.", result.ErrorMessage)
	assert.Equal(t, "", result.RequestID)
	assert.Equal(t, before, backend.CallCount(ActionSetLabels), "validation must not reach the network")
}

func TestSession_SetLabels_EmptyKey(t *testing.T) {
	m, backend := newTestManager(t)
	s := createTestSession(t, m)

	// A bad key fails regardless of other valid entries
	result, err := s.SetLabels(context.Background(), map[string]string{
		"owner": "team-b",
		"   ":   "value",
	})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, label.MsgEmptyKey, result.ErrorMessage)
	assert.Equal(t, "", result.RequestID)
	assert.Equal(t, 0, backend.CallCount(ActionSetLabels))
}

func TestSession_SetLabels_EmptyValue(t *testing.T) {
	m, _ := newTestManager(t)
	s := createTestSession(t, m)

	result, err := s.SetLabels(context.Background(), map[string]string{"owner": " "})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, label.MsgEmptyValue, result.ErrorMessage)
	assert.Equal(t, "", result.RequestID)
}

func TestSession_GetLabels(t *testing.T) {
	m, _ := newTestManager(t)
	s := createTestSession(t, m)

	setResult, err := s.SetLabels(context.Background(), map[string]string{"env": "staging"})
	require.NoError(t, err)
	require.True(t, setResult.Success)

	// Forget the cached copy; GetLabels refreshes from the backend
	s.Labels = nil

	result, err := s.GetLabels(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, map[string]string{"env": "staging"}, result.Labels)
	assert.Equal(t, map[string]string{"env": "staging"}, s.Labels)
}

func TestSession_Info_RefreshesResourceURL(t *testing.T) {
	m, _ := newTestManager(t)
	s := createTestSession(t, m)
	s.ResourceURL = ""

	result, err := s.Info(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.NotEmpty(t, result.ResourceURL)
	assert.Equal(t, result.ResourceURL, s.ResourceURL)
}

func TestSession_Delete(t *testing.T) {
	m, backend := newTestManager(t)
	s := createTestSession(t, m)

	result, err := s.Delete(context.Background(), false)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.False(t, backend.HasSession(s.SessionID))
	assert.Equal(t, 0, m.Registry().Len())
}

func TestSession_LabeledSessionFoundByQuery(t *testing.T) {
	m, _ := newTestManager(t)
	s := createTestSession(t, m)

	setResult, err := s.SetLabels(context.Background(), map[string]string{"owner": "team-b"})
	require.NoError(t, err)
	require.True(t, setResult.Success)

	listResult, err := m.ListByLabels(context.Background(), &ListSessionParams{
		Labels: map[string]string{"owner": "team-b"},
	})
	require.NoError(t, err)
	require.True(t, listResult.Success)

	found := false
	for _, summary := range listResult.Sessions {
		if summary.SessionID == s.SessionID {
			found = true
		}
	}
	assert.True(t, found)
}
