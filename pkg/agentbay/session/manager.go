package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-logr/logr"

	"github.com/agentbay/agentbay-go/pkg/agentbay/api"
	"github.com/agentbay/agentbay-go/pkg/agentbay/command"
	apperrors "github.com/agentbay/agentbay-go/pkg/agentbay/errors"
	"github.com/agentbay/agentbay-go/pkg/agentbay/filesystem"
	"github.com/agentbay/agentbay-go/pkg/agentbay/label"
)

// Backend actions for the session lifecycle.
const (
	ActionCreateSession  = "CreateSession"
	ActionGetSession     = "GetSession"
	ActionListSessions   = "ListSessions"
	ActionReleaseSession = "ReleaseSession"
	ActionSetLabels      = "SetLabels"
	ActionGetLabels      = "GetLabels"
	ActionGetSessionInfo = "GetSessionInfo"
)

// Manager is the session lifecycle client. It issues remote calls and keeps a
// process-local Registry of the sessions this client has created or
// recovered. The backend is authoritative; registry mutations happen only
// after confirmed successful responses.
type Manager struct {
	caller   api.Caller
	registry *Registry
	logger   logr.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger attaches a logger to the Manager.
func WithLogger(logger logr.Logger) ManagerOption {
	return func(m *Manager) { m.logger = logger }
}

// WithRegistry supplies an externally constructed Registry, letting tests run
// independent registries side by side.
func WithRegistry(r *Registry) ManagerOption {
	return func(m *Manager) { m.registry = r }
}

// NewManager creates a new Manager
func NewManager(caller api.Caller, opts ...ManagerOption) *Manager {
	m := &Manager{
		caller: caller,
		logger: logr.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = NewRegistry()
	}
	return m
}

// Registry exposes the manager's session registry.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// Create provisions a new remote session. On success the session is inserted
// into the registry. Remote failures are reported in the envelope and are not
// retried.
func (m *Manager) Create(ctx context.Context, params *CreateSessionParams) (*SessionResult, error) {
	if params == nil {
		params = &CreateSessionParams{}
	}

	req := &createSessionRequest{
		ImageID:      params.ImageID,
		ContextSyncs: params.ContextSyncs,
		ExtraConfigs: params.ExtraConfigs,
	}
	if len(params.Labels) > 0 {
		if err := label.Validate(params.Labels); err != nil {
			return &SessionResult{Success: false, ErrorMessage: validationMessage(err)}, nil
		}
		encoded, err := label.Encode(params.Labels)
		if err != nil {
			return &SessionResult{Success: false, ErrorMessage: err.Error()}, nil
		}
		req.Labels = encoded
	}

	var data sessionData
	result, err := m.caller.Call(ctx, ActionCreateSession, req, &data)
	if err != nil {
		return nil, err
	}

	out := &SessionResult{Success: result.Success, ErrorMessage: result.ErrorMessage}
	out.RequestID = result.RequestID
	if !result.Success {
		out.ErrorMessage = fmt.Sprintf("Failed to create session: %s", result.ErrorMessage)
		return out, nil
	}

	s := m.newSession(&data)
	s.Labels = params.Labels
	s.ContextSyncs = params.ContextSyncs
	m.registry.Add(s)
	m.logger.V(1).Info("session created", "sessionId", s.SessionID, "requestId", result.RequestID)

	out.Session = s
	return out, nil
}

// Get recovers a session by id. An empty or whitespace-only id fails locally
// without a remote call. On success the registry entry is refreshed; remote
// fields overwrite any cached ones.
func (m *Manager) Get(ctx context.Context, sessionID string) (*SessionResult, error) {
	if strings.TrimSpace(sessionID) == "" {
		return &SessionResult{Success: false, ErrorMessage: "session_id is required"}, nil
	}

	var data sessionData
	result, err := m.caller.CallIdempotent(ctx, ActionGetSession, &getSessionRequest{
		SessionID: sessionID,
	}, &data)
	if err != nil {
		return nil, err
	}

	out := &SessionResult{Success: result.Success}
	out.RequestID = result.RequestID
	if !result.Success {
		out.ErrorMessage = fmt.Sprintf("Failed to get session %s: %s", sessionID, result.ErrorMessage)
		return out, nil
	}

	s := m.newSession(&data)
	m.registry.Add(s)
	m.logger.V(1).Info("session recovered", "sessionId", s.SessionID)

	out.Session = s
	return out, nil
}

// List returns a snapshot of the locally known sessions. No network call is
// made; the registry covers only sessions this client handle has touched.
func (m *Manager) List() []*Session {
	return m.registry.Snapshot()
}

// ListByLabels queries the backend for sessions matching the given labels.
// The registry is not consulted; the backend is authoritative for label
// queries. An empty label map matches all sessions.
func (m *Manager) ListByLabels(ctx context.Context, params *ListSessionParams) (*SessionListResult, error) {
	if params == nil {
		params = &ListSessionParams{}
	}
	maxResults := params.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultListMaxResults
	}

	encoded, err := label.Encode(params.Labels)
	if err != nil {
		return &SessionListResult{Success: false, ErrorMessage: err.Error()}, nil
	}

	var data listSessionData
	result, err := m.caller.CallIdempotent(ctx, ActionListSessions, &listSessionRequest{
		Labels:     encoded,
		MaxResults: maxResults,
		NextToken:  params.NextToken,
	}, &data)
	if err != nil {
		return nil, err
	}

	out := &SessionListResult{
		Success:      result.Success,
		ErrorMessage: result.ErrorMessage,
		MaxResults:   maxResults,
	}
	out.RequestID = result.RequestID
	if result.Success {
		out.Sessions = data.Sessions
		out.NextToken = data.NextToken
		out.TotalCount = data.TotalCount
		if data.MaxResults > 0 {
			out.MaxResults = data.MaxResults
		}
	}
	return out, nil
}

// ListAllByLabels follows NextToken until the backend reports no further
// pages and returns the concatenated summaries. Absence of NextToken is the
// sole termination condition; a short page does not end iteration.
func (m *Manager) ListAllByLabels(ctx context.Context, labels map[string]string) ([]SessionSummary, error) {
	var all []SessionSummary
	nextToken := ""
	for {
		result, err := m.ListByLabels(ctx, &ListSessionParams{
			Labels:    labels,
			NextToken: nextToken,
		})
		if err != nil {
			return nil, err
		}
		if !result.Success {
			return nil, apperrors.New(apperrors.ErrCodeSessionGet, result.ErrorMessage, nil)
		}
		all = append(all, result.Sessions...)
		if result.NextToken == "" {
			return all, nil
		}
		nextToken = result.NextToken
	}
}

// Delete releases a remote session. The registry entry is evicted only after
// the backend confirms the release; a failed remote delete leaves the entry
// in place. syncContext asks the backend to flush any synced storage before
// teardown.
func (m *Manager) Delete(ctx context.Context, s *Session, syncContext bool) (*DeleteResult, error) {
	if s == nil || strings.TrimSpace(s.SessionID) == "" {
		return &DeleteResult{Success: false, ErrorMessage: "session_id is required"}, nil
	}

	result, err := m.caller.Call(ctx, ActionReleaseSession, &releaseSessionRequest{
		SessionID:   s.SessionID,
		SyncContext: syncContext,
	}, nil)
	if err != nil {
		return nil, err
	}

	out := &DeleteResult{Success: result.Success, ErrorMessage: result.ErrorMessage}
	out.RequestID = result.RequestID
	if result.Success {
		m.registry.Remove(s.SessionID)
		m.logger.V(1).Info("session released", "sessionId", s.SessionID, "syncContext", syncContext)
	} else {
		out.ErrorMessage = fmt.Sprintf("Failed to delete session %s: %s", s.SessionID, result.ErrorMessage)
	}
	return out, nil
}

func (m *Manager) newSession(data *sessionData) *Session {
	s := &Session{
		SessionID:             data.SessionID,
		ResourceURL:           data.ResourceURL,
		FileTransferContextID: data.FileTransferContextID,
		mgr:                   m,
	}
	if data.Labels != "" {
		s.Labels = label.Decode(data.Labels)
	}
	s.FileSystem = filesystem.New(m.caller, s.SessionID)
	s.Command = command.New(m.caller, s.SessionID)
	return s
}

// validationMessage unwraps an AppError's message so pre-flight failures show
// the exact validation text rather than the code-prefixed form.
func validationMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
