package session

import (
	"context"
	"fmt"

	"github.com/agentbay/agentbay-go/pkg/agentbay/command"
	"github.com/agentbay/agentbay-go/pkg/agentbay/filesystem"
	"github.com/agentbay/agentbay-go/pkg/agentbay/label"
	"github.com/agentbay/agentbay-go/pkg/agentbay/storage"
)

// Session is a handle to one remote ephemeral environment. The SessionID is
// assigned by the backend and immutable; ResourceURL and
// FileTransferContextID are populated lazily by info queries and recovery.
// Callers must not use a Session after a successful Delete.
type Session struct {
	SessionID             string
	ResourceURL           string
	Labels                map[string]string
	FileTransferContextID string
	ContextSyncs          []storage.ContextSync

	// Per-session remote capability clients.
	FileSystem *filesystem.FileSystem
	Command    *command.Command

	mgr *Manager
}

// SetLabels replaces the session's labels on the backend. Label violations
// fail locally with an empty request id and no network call.
func (s *Session) SetLabels(ctx context.Context, labels map[string]string) (*LabelResult, error) {
	if err := label.Validate(labels); err != nil {
		return &LabelResult{Success: false, ErrorMessage: validationMessage(err)}, nil
	}

	encoded, err := label.Encode(labels)
	if err != nil {
		return &LabelResult{Success: false, ErrorMessage: err.Error()}, nil
	}

	result, err := s.mgr.caller.Call(ctx, ActionSetLabels, &setLabelsRequest{
		SessionID: s.SessionID,
		Labels:    encoded,
	}, nil)
	if err != nil {
		return nil, err
	}

	out := &LabelResult{Success: result.Success, ErrorMessage: result.ErrorMessage}
	out.RequestID = result.RequestID
	if result.Success {
		s.Labels = labels
		out.Labels = labels
	}
	return out, nil
}

// GetLabels fetches the session's labels from the backend and refreshes the
// cached copy.
func (s *Session) GetLabels(ctx context.Context) (*LabelResult, error) {
	var data labelsData
	result, err := s.mgr.caller.CallIdempotent(ctx, ActionGetLabels, &getSessionRequest{
		SessionID: s.SessionID,
	}, &data)
	if err != nil {
		return nil, err
	}

	out := &LabelResult{Success: result.Success, ErrorMessage: result.ErrorMessage}
	out.RequestID = result.RequestID
	if result.Success {
		out.Labels = label.Decode(data.Labels)
		s.Labels = out.Labels
	}
	return out, nil
}

// Info queries the backend for session details and refreshes ResourceURL.
func (s *Session) Info(ctx context.Context) (*InfoResult, error) {
	var data infoData
	result, err := s.mgr.caller.CallIdempotent(ctx, ActionGetSessionInfo, &getSessionRequest{
		SessionID: s.SessionID,
	}, &data)
	if err != nil {
		return nil, err
	}

	out := &InfoResult{Success: result.Success, ErrorMessage: result.ErrorMessage}
	out.RequestID = result.RequestID
	if result.Success {
		out.ResourceURL = data.ResourceURL
		if data.ResourceURL != "" {
			s.ResourceURL = data.ResourceURL
		}
	} else {
		out.ErrorMessage = fmt.Sprintf("Failed to get session info for %s: %s",
			s.SessionID, result.ErrorMessage)
	}
	return out, nil
}

// Delete releases the remote session. See Manager.Delete.
func (s *Session) Delete(ctx context.Context, syncContext bool) (*DeleteResult, error) {
	return s.mgr.Delete(ctx, s, syncContext)
}
