// Package storage manages persistent contexts: named remote storage units
// that can be synced into and out of a session's filesystem.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/agentbay/agentbay-go/pkg/agentbay/api"
	apperrors "github.com/agentbay/agentbay-go/pkg/agentbay/errors"
)

// Backend actions for context management.
const (
	ActionListContexts  = "ListContexts"
	ActionGetContext    = "GetContext"
	ActionUpdateContext = "UpdateContext"
	ActionDeleteContext = "DeleteContext"
	ActionSyncContext   = "SyncContext"
)

// Service is the persistent-context client.
type Service struct {
	caller api.Caller
}

// NewService creates a new context Service
func NewService(caller api.Caller) *Service {
	return &Service{caller: caller}
}

// List returns all contexts visible to this credential.
func (s *Service) List(ctx context.Context) (*ContextListResult, error) {
	var data contextListData
	result, err := s.caller.CallIdempotent(ctx, ActionListContexts, struct{}{}, &data)
	if err != nil {
		return nil, err
	}

	out := &ContextListResult{Success: result.Success, ErrorMessage: result.ErrorMessage}
	out.RequestID = result.RequestID
	if result.Success {
		out.Contexts = data.Contexts
	}
	return out, nil
}

// Get looks up a context by name. With allowCreate the backend creates a
// missing context instead of failing.
func (s *Service) Get(ctx context.Context, name string, allowCreate bool) (*ContextResult, error) {
	if strings.TrimSpace(name) == "" {
		return &ContextResult{Success: false, ErrorMessage: "context name is required"}, nil
	}

	var data Context
	result, err := s.caller.Call(ctx, ActionGetContext, &getContextRequest{
		Name:        name,
		AllowCreate: allowCreate,
	}, &data)
	if err != nil {
		return nil, err
	}

	out := &ContextResult{Success: result.Success}
	out.RequestID = result.RequestID
	if result.Success {
		out.Context = &data
	} else {
		out.ErrorMessage = fmt.Sprintf("Failed to get context %s: %s", name, result.ErrorMessage)
	}
	return out, nil
}

// Create creates a named context. Shorthand for Get with allowCreate.
func (s *Service) Create(ctx context.Context, name string) (*ContextResult, error) {
	return s.Get(ctx, name, true)
}

// Update renames a context.
func (s *Service) Update(ctx context.Context, c *Context) (*ContextResult, error) {
	if c == nil || strings.TrimSpace(c.ID) == "" {
		return &ContextResult{Success: false, ErrorMessage: "context id is required"}, nil
	}

	result, err := s.caller.Call(ctx, ActionUpdateContext, &updateContextRequest{
		ContextID: c.ID,
		Name:      c.Name,
	}, nil)
	if err != nil {
		return nil, err
	}

	out := &ContextResult{Success: result.Success, ErrorMessage: result.ErrorMessage}
	out.RequestID = result.RequestID
	if result.Success {
		out.Context = c
	}
	return out, nil
}

// Delete removes a context and its stored data.
func (s *Service) Delete(ctx context.Context, c *Context) (*ContextDeleteResult, error) {
	if c == nil || strings.TrimSpace(c.ID) == "" {
		return &ContextDeleteResult{Success: false, ErrorMessage: "context id is required"}, nil
	}

	result, err := s.caller.Call(ctx, ActionDeleteContext, &contextIDRequest{ContextID: c.ID}, nil)
	if err != nil {
		return nil, err
	}

	out := &ContextDeleteResult{Success: result.Success, ErrorMessage: result.ErrorMessage}
	out.RequestID = result.RequestID
	return out, nil
}

// Sync asks the backend to flush one synced context attached to a session.
func (s *Service) Sync(ctx context.Context, sessionID, contextID, path string) (*SyncResult, error) {
	if strings.TrimSpace(sessionID) == "" {
		return &SyncResult{Success: false, ErrorMessage: "session_id is required"}, nil
	}
	if strings.TrimSpace(contextID) == "" {
		return &SyncResult{Success: false, ErrorMessage: "context id is required"}, nil
	}

	result, err := s.caller.Call(ctx, ActionSyncContext, &syncContextRequest{
		SessionID: sessionID,
		ContextID: contextID,
		Path:      path,
	}, nil)
	if err != nil {
		return nil, err
	}

	out := &SyncResult{Success: result.Success, ErrorMessage: result.ErrorMessage}
	out.RequestID = result.RequestID
	return out, nil
}

// SyncAll flushes every given context binding for a session, continuing past
// individual failures and reporting them together.
func (s *Service) SyncAll(ctx context.Context, sessionID string, syncs []ContextSync) error {
	var errs *multierror.Error
	for _, sync := range syncs {
		result, err := s.Sync(ctx, sessionID, sync.ContextID, sync.Path)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		if !result.Success {
			errs = multierror.Append(errs, apperrors.New(apperrors.ErrCodeContextSync,
				fmt.Sprintf("context %s: %s", sync.ContextID, result.ErrorMessage), nil))
		}
	}
	return errs.ErrorOrNil()
}
