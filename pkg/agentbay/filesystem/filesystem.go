// Package filesystem manipulates files inside a remote session, including a
// polling directory watch.
package filesystem

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/agentbay/agentbay-go/pkg/agentbay/errors"

	"github.com/agentbay/agentbay-go/pkg/agentbay/api"
)

// Backend actions for remote file operations.
const (
	ActionReadFile      = "ReadFile"
	ActionWriteFile     = "WriteFile"
	ActionListDirectory = "ListDirectory"
	ActionGetFileChange = "GetFileChange"
)

const DefaultWatchInterval = 500 * time.Millisecond

// FileSystem is the per-session remote file client.
type FileSystem struct {
	caller    api.Caller
	sessionID string
}

// New creates a new FileSystem client bound to a session
func New(caller api.Caller, sessionID string) *FileSystem {
	return &FileSystem{caller: caller, sessionID: sessionID}
}

// FileReadResult is the envelope returned by ReadFile
type FileReadResult struct {
	api.Response
	Success      bool
	ErrorMessage string
	Content      string
}

// FileWriteResult is the envelope returned by WriteFile
type FileWriteResult struct {
	api.Response
	Success      bool
	ErrorMessage string
}

// DirectoryEntry describes one entry in a remote directory listing
type DirectoryEntry struct {
	Name        string `json:"name"`
	IsDirectory bool   `json:"isDirectory"`
	Size        int64  `json:"size,omitempty"`
}

// DirectoryListResult is the envelope returned by ListDirectory
type DirectoryListResult struct {
	api.Response
	Success      bool
	ErrorMessage string
	Entries      []DirectoryEntry
}

// ChangeEvent describes one filesystem change observed by the backend
type ChangeEvent struct {
	EventType string `json:"eventType"`
	Path      string `json:"path"`
	PathType  string `json:"pathType"`
}

type fileRequest struct {
	SessionID string `json:"sessionId"`
	Path      string `json:"path"`
	Content   string `json:"content,omitempty"`
	Mode      string `json:"mode,omitempty"`
}

type fileReadData struct {
	Content string `json:"content"`
}

type directoryListData struct {
	Entries []DirectoryEntry `json:"entries"`
}

type fileChangeData struct {
	Events []ChangeEvent `json:"events"`
}

// ReadFile reads a remote file. An empty path fails locally.
func (f *FileSystem) ReadFile(ctx context.Context, path string) (*FileReadResult, error) {
	if strings.TrimSpace(path) == "" {
		return &FileReadResult{Success: false, ErrorMessage: "path is required"}, nil
	}

	var data fileReadData
	result, err := f.caller.CallIdempotent(ctx, ActionReadFile, &fileRequest{
		SessionID: f.sessionID,
		Path:      path,
	}, &data)
	if err != nil {
		return nil, err
	}

	out := &FileReadResult{Success: result.Success, ErrorMessage: result.ErrorMessage}
	out.RequestID = result.RequestID
	if result.Success {
		out.Content = data.Content
	}
	return out, nil
}

// WriteFile writes a remote file. Mode "overwrite" or "append"; empty means
// overwrite.
func (f *FileSystem) WriteFile(ctx context.Context, path, content, mode string) (*FileWriteResult, error) {
	if strings.TrimSpace(path) == "" {
		return &FileWriteResult{Success: false, ErrorMessage: "path is required"}, nil
	}

	result, err := f.caller.Call(ctx, ActionWriteFile, &fileRequest{
		SessionID: f.sessionID,
		Path:      path,
		Content:   content,
		Mode:      mode,
	}, nil)
	if err != nil {
		return nil, err
	}

	out := &FileWriteResult{Success: result.Success, ErrorMessage: result.ErrorMessage}
	out.RequestID = result.RequestID
	return out, nil
}

// ListDirectory lists a remote directory.
func (f *FileSystem) ListDirectory(ctx context.Context, path string) (*DirectoryListResult, error) {
	if strings.TrimSpace(path) == "" {
		return &DirectoryListResult{Success: false, ErrorMessage: "path is required"}, nil
	}

	var data directoryListData
	result, err := f.caller.CallIdempotent(ctx, ActionListDirectory, &fileRequest{
		SessionID: f.sessionID,
		Path:      path,
	}, &data)
	if err != nil {
		return nil, err
	}

	out := &DirectoryListResult{Success: result.Success, ErrorMessage: result.ErrorMessage}
	out.RequestID = result.RequestID
	if result.Success {
		out.Entries = data.Entries
	}
	return out, nil
}

// WatchDirectory polls the backend for changes under path and delivers them
// in batches on the returned channel. Empty polls produce no batch. The loop
// stops and the channel closes when ctx is cancelled; transient poll failures
// are skipped and the next tick retries.
func (f *FileSystem) WatchDirectory(ctx context.Context, path string, interval time.Duration) (<-chan []ChangeEvent, error) {
	if strings.TrimSpace(path) == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "path is required", nil)
	}
	if interval <= 0 {
		interval = DefaultWatchInterval
	}

	events := make(chan []ChangeEvent)
	go func() {
		defer close(events)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				batch, err := f.pollChanges(ctx, path)
				if err != nil || len(batch) == 0 {
					continue
				}
				select {
				case events <- batch:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return events, nil
}

func (f *FileSystem) pollChanges(ctx context.Context, path string) ([]ChangeEvent, error) {
	var data fileChangeData
	result, err := f.caller.CallIdempotent(ctx, ActionGetFileChange, &fileRequest{
		SessionID: f.sessionID,
		Path:      path,
	}, &data)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, apperrors.New(apperrors.ErrCodeFileOperation, result.ErrorMessage, nil)
	}
	return data.Events, nil
}
