package storage

import "github.com/agentbay/agentbay-go/pkg/agentbay/api"

// Context is a remote persistent storage unit that can be synced into a
// session's filesystem.
type Context struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	State  string `json:"state,omitempty"`
	OSType string `json:"osType,omitempty"`
}

// Upload and download strategies for a SyncPolicy.
const (
	UploadBeforeResourceRelease = "UploadBeforeResourceRelease"
	UploadPeriodically          = "UploadPeriodically"
	DownloadAsync               = "DownloadAsync"
	DownloadSync                = "DownloadSync"
)

// SyncPolicy controls when context data moves between the backend store and
// a session's filesystem. The yaml tags let policy files be loaded directly
// by the CLI.
type SyncPolicy struct {
	UploadStrategy   string `json:"uploadStrategy,omitempty" yaml:"uploadStrategy"`
	DownloadStrategy string `json:"downloadStrategy,omitempty" yaml:"downloadStrategy"`
	PeriodSeconds    int32  `json:"periodSeconds,omitempty" yaml:"periodSeconds"`
}

// DefaultSyncPolicy returns the policy applied when a ContextSync omits one.
func DefaultSyncPolicy() *SyncPolicy {
	return &SyncPolicy{
		UploadStrategy:   UploadBeforeResourceRelease,
		DownloadStrategy: DownloadAsync,
	}
}

// ContextSync binds a context to a path inside a session.
type ContextSync struct {
	ContextID string      `json:"contextId" yaml:"contextId"`
	Path      string      `json:"path" yaml:"path"`
	Policy    *SyncPolicy `json:"policy,omitempty" yaml:"policy,omitempty"`
}

// NewContextSync creates a ContextSync with the default policy when none is
// given.
func NewContextSync(contextID, path string, policy *SyncPolicy) *ContextSync {
	if policy == nil {
		policy = DefaultSyncPolicy()
	}
	return &ContextSync{ContextID: contextID, Path: path, Policy: policy}
}

// ContextResult is the envelope returned by Get and Create
type ContextResult struct {
	api.Response
	Success      bool
	ErrorMessage string
	Context      *Context
}

// ContextListResult is the envelope returned by List
type ContextListResult struct {
	api.Response
	Success      bool
	ErrorMessage string
	Contexts     []Context
}

// ContextDeleteResult is the envelope returned by Delete
type ContextDeleteResult struct {
	api.Response
	Success      bool
	ErrorMessage string
}

// SyncResult is the envelope returned by Sync
type SyncResult struct {
	api.Response
	Success      bool
	ErrorMessage string
}

// Wire shapes for context actions.

type getContextRequest struct {
	Name        string `json:"name"`
	AllowCreate bool   `json:"allowCreate,omitempty"`
}

type contextIDRequest struct {
	ContextID string `json:"contextId"`
}

type updateContextRequest struct {
	ContextID string `json:"contextId"`
	Name      string `json:"name"`
}

type syncContextRequest struct {
	SessionID string `json:"sessionId"`
	ContextID string `json:"contextId"`
	Path      string `json:"path,omitempty"`
}

type contextListData struct {
	Contexts []Context `json:"contexts"`
}
