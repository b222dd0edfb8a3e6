package session

import (
	"github.com/agentbay/agentbay-go/pkg/agentbay/api"
	"github.com/agentbay/agentbay-go/pkg/agentbay/storage"
)

const DefaultListMaxResults int32 = 10

// CreateSessionParams holds the parameters for creating a new session
type CreateSessionParams struct {
	ImageID      string
	Labels       map[string]string
	ContextSyncs []storage.ContextSync
	ExtraConfigs map[string]string
}

// ListSessionParams holds the parameters for a label-filtered session query
type ListSessionParams struct {
	Labels     map[string]string
	MaxResults int32
	NextToken  string
}

// SessionResult is the envelope returned by Create and Get
type SessionResult struct {
	api.Response
	Success      bool
	ErrorMessage string
	Session      *Session
}

// DeleteResult is the envelope returned by Delete
type DeleteResult struct {
	api.Response
	Success      bool
	ErrorMessage string
}

// LabelResult is the envelope returned by SetLabels and GetLabels
type LabelResult struct {
	api.Response
	Success      bool
	ErrorMessage string
	Labels       map[string]string
}

// InfoResult is the envelope returned by Info
type InfoResult struct {
	api.Response
	Success      bool
	ErrorMessage string
	ResourceURL  string
}

// SessionSummary describes one session in a list query response
type SessionSummary struct {
	SessionID string `json:"sessionId"`
	Labels    string `json:"labels,omitempty"`
}

// SessionListResult is the envelope returned by ListByLabels. A non-empty
// NextToken means more results exist; its absence marks the final page.
type SessionListResult struct {
	api.Response
	Success      bool
	ErrorMessage string
	Sessions     []SessionSummary
	NextToken    string
	MaxResults   int32
	TotalCount   int32
}

// Wire shapes for session actions.

type createSessionRequest struct {
	ImageID      string                `json:"imageId,omitempty"`
	Labels       string                `json:"labels,omitempty"`
	ContextSyncs []storage.ContextSync `json:"contextSyncs,omitempty"`
	ExtraConfigs map[string]string     `json:"extraConfigs,omitempty"`
}

type getSessionRequest struct {
	SessionID string `json:"sessionId"`
}

type listSessionRequest struct {
	Labels     string `json:"labels"`
	MaxResults int32  `json:"maxResults,omitempty"`
	NextToken  string `json:"nextToken,omitempty"`
}

type releaseSessionRequest struct {
	SessionID   string `json:"sessionId"`
	SyncContext bool   `json:"syncContext,omitempty"`
}

type setLabelsRequest struct {
	SessionID string `json:"sessionId"`
	Labels    string `json:"labels"`
}

type sessionData struct {
	SessionID             string `json:"sessionId"`
	ResourceURL           string `json:"resourceUrl,omitempty"`
	Labels                string `json:"labels,omitempty"`
	FileTransferContextID string `json:"fileTransferContextId,omitempty"`
}

type listSessionData struct {
	Sessions   []SessionSummary `json:"sessions"`
	NextToken  string           `json:"nextToken,omitempty"`
	MaxResults int32            `json:"maxResults,omitempty"`
	TotalCount int32            `json:"totalCount,omitempty"`
}

type infoData struct {
	SessionID   string `json:"sessionId"`
	ResourceURL string `json:"resourceUrl,omitempty"`
}

type labelsData struct {
	Labels string `json:"labels,omitempty"`
}
