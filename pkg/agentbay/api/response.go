package api

import "encoding/json"

// Response is embedded in every operation result and carries the request
// identifier assigned by the backend. RequestID is empty when local validation
// rejected the call before any network traffic.
type Response struct {
	RequestID string `json:"requestId"`
}

// CallResult reports the logical outcome of a single backend call.
type CallResult struct {
	RequestID    string
	Success      bool
	Code         string
	ErrorMessage string
}

// rawResponse is the wire envelope returned by the backend for every action.
type rawResponse struct {
	RequestID      string          `json:"requestId"`
	Code           string          `json:"code"`
	HTTPStatusCode int             `json:"httpStatusCode"`
	Success        bool            `json:"success"`
	ErrorMessage   string          `json:"errorMessage,omitempty"`
	Data           json.RawMessage `json:"data,omitempty"`
}
