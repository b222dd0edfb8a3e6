// Package command runs shell commands and code snippets inside a remote
// session.
package command

import (
	"context"
	"strings"

	"github.com/agentbay/agentbay-go/pkg/agentbay/api"
)

// Backend actions for remote execution.
const (
	ActionExecuteCommand = "ExecuteCommand"
	ActionRunCode        = "RunCode"
)

const DefaultTimeoutMs int32 = 1000

// Command is the per-session remote execution client.
type Command struct {
	caller    api.Caller
	sessionID string
}

// New creates a new Command client bound to a session
func New(caller api.Caller, sessionID string) *Command {
	return &Command{caller: caller, sessionID: sessionID}
}

// ExecuteResult is the envelope returned by ExecuteCommand and RunCode
type ExecuteResult struct {
	api.Response
	Success      bool
	ErrorMessage string
	Output       string
}

type executeRequest struct {
	SessionID string `json:"sessionId"`
	Command   string `json:"command,omitempty"`
	Code      string `json:"code,omitempty"`
	Language  string `json:"language,omitempty"`
	TimeoutMs int32  `json:"timeoutMs,omitempty"`
}

type executeData struct {
	Output string `json:"output"`
}

// ExecuteCommand runs a shell command in the session. An empty command fails
// locally without a remote call.
func (c *Command) ExecuteCommand(ctx context.Context, cmd string, timeoutMs int32) (*ExecuteResult, error) {
	if strings.TrimSpace(cmd) == "" {
		return &ExecuteResult{Success: false, ErrorMessage: "command is required"}, nil
	}
	if timeoutMs <= 0 {
		timeoutMs = DefaultTimeoutMs
	}

	var data executeData
	result, err := c.caller.Call(ctx, ActionExecuteCommand, &executeRequest{
		SessionID: c.sessionID,
		Command:   cmd,
		TimeoutMs: timeoutMs,
	}, &data)
	if err != nil {
		return nil, err
	}

	out := &ExecuteResult{Success: result.Success, ErrorMessage: result.ErrorMessage}
	out.RequestID = result.RequestID
	if result.Success {
		out.Output = data.Output
	}
	return out, nil
}

// RunCode executes a code snippet in the session. Code and language are
// required; violations fail locally without a remote call.
func (c *Command) RunCode(ctx context.Context, code, language string, timeoutMs int32) (*ExecuteResult, error) {
	if strings.TrimSpace(code) == "" {
		return &ExecuteResult{Success: false, ErrorMessage: "code is required"}, nil
	}
	if strings.TrimSpace(language) == "" {
		return &ExecuteResult{Success: false, ErrorMessage: "language is required"}, nil
	}
	if timeoutMs <= 0 {
		timeoutMs = DefaultTimeoutMs
	}

	var data executeData
	result, err := c.caller.Call(ctx, ActionRunCode, &executeRequest{
		SessionID: c.sessionID,
		Code:      code,
		Language:  language,
		TimeoutMs: timeoutMs,
	}, &data)
	if err != nil {
		return nil, err
	}

	out := &ExecuteResult{Success: result.Success, ErrorMessage: result.ErrorMessage}
	out.RequestID = result.RequestID
	if result.Success {
		out.Output = data.Output
	}
	return out, nil
}
