package command_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentbay/agentbay-go/internal/testutil"
	"github.com/agentbay/agentbay-go/pkg/agentbay/api"
	"github.com/agentbay/agentbay-go/pkg/agentbay/command"
)

func newTestCommand(t *testing.T) (*command.Command, *testutil.Backend) {
	t.Helper()
	backend := testutil.NewBackend()
	t.Cleanup(backend.Close)
	backend.SeedSession("session-cmd", nil)

	caller := api.NewClient(api.StaticCredential("test-key"),
		api.WithEndpoint(backend.URL()))
	return command.New(caller, "session-cmd"), backend
}

func TestCommand_ExecuteCommand(t *testing.T) {
	cmd, _ := newTestCommand(t)

	result, err := cmd.ExecuteCommand(context.Background(), "echo hello", 0)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.NotEmpty(t, result.RequestID)
	assert.NotEmpty(t, result.Output)
}

func TestCommand_ExecuteCommand_Empty(t *testing.T) {
	cmd, backend := newTestCommand(t)

	result, err := cmd.ExecuteCommand(context.Background(), "   ", 0)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Contains(t, result.ErrorMessage, "command is required")
	assert.Empty(t, result.RequestID)
	assert.Equal(t, 0, backend.CallCount(command.ActionExecuteCommand))
}

func TestCommand_ExecuteCommand_UnknownSession(t *testing.T) {
	backend := testutil.NewBackend()
	t.Cleanup(backend.Close)

	caller := api.NewClient(api.StaticCredential("test-key"),
		api.WithEndpoint(backend.URL()))
	cmd := command.New(caller, "never-created")

	result, err := cmd.ExecuteCommand(context.Background(), "echo hello", 0)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.RequestID)
}

func TestCommand_RunCode(t *testing.T) {
	cmd, _ := newTestCommand(t)

	result, err := cmd.RunCode(context.Background(), "print('hi')", "python", 0)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.NotEmpty(t, result.Output)
}

func TestCommand_RunCode_Validation(t *testing.T) {
	cmd, backend := newTestCommand(t)

	result, err := cmd.RunCode(context.Background(), "", "python", 0)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.ErrorMessage, "code is required")

	result, err = cmd.RunCode(context.Background(), "print('hi')", " ", 0)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.ErrorMessage, "language is required")

	assert.Equal(t, 0, backend.CallCount(command.ActionRunCode))
}
