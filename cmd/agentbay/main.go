package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/agentbay/agentbay-go/internal/cli/agentbay"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cli.NewAgentBayCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
