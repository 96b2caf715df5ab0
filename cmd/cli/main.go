package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/appian-deploy/appian-deploy/cmd/cli/commands"
	"github.com/appian-deploy/appian-deploy/internal/logger"
)

func main() {
	// Interrupts cancel the context so an in-flight request or poll wait is abandoned
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := commands.Execute(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", logger.Redact(err.Error()))
		os.Exit(commands.ExitCode(err))
	}
}
