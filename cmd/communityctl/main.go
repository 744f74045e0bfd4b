package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/yatube/community/internal/admincli"
	"github.com/yatube/community/pkg/logger"
)

func main() {
	logger.SetOutput(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := admincli.Execute(ctx, admincli.EnvOpener, os.Args[1:], os.Stderr); err != nil {
		stop()
		os.Exit(1)
	}
}
