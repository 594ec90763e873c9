package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/prepdeck/internal/smoke"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := smoke.NewCommand().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
