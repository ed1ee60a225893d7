package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/scorecast/internal/loadtest"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := loadtest.NewCommand(os.Stdout).Run(ctx, os.Args); err != nil {
		os.Stderr.WriteString("load test failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
