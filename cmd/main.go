package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/invsync/internal/shared"
)

// exitRunFailed is the exit status of a run that finished with operation errors.
const exitRunFailed = 2

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := runner.command().Run(ctx, os.Args)
	stop()

	if err != nil {
		if errors.Is(err, errRunFailed) {
			logger.Error(err)
			os.Exit(exitRunFailed)
		}
		logger.Fatalf("application error: %v", err)
	}
}
