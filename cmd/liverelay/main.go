// Command liverelay serves a static web client, relays its WebSocket
// sessions to the Gemini Live API and answers OpenAI-style API calls.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/liverelay/app"
	"github.com/dmitrymomot/liverelay/core/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.NewApp()
	if err != nil {
		slog.Error("failed to initialize application", logger.Error(err))
		os.Exit(1)
	}
	logger.SetAsDefault(a.Logger())

	if err := a.Run(ctx); err != nil {
		a.Logger().Error("application failed", logger.Error(err))
		os.Exit(1)
	}
}
