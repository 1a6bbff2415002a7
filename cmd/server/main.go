package main

import (
	"context"
	"fmt"
	"github.com/ZertGraf/bugtracker/internal/bootstrap"

	"os"
	"os/signal"
	"syscall"
	"time"
)

const version = "0.1.0"

func main() {
	// create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.New()
	if err != nil {
		fmt.Printf("failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	// connect, migrate, start serving
	if err = app.Init(ctx); err != nil {
		app.Logger.Error("failed to start application", "error", err)
		os.Exit(1)
	}

	setupGracefulShutdown(ctx, cancel, app)

	app.Logger.Info("bugtracker service started",
		"version", version,
		"environment", app.Config.Environment,
		"log_level", app.Config.LogLevel,
		"port", app.Config.ServerPort)

	<-ctx.Done()
	app.Logger.Info("received shutdown signal, initiating graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err = app.Shutdown(shutdownCtx); err != nil {
		app.Logger.Error("application shutdown failed", "error", err)
		os.Exit(1)
	}

	app.Logger.Info("service stopped gracefully")
}

// setupGracefulShutdown configures signal handling for clean shutdown
func setupGracefulShutdown(ctx context.Context, cancel context.CancelFunc, app *bootstrap.Application) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			app.Logger.Info("received shutdown signal", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()
}
