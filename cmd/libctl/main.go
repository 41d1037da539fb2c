package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"libraryapi/internal/app"
	"libraryapi/internal/config"
	"libraryapi/internal/platform/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := &cli{out: os.Stdout, connect: connect}
	rootCmd := newRootCommand(c)
	err := rootCmd.ExecuteContext(ctx)
	c.close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "libctl: %v\n", err)
		os.Exit(1)
	}
}

func connect(ctx context.Context) (*services, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return &services{books: application.Books, ledger: application.Borrowing}, application.Close, nil
}
