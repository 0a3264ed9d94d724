package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/xrtkcfg/xrtkcfg/cmd/xrtkcfg/commands"
)

// Version information (set via ldflags during build)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func main() {
	setupLogging()

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Debug().Msg("Received interrupt signal, cancelling")
		cancel()
	}()

	err := commands.Execute(ctx, Version, Commit, BuildDate)
	cancel()
	if err != nil {
		commands.PrintError(os.Stderr, err)
	}
	os.Exit(commands.ExitCode(err))
}

// setupLogging configures the global zerolog logger used before the
// configuration file has been read. The per-invocation logger built from the
// configuration sets its own level.
func setupLogging() {
	level := zerolog.WarnLevel
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "error":
		level = zerolog.ErrorLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)
}
