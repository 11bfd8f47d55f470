// Package cmd provides the askphys CLI commands.
//
// Commands:
//   - ingest: index a corpus directory into the vector store
//   - serve: HTTP API server
//   - ask: one-shot question answering on the terminal
//
// Signal handling and graceful shutdown are implemented for all
// long-running commands via context cancellation.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/askphys/askphys/internal/log"
)

// Execute is the main entry point for the askphys CLI.
func Execute() error {
	// A local .env is convenient in development; absence is fine.
	_ = godotenv.Load()

	logger := initLogger()
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		runHelp()
		return nil
	}

	switch os.Args[1] {
	case "ingest":
		return runIngest(logger, os.Args[2:])
	case "serve":
		return runServe(logger, os.Args[2:])
	case "ask":
		return runAsk(logger, os.Args[2:])
	case "version", "--version", "-v":
		runVersion()
		return nil
	case "help", "--help", "-h":
		runHelp()
		return nil
	default:
		return fmt.Errorf("unknown command: %s", os.Args[1])
	}
}

// initLogger builds the process logger. DEBUG=1 enables debug level,
// ASKPHYS_LOG_JSON=1 switches to JSON output for log shippers.
func initLogger() log.Logger {
	return log.New(log.Config{
		Level: logLevel(),
		JSON:  os.Getenv("ASKPHYS_LOG_JSON") != "",
	})
}

func logLevel() slog.Level {
	if os.Getenv("DEBUG") != "" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// runHelp displays the help message.
func runHelp() {
	fmt.Println("askphys - physics course assistant backed by your own notes")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  askphys ingest [-dir path] [-force]  Index the corpus directory")
	fmt.Println("  askphys serve [addr]                 Start HTTP API server (default: 127.0.0.1:3400)")
	fmt.Println("  askphys ask <question>               Ask a question on the terminal")
	fmt.Println("  askphys --version                    Show version information")
	fmt.Println("  askphys --help                       Show this help")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  GEMINI_API_KEY     Gemini API key (required for the gemini provider)")
	fmt.Println("  DATABASE_URL       PostgreSQL URL (overrides ASKPHYS_POSTGRES_*)")
	fmt.Println("  DEBUG              Enable debug logging")
	fmt.Println("  ASKPHYS_LOG_JSON   Emit JSON logs")
}
