// Package cmd contains the command-line entry points for the
// AnswerDesk API server.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/answerdesk/answerdesk/internal/log"
)

// Version information (injected at build time via ldflags).
var (
	AppVersion = "0.1.0"
	BuildTime  = "unknown"
	GitCommit  = "unknown"
)

// Execute is the main entry point. It handles flag dispatch and starts
// the HTTP server; version and help work even when config is invalid.
func Execute() error {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version", "--version", "-v":
			printVersionInfo()
			return nil
		case "help", "--help", "-h":
			printHelp()
			return nil
		}
	}

	logger := initLogger()
	slog.SetDefault(logger)

	if err := checkRequiredEnv(); err != nil {
		return err
	}

	return runServe(logger)
}

// initLogger builds the structured logger. DEBUG in the environment
// enables debug level; logs go to stderr so stdout stays clean for
// tooling.
func initLogger() log.Logger {
	return log.NewWithWriter(os.Stderr, log.Config{
		Level: logLevel(),
		JSON:  os.Getenv("ANSWERDESK_LOG_JSON") != "",
	})
}

func logLevel() slog.Level {
	if os.Getenv("DEBUG") != "" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// checkRequiredEnv verifies required environment variables before any
// expensive initialization.
func checkRequiredEnv() error {
	if os.Getenv("GEMINI_API_KEY") == "" {
		fmt.Fprintln(os.Stderr, "Error: GEMINI_API_KEY environment variable not set")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "AnswerDesk requires a Gemini API key for embeddings and generation.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "To set your API key:")
		fmt.Fprintln(os.Stderr, "  export GEMINI_API_KEY=your-api-key")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Get your API key at: https://ai.google.dev/")

		return fmt.Errorf("GEMINI_API_KEY not set")
	}
	return nil
}

func printVersionInfo() {
	fmt.Printf("AnswerDesk v%s\n", AppVersion)
	fmt.Printf("Build: %s\n", BuildTime)
	fmt.Printf("Commit: %s\n", GitCommit)
}

func printHelp() {
	fmt.Println("AnswerDesk - retrieval-augmented customer support API")
	fmt.Println("")
	fmt.Println("Usage:")
	fmt.Println("  answerdesk [addr]        Start the HTTP API server")
	fmt.Println("  answerdesk version       Show version information")
	fmt.Println("  answerdesk help          Show this help")
	fmt.Println("")
	fmt.Println("Environment:")
	fmt.Println("  GEMINI_API_KEY           Gemini API key (required)")
	fmt.Println("  DATABASE_URL             PostgreSQL URL (overrides postgres_* config)")
	fmt.Println("  DEBUG                    Enable debug logging")
}
