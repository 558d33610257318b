package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"gitlab.bluewillows.net/root/failoverctl/internal/config"
)

// loadConfig loads the controller's configuration, honoring a --config
// flag by setting FAILOVERCTL_CONFIG before delegating to config.Load, the
// same priority config.Load itself documents (env var takes precedence
// over a flag-set path only if the env var was already set).
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if cmd != nil {
		if path, err := cmd.Flags().GetString("config"); err == nil && path != "" {
			if os.Getenv("FAILOVERCTL_CONFIG") == "" {
				_ = os.Setenv("FAILOVERCTL_CONFIG", path)
			}
		}
	}
	return config.Load()
}

// setupLogger builds the structured logger per cfg's log level/format,
// exactly as the teacher's cmd/dnsweaver/main.go setupLogger does.
func setupLogger(level, format string) *slog.Logger {
	logLevel := parseLogLevel(level)

	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	}

	return slog.New(handler)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
