package command

import (
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/Konsultn-Engineering/bqlab/config"
)

// newLogger builds the process logger. Every record carries the session id
// so that log lines from one invocation can be grouped.
func newLogger(cfg config.LogConfig, w io.Writer, session string) (*slog.Logger, error) {
	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With("session", session), nil
}

func newSessionID() string {
	return uuid.NewString()
}
