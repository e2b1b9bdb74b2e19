// Package logs configures the pipeline logger.
package logs

import (
	"fmt"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

var level = new(slog.LevelVar)

// SetDebug lowers the log level to debug.
func SetDebug() { level.Set(slog.LevelDebug) }

// New builds the logger: a text handler on stderr, fanned out to a JSON
// audit file when auditPath is set. The returned closer flushes the audit
// file; it is safe to call when no audit file was opened.
func New(auditPath string) (*slog.Logger, func() error, error) {
	handlers := []slog.Handler{
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}),
	}
	closer := func() error { return nil }

	if auditPath != "" {
		f, err := os.OpenFile(auditPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("logs: open audit file: %w", err)
		}
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
		closer = f.Close
	}

	return slog.New(slogmulti.Fanout(handlers...)), closer, nil
}
