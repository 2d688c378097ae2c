// internal/logging/logging.go
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// New builds the process logger: text on w, plus JSON lines in file
// when file is set. The returned closer releases the file.
func New(w io.Writer, level, file string) (*slog.Logger, func() error, error) {
	var lvl slog.Level
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, nil, fmt.Errorf("logging: %w", err)
		}
	}
	opts := &slog.HandlerOptions{Level: lvl}

	handlers := []slog.Handler{slog.NewTextHandler(w, opts)}
	closer := func() error { return nil }

	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("logging: open %s: %w", file, err)
		}
		handlers = append(handlers, slog.NewJSONHandler(f, opts))
		closer = f.Close
	}

	return slog.New(slogmulti.Fanout(handlers...)), closer, nil
}
