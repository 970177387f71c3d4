// Package logging builds the process logger.
//
// The terminal belongs to the TUI, so the default destination is a log file
// in the config directory:
//
//	log, closer, err := logging.New(cfg.Logging)
//	if err != nil {
//	    return err
//	}
//	defer closer.Close()
//	log.Info("started")
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"surfplug/config"
)

// FileName is the log file created in the config directory when no path is
// configured.
const FileName = "surfplug.log"

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New creates a logger for cfg. The returned closer releases the log file,
// if one was opened.
func New(cfg config.Logging) (*slog.Logger, io.Closer, error) {
	var (
		output io.Writer
		closer io.Closer = nopCloser{}
	)
	switch strings.ToLower(cfg.Output) {
	case "stderr":
		output = os.Stderr
	case "stdout":
		output = os.Stdout
	default:
		f, err := openFile(cfg.File)
		if err != nil {
			return nil, nil, err
		}
		output, closer = f, f
	}

	return slog.New(newHandler(output, cfg)), closer, nil
}

func newHandler(w io.Writer, cfg config.Logging) slog.Handler {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return handler.WithAttrs([]slog.Attr{slog.String("service", "surfplug")})
}

// openFile truncates the log on every start, like a debug log.
func openFile(path string) (*os.File, error) {
	if path == "" {
		dir, err := config.Dir()
		if err != nil {
			return nil, fmt.Errorf("log dir: %w", err)
		}
		path = filepath.Join(dir, FileName)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	return f, nil
}

// parseLevel converts a string log level to slog.Level. Unknown levels are
// info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
