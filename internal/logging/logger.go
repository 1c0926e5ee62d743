// Package logging builds the slog loggers used by oauth-risk. Records go to
// stderr; stdout carries assessment JSON only.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	EnvFormat = "LOG_FORMAT"
	EnvLevel  = "LOG_LEVEL"

	// AppName is attached to every record as the app attribute.
	AppName = "oauth-risk"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

type Config struct {
	Format Format
	Level  slog.Level
	// AddSource records the caller's file:line. ParseConfig turns it on at
	// debug level and below.
	AddSource bool
}

// BootstrapOptions controls logger installation. Writer defaults to stderr.
type BootstrapOptions struct {
	Command string
	Writer  io.Writer
}

func DefaultConfig() Config {
	return Config{Format: FormatJSON, Level: slog.LevelInfo}
}

func LoadConfigFromEnv() (Config, error) {
	return ParseConfig(os.Getenv(EnvFormat), os.Getenv(EnvLevel))
}

// ParseConfig validates raw LOG_FORMAT and LOG_LEVEL values. Empty values
// keep the defaults. Levels accept slog's names with an optional offset
// (for example "warn" or "info+2") plus the "warning" alias.
func ParseConfig(format, level string) (Config, error) {
	cfg := DefaultConfig()

	switch f := Format(strings.ToLower(strings.TrimSpace(format))); f {
	case "":
	case FormatJSON, FormatText:
		cfg.Format = f
	default:
		return Config{}, fmt.Errorf("%s=%q: want json or text", EnvFormat, format)
	}

	if raw := strings.TrimSpace(level); raw != "" {
		if strings.EqualFold(raw, "warning") {
			raw = "warn"
		}
		if err := cfg.Level.UnmarshalText([]byte(raw)); err != nil {
			return Config{}, fmt.Errorf("%s=%q: want debug, info, warn or error", EnvLevel, level)
		}
	}

	cfg.AddSource = cfg.Level <= slog.LevelDebug
	return cfg, nil
}

func (f Format) handler(w io.Writer, opts *slog.HandlerOptions) slog.Handler {
	if Format(strings.ToLower(string(f))) == FormatText {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// NewLogger builds a logger tagged with the app name and the CLI command
// path. A blank command is recorded as the app name.
func NewLogger(cfg Config, w io.Writer, command string) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	h := cfg.Format.handler(w, &slog.HandlerOptions{Level: cfg.Level, AddSource: cfg.AddSource})

	if command = strings.TrimSpace(command); command == "" {
		command = AppName
	}
	return slog.New(h).With(slog.String("app", AppName), slog.String("command", command))
}

// BootstrapFromEnv installs the env-configured logger as the slog default.
func BootstrapFromEnv(opts BootstrapOptions) (*slog.Logger, error) {
	cfg, err := LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	logger := NewLogger(cfg, opts.Writer, opts.Command)
	slog.SetDefault(logger)
	return logger, nil
}

// ForFailure returns the logger used to report a failed command. Invalid
// logging env falls back to the defaults so the failure is still recorded.
func ForFailure(w io.Writer, command string) *slog.Logger {
	cfg, err := LoadConfigFromEnv()
	if err != nil {
		cfg = DefaultConfig()
	}
	return NewLogger(cfg, w, command)
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
