package scopelib

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

const (
	SourceEmbedded = "embedded"
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

var ErrUnknownSource = errors.New("unknown scope library source")

// Loader produces a fresh Library from its backing store.
type Loader interface {
	Source() string
	Load(ctx context.Context) (*Library, error)
}

type EmbeddedLoader struct{}

func (EmbeddedLoader) Source() string { return SourceEmbedded }

func (EmbeddedLoader) Load(context.Context) (*Library, error) {
	return Embedded()
}

type FileLoader struct {
	Path string
}

func (l FileLoader) Source() string { return SourceFile }

func (l FileLoader) Load(context.Context) (*Library, error) {
	path := strings.TrimSpace(l.Path)
	if path == "" {
		return nil, errors.New("scope library path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scope library: %w", err)
	}
	lib, err := ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("parse scope library %s: %w", path, err)
	}
	return lib, nil
}

// ValidateSource normalizes a configured source name.
func ValidateSource(raw string) (string, error) {
	source := strings.ToLower(strings.TrimSpace(raw))
	if source == "" {
		return SourceEmbedded, nil
	}
	switch source {
	case SourceEmbedded, SourceFile, SourcePostgres:
		return source, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSource, raw)
	}
}
