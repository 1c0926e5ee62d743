package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/open-sspm/oauth-risk/internal/ingest"
)

// writeJSON prints v as one JSON document. Output is indented when pretty is
// set or w is an interactive terminal.
func writeJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty || isTerminal(w) {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// parseNow reads the --now flag. Empty defers to the request, then the clock.
func parseNow(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	now, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("--now must be RFC3339: %w", err)
	}
	return now.UTC(), nil
}

// readRequests loads requests from a file or directory, or from stdin when
// path is "-".
func readRequests(stdin io.Reader, path string) ([]ingest.Request, error) {
	path = strings.TrimSpace(path)
	switch path {
	case "":
		return nil, errors.New("--input is required")
	case "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, err
		}
		return ingest.Decode(data)
	default:
		return ingest.ReadPath(path)
	}
}
