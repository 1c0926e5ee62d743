package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Decode reads one request or a list of requests. JSON is detected by a
// leading '{' or '['; anything else is parsed as YAML.
func Decode(data []byte) ([]Request, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty request document")
	}
	if data[0] != '{' && data[0] != '[' {
		converted, err := yamlToJSON(data)
		if err != nil {
			return nil, err
		}
		data = converted
	}

	if data[0] == '[' {
		var reqs []Request
		if err := json.Unmarshal(data, &reqs); err != nil {
			return nil, fmt.Errorf("decode request list: %w", err)
		}
		return reqs, nil
	}
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}
	return []Request{req}, nil
}

// yamlToJSON routes YAML through a generic value so the JSON tags on the
// request types stay the single source of field names.
func yamlToJSON(data []byte) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse yaml request: %w", err)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("convert yaml request: %w", err)
	}
	return bytes.TrimSpace(out), nil
}

// ReadFile decodes every request in path.
func ReadFile(path string) ([]Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	reqs, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reqs, nil
}

// ReadPath decodes a single file, or every .json/.yaml/.yml file in a
// directory in lexical order.
func ReadPath(path string) ([]Request, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return ReadFile(path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".json", ".yaml", ".yml":
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var out []Request
	for _, name := range names {
		reqs, err := ReadFile(filepath.Join(path, name))
		if err != nil {
			return nil, err
		}
		out = append(out, reqs...)
	}
	return out, nil
}
