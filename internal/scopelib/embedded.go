package scopelib

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed library.yaml
var embeddedLibraryYAML []byte

var (
	embeddedOnce sync.Once
	embeddedLib  *Library
	embeddedErr  error
)

type libraryDocument struct {
	Version string  `yaml:"version"`
	Scopes  []Entry `yaml:"scopes"`
}

// Embedded returns the scope library compiled into the binary.
func Embedded() (*Library, error) {
	embeddedOnce.Do(func() {
		embeddedLib, embeddedErr = ParseYAML(embeddedLibraryYAML)
		if embeddedErr != nil {
			embeddedErr = fmt.Errorf("parse embedded scope library: %w", embeddedErr)
		}
	})
	return embeddedLib, embeddedErr
}

// ParseYAML decodes a scope library document.
func ParseYAML(data []byte) (*Library, error) {
	var doc libraryDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Scopes) == 0 {
		return nil, fmt.Errorf("scope library has no entries")
	}
	return NewLibrary(doc.Version, doc.Scopes)
}
