package scopelib

import (
	"fmt"
	"sort"
	"strings"
)

// Reference resolves a scope to its risk metadata. Implementations must be
// safe for concurrent reads and must not block.
type Reference interface {
	Lookup(scope string) (Entry, bool)
}

// Library is an immutable, map-backed Reference.
type Library struct {
	version string
	entries map[string]Entry
}

var _ Reference = (*Library)(nil)

// NewLibrary validates entries and indexes them by normalized scope.
func NewLibrary(version string, entries []Entry) (*Library, error) {
	lib := &Library{
		version: strings.TrimSpace(version),
		entries: make(map[string]Entry, len(entries)),
	}
	for i, entry := range entries {
		key := NormalizeScope(entry.Scope)
		if key == "" {
			return nil, fmt.Errorf("scope library entry %d: scope is required", i)
		}
		if _, ok := lib.entries[key]; ok {
			return nil, fmt.Errorf("scope library entry %q: duplicate scope", key)
		}
		level, ok := ParseRiskLevel(string(entry.RiskLevel))
		if !ok {
			return nil, fmt.Errorf("scope library entry %q: invalid risk level %q", key, entry.RiskLevel)
		}
		if entry.RiskScore < 0 || entry.RiskScore > 100 {
			return nil, fmt.Errorf("scope library entry %q: risk score %d out of range", key, entry.RiskScore)
		}
		entry.RiskLevel = level
		if entry.Elevated() != (entry.RiskScore >= ElevatedScoreFloor) {
			return nil, fmt.Errorf("scope library entry %q: risk score %d does not match level %s", key, entry.RiskScore, level)
		}
		entry.Scope = key
		entry.Service = strings.ToLower(strings.TrimSpace(entry.Service))
		entry.AccessLevel = strings.ToLower(strings.TrimSpace(entry.AccessLevel))
		entry.RecommendedAlternative = NormalizeScope(entry.RecommendedAlternative)
		lib.entries[key] = entry
	}
	return lib, nil
}

func (l *Library) Lookup(scope string) (Entry, bool) {
	if l == nil {
		return Entry{}, false
	}
	entry, ok := l.entries[NormalizeScope(scope)]
	return entry, ok
}

func (l *Library) Version() string {
	if l == nil {
		return ""
	}
	return l.version
}

func (l *Library) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

// Entries returns all entries sorted by descending risk, then scope.
func (l *Library) Entries() []Entry {
	if l == nil {
		return nil
	}
	out := make([]Entry, 0, len(l.entries))
	for _, entry := range l.entries {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RiskScore != out[j].RiskScore {
			return out[i].RiskScore > out[j].RiskScore
		}
		return out[i].Scope < out[j].Scope
	})
	return out
}

// Resolve looks up scope and falls back to UnknownEntry on a miss. The
// boolean reports whether the reference knew the scope.
func Resolve(ref Reference, scope string) (Entry, bool) {
	key := NormalizeScope(scope)
	if ref != nil {
		if entry, ok := ref.Lookup(key); ok {
			return entry, true
		}
	}
	return UnknownEntry(key), false
}
