package scopelib

import "strings"

// resourcePrefixes precede a scope name in fully qualified scope URIs.
var resourcePrefixes = []string{
	"https://www.googleapis.com/auth/",
	"https://graph.microsoft.com/",
}

// NormalizeScope maps a raw scope string onto its library key.
func NormalizeScope(scope string) string {
	normalized := strings.ToLower(strings.TrimSpace(scope))
	if normalized == "" {
		return ""
	}
	for _, prefix := range resourcePrefixes {
		normalized = strings.TrimPrefix(normalized, prefix)
	}
	normalized = strings.TrimPrefix(normalized, "https://")
	normalized = strings.TrimPrefix(normalized, "http://")
	normalized = strings.TrimSuffix(normalized, "/")
	return normalized
}

// NormalizeScopes normalizes and dedupes scopes, keeping first-seen order.
func NormalizeScopes(scopes []string) []string {
	if len(scopes) == 0 {
		return nil
	}
	out := make([]string, 0, len(scopes))
	seen := make(map[string]struct{}, len(scopes))
	for _, scope := range scopes {
		normalized := NormalizeScope(scope)
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}
