package pkg

import (
	"strings"
)

// ParseList splits a comma-separated string into a slice of trimmed, non-empty values
func ParseList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}

	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}

// ParseKeyValuePairs parses "k=v" entries in order. Entries without "=" get an empty value.
// Later duplicates overwrite earlier values but keep the first position.
func ParseKeyValuePairs(entries []string) (keys []string, values map[string]string) {
	values = make(map[string]string, len(entries))

	for _, e := range entries {
		k, v, _ := strings.Cut(e, "=")

		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}

		if _, seen := values[k]; !seen {
			keys = append(keys, k)
		}

		values[k] = strings.TrimSpace(v)
	}

	return keys, values
}
