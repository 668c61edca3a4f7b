package main

import (
	"fmt"
	"strings"
)

// parseFieldPairs turns repeated --set key=value flags into a field map.
func parseFieldPairs(pairs []string) (map[string]string, error) {
	fields := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid field assignment %q, expected key=value", pair)
		}
		fields[key] = strings.TrimSpace(value)
	}
	return fields, nil
}
