package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/jsonvault"
)

// parseWhere turns "prop=value" pairs into equality filters. The value is
// decoded as JSON when it is valid JSON, so age=30 matches a number and
// name=Ann a string; quote it ('name="30"') to force a string.
func parseWhere(pairs []string) ([]jsonvault.Filter, error) {
	filters := make([]jsonvault.Filter, 0, len(pairs))
	for _, pair := range pairs {
		prop, raw, ok := strings.Cut(pair, "=")
		prop = strings.TrimSpace(prop)
		if !ok || prop == "" {
			return nil, fmt.Errorf("%w: --where %q must look like prop=value", jsonvault.ErrInvalidInput, pair)
		}

		var value any = raw
		var decoded any
		if err := json.Unmarshal([]byte(raw), &decoded); err == nil {
			value = decoded
		}
		filters = append(filters, jsonvault.Equals(prop, value))
	}
	return filters, nil
}
