package validate

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dshills/profilecards/internal/schema"
)

// Parse decodes a GET /profiles response body. The body must be a JSON array;
// any other top-level value, including null, is rejected. Field contents are
// not checked: missing skills or projects decode as empty lists.
func Parse(raw []byte) ([]schema.Profile, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("JSON parse failed: empty body")
	}
	if trimmed[0] != '[' {
		return nil, fmt.Errorf("JSON parse failed: expected array, got %s", describe(trimmed[0]))
	}

	var profiles []schema.Profile
	if err := json.Unmarshal(trimmed, &profiles); err != nil {
		return nil, fmt.Errorf("JSON parse failed: %w", err)
	}
	if profiles == nil {
		profiles = []schema.Profile{}
	}
	return profiles, nil
}

// describe names the JSON value kind that starts with b.
func describe(b byte) string {
	switch {
	case b == '{':
		return "object"
	case b == '"':
		return "string"
	case b == 'n':
		return "null"
	case b == 't' || b == 'f':
		return "boolean"
	case b == '-' || (b >= '0' && b <= '9'):
		return "number"
	default:
		return fmt.Sprintf("%q", b)
	}
}
