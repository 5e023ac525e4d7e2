package nodesync

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/pretty"
)

// pathSpecials are the bytes the gjson/sjson path syntax reserves: the dot
// separator, pipes, array query and modifier markers, wildcards, multipath
// brackets, and the escape itself.
const pathSpecials = `.|#@*?{}[]\`

// escapePathKey escapes a key for use in a gjson/sjson path.
func escapePathKey(key string) string {
	if !strings.ContainsAny(key, pathSpecials) {
		return key
	}
	var b strings.Builder
	b.Grow(len(key) + 4)
	for _, r := range key {
		if r < 0x80 && strings.ContainsRune(pathSpecials, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// jsonLiteral renders a Go value as raw JSON text. json.Number passes
// through as its exact literal and json.RawMessage is validated and
// compacted, so numeric text survives round-trips unchanged.
func jsonLiteral(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("nodesync: cannot encode value: %w", err)
	}
	return string(b), nil
}

// compactJSON strips insignificant whitespace from raw JSON text.
func compactJSON(raw string) string {
	return string(pretty.Ugly([]byte(raw)))
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
