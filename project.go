package nodesync

import (
	"strings"

	"github.com/tidwall/pretty"
)

// ProjectNode converts a node's rows into editable plain-JSON text. The same
// projection seeds the editor and renders the read-only preview, so it is
// deterministic for a given node and has no side effects.
//
// A leaf renders as the literal textual form of its value: a bare string (no
// quotes), a bare number, true/false, null. Anything else renders as a JSON
// object of the node's primitive fields in row order, pretty-printed with
// 2-space indentation. Object- and array-typed rows are omitted; their
// content is not representable inline.
func ProjectNode(node *NodeData) string {
	if node == nil {
		return "{}"
	}
	if node.IsLeaf() {
		return leafText(node.Text[0])
	}
	out := pretty.Pretty([]byte(projectFields(node.Text)))
	return strings.TrimSuffix(string(out), "\n")
}

// leafText renders a single row value in its bare editable form.
func leafText(r NodeRow) string {
	if r.Type == TypeString {
		if s, ok := r.Value.(string); ok {
			return s
		}
	}
	lit, err := jsonLiteral(r.Value)
	if err != nil {
		return "null"
	}
	return lit
}

// projectFields builds the compact object form of the keyed primitive rows,
// preserving row order.
func projectFields(rows []NodeRow) string {
	var b strings.Builder
	b.WriteByte('{')
	n := 0
	for _, r := range rows {
		if !r.Keyed() || r.Type.IsContainer() {
			continue
		}
		if n > 0 {
			b.WriteByte(',')
		}
		k, _ := jsonLiteral(*r.Key)
		v, err := jsonLiteral(r.Value)
		if err != nil {
			v = "null"
		}
		b.WriteString(k)
		b.WriteByte(':')
		b.WriteString(v)
		n++
	}
	b.WriteByte('}')
	return b.String()
}
