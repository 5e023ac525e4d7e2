package nodesync

import (
	"encoding/json"
	"fmt"
)

// RowType classifies a row's value in JSON's own vocabulary.
type RowType string

const (
	TypeString  RowType = "string"
	TypeNumber  RowType = "number"
	TypeBoolean RowType = "boolean"
	TypeNull    RowType = "null"
	TypeObject  RowType = "object"
	TypeArray   RowType = "array"
)

// IsContainer reports whether a value of this type lives in child nodes
// rather than on the row itself.
func (t RowType) IsContainer() bool { return t == TypeObject || t == TypeArray }

// NodeRow is one field of a node: an optional key, a value, and the value's
// type. A nil Key marks the node's own primitive value (a leaf row).
// Object- and array-typed rows carry Value == nil; their content belongs to
// child nodes.
type NodeRow struct {
	Key   *string
	Value any
	Type  RowType
}

// KeyedRow builds a row for the named field, inferring its type from the
// value.
func KeyedRow(key string, value any) NodeRow {
	r := inferRow(value)
	r.Key = &key
	return r
}

// LeafRow builds the single keyless row of a leaf node.
func LeafRow(value any) NodeRow {
	return inferRow(value)
}

// Keyed reports whether the row names an object field.
func (r NodeRow) Keyed() bool { return r.Key != nil }

// inferRow classifies a Go value the way parsed JSON is classified: nil is
// null, bool is boolean, any numeric kind is number, []any is array,
// map[string]any is object, everything else a string. Container values are
// not carried on the row.
func inferRow(value any) NodeRow {
	switch v := value.(type) {
	case nil:
		return NodeRow{Type: TypeNull}
	case bool:
		return NodeRow{Value: v, Type: TypeBoolean}
	case string:
		return NodeRow{Value: v, Type: TypeString}
	case json.Number:
		return NodeRow{Value: v, Type: TypeNumber}
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return NodeRow{Value: v, Type: TypeNumber}
	case []any:
		return NodeRow{Type: TypeArray}
	case map[string]any:
		return NodeRow{Type: TypeObject}
	default:
		// Best-effort scalar string.
		return NodeRow{Value: fmt.Sprint(v), Type: TypeString}
	}
}

// NodeData is one tree node: its location in the document plus the flattened
// rows of its immediate fields. Row order is display-significant, not
// semantically significant. Instances are snapshots; the engine never
// mutates one in place.
type NodeData struct {
	Path Path
	Text []NodeRow
}

// IsLeaf reports whether the node represents a single unnamed primitive
// value: exactly one row with no key.
func (n *NodeData) IsLeaf() bool {
	return n != nil && len(n.Text) == 1 && !n.Text[0].Keyed()
}

// EditableKeys returns the keys of the node's primitive fields in row order.
// Container-typed rows are excluded; their content is edited on their own
// nodes.
func (n *NodeData) EditableKeys() []string {
	if n == nil {
		return nil
	}
	var keys []string
	for _, r := range n.Text {
		if r.Keyed() && !r.Type.IsContainer() {
			keys = append(keys, *r.Key)
		}
	}
	return keys
}
