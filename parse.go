package nodesync

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// parsedEdit is the full interpretation of one edited buffer: the typed rows
// plus the exact raw literals the patcher needs, in document order.
type parsedEdit struct {
	rows   []NodeRow
	object bool    // the edited value is a plain (non-array) object
	raw    string  // compacted raw text of the whole value
	fields []Field // object fields in document order, raw literals as values
}

// Field is one key of a field-set edit. Value follows the usual Go mapping
// of a JSON value; a json.Number or json.RawMessage splices its exact
// literal.
type Field struct {
	Key   string
	Value any
}

// ParseRows parses user-edited text into typed rows.
//
// The text must be JSON; on a syntax error the returned *ParseError carries
// the underlying message. One leniency mirrors the projector's bare leaf
// form: text that is not valid JSON and does not begin with '{', '[' or '"'
// is taken as a bare string leaf, so an untouched string leaf saves cleanly.
//
// A valid non-array object yields one row per key in document order, with
// the type inferred null, array, number, boolean, object, else string;
// container rows carry a nil value. Any other valid value yields exactly one
// keyless row under the same inference.
func ParseRows(text string) ([]NodeRow, error) {
	edit, err := parseEdit(text)
	if err != nil {
		return nil, err
	}
	return edit.rows, nil
}

func parseEdit(text string) (*parsedEdit, error) {
	if err := json.Unmarshal([]byte(text), new(any)); err != nil {
		if s, ok := bareString(text); ok {
			raw, _ := jsonLiteral(s)
			return &parsedEdit{rows: []NodeRow{LeafRow(s)}, raw: raw}, nil
		}
		return nil, &ParseError{Err: err}
	}

	v := gjson.Parse(text)
	edit := &parsedEdit{raw: compactJSON(v.Raw)}
	if v.IsObject() {
		edit.object = true
		edit.rows = []NodeRow{}
		v.ForEach(func(key, val gjson.Result) bool {
			k := key.String()
			row := rowFromResult(val)
			row.Key = &k
			edit.rows = append(edit.rows, row)
			edit.fields = append(edit.fields, Field{Key: k, Value: json.RawMessage(val.Raw)})
			return true
		})
		return edit, nil
	}
	edit.rows = []NodeRow{rowFromResult(v)}
	return edit, nil
}

// bareString decides whether invalid-JSON text is acceptable as a bare
// string scalar. Text that starts like an object, array or quoted string is
// a genuine syntax error the user needs to see. The buffer is trimmed, so
// blank text is the empty string.
func bareString(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed != "" {
		switch trimmed[0] {
		case '{', '[', '"':
			return "", false
		}
	}
	return trimmed, true
}

// rowFromResult classifies one parsed value into a keyless row. Numbers keep
// their exact literal as a json.Number.
func rowFromResult(v gjson.Result) NodeRow {
	switch {
	case v.Type == gjson.Null:
		return NodeRow{Type: TypeNull}
	case v.IsArray():
		return NodeRow{Type: TypeArray}
	case v.IsObject():
		return NodeRow{Type: TypeObject}
	case v.Type == gjson.Number:
		return NodeRow{Value: json.Number(strings.TrimSpace(v.Raw)), Type: TypeNumber}
	case v.Type == gjson.True:
		return NodeRow{Value: true, Type: TypeBoolean}
	case v.Type == gjson.False:
		return NodeRow{Value: false, Type: TypeBoolean}
	default:
		return NodeRow{Value: v.String(), Type: TypeString}
	}
}
