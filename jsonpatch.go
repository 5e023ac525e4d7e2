package nodesync

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// JSON Patch (RFC 6902) public API
// --------------------------------------------------------------------------------------
//
// Patches route through the same path-addressed splices as the interactive
// flow, so untouched regions of the document keep their formatting. Each op
// applies to the result of the previous one; the first failure aborts with
// the document unchanged.

// ApplyJSONPatch applies a github.com/evanphx/json-patch/v5 Patch to the
// document root. Internally this marshals the patch back to JSON and
// delegates to ApplyJSONPatchBytes.
func ApplyJSONPatch(doc string, patch jsonpatch.Patch) (string, error) {
	return ApplyJSONPatchAt(doc, nil, patch)
}

// ApplyJSONPatchAt applies a jsonpatch.Patch with each op's pointer resolved
// relative to the node at base.
func ApplyJSONPatchAt(doc string, base Path, patch jsonpatch.Patch) (string, error) {
	b, err := json.Marshal(patch)
	if err != nil {
		return "", fmt.Errorf("nodesync: cannot marshal jsonpatch.Patch; pass bytes instead: %w", err)
	}
	return ApplyJSONPatchBytesAt(doc, base, b)
}

// ApplyJSONPatchBytes applies a JSON Patch (as raw JSON) to the document
// root.
func ApplyJSONPatchBytes(doc string, payload []byte) (string, error) {
	return ApplyJSONPatchBytesAt(doc, nil, payload)
}

// ApplyJSONPatchBytesAt decodes raw patch bytes and applies them relative to
// base. Supported ops: add, replace, remove, test. Pointers naming the
// empty-string member key are rejected.
func ApplyJSONPatchBytesAt(doc string, base Path, payload []byte) (string, error) {
	var ops []patchOp
	if err := json.Unmarshal(payload, &ops); err != nil {
		return "", fmt.Errorf("nodesync: invalid patch payload: %w", err)
	}
	cur := doc
	for _, op := range ops {
		next, err := applyOp(cur, base, op)
		if err != nil {
			return "", err
		}
		cur = next
	}
	return cur, nil
}

// --------------------------------------------------------------------------------------
// JSON Patch internals
// --------------------------------------------------------------------------------------

type patchOp struct {
	Op    string          `json:"op"`
	Path  string          `json:"path"`
	Value json.RawMessage `json:"value"`
}

func applyOp(doc string, base Path, op patchOp) (string, error) {
	path, appendEnd, err := pointerPath(doc, base, op.Path)
	if err != nil {
		return "", err
	}
	switch op.Op {
	case "add":
		if op.Value == nil {
			return "", fmt.Errorf("nodesync: op %q missing value", op.Op)
		}
		return applyAdd(doc, path, op.Value, appendEnd)
	case "replace":
		if op.Value == nil {
			return "", fmt.Errorf("nodesync: op %q missing value", op.Op)
		}
		if appendEnd {
			return "", fmt.Errorf("nodesync: op %q cannot target the append slot", op.Op)
		}
		return applyReplace(doc, path, op.Value)
	case "remove":
		if appendEnd {
			return "", fmt.Errorf("nodesync: op %q cannot target the append slot", op.Op)
		}
		return applyRemove(doc, path)
	case "test":
		if op.Value == nil {
			return "", fmt.Errorf("nodesync: op %q missing value", op.Op)
		}
		if appendEnd {
			return "", fmt.Errorf("nodesync: op %q cannot target the append slot", op.Op)
		}
		return applyTest(doc, path, op.Value)
	default:
		return "", fmt.Errorf("nodesync: unsupported op %q", op.Op)
	}
}

// pointerTokens splits an RFC 6901 pointer into unescaped reference tokens.
// Empty reference tokens (RFC 6901's "" member name) are rejected: the
// underlying path syntax cannot address an empty key.
func pointerTokens(ptr string) ([]string, error) {
	if ptr == "" {
		return nil, nil
	}
	if !strings.HasPrefix(ptr, "/") {
		return nil, fmt.Errorf("nodesync: invalid JSON pointer %q", ptr)
	}
	parts := strings.Split(ptr[1:], "/")
	for i, s := range parts {
		if s == "" {
			return nil, fmt.Errorf("nodesync: unsupported JSON pointer %q: empty reference token", ptr)
		}
		s = strings.ReplaceAll(s, "~1", "/")
		s = strings.ReplaceAll(s, "~0", "~")
		parts[i] = s
	}
	return parts, nil
}

// pointerPath converts a JSON pointer into a typed Path, deciding key versus
// index by the kind of the container each token lands in. The final token
// may name a new object key, or the "-" append slot of an array; appendEnd
// reports the latter, with the returned path addressing the array itself.
func pointerPath(doc string, base Path, ptr string) (Path, bool, error) {
	tokens, err := pointerTokens(ptr)
	if err != nil {
		return nil, false, err
	}
	path := append(Path(nil), base...)
	for i, tok := range tokens {
		v, err := resolveValue(doc, path)
		if err != nil {
			return nil, false, err
		}
		switch {
		case v.IsArray():
			if tok == "-" {
				if i != len(tokens)-1 {
					return nil, false, fmt.Errorf("nodesync: invalid JSON pointer %q: \"-\" must be the final token", ptr)
				}
				return path, true, nil
			}
			idx, err := strconv.Atoi(tok)
			if err != nil {
				return nil, false, fmt.Errorf("nodesync: invalid array index %q in JSON pointer %q", tok, ptr)
			}
			path = path.Child(Index(idx))
		case v.IsObject():
			path = path.Child(Key(tok))
		default:
			return nil, false, resolutionErr(path.Child(Key(tok)), ErrNotAContainer)
		}
	}
	return path, false, nil
}

func applyAdd(doc string, path Path, value json.RawMessage, appendEnd bool) (string, error) {
	raw, err := jsonLiteral(value)
	if err != nil {
		return "", err
	}
	if appendEnd {
		return appendElement(doc, path, raw)
	}
	if len(path) == 0 {
		// Adding at the root pointer replaces the whole document.
		return raw, nil
	}
	if last := path[len(path)-1]; last.IsIndex() {
		return insertElement(doc, path, raw)
	}
	// Object member: add or replace.
	return setRawAtPath(doc, path, raw)
}

func applyReplace(doc string, path Path, value json.RawMessage) (string, error) {
	raw, err := jsonLiteral(value)
	if err != nil {
		return "", err
	}
	if len(path) == 0 {
		return raw, nil
	}
	if _, err := resolveValue(doc, path); err != nil {
		return "", err
	}
	return setRawAtPath(doc, path, raw)
}

func applyRemove(doc string, path Path) (string, error) {
	if len(path) == 0 {
		// Removing the root leaves a null document.
		return "null", nil
	}
	return DeleteAtPath(doc, path)
}

func applyTest(doc string, path Path, value json.RawMessage) (string, error) {
	target, err := resolveValue(doc, path)
	if err != nil {
		return "", err
	}
	equal, err := jsonEqual([]byte(target.Raw), []byte(value))
	if err != nil {
		return "", err
	}
	if !equal {
		return "", fmt.Errorf("nodesync: test op failed at %s", path)
	}
	return doc, nil
}

// insertElement splices raw before the element the final index segment
// addresses. An index equal to the array length appends. The whitespace run
// preceding the displaced element is reused, so multi-line arrays keep
// their indentation.
func insertElement(doc string, path Path, raw string) (string, error) {
	parent := path[:len(path)-1]
	last := path[len(path)-1]
	pv, err := resolveValue(doc, parent)
	if err != nil {
		return "", err
	}
	if !pv.IsArray() {
		return "", resolutionErr(path, ErrNotAContainer)
	}
	n := len(pv.Array())
	if last.idx < 0 || last.idx > n {
		return "", resolutionErr(path, ErrIndexOutOfRange)
	}
	if last.idx == n {
		return appendElement(doc, parent, raw)
	}
	el := gjson.Get(doc, path.gjsonPath())
	if !el.Exists() || el.Index <= 0 {
		return "", resolutionErr(path, ErrPathNotFound)
	}
	start := el.Index
	ws := start
	for ws > 0 && isSpaceByte(doc[ws-1]) {
		ws--
	}
	var b strings.Builder
	b.Grow(len(doc) + len(raw) + (start - ws) + 1)
	b.WriteString(doc[:start])
	b.WriteString(raw)
	b.WriteByte(',')
	b.WriteString(doc[ws:start])
	b.WriteString(doc[start:])
	return b.String(), nil
}

// appendElement adds raw after the last element of the array at arr.
func appendElement(doc string, arr Path, raw string) (string, error) {
	av, err := resolveValue(doc, arr)
	if err != nil {
		return "", err
	}
	if !av.IsArray() {
		return "", resolutionErr(arr, ErrNotAContainer)
	}
	p := "-1"
	if gp := arr.gjsonPath(); gp != "" {
		p = gp + ".-1"
	}
	out, err := sjson.SetRaw(doc, p, raw)
	if err != nil {
		return "", resolutionErr(arr, err)
	}
	return out, nil
}

// jsonEqual reports semantic equality of two JSON values.
func jsonEqual(a, b []byte) (bool, error) {
	var av, bv any
	if err := json.Unmarshal(a, &av); err != nil {
		return false, fmt.Errorf("nodesync: invalid test target: %w", err)
	}
	if err := json.Unmarshal(b, &bv); err != nil {
		return false, fmt.Errorf("nodesync: invalid test value: %w", err)
	}
	return reflect.DeepEqual(av, bv), nil
}
