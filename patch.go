package nodesync

import (
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// The patcher operates on raw document text so that untouched regions keep
// their exact bytes: every edit is a minimal splice at the resolved
// location, never a reparse-and-reprint of the whole document. Resolution is
// verified before anything is written (sjson would otherwise fabricate
// missing parents), so an unresolvable path fails with a
// *PatchResolutionError and the document is left exactly as it was.

// SetAtPath replaces the value at path with newValue and returns the new
// document text. An empty path replaces the whole document.
//
// Every ancestor segment must resolve, and the final segment's parent must
// be a container of the matching kind: an object (the key itself may be
// new) or an array with the index in range.
func SetAtPath(doc string, path Path, value any) (string, error) {
	raw, err := jsonLiteral(value)
	if err != nil {
		return "", err
	}
	return setRawAtPath(doc, path, raw)
}

func setRawAtPath(doc string, path Path, raw string) (string, error) {
	if len(path) == 0 {
		return raw, nil
	}
	if !gjson.Valid(doc) {
		return "", resolutionErr(path, ErrInvalidDocument)
	}
	if err := resolveForSet(doc, path); err != nil {
		return "", err
	}
	out, err := sjson.SetRaw(doc, path.gjsonPath(), raw)
	if err != nil {
		return "", resolutionErr(path, err)
	}
	return out, nil
}

// DeleteAtPath removes the value at path and returns the new document text.
// The full path must resolve; the root cannot be deleted.
func DeleteAtPath(doc string, path Path) (string, error) {
	if len(path) == 0 {
		return "", resolutionErr(path, ErrPathNotFound)
	}
	if !gjson.Valid(doc) {
		return "", resolutionErr(path, ErrInvalidDocument)
	}
	if _, err := resolveValue(doc, path); err != nil {
		return "", err
	}
	out, err := sjson.Delete(doc, path.gjsonPath())
	if err != nil {
		return "", resolutionErr(path, err)
	}
	return out, nil
}

// ApplyFieldSet applies one field-set edit at path: every key in the union
// of prior (the node's editable keys) and fields is either set to its new
// value, when present in fields, or deleted, when absent. Edits apply
// sequentially, each against the result of the previous one, all on a local
// copy; if any step fails, the error is returned and nothing of the partial
// work escapes.
//
// Union order is prior keys first (row order), then new keys in field
// order. Duplicate field keys keep the last value.
func ApplyFieldSet(doc string, path Path, fields []Field, prior []string) (string, error) {
	byKey := make(map[string]Field, len(fields))
	for _, f := range fields {
		byKey[f.Key] = f
	}
	cur := doc
	for _, key := range unionKeys(prior, fields) {
		target := path.Child(Key(key))
		var err error
		if f, ok := byKey[key]; ok {
			cur, err = SetAtPath(cur, target, f.Value)
		} else {
			cur, err = DeleteAtPath(cur, target)
		}
		if err != nil {
			return "", err
		}
	}
	return cur, nil
}

func unionKeys(prior []string, fields []Field) []string {
	keys := make([]string, 0, len(prior)+len(fields))
	seen := make(map[string]bool, len(prior)+len(fields))
	for _, k := range prior {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	for _, f := range fields {
		if !seen[f.Key] {
			seen[f.Key] = true
			keys = append(keys, f.Key)
		}
	}
	return keys
}

// resolveForSet verifies that path's parent chain exists and that the final
// segment can receive a value.
func resolveForSet(doc string, path Path) error {
	parent := path[:len(path)-1]
	last := path[len(path)-1]
	pv, err := resolveValue(doc, parent)
	if err != nil {
		return err
	}
	if last.IsIndex() {
		switch {
		case pv.IsArray():
			if n := len(pv.Array()); last.idx < 0 || last.idx >= n {
				return resolutionErr(path, ErrIndexOutOfRange)
			}
			return nil
		case pv.IsObject():
			return resolutionErr(path, ErrPathNotFound)
		default:
			return resolutionErr(path, ErrNotAContainer)
		}
	}
	switch {
	case pv.IsObject():
		return nil // the key may be new
	case pv.IsArray():
		return resolutionErr(path, ErrPathNotFound)
	default:
		return resolutionErr(path, ErrNotAContainer)
	}
}

// resolveValue walks the document segment by segment and returns the value
// at path. Each failure names the shortest unresolvable prefix.
func resolveValue(doc string, path Path) (gjson.Result, error) {
	cur := gjson.Parse(doc)
	for i, seg := range path {
		if seg.IsIndex() {
			switch {
			case cur.IsArray():
				elems := cur.Array()
				if seg.idx < 0 || seg.idx >= len(elems) {
					return gjson.Result{}, resolutionErr(path[:i+1], ErrIndexOutOfRange)
				}
				cur = elems[seg.idx]
			case cur.IsObject():
				return gjson.Result{}, resolutionErr(path[:i+1], ErrPathNotFound)
			default:
				return gjson.Result{}, resolutionErr(path[:i+1], ErrNotAContainer)
			}
			continue
		}
		switch {
		case cur.IsObject():
			val := cur.Get(escapePathKey(seg.key))
			if !val.Exists() {
				return gjson.Result{}, resolutionErr(path[:i+1], ErrPathNotFound)
			}
			cur = val
		case cur.IsArray():
			return gjson.Result{}, resolutionErr(path[:i+1], ErrPathNotFound)
		default:
			return gjson.Result{}, resolutionErr(path[:i+1], ErrNotAContainer)
		}
	}
	return cur, nil
}
