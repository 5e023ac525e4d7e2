package nodesync

import (
	"strconv"
	"strings"
)

// Segment is one step of a Path: an object key or an array index.
type Segment struct {
	key   string
	idx   int
	isIdx bool
}

// Key returns a Segment addressing an object field.
func Key(k string) Segment { return Segment{key: k} }

// Index returns a Segment addressing an array element.
func Index(i int) Segment { return Segment{idx: i, isIdx: true} }

// IsIndex reports whether the segment addresses an array element.
func (s Segment) IsIndex() bool { return s.isIdx }

// String renders the segment in display form: indices bare, keys quoted,
// both bracketed.
func (s Segment) String() string {
	if s.isIdx {
		return "[" + strconv.Itoa(s.idx) + "]"
	}
	return "[" + strconv.Quote(s.key) + "]"
}

// Path locates a node inside the root document, ordered from the root down.
// The empty path is the root itself.
type Path []Segment

// String renders the display label: the root sentinel followed by one
// bracketed segment per step, e.g. $["customer"][0]["id"].
func (p Path) String() string {
	var b strings.Builder
	b.WriteByte('$')
	for _, s := range p {
		b.WriteString(s.String())
	}
	return b.String()
}

// Equal reports structural equality of the two segment sequences.
func (p Path) Equal(o Path) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// Child returns a new Path extending p by one segment; p is not modified.
func (p Path) Child(s Segment) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = s
	return out
}

// gjsonPath renders the path in gjson/sjson dot syntax. The root renders as
// "", which callers special-case: neither library addresses a whole
// document.
func (p Path) gjsonPath() string {
	var b strings.Builder
	for i, s := range p {
		if i > 0 {
			b.WriteByte('.')
		}
		if s.isIdx {
			b.WriteString(strconv.Itoa(s.idx))
		} else {
			b.WriteString(escapePathKey(s.key))
		}
	}
	return b.String()
}
