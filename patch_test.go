package nodesync

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const prettyDoc = `{
  "service": {
    "name": "gateway",
    "port": 8080,
    "tls": false
  },
  "limits": {
    "rps": 100
  }
}`

func TestSetAtPath(t *testing.T) {
	t.Run("replaces one value in place", func(t *testing.T) {
		out, err := SetAtPath(`{"user":{"name":"Ann","age":30}}`, Path{Key("user"), Key("age")}, 31)
		require.NoError(t, err)
		assert.Equal(t, `{"user":{"name":"Ann","age":31}}`, out)
	})

	t.Run("touches only the edited line", func(t *testing.T) {
		out, err := SetAtPath(prettyDoc, Path{Key("service"), Key("port")}, 9090)
		require.NoError(t, err)
		adds, removes := diffStats(prettyDoc, out)
		assert.Equal(t, 1, adds, unifiedDiff(prettyDoc, out))
		assert.Equal(t, 1, removes, unifiedDiff(prettyDoc, out))
		assert.Contains(t, out, `"port": 9090`)
		assert.Contains(t, out, `"rps": 100`)
	})

	t.Run("adds a new key to an object", func(t *testing.T) {
		out, err := SetAtPath(`{"a":1}`, Path{Key("b")}, "two")
		require.NoError(t, err)
		assert.Equal(t, `{"a":1,"b":"two"}`, out)
	})

	t.Run("sets an array element", func(t *testing.T) {
		out, err := SetAtPath(`{"xs":[1,2,3]}`, Path{Key("xs"), Index(1)}, 20)
		require.NoError(t, err)
		assert.Equal(t, `{"xs":[1,20,3]}`, out)
	})

	t.Run("empty path replaces the document", func(t *testing.T) {
		out, err := SetAtPath(`{"a":1}`, nil, json.RawMessage(`{"b":2}`))
		require.NoError(t, err)
		assert.Equal(t, `{"b":2}`, out)
	})

	t.Run("exact number literals survive", func(t *testing.T) {
		out, err := SetAtPath(`{"price":1}`, Path{Key("price")}, json.Number("1.50"))
		require.NoError(t, err)
		assert.Equal(t, `{"price":1.50}`, out)
	})
}

func TestSetAtPathResolution(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		path Path
		want error
	}{
		{
			name: "ancestor key missing",
			doc:  `{"user":{}}`,
			path: Path{Key("user"), Key("name"), Key("first")},
			want: ErrPathNotFound,
		},
		{
			name: "descends into a primitive",
			doc:  `{"a":1}`,
			path: Path{Key("a"), Key("b")},
			want: ErrNotAContainer,
		},
		{
			name: "index out of range",
			doc:  `{"xs":[1,2]}`,
			path: Path{Key("xs"), Index(5)},
			want: ErrIndexOutOfRange,
		},
		{
			name: "index into an object",
			doc:  `{"o":{}}`,
			path: Path{Key("o"), Index(0)},
			want: ErrPathNotFound,
		},
		{
			name: "key into an array",
			doc:  `{"xs":[1]}`,
			path: Path{Key("xs"), Key("k")},
			want: ErrPathNotFound,
		},
		{
			name: "document is not JSON",
			doc:  `{`,
			path: Path{Key("a")},
			want: ErrInvalidDocument,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := SetAtPath(tc.doc, tc.path, 1)
			require.Error(t, err)
			assert.Empty(t, out)
			assert.ErrorIs(t, err, tc.want)

			var re *PatchResolutionError
			require.ErrorAs(t, err, &re)
			assert.Contains(t, err.Error(), "cannot resolve")
			assert.Contains(t, err.Error(), "$[")
		})
	}
}

func TestDeleteAtPath(t *testing.T) {
	t.Run("removes an object key", func(t *testing.T) {
		out, err := DeleteAtPath(`{"a":1,"b":2,"c":3}`, Path{Key("b")})
		require.NoError(t, err)
		assert.Equal(t, `{"a":1,"c":3}`, out)
	})

	t.Run("removes an array element", func(t *testing.T) {
		out, err := DeleteAtPath(`{"xs":[1,2,3]}`, Path{Key("xs"), Index(1)})
		require.NoError(t, err)
		assert.Equal(t, `{"xs":[1,3]}`, out)
	})

	t.Run("keeps surrounding formatting", func(t *testing.T) {
		out, err := DeleteAtPath(prettyDoc, Path{Key("service"), Key("name")})
		require.NoError(t, err)
		assert.JSONEq(t, `{"service":{"port":8080,"tls":false},"limits":{"rps":100}}`, out)
		assert.Contains(t, out, `"rps": 100`)
	})

	t.Run("missing key fails", func(t *testing.T) {
		_, err := DeleteAtPath(`{"a":1}`, Path{Key("ghost")})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrPathNotFound)
	})

	t.Run("root cannot be deleted", func(t *testing.T) {
		_, err := DeleteAtPath(`{"a":1}`, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrPathNotFound)
	})
}

func TestApplyFieldSet(t *testing.T) {
	t.Run("absent prior keys are deleted", func(t *testing.T) {
		doc := `{"node":{"a":1,"b":2}}`
		out, err := ApplyFieldSet(doc, Path{Key("node")},
			[]Field{{Key: "a", Value: 1}},
			[]string{"a", "b"})
		require.NoError(t, err)
		assert.Equal(t, `{"node":{"a":1}}`, out)
	})

	t.Run("sets, adds and deletes in one pass", func(t *testing.T) {
		doc := `{"node":{"a":1,"b":2},"other":true}`
		out, err := ApplyFieldSet(doc, Path{Key("node")},
			[]Field{{Key: "a", Value: 10}, {Key: "c", Value: "new"}},
			[]string{"a", "b"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"node":{"a":10,"c":"new"},"other":true}`, out)
	})

	t.Run("raw field values splice verbatim", func(t *testing.T) {
		doc := `{"node":{"price":1}}`
		out, err := ApplyFieldSet(doc, Path{Key("node")},
			[]Field{{Key: "price", Value: json.RawMessage(`2.50`)}},
			[]string{"price"})
		require.NoError(t, err)
		assert.Equal(t, `{"node":{"price":2.50}}`, out)
	})

	t.Run("empty field set clears prior keys", func(t *testing.T) {
		doc := `{"node":{"a":1,"b":2},"keep":1}`
		out, err := ApplyFieldSet(doc, Path{Key("node")}, nil, []string{"a", "b"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"node":{},"keep":1}`, out)
	})

	t.Run("one failure discards all partial work", func(t *testing.T) {
		doc := `{"node":{"a":1}}`
		out, err := ApplyFieldSet(doc, Path{Key("node")},
			[]Field{{Key: "a", Value: 2}},
			[]string{"a", "ghost"})
		require.Error(t, err)
		assert.Empty(t, out)
		assert.ErrorIs(t, err, ErrPathNotFound)

		var re *PatchResolutionError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, `$["node"]["ghost"]`, re.Path.String())
	})
}

func TestUnionKeys(t *testing.T) {
	got := unionKeys(
		[]string{"a", "b"},
		[]Field{{Key: "c"}, {Key: "b"}, {Key: "d"}},
	)
	assert.Equal(t, []string{"a", "b", "c", "d"}, got)
}
