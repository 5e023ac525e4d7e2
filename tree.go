package nodesync

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// BuildNodes derives the tree store's node list from document text:
// depth-first, document order.
//
// Every container becomes a node. Objects carry one row per immediate field
// (primitives with their values, containers as null-valued placeholder rows)
// and each container field gets its own node below. Arrays carry no
// rows; their primitive elements become leaf nodes and container elements
// recurse. A primitive root yields a single leaf node at the empty path.
func BuildNodes(doc string) ([]*NodeData, error) {
	if !gjson.Valid(doc) {
		return nil, fmt.Errorf("nodesync: cannot build nodes: %w", ErrInvalidDocument)
	}
	var nodes []*NodeData
	appendNodes(&nodes, nil, gjson.Parse(doc))
	return nodes, nil
}

func appendNodes(nodes *[]*NodeData, path Path, v gjson.Result) {
	switch {
	case v.IsObject():
		node := &NodeData{Path: path}
		v.ForEach(func(key, val gjson.Result) bool {
			k := key.String()
			row := rowFromResult(val)
			row.Key = &k
			node.Text = append(node.Text, row)
			return true
		})
		*nodes = append(*nodes, node)
		v.ForEach(func(key, val gjson.Result) bool {
			if val.IsObject() || val.IsArray() {
				appendNodes(nodes, path.Child(Key(key.String())), val)
			}
			return true
		})
	case v.IsArray():
		*nodes = append(*nodes, &NodeData{Path: path})
		for i, el := range v.Array() {
			child := path.Child(Index(i))
			if el.IsObject() || el.IsArray() {
				appendNodes(nodes, child, el)
			} else {
				*nodes = append(*nodes, &NodeData{Path: child, Text: []NodeRow{rowFromResult(el)}})
			}
		}
	default:
		*nodes = append(*nodes, &NodeData{Path: path, Text: []NodeRow{rowFromResult(v)}})
	}
}

// Bind builds the tree from the document once and subscribes the rebuild to
// every subsequent SetText, making rebuild a side effect owned by the
// document store. Committed text is always patcher-verified JSON; anything
// else keeps the previous tree.
func Bind(doc *DocumentStore, tree *TreeStore) error {
	nodes, err := BuildNodes(doc.Text())
	if err != nil {
		return err
	}
	tree.SetNodes(nodes)
	doc.Subscribe(func(text string) {
		if rebuilt, err := BuildNodes(text); err == nil {
			tree.SetNodes(rebuilt)
		}
	})
	return nil
}
