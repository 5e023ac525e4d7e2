package nodesync

import "sync"

// DocumentStore owns the canonical document text. Every mutation fully
// replaces the prior text and notifies subscribers in registration order.
// Reads are safe from any goroutine; mutation is expected to route through
// a single writer (the controller).
type DocumentStore struct {
	mu   sync.RWMutex
	text string
	subs []func(string)
}

// NewDocumentStore returns a store holding the given document text.
func NewDocumentStore(text string) *DocumentStore {
	return &DocumentStore{text: text}
}

// Text returns the current document text.
func (s *DocumentStore) Text() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.text
}

// SetText replaces the document text and notifies subscribers. Subscribers
// run outside the store's lock.
func (s *DocumentStore) SetText(text string) {
	s.mu.Lock()
	s.text = text
	subs := make([]func(string), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()
	for _, fn := range subs {
		fn(text)
	}
}

// Subscribe registers fn to run after every SetText.
func (s *DocumentStore) Subscribe(fn func(string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// TreeStore holds the node list rebuilt from the document, plus the current
// selection. Nodes are snapshots: mutation replaces them, never edits them
// in place.
type TreeStore struct {
	mu       sync.RWMutex
	nodes    []*NodeData
	selected *NodeData
}

// NewTreeStore returns an empty tree store.
func NewTreeStore() *TreeStore { return &TreeStore{} }

// Nodes returns a snapshot of the node list.
func (s *TreeStore) Nodes() []*NodeData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*NodeData(nil), s.nodes...)
}

// SetNodes replaces the node list. The selection is left alone; re-pointing
// it after a rebuild is the controller's job.
func (s *TreeStore) SetNodes(nodes []*NodeData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = append([]*NodeData(nil), nodes...)
}

// NodeByPath returns the node whose path equals p, or nil.
func (s *TreeStore) NodeByPath(p Path) *NodeData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, n := range s.nodes {
		if n.Path.Equal(p) {
			return n
		}
	}
	return nil
}

// SelectedNode returns the current selection, nil when none.
func (s *TreeStore) SelectedNode() *NodeData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// SetSelectedNode marks node as the selection.
func (s *TreeStore) SetSelectedNode(node *NodeData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = node
}

// ReplaceNodeRows swaps in a replacement node with the same path and the
// given rows, leaving every other node untouched. The selection follows
// when it pointed at the replaced node. Returns the replacement, or nil
// when no node has that path.
func (s *TreeStore) ReplaceNodeRows(p Path, rows []NodeRow) *NodeData {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.nodes {
		if n.Path.Equal(p) {
			repl := &NodeData{Path: n.Path, Text: append([]NodeRow(nil), rows...)}
			s.nodes[i] = repl
			if s.selected == n {
				s.selected = repl
			}
			return repl
		}
	}
	return nil
}

// Mirror receives a copy of the document text on every commit. The engine
// writes it and never reads it back; persistence and export belong to the
// embedding application.
type Mirror interface {
	SetContents(text string)
}

// MirrorFunc adapts a plain function to the Mirror interface.
type MirrorFunc func(string)

func (f MirrorFunc) SetContents(text string) { f(text) }
