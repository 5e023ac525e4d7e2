package nodesync

import (
	"encoding/json"
	"sync"
)

// Status classifies the terminal outcome of a save.
type Status string

const (
	// StatusCommitted reports that the edit was patched into the document
	// and persisted.
	StatusCommitted Status = "committed"
	// StatusFallback reports that the document could not be patched; only
	// the in-memory node was replaced, nothing was persisted.
	StatusFallback Status = "fallback"
	// StatusValidationError reports uninterpretable edited text; the edit
	// session stays open for correction.
	StatusValidationError Status = "validationError"
)

// Result is what a save reports back to the UI layer.
type Result struct {
	Status  Status
	Message string
}

// EditSession is the ephemeral state of one editor modal: the node being
// edited, the text buffer, and the last validation error. It is confined to
// the goroutine driving the editor.
type EditSession struct {
	Node *NodeData
	Text string
	Err  error
}

// Controller orchestrates the edit flow (project, parse, patch, commit,
// re-select) and owns the in-memory fallback when the document cannot be
// patched.
//
// A save runs Parsing → Patching → Reconciling as one synchronous unit.
// Parsing failure is the only outcome that keeps the edit session open; any
// other outcome closes it.
type Controller struct {
	mu      sync.Mutex
	doc     *DocumentStore
	tree    *TreeStore
	mirror  Mirror
	session *EditSession
}

// NewController wires the engine to its stores.
func NewController(doc *DocumentStore, tree *TreeStore, opts ...Option) *Controller {
	c := &Controller{doc: doc, tree: tree}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EditableText projects node into the text that seeds the editor.
func (c *Controller) EditableText(node *NodeData) string {
	return ProjectNode(node)
}

// Preview renders the same deterministic projection for read-only display.
func (c *Controller) Preview(node *NodeData) string {
	return ProjectNode(node)
}

// Open starts an edit session for node and returns the seeded buffer. Any
// previous session is discarded.
func (c *Controller) Open(node *NodeData) string {
	text := ProjectNode(node)
	c.mu.Lock()
	c.session = &EditSession{Node: node, Text: text}
	c.mu.Unlock()
	return text
}

// Session returns the current edit session, nil when no editor is open.
func (c *Controller) Session() *EditSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Close discards the edit session.
func (c *Controller) Close() {
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
}

// Save applies edited text to node and reconciles document, tree and
// selection.
//
// Invalid text reports validationError and keeps the session open with the
// error recorded. A resolvable edit is patched into the document, committed
// to the store (whose subscribers rebuild the tree), mirrored when a Mirror
// is configured, and the node is re-selected by path equality in the
// rebuilt tree; a vanished path leaves the selection alone. An
// unresolvable edit falls back to replacing the node's rows in the tree
// store, preserving the document text exactly.
func (c *Controller) Save(node *NodeData, edited string) Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	if node == nil {
		return Result{Status: StatusValidationError, Message: "nodesync: no node selected"}
	}

	edit, err := parseEdit(edited)
	if err != nil {
		if c.session != nil {
			c.session.Text = edited
			c.session.Err = err
		}
		return Result{Status: StatusValidationError, Message: err.Error()}
	}

	newDoc, patchErr := c.patchEdit(node, edit)
	if patchErr != nil {
		// The document has drifted out of sync with the node snapshot.
		// Keep the UI consistent by replacing the node's rows in memory;
		// nothing is persisted.
		if repl := c.tree.ReplaceNodeRows(node.Path, edit.rows); repl != nil {
			c.tree.SetSelectedNode(repl)
		}
		c.session = nil
		return Result{Status: StatusFallback, Message: patchErr.Error()}
	}

	c.doc.SetText(newDoc)
	if c.mirror != nil {
		c.mirror.SetContents(newDoc)
	}
	if found := c.tree.NodeByPath(node.Path); found != nil {
		c.tree.SetSelectedNode(found)
	}
	c.session = nil
	return Result{Status: StatusCommitted}
}

// patchEdit picks the edit shape: a leaf is a whole-value replacement at the
// node's path, anything else a field-set over the union of the node's
// editable keys and the edited object's keys.
func (c *Controller) patchEdit(node *NodeData, edit *parsedEdit) (string, error) {
	doc := c.doc.Text()
	if node.IsLeaf() {
		return SetAtPath(doc, node.Path, json.RawMessage(edit.raw))
	}
	fields := edit.fields
	if !edit.object {
		// A non-object replacement for a multi-field node clears all
		// editable fields.
		fields = nil
	}
	return ApplyFieldSet(doc, node.Path, fields, node.EditableKeys())
}
