// Package sink adapts structural parse events to arena mutations.
//
// A parser drives a Sink by calling one method per tree-construction
// decision. The Sink owns the arena for the session, coalesces adjacent
// text, manages template contents and forwards parse diagnostics. The first
// structural failure aborts the session: every later event returns the same
// error and Finish reports it.
package sink

import (
	"log/slog"
	"slices"

	"github.com/google/uuid"
	"golang.org/x/net/html/atom"

	"github.com/chrisuehlinger/domarena/internal/logger"
	"github.com/chrisuehlinger/domarena/tree"
)

// NodeOrText is the child argument of the append events: either an
// existing node or a run of text to insert.
type NodeOrText struct {
	node   tree.Handle
	text   string
	isText bool
}

// Node wraps a handle as an append argument.
func Node(h tree.Handle) NodeOrText {
	return NodeOrText{node: h}
}

// Text wraps text content as an append argument.
func Text(s string) NodeOrText {
	return NodeOrText{text: s, isText: true}
}

// IsText reports whether c carries text rather than a node.
func (c NodeOrText) IsText() bool { return c.isText }

// Handle returns the wrapped node handle; zero for text.
func (c NodeOrText) Handle() tree.Handle { return c.node }

// Content returns the wrapped text; empty for nodes.
func (c NodeOrText) Content() string { return c.text }

// Option configures a Sink.
type Option func(*Sink)

// WithParseErrorHandler sets the callback that receives parse diagnostics.
// The default handler logs them at warn level.
func WithParseErrorHandler(fn func(msg string)) Option {
	return func(s *Sink) {
		s.onParseError = fn
	}
}

// WithLogger sets the logger used for event tracing.
func WithLogger(l *slog.Logger) Option {
	return func(s *Sink) {
		s.log = l
	}
}

// WithArena makes the sink build into a caller-supplied arena.
func WithArena(a *tree.Arena) Option {
	return func(s *Sink) {
		s.arena = a
	}
}

// Result is the outcome of a completed construction session.
type Result struct {
	Session uuid.UUID
	Arena   *tree.Arena
	Root    tree.Handle
	Quirks  tree.QuirksMode
	Errors  []string
}

// Sink receives tree-construction events. It is not safe for concurrent use.
type Sink struct {
	session      uuid.UUID
	arena        *tree.Arena
	doc          tree.Handle
	quirks       tree.QuirksMode
	onParseError func(msg string)
	log          *slog.Logger

	parseErrors []string
	err         error
}

// New creates a sink with an empty document.
func New(opts ...Option) (*Sink, error) {
	s := &Sink{session: uuid.New()}
	for _, opt := range opts {
		opt(s)
	}
	if s.arena == nil {
		s.arena = tree.New()
	}
	if s.log == nil {
		s.log = logger.L
	}
	s.log = s.log.With("session", s.session.String())
	if s.onParseError == nil {
		s.onParseError = func(msg string) {
			s.log.Warn("parse error", "msg", msg)
		}
	}
	doc, err := s.arena.NewNode(&tree.Document{QuirksMode: tree.NoQuirks})
	if err != nil {
		return nil, s.fail("create_document", err)
	}
	s.doc = doc
	return s, nil
}

// Arena returns the arena being built. Callers must not mutate it while
// the session is running.
func (s *Sink) Arena() *tree.Arena { return s.arena }

// Err returns the structural failure that aborted the session, if any.
func (s *Sink) Err() error { return s.err }

// fail latches the first structural failure.
func (s *Sink) fail(event string, err error) error {
	if s.err == nil {
		s.err = &EventError{Event: event, Err: err}
		s.log.Error("construction aborted", "event", event, "err", err)
	}
	return s.err
}

// Document returns the document root.
func (s *Sink) Document() tree.Handle {
	return s.doc
}

func isTemplate(name tree.QualName) bool {
	return name.Is(tree.NamespaceHTML, atom.Template.String())
}

// CreateElement allocates an unattached element. A template element also
// gets its contents fragment.
func (s *Sink) CreateElement(name tree.QualName, attrs []tree.Attribute) (tree.Handle, error) {
	const event = "create_element"
	if s.err != nil {
		return tree.Handle{}, s.err
	}
	el := &tree.Element{Name: name, Attrs: slices.Clone(attrs)}
	h, err := s.arena.NewNode(el)
	if err != nil {
		return tree.Handle{}, s.fail(event, err)
	}
	if isTemplate(name) {
		frag, err := s.arena.NewNode(&tree.DocumentFragment{})
		if err != nil {
			return tree.Handle{}, s.fail(event, err)
		}
		el.TemplateContents = frag
	}
	s.log.Debug(event, "handle", h, "name", name.Local)
	return h, nil
}

// CreateText allocates an unattached text node.
func (s *Sink) CreateText(content string) (tree.Handle, error) {
	return s.create("create_text", &tree.Text{Data: content})
}

// CreateComment allocates an unattached comment.
func (s *Sink) CreateComment(content string) (tree.Handle, error) {
	return s.create("create_comment", &tree.Comment{Data: content})
}

// CreateProcessingInstruction allocates an unattached processing instruction.
func (s *Sink) CreateProcessingInstruction(target, data string) (tree.Handle, error) {
	return s.create("create_pi", &tree.ProcessingInstruction{Target: target, Data: data})
}

func (s *Sink) create(event string, data tree.NodeData) (tree.Handle, error) {
	if s.err != nil {
		return tree.Handle{}, s.err
	}
	h, err := s.arena.NewNode(data)
	if err != nil {
		return tree.Handle{}, s.fail(event, err)
	}
	s.log.Debug(event, "handle", h)
	return h, nil
}

// Append adds child as the last child of parent. Text is merged into the
// parent's last child when that is already a text node.
func (s *Sink) Append(parent tree.Handle, child NodeOrText) error {
	const event = "append"
	if s.err != nil {
		return s.err
	}
	var err error
	if child.isText {
		_, err = s.arena.AppendText(parent, child.text)
	} else {
		err = s.arena.Append(parent, child.node)
	}
	if err != nil {
		return s.fail(event, err)
	}
	s.log.Debug(event, "parent", parent, "child", child.node, "text", child.isText)
	return nil
}

// AppendBeforeSibling inserts child immediately before sibling. Text is
// merged into the sibling's previous sibling when that is a text node.
func (s *Sink) AppendBeforeSibling(sibling tree.Handle, child NodeOrText) error {
	const event = "append_before_sibling"
	if s.err != nil {
		return s.err
	}
	var err error
	if child.isText {
		_, err = s.arena.InsertTextBefore(sibling, child.text)
	} else {
		err = s.arena.InsertBefore(sibling, child.node)
	}
	if err != nil {
		return s.fail(event, err)
	}
	s.log.Debug(event, "sibling", sibling, "child", child.node, "text", child.isText)
	return nil
}

// AppendBasedOnParent implements the foster-parenting choice: when element
// is not in the tree, child is appended to prevElement; otherwise it is
// inserted before element.
func (s *Sink) AppendBasedOnParent(element, prevElement tree.Handle, child NodeOrText) error {
	const event = "append_based_on_parent"
	if s.err != nil {
		return s.err
	}
	orphan, err := s.arena.IsOrphan(element)
	if err != nil {
		return s.fail(event, err)
	}
	if orphan {
		return s.Append(prevElement, child)
	}
	return s.AppendBeforeSibling(element, child)
}

// AppendDoctypeToDocument attaches a doctype node under the document.
func (s *Sink) AppendDoctypeToDocument(name, publicID, systemID string) error {
	const event = "append_doctype_to_document"
	if s.err != nil {
		return s.err
	}
	h, err := s.arena.NewNode(&tree.Doctype{Name: name, PublicID: publicID, SystemID: systemID})
	if err != nil {
		return s.fail(event, err)
	}
	if err := s.arena.Append(s.doc, h); err != nil {
		return s.fail(event, err)
	}
	s.log.Debug(event, "handle", h, "name", name)
	return nil
}

// AddAttributesIfMissing merges attrs into target without overwriting.
func (s *Sink) AddAttributesIfMissing(target tree.Handle, attrs []tree.Attribute) error {
	const event = "add_attrs_if_missing"
	if s.err != nil {
		return s.err
	}
	added, err := s.arena.MergeAttributesIfMissing(target, attrs)
	if err != nil {
		return s.fail(event, err)
	}
	s.log.Debug(event, "target", target, "added", added)
	return nil
}

// RemoveFromParent detaches target. Removing a detached node does nothing.
func (s *Sink) RemoveFromParent(target tree.Handle) error {
	const event = "remove_from_parent"
	if s.err != nil {
		return s.err
	}
	if err := s.arena.Detach(target); err != nil {
		return s.fail(event, err)
	}
	s.log.Debug(event, "target", target)
	return nil
}

// ReparentChildren moves all children of node to the end of newParent.
func (s *Sink) ReparentChildren(node, newParent tree.Handle) error {
	const event = "reparent_children"
	if s.err != nil {
		return s.err
	}
	if err := s.arena.ReparentChildren(node, newParent); err != nil {
		return s.fail(event, err)
	}
	s.log.Debug(event, "from", node, "to", newParent)
	return nil
}

// GetTemplateContents returns the contents fragment of a template element.
func (s *Sink) GetTemplateContents(target tree.Handle) (tree.Handle, error) {
	const event = "get_template_contents"
	if s.err != nil {
		return tree.Handle{}, s.err
	}
	el, err := s.arena.Element(target)
	if err != nil {
		return tree.Handle{}, s.fail(event, err)
	}
	if el.TemplateContents.IsZero() {
		return tree.Handle{}, s.fail(event, &tree.OpError{Op: "template contents", Handle: target, Err: tree.ErrNotATemplate})
	}
	return el.TemplateContents, nil
}

// ElemName returns the qualified name of an element.
func (s *Sink) ElemName(target tree.Handle) (tree.QualName, error) {
	const event = "elem_name"
	if s.err != nil {
		return tree.QualName{}, s.err
	}
	el, err := s.arena.Element(target)
	if err != nil {
		return tree.QualName{}, s.fail(event, err)
	}
	return el.Name, nil
}

// SameNode reports whether x and y refer to the same node.
func (s *Sink) SameNode(x, y tree.Handle) bool {
	return x == y
}

// SetQuirksMode records the document's compatibility mode.
func (s *Sink) SetQuirksMode(mode tree.QuirksMode) error {
	const event = "set_quirks_mode"
	if s.err != nil {
		return s.err
	}
	if err := s.arena.SetQuirksMode(s.doc, mode); err != nil {
		return s.fail(event, err)
	}
	s.quirks = mode
	s.log.Debug(event, "mode", mode.String())
	return nil
}

// ParseError reports a recoverable markup error. It never aborts the session.
func (s *Sink) ParseError(msg string) {
	s.parseErrors = append(s.parseErrors, msg)
	s.onParseError(msg)
}

// Finish verifies the tree and returns the session result. It fails if any
// event failed or the linkage is inconsistent.
func (s *Sink) Finish() (*Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	if err := s.arena.Check(); err != nil {
		return nil, s.fail("finish", err)
	}
	s.log.Debug("finish", "nodes", s.arena.Len(), "parse_errors", len(s.parseErrors))
	return &Result{
		Session: s.session,
		Arena:   s.arena,
		Root:    s.doc,
		Quirks:  s.quirks,
		Errors:  slices.Clone(s.parseErrors),
	}, nil
}
