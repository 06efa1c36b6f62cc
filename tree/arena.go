// Package tree stores a document tree in an arena of nodes addressed by
// handles.
//
// Only the first child of a parent records the parent handle. Every other
// child finds its parent by walking previous-sibling links back to the first
// child. Nodes are never removed during a session: detaching a node returns
// it to the orphan set and its handle stays valid until Reset.
package tree

import (
	"errors"
	"math"
	"slices"
	"sync/atomic"
)

// epochs issues arena generations. Every arena, and every Reset of one,
// draws a fresh value so handles never resolve outside the generation
// that issued them.
var epochs atomic.Uint32

func nextEpoch() uint32 {
	for {
		if e := epochs.Add(1); e != 0 {
			return e
		}
	}
}

// maxIndex is the largest index NewNode will issue.
var maxIndex uint32 = math.MaxUint32

// Node is the record stored for one handle: its data and its links.
type Node struct {
	data NodeData

	// parent is set only while the node is the first child of its parent.
	parent Handle
	prev   Handle
	next   Handle
	first  Handle
	last   Handle
}

// Data returns the node's payload.
func (n *Node) Data() NodeData { return n.data }

// Kind returns the variant of the node's payload.
func (n *Node) Kind() Kind { return n.data.Kind() }

// Parent returns the stored parent back-reference. It is only set on the
// first child of a parent; use Arena.ParentOf to resolve any node's parent.
func (n *Node) Parent() Handle { return n.parent }

// PrevSibling returns the previous sibling, or the zero Handle.
func (n *Node) PrevSibling() Handle { return n.prev }

// NextSibling returns the next sibling, or the zero Handle.
func (n *Node) NextSibling() Handle { return n.next }

// FirstChild returns the first child, or the zero Handle.
func (n *Node) FirstChild() Handle { return n.first }

// LastChild returns the last child, or the zero Handle.
func (n *Node) LastChild() Handle { return n.last }

// Arena owns every node of a construction session.
//
// An Arena is not safe for concurrent use.
type Arena struct {
	// nodes[0] is unused so the zero Handle never resolves.
	nodes   []Node
	orphans map[Handle]struct{}
	epoch   uint32
}

// New returns an empty arena.
func New() *Arena {
	return &Arena{
		nodes:   make([]Node, 1, 64),
		orphans: make(map[Handle]struct{}),
		epoch:   nextEpoch(),
	}
}

// Len returns the number of nodes allocated in the current epoch.
func (a *Arena) Len() int {
	return len(a.nodes) - 1
}

// Reset discards every node. Handles issued before the reset no longer
// resolve.
func (a *Arena) Reset() {
	clear(a.nodes)
	a.nodes = a.nodes[:1]
	clear(a.orphans)
	a.epoch = nextEpoch()
}

// NewNode allocates an unlinked node holding data and returns its handle.
// The node starts out orphan.
func (a *Arena) NewNode(data NodeData) (Handle, error) {
	const op = "new node"
	if !validData(data) {
		return Handle{}, opErr(op, Handle{}, ErrInvalidData)
	}
	if uint64(len(a.nodes)) > uint64(maxIndex) {
		return Handle{}, opErr(op, Handle{}, ErrArenaFull)
	}
	h := Handle{index: uint32(len(a.nodes)), epoch: a.epoch}
	a.nodes = append(a.nodes, Node{data: data})
	a.orphans[h] = struct{}{}
	return h, nil
}

// release drops h, which must be the most recently issued node and still
// orphan. It undoes a NewNode whose follow-up link failed.
func (a *Arena) release(h Handle) {
	if int(h.index) != len(a.nodes)-1 {
		return
	}
	if _, orphan := a.orphans[h]; !orphan {
		return
	}
	delete(a.orphans, h)
	a.nodes[h.index] = Node{}
	a.nodes = a.nodes[:h.index]
}

func validData(data NodeData) bool {
	switch d := data.(type) {
	case *Element:
		return d != nil
	case *Text:
		return d != nil
	case *Comment:
		return d != nil
	case *ProcessingInstruction:
		return d != nil
	case *Doctype:
		return d != nil
	case *Document:
		return d != nil
	case *DocumentFragment:
		return d != nil
	}
	return false
}

// Get returns the record for h.
//
// The returned pointer is invalidated by the next NewNode call.
func (a *Arena) Get(h Handle) (*Node, error) {
	n, ok := a.lookup(h)
	if !ok {
		return nil, opErr("get", h, ErrUnknownHandle)
	}
	return n, nil
}

func (a *Arena) lookup(h Handle) (*Node, bool) {
	if h.index == 0 || h.epoch != a.epoch || int(h.index) >= len(a.nodes) {
		return nil, false
	}
	return &a.nodes[h.index], true
}

// linked resolves a handle read from another node's links.
func (a *Arena) linked(h Handle) (*Node, error) {
	n, ok := a.lookup(h)
	if !ok {
		return nil, invariant(h, "dangling link")
	}
	return n, nil
}

// IsOrphan reports whether h is not currently linked under any parent.
func (a *Arena) IsOrphan(h Handle) (bool, error) {
	if _, ok := a.lookup(h); !ok {
		return false, opErr("is orphan", h, ErrUnknownHandle)
	}
	_, orphan := a.orphans[h]
	return orphan, nil
}

// Orphans returns the orphan handles in issue order.
func (a *Arena) Orphans() []Handle {
	out := make([]Handle, 0, len(a.orphans))
	for h := range a.orphans {
		out = append(out, h)
	}
	slices.SortFunc(out, Handle.Compare)
	return out
}

// ParentOf resolves the parent of h. It returns the zero Handle when h is
// orphan. The cost is proportional to the distance from h to the first
// child of its parent.
func (a *Arena) ParentOf(h Handle) (Handle, error) {
	if _, ok := a.lookup(h); !ok {
		return Handle{}, opErr("parent of", h, ErrUnknownHandle)
	}
	p, err := a.resolveParent(h)
	if err != nil {
		return Handle{}, opErr("parent of", h, err)
	}
	return p, nil
}

func (a *Arena) resolveParent(h Handle) (Handle, error) {
	if _, orphan := a.orphans[h]; orphan {
		return Handle{}, nil
	}
	for cur, steps := h, 0; steps < len(a.nodes); steps++ {
		n, err := a.linked(cur)
		if err != nil {
			return Handle{}, err
		}
		if !n.parent.IsZero() {
			return n.parent, nil
		}
		if n.prev.IsZero() {
			return Handle{}, invariant(cur, "attached node heads a sibling chain without a parent")
		}
		cur = n.prev
	}
	return Handle{}, invariant(h, "sibling chain does not terminate")
}

// isAncestor reports whether anc is an inclusive ancestor of h.
func (a *Arena) isAncestor(anc, h Handle) (bool, error) {
	for cur, steps := h, 0; !cur.IsZero(); steps++ {
		if cur == anc {
			return true, nil
		}
		if steps > len(a.nodes) {
			return false, invariant(h, "ancestor chain does not terminate")
		}
		p, err := a.resolveParent(cur)
		if err != nil {
			return false, err
		}
		cur = p
	}
	return false, nil
}

// Children returns the children of h in order.
func (a *Arena) Children(h Handle) ([]Handle, error) {
	n, ok := a.lookup(h)
	if !ok {
		return nil, opErr("children", h, ErrUnknownHandle)
	}
	var out []Handle
	for c := n.first; !c.IsZero(); {
		if len(out) >= len(a.nodes) {
			return nil, opErr("children", h, invariant(h, "child chain does not terminate"))
		}
		out = append(out, c)
		cn, err := a.linked(c)
		if err != nil {
			return nil, opErr("children", h, err)
		}
		c = cn.next
	}
	return out, nil
}

// Element returns the element payload of h.
func (a *Arena) Element(h Handle) (*Element, error) {
	n, ok := a.lookup(h)
	if !ok {
		return nil, opErr("element", h, ErrUnknownHandle)
	}
	el, ok := n.data.(*Element)
	if !ok {
		return nil, opErr("element", h, ErrNotAnElement)
	}
	return el, nil
}

// WalkFunc is called for every node visited by Walk. Returning SkipChildren
// prunes the subtree; any other non-nil error stops the walk.
type WalkFunc func(h Handle, n *Node, depth int) error

// SkipChildren is returned by a WalkFunc to skip the node's descendants.
var SkipChildren = errors.New("skip children")

// Walk visits root and its descendants in document order. Template
// contents are not entered; they are separate trees. fn must not allocate
// nodes while holding the *Node it was given.
func (a *Arena) Walk(root Handle, fn WalkFunc) error {
	if _, ok := a.lookup(root); !ok {
		return opErr("walk", root, ErrUnknownHandle)
	}
	type frame struct {
		h     Handle
		depth int
	}
	stack := []frame{{root, 0}}
	for visited := 0; len(stack) > 0; visited++ {
		if visited > len(a.nodes) {
			return opErr("walk", root, invariant(root, "subtree contains a cycle"))
		}
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node, err := a.linked(f.h)
		if err != nil {
			return opErr("walk", root, err)
		}
		if err := fn(f.h, node, f.depth); err != nil {
			if errors.Is(err, SkipChildren) {
				continue
			}
			return err
		}
		// Push children in reverse so the first child is visited next.
		for c := node.last; !c.IsZero(); {
			stack = append(stack, frame{c, f.depth + 1})
			cn, err := a.linked(c)
			if err != nil {
				return opErr("walk", root, err)
			}
			c = cn.prev
		}
	}
	return nil
}
