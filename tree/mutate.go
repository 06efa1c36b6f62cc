package tree

// Every mutator validates all of its inputs before writing any link, so a
// failed call leaves the arena exactly as it was.

// Append links child as the last child of parent. child must be orphan.
func (a *Arena) Append(parent, child Handle) error {
	const op = "append"
	p, ok := a.lookup(parent)
	if !ok {
		return opErr(op, parent, ErrUnknownHandle)
	}
	c, ok := a.lookup(child)
	if !ok {
		return opErr(op, child, ErrUnknownHandle)
	}
	if err := a.checkLinkable(op, child, c, parent); err != nil {
		return err
	}
	if p.first.IsZero() != p.last.IsZero() {
		return opErr(op, parent, invariant(parent, "first and last child disagree"))
	}

	if p.first.IsZero() {
		p.first = child
		p.last = child
		c.parent = parent
	} else {
		last, err := a.linked(p.last)
		if err != nil {
			return opErr(op, parent, err)
		}
		if !last.next.IsZero() {
			return opErr(op, parent, invariant(p.last, "last child has a next sibling"))
		}
		last.next = child
		c.prev = p.last
		p.last = child
	}
	delete(a.orphans, child)
	return nil
}

// InsertBefore links node immediately before sibling under sibling's
// parent. node must be orphan and sibling must be attached.
//
// When sibling is the first child, node takes over the parent
// back-reference.
func (a *Arena) InsertBefore(sibling, node Handle) error {
	const op = "insert before"
	s, ok := a.lookup(sibling)
	if !ok {
		return opErr(op, sibling, ErrUnknownHandle)
	}
	n, ok := a.lookup(node)
	if !ok {
		return opErr(op, node, ErrUnknownHandle)
	}
	if _, orphan := a.orphans[sibling]; orphan {
		return opErr(op, sibling, ErrNoParent)
	}
	parent, err := a.resolveParent(sibling)
	if err != nil {
		return opErr(op, sibling, err)
	}
	if err := a.checkLinkable(op, node, n, parent); err != nil {
		return err
	}
	p, err := a.linked(parent)
	if err != nil {
		return opErr(op, sibling, err)
	}

	var prev *Node
	if s.prev.IsZero() {
		if p.first != sibling || s.parent != parent {
			return opErr(op, sibling, invariant(parent, "first child is not the head of its chain"))
		}
	} else if prev, err = a.linked(s.prev); err != nil {
		return opErr(op, sibling, err)
	}

	n.next = sibling
	n.prev = s.prev
	if prev == nil {
		n.parent = parent
		s.parent = Handle{}
		p.first = node
	} else {
		prev.next = node
	}
	s.prev = node
	delete(a.orphans, node)
	return nil
}

// checkLinkable verifies that node can become a child of parent: it must be
// orphan, carry no sibling links, and must not be an ancestor of parent.
func (a *Arena) checkLinkable(op string, h Handle, n *Node, parent Handle) error {
	if _, orphan := a.orphans[h]; !orphan {
		return opErr(op, h, ErrAlreadyAttached)
	}
	if !n.parent.IsZero() || !n.prev.IsZero() || !n.next.IsZero() {
		return opErr(op, h, invariant(h, "orphan node still carries links"))
	}
	cyclic, err := a.isAncestor(h, parent)
	if err != nil {
		return opErr(op, h, err)
	}
	if cyclic {
		return opErr(op, h, ErrHierarchy)
	}
	return nil
}

// Detach unlinks node from its parent and returns it to the orphan set.
// Its own children are kept. Detaching an orphan does nothing.
func (a *Arena) Detach(node Handle) error {
	const op = "detach"
	n, ok := a.lookup(node)
	if !ok {
		return opErr(op, node, ErrUnknownHandle)
	}
	if _, orphan := a.orphans[node]; orphan {
		return nil
	}
	parent, err := a.resolveParent(node)
	if err != nil {
		return opErr(op, node, err)
	}
	p, err := a.linked(parent)
	if err != nil {
		return opErr(op, node, err)
	}
	var prev, next *Node
	if !n.prev.IsZero() {
		if prev, err = a.linked(n.prev); err != nil {
			return opErr(op, node, err)
		}
	}
	if !n.next.IsZero() {
		if next, err = a.linked(n.next); err != nil {
			return opErr(op, node, err)
		}
	}

	if prev != nil {
		prev.next = n.next
	} else {
		// node was the first child: hand the back-reference to its successor.
		p.first = n.next
		if next != nil {
			next.parent = parent
		}
	}
	if next != nil {
		next.prev = n.prev
	} else {
		p.last = n.prev
	}
	n.parent, n.prev, n.next = Handle{}, Handle{}, Handle{}
	a.orphans[node] = struct{}{}
	return nil
}

// ReparentChildren moves every child of oldParent to the end of newParent's
// children, preserving order. The chain is spliced in constant time.
func (a *Arena) ReparentChildren(oldParent, newParent Handle) error {
	const op = "reparent children"
	o, ok := a.lookup(oldParent)
	if !ok {
		return opErr(op, oldParent, ErrUnknownHandle)
	}
	np, ok := a.lookup(newParent)
	if !ok {
		return opErr(op, newParent, ErrUnknownHandle)
	}
	if oldParent == newParent || o.first.IsZero() {
		return nil
	}
	inside, err := a.isAncestor(oldParent, newParent)
	if err != nil {
		return opErr(op, newParent, err)
	}
	if inside {
		return opErr(op, newParent, ErrHierarchy)
	}
	head, err := a.linked(o.first)
	if err != nil {
		return opErr(op, oldParent, err)
	}
	if head.parent != oldParent {
		return opErr(op, oldParent, invariant(o.first, "first child does not point at its parent"))
	}

	if np.first.IsZero() {
		np.first = o.first
		head.parent = newParent
	} else {
		tail, err := a.linked(np.last)
		if err != nil {
			return opErr(op, newParent, err)
		}
		tail.next = o.first
		head.prev = np.last
		head.parent = Handle{}
	}
	np.last = o.last
	o.first, o.last = Handle{}, Handle{}
	return nil
}

// MergeAttributesIfMissing adds each attribute of attrs to element unless an
// attribute with the same namespace and key is already present. It returns
// the number of attributes added.
func (a *Arena) MergeAttributesIfMissing(element Handle, attrs []Attribute) (int, error) {
	el, err := a.Element(element)
	if err != nil {
		return 0, opErr("merge attributes", element, unwrapOp(err))
	}
	added := 0
	for _, attr := range attrs {
		if _, ok := el.Attr(attr.Namespace, attr.Key); ok {
			continue
		}
		el.Attrs = append(el.Attrs, attr)
		added++
	}
	return added, nil
}

// AppendText appends text as the last child of parent, concatenating into
// the last child when it is already a text node. It returns the text node
// that received the content.
func (a *Arena) AppendText(parent Handle, text string) (Handle, error) {
	const op = "append text"
	p, ok := a.lookup(parent)
	if !ok {
		return Handle{}, opErr(op, parent, ErrUnknownHandle)
	}
	if !p.last.IsZero() {
		last, err := a.linked(p.last)
		if err != nil {
			return Handle{}, opErr(op, parent, err)
		}
		if t, ok := last.data.(*Text); ok {
			t.Data += text
			return p.last, nil
		}
	}
	h, err := a.NewNode(&Text{Data: text})
	if err != nil {
		return Handle{}, err
	}
	if err := a.Append(parent, h); err != nil {
		a.release(h)
		return Handle{}, err
	}
	return h, nil
}

// InsertTextBefore inserts text immediately before sibling, concatenating
// into the previous sibling when it is already a text node. It returns the
// text node that received the content.
func (a *Arena) InsertTextBefore(sibling Handle, text string) (Handle, error) {
	const op = "insert text before"
	s, ok := a.lookup(sibling)
	if !ok {
		return Handle{}, opErr(op, sibling, ErrUnknownHandle)
	}
	if _, orphan := a.orphans[sibling]; orphan {
		return Handle{}, opErr(op, sibling, ErrNoParent)
	}
	if !s.prev.IsZero() {
		prev, err := a.linked(s.prev)
		if err != nil {
			return Handle{}, opErr(op, sibling, err)
		}
		if t, ok := prev.data.(*Text); ok {
			t.Data += text
			return s.prev, nil
		}
	}
	h, err := a.NewNode(&Text{Data: text})
	if err != nil {
		return Handle{}, err
	}
	if err := a.InsertBefore(sibling, h); err != nil {
		a.release(h)
		return Handle{}, err
	}
	return h, nil
}

// SetQuirksMode records the compatibility mode on a document node.
func (a *Arena) SetQuirksMode(document Handle, mode QuirksMode) error {
	const op = "set quirks mode"
	n, ok := a.lookup(document)
	if !ok {
		return opErr(op, document, ErrUnknownHandle)
	}
	doc, ok := n.data.(*Document)
	if !ok {
		return opErr(op, document, ErrNotADocument)
	}
	doc.QuirksMode = mode
	return nil
}

// unwrapOp strips an *OpError so the caller can re-wrap the cause
// under its own operation name.
func unwrapOp(err error) error {
	if oe, ok := err.(*OpError); ok {
		return oe.Err
	}
	return err
}
