package tree

// Check verifies the linkage of every node in the arena:
//
//   - a parent's first and last child are both set or both unset, and its
//     chain runs from first to last with symmetric sibling links;
//   - only the first child of a chain carries the parent back-reference;
//   - no node appears in more than one chain;
//   - a node is in the orphan set iff it is not linked under a parent;
//   - every attached node is reachable from an orphan root, so the child
//     links contain no cycle.
//
// The first inconsistency found is returned as an *InvariantError.
func (a *Arena) Check() error {
	owner := make([]Handle, len(a.nodes))
	for i := 1; i < len(a.nodes); i++ {
		h := Handle{index: uint32(i), epoch: a.epoch}
		if err := a.checkChain(h, owner); err != nil {
			return err
		}
	}

	for i := 1; i < len(a.nodes); i++ {
		h := Handle{index: uint32(i), epoch: a.epoch}
		n := &a.nodes[i]
		_, orphan := a.orphans[h]
		switch {
		case orphan && !owner[i].IsZero():
			return invariant(h, "orphan node is linked under %s", owner[i])
		case orphan && (!n.parent.IsZero() || !n.prev.IsZero() || !n.next.IsZero()):
			return invariant(h, "orphan node carries sibling or parent links")
		case !orphan && owner[i].IsZero():
			return invariant(h, "attached node is not in any child chain")
		}
	}

	// Every chain member has been attributed to exactly one owner, so the
	// child relation is a forest iff walking down from the orphan roots
	// reaches every attached node.
	reached := make([]bool, len(a.nodes))
	count := 0
	for h := range a.orphans {
		err := a.Walk(h, func(c Handle, _ *Node, _ int) error {
			if reached[c.index] {
				return invariant(c, "node reached twice")
			}
			reached[c.index] = true
			count++
			return nil
		})
		if err != nil {
			return unwrapOp(err)
		}
	}
	if count != len(a.nodes)-1 {
		for i := 1; i < len(a.nodes); i++ {
			if !reached[i] {
				return invariant(Handle{index: uint32(i), epoch: a.epoch}, "node lies on a cycle")
			}
		}
	}
	return nil
}

func (a *Arena) checkChain(parent Handle, owner []Handle) error {
	p := &a.nodes[parent.index]
	if p.first.IsZero() != p.last.IsZero() {
		return invariant(parent, "first child %s and last child %s disagree", p.first, p.last)
	}
	if p.first.IsZero() {
		return nil
	}
	var prev Handle
	for cur := p.first; !cur.IsZero(); {
		n, err := a.linked(cur)
		if err != nil {
			return err
		}
		if !owner[cur.index].IsZero() {
			return invariant(cur, "node is a child of both %s and %s", owner[cur.index], parent)
		}
		owner[cur.index] = parent
		if n.prev != prev {
			return invariant(cur, "previous sibling is %s, want %s", n.prev, prev)
		}
		if prev.IsZero() {
			if n.parent != parent {
				return invariant(cur, "first child points at parent %s, want %s", n.parent, parent)
			}
		} else if !n.parent.IsZero() {
			return invariant(cur, "non-first child carries parent %s", n.parent)
		}
		prev = cur
		cur = n.next
	}
	if prev != p.last {
		return invariant(parent, "chain ends at %s but last child is %s", prev, p.last)
	}
	return nil
}
