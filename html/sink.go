// Package html drives tree construction from markup using
// golang.org/x/net/html as the underlying tokenizer and parser.
//
// The drivers in this package decide which structural events to emit; the
// tree itself is built by whatever implements Sink.
package html

import (
	"github.com/chrisuehlinger/domarena/sink"
	"github.com/chrisuehlinger/domarena/tree"
)

// Sink is the structural-event contract the drivers call, one method per
// tree-construction decision, strictly in order.
type Sink interface {
	Document() tree.Handle
	CreateElement(name tree.QualName, attrs []tree.Attribute) (tree.Handle, error)
	CreateComment(text string) (tree.Handle, error)
	CreateProcessingInstruction(target, data string) (tree.Handle, error)
	Append(parent tree.Handle, child sink.NodeOrText) error
	AppendBeforeSibling(sibling tree.Handle, child sink.NodeOrText) error
	AppendBasedOnParent(element, prevElement tree.Handle, child sink.NodeOrText) error
	AppendDoctypeToDocument(name, publicID, systemID string) error
	AddAttributesIfMissing(target tree.Handle, attrs []tree.Attribute) error
	RemoveFromParent(target tree.Handle) error
	ReparentChildren(node, newParent tree.Handle) error
	GetTemplateContents(target tree.Handle) (tree.Handle, error)
	ElemName(target tree.Handle) (tree.QualName, error)
	SameNode(x, y tree.Handle) bool
	SetQuirksMode(mode tree.QuirksMode) error
	ParseError(msg string)
}

var _ Sink = (*sink.Sink)(nil)
