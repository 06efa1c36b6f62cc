package html

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/chrisuehlinger/domarena/sink"
	"github.com/chrisuehlinger/domarena/tree"
)

// ParseOption configures the underlying golang.org/x/net/html parser.
type ParseOption = html.ParseOption

// WithScripting toggles the scripting flag, which changes how noscript
// content is parsed.
func WithScripting(enabled bool) ParseOption {
	return html.ParseOptionEnableScripting(enabled)
}

// Replay parses a complete document with golang.org/x/net/html and replays
// the resulting tree into s as structural events.
func Replay(ctx context.Context, r io.Reader, s Sink, opts ...ParseOption) error {
	doc, err := html.ParseWithOptions(r, opts...)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	rp := &replayer{ctx: ctx, sink: s}
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if err := rp.node(s.Document(), c); err != nil {
			return err
		}
	}
	if !rp.sawDoctype {
		s.ParseError("missing doctype")
		return s.SetQuirksMode(tree.Quirks)
	}
	return nil
}

// ReplayFragment parses r as the children of an element named by
// contextTag and appends the resulting nodes under the document root.
func ReplayFragment(ctx context.Context, r io.Reader, contextTag atom.Atom, s Sink) error {
	if contextTag == 0 {
		return errors.New("parse fragment: missing context element")
	}
	contextNode := &html.Node{
		Type:     html.ElementNode,
		DataAtom: contextTag,
		Data:     contextTag.String(),
	}
	nodes, err := html.ParseFragment(r, contextNode)
	if err != nil {
		return fmt.Errorf("parse fragment: %w", err)
	}
	rp := &replayer{ctx: ctx, sink: s}
	for _, n := range nodes {
		if err := rp.node(s.Document(), n); err != nil {
			return err
		}
	}
	return nil
}

type replayer struct {
	ctx        context.Context
	sink       Sink
	sawDoctype bool
}

func (rp *replayer) node(parent tree.Handle, n *html.Node) error {
	if err := rp.ctx.Err(); err != nil {
		return err
	}
	switch n.Type {
	case html.DoctypeNode:
		rp.sawDoctype = true
		d := doctype{name: n.Data}
		for _, a := range n.Attr {
			switch a.Key {
			case "public":
				d.publicID = a.Val
			case "system":
				d.systemID, d.hasSystem = a.Val, true
			}
		}
		if err := rp.sink.AppendDoctypeToDocument(d.name, d.publicID, d.systemID); err != nil {
			return err
		}
		return rp.sink.SetQuirksMode(d.quirks())

	case html.ElementNode:
		h, err := rp.sink.CreateElement(qualName(n), convertAttributes(n.Attr))
		if err != nil {
			return err
		}
		if err := rp.sink.Append(parent, sink.Node(h)); err != nil {
			return err
		}
		container := h
		if n.DataAtom == atom.Template && n.Namespace == "" {
			if container, err = rp.sink.GetTemplateContents(h); err != nil {
				return err
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := rp.node(container, c); err != nil {
				return err
			}
		}
		return nil

	case html.TextNode, html.RawNode:
		return rp.sink.Append(parent, sink.Text(n.Data))

	case html.CommentNode:
		h, err := rp.sink.CreateComment(n.Data)
		if err != nil {
			return err
		}
		return rp.sink.Append(parent, sink.Node(h))

	case html.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := rp.node(parent, c); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("replay: unexpected node type %d", n.Type)
}
