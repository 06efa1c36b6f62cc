package html

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/chrisuehlinger/domarena/sink"
	"github.com/chrisuehlinger/domarena/tree"
)

// Stream builds a document straight from the token stream, deciding
// tree-construction events itself instead of replaying a finished tree.
//
// It covers implied html/head/body elements, p and li auto-closing, implied
// table sections, foster parenting of misplaced table content, misnested
// formatting end tags and SVG/MathML subtrees. It does not reconstruct
// active formatting elements and ignores framesets.
func Stream(ctx context.Context, r io.Reader, s Sink) error {
	b := &builder{
		sink: s,
		z:    html.NewTokenizer(r),
		doc:  s.Document(),
	}
	return b.run(ctx)
}

// openElement is an entry of the stack of open elements.
type openElement struct {
	h         tree.Handle
	container tree.Handle // where children go; the contents fragment for templates
	name      tree.QualName
	a         atom.Atom // zero outside the HTML namespace
	attrs     []tree.Attribute
}

func htmlElement(local string, a atom.Atom, attrs []tree.Attribute) *openElement {
	return &openElement{name: tree.HTMLName(local), a: a, attrs: attrs}
}

type builder struct {
	sink Sink
	z    *html.Tokenizer

	doc, htmlElem, head, body tree.Handle

	stack      []*openElement
	sawDoctype bool
}

func (b *builder) run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		switch b.z.Next() {
		case html.ErrorToken:
			if errors.Is(b.z.Err(), io.EOF) {
				return b.eof()
			}
			return fmt.Errorf("tokenize: %w", b.z.Err())
		case html.DoctypeToken:
			err = b.doctype(b.z.Token().Data)
		case html.CommentToken:
			err = b.comment(b.z.Token().Data)
		case html.TextToken:
			err = b.text(b.z.Token().Data)
		case html.StartTagToken:
			err = b.startTag(b.z.Token(), false)
		case html.SelfClosingTagToken:
			err = b.startTag(b.z.Token(), true)
		case html.EndTagToken:
			err = b.endTag(b.z.Token())
		}
		if err != nil {
			return err
		}
	}
}

func (b *builder) current() *openElement {
	if len(b.stack) == 0 {
		return nil
	}
	return b.stack[len(b.stack)-1]
}

func (b *builder) currentAtom() atom.Atom {
	if cur := b.current(); cur != nil {
		return cur.a
	}
	return 0
}

// target is where a normally inserted node goes.
func (b *builder) target() tree.Handle {
	if cur := b.current(); cur != nil {
		return cur.container
	}
	return b.doc
}

func (b *builder) indexOf(a atom.Atom) int {
	for i := len(b.stack) - 1; i >= 0; i-- {
		if b.stack[i].a == a {
			return i
		}
	}
	return -1
}

func (b *builder) indexOfHandle(h tree.Handle) int {
	for i := len(b.stack) - 1; i >= 0; i-- {
		if b.sink.SameNode(b.stack[i].h, h) {
			return i
		}
	}
	return -1
}

func (b *builder) inTemplate() bool {
	return b.indexOf(atom.Template) >= 0
}

// inScope returns the stack index of the topmost element named by targets,
// or -1 when a scope boundary is hit first.
func (b *builder) inScope(boundary func(atom.Atom) bool, targets ...atom.Atom) int {
	for i := len(b.stack) - 1; i >= 0; i-- {
		a := b.stack[i].a
		if a == 0 {
			continue
		}
		if isOneOf(a, targets...) {
			return i
		}
		if boundary(a) {
			return -1
		}
	}
	return -1
}

// closeTo pops the stack down to, and including, index i.
func (b *builder) closeTo(i int) {
	if i != len(b.stack)-1 {
		b.sink.ParseError("end tag closes unclosed elements: " + b.stack[len(b.stack)-1].name.Local)
	}
	b.stack = b.stack[:i]
}

func (b *builder) create(e *openElement) error {
	h, err := b.sink.CreateElement(e.name, e.attrs)
	if err != nil {
		return err
	}
	e.h, e.container = h, h
	if e.a == atom.Template {
		if e.container, err = b.sink.GetTemplateContents(h); err != nil {
			return err
		}
	}
	return nil
}

// insert creates e and attaches it at the current insertion point,
// foster parenting it out of a table when needed.
func (b *builder) insert(e *openElement, push bool) error {
	if err := b.create(e); err != nil {
		return err
	}
	var err error
	if cur := b.current(); cur != nil && isTableContext(cur.a) && !isTableContent(e.a) {
		b.sink.ParseError("unexpected " + e.name.Local + " start tag in table")
		err = b.foster(sink.Node(e.h))
	} else {
		err = b.sink.Append(b.target(), sink.Node(e.h))
	}
	if err != nil {
		return err
	}
	if push {
		b.stack = append(b.stack, e)
	}
	return nil
}

// foster places child before the innermost open table, or inside the
// element below it when the table has been taken out of the tree.
func (b *builder) foster(child sink.NodeOrText) error {
	i := b.indexOf(atom.Table)
	if i <= 0 {
		return b.sink.Append(b.target(), child)
	}
	return b.sink.AppendBasedOnParent(b.stack[i].h, b.stack[i-1].container, child)
}

func (b *builder) ensureHTML(attrs []tree.Attribute) error {
	if !b.htmlElem.IsZero() {
		return nil
	}
	e := htmlElement("html", atom.Html, attrs)
	if err := b.insert(e, true); err != nil {
		return err
	}
	b.htmlElem = e.h
	return nil
}

func (b *builder) openHead(attrs []tree.Attribute) error {
	if err := b.ensureHTML(nil); err != nil {
		return err
	}
	e := htmlElement("head", atom.Head, attrs)
	if err := b.insert(e, true); err != nil {
		return err
	}
	b.head = e.h
	return nil
}

func (b *builder) ensureHead() error {
	if !b.head.IsZero() {
		return nil
	}
	return b.openHead(nil)
}

func (b *builder) openBody(attrs []tree.Attribute) error {
	if err := b.ensureHead(); err != nil {
		return err
	}
	if i := b.indexOfHandle(b.head); i >= 0 {
		b.stack = b.stack[:i]
	}
	e := htmlElement("body", atom.Body, attrs)
	if err := b.insert(e, true); err != nil {
		return err
	}
	b.body = e.h
	return nil
}

func (b *builder) ensureBody() error {
	if !b.body.IsZero() {
		return nil
	}
	return b.openBody(nil)
}

func (b *builder) doctype(data string) error {
	if b.sawDoctype || !b.htmlElem.IsZero() {
		b.sink.ParseError("unexpected doctype")
		return nil
	}
	b.sawDoctype = true
	d := parseDoctype(data)
	if err := b.sink.AppendDoctypeToDocument(d.name, d.publicID, d.systemID); err != nil {
		return err
	}
	return b.sink.SetQuirksMode(d.quirks())
}

// processingInstruction recognizes the bogus comment the tokenizer produces
// for "<?target data?>".
func processingInstruction(data string) (target, rest string, ok bool) {
	body, ok := strings.CutPrefix(data, "?")
	if !ok {
		return "", "", false
	}
	body = strings.TrimSuffix(body, "?")
	end := strings.IndexFunc(body, isSpace)
	if end < 0 {
		end = len(body)
	}
	if end == 0 {
		return "", "", false
	}
	return body[:end], strings.TrimLeftFunc(body[end:], isSpace), true
}

func (b *builder) comment(data string) error {
	var (
		h   tree.Handle
		err error
	)
	if target, rest, ok := processingInstruction(data); ok {
		h, err = b.sink.CreateProcessingInstruction(target, rest)
	} else {
		h, err = b.sink.CreateComment(data)
	}
	if err != nil {
		return err
	}
	return b.sink.Append(b.target(), sink.Node(h))
}

func splitSpace(s string) (space, rest string) {
	rest = strings.TrimLeftFunc(s, isSpace)
	return s[:len(s)-len(rest)], rest
}

func (b *builder) text(data string) error {
	data = strings.ReplaceAll(data, "\x00", "")
	if data == "" {
		return nil
	}
	if b.body.IsZero() && !b.inTemplate() {
		cur := b.current()
		if cur == nil || cur.h == b.htmlElem || cur.h == b.head {
			space, rest := splitSpace(data)
			if space != "" && cur != nil {
				if err := b.sink.Append(cur.container, sink.Text(space)); err != nil {
					return err
				}
			}
			if rest == "" {
				return nil
			}
			if err := b.ensureBody(); err != nil {
				return err
			}
			data = rest
		}
	}
	if cur := b.current(); cur != nil && isTableContext(cur.a) {
		if _, rest := splitSpace(data); rest == "" {
			return b.sink.Append(cur.container, sink.Text(data))
		}
		b.sink.ParseError("non-space characters in table")
		return b.foster(sink.Text(data))
	}
	return b.sink.Append(b.target(), sink.Text(data))
}

func (b *builder) startTag(tok html.Token, selfClosing bool) error {
	if cur := b.current(); cur != nil && cur.name.Space != tree.NamespaceHTML {
		if !breaksOutOfForeign(tok.DataAtom) {
			return b.foreignStartTag(cur.name.Space, tok, selfClosing)
		}
		b.sink.ParseError("unexpected " + tok.Data + " start tag in foreign content")
		for cur := b.current(); cur != nil && cur.name.Space != tree.NamespaceHTML; cur = b.current() {
			b.stack = b.stack[:len(b.stack)-1]
		}
	}

	a := tok.DataAtom
	attrs := convertAttributes(tok.Attr)
	switch a {
	case atom.Html:
		if !b.htmlElem.IsZero() {
			b.sink.ParseError("unexpected html start tag")
			return b.sink.AddAttributesIfMissing(b.htmlElem, attrs)
		}
		return b.ensureHTML(attrs)
	case atom.Head:
		if !b.head.IsZero() {
			b.sink.ParseError("unexpected head start tag")
			return nil
		}
		return b.openHead(attrs)
	case atom.Body:
		if !b.body.IsZero() {
			b.sink.ParseError("unexpected body start tag")
			return b.sink.AddAttributesIfMissing(b.body, attrs)
		}
		return b.openBody(attrs)
	}

	if b.body.IsZero() && !b.inTemplate() {
		if isHeadContent(a) {
			return b.headStartTag(tok.Data, a, attrs, selfClosing)
		}
		if err := b.ensureBody(); err != nil {
			return err
		}
	}
	return b.bodyStartTag(tok.Data, a, attrs, selfClosing)
}

func (b *builder) headStartTag(local string, a atom.Atom, attrs []tree.Attribute, selfClosing bool) error {
	if err := b.ensureHead(); err != nil {
		return err
	}
	e := htmlElement(local, a, attrs)
	push := !isVoid(a)
	if selfClosing && push {
		b.sink.ParseError("self-closing non-void element: " + local)
	}
	if cur := b.current(); cur.h == b.head || b.inTemplate() {
		return b.insert(e, push)
	}
	b.sink.ParseError(local + " start tag after head")
	if err := b.create(e); err != nil {
		return err
	}
	if err := b.sink.Append(b.head, sink.Node(e.h)); err != nil {
		return err
	}
	if push {
		b.stack = append(b.stack, e)
	}
	return nil
}

func (b *builder) bodyStartTag(local string, a atom.Atom, attrs []tree.Attribute, selfClosing bool) error {
	if a == atom.Table && isTableContext(b.currentAtom()) {
		b.sink.ParseError("table start tag in table")
		if i := b.inScope(tableScope, atom.Table); i >= 0 {
			b.stack = b.stack[:i]
		}
	}
	if a == atom.Li {
		b.closeListItem()
	}
	if closesP(a) {
		if i := b.inScope(buttonScope, atom.P); i >= 0 {
			b.closeTo(i)
		}
	}

	switch a {
	case atom.Tbody, atom.Thead, atom.Tfoot:
		b.closeInTableScope(atom.Tbody, atom.Thead, atom.Tfoot)
	case atom.Tr:
		b.closeInTableScope(atom.Tr)
		if b.currentAtom() == atom.Table {
			if err := b.insert(htmlElement("tbody", atom.Tbody, nil), true); err != nil {
				return err
			}
		}
	case atom.Td, atom.Th:
		b.closeInTableScope(atom.Td, atom.Th)
		if b.currentAtom() == atom.Table {
			if err := b.insert(htmlElement("tbody", atom.Tbody, nil), true); err != nil {
				return err
			}
		}
		if isOneOf(b.currentAtom(), atom.Tbody, atom.Thead, atom.Tfoot) {
			if err := b.insert(htmlElement("tr", atom.Tr, nil), true); err != nil {
				return err
			}
		}
	}

	e := htmlElement(local, a, attrs)
	push := !isVoid(a)
	switch a {
	case atom.Svg:
		e.name, e.a = tree.QualName{Space: tree.NamespaceSVG, Local: local}, 0
		push = !selfClosing
	case atom.Math:
		e.name, e.a = tree.QualName{Space: tree.NamespaceMathML, Local: local}, 0
		push = !selfClosing
	default:
		if selfClosing && push {
			b.sink.ParseError("self-closing non-void element: " + local)
		}
	}
	return b.insert(e, push)
}

func (b *builder) foreignStartTag(space string, tok html.Token, selfClosing bool) error {
	local := tok.Data
	if space == tree.NamespaceSVG {
		if camel, ok := svgTagNames[local]; ok {
			local = camel
		}
	}
	// script, style and title are plain elements inside SVG and MathML.
	b.z.NextIsNotRawText()
	e := &openElement{
		name:  tree.QualName{Space: space, Local: local},
		attrs: convertAttributes(tok.Attr),
	}
	return b.insert(e, !selfClosing)
}

// closeListItem closes an open li before a new one starts.
func (b *builder) closeListItem() {
	for i := len(b.stack) - 1; i >= 0; i-- {
		a := b.stack[i].a
		if a == atom.Li {
			b.closeTo(i)
			return
		}
		if isSpecial(a) && !isOneOf(a, atom.Address, atom.Div, atom.P) {
			return
		}
	}
}

// closeInTableScope closes the topmost element named by targets when it is
// in table scope. Implied closings are not errors.
func (b *builder) closeInTableScope(targets ...atom.Atom) {
	if i := b.inScope(tableScope, targets...); i >= 0 {
		b.stack = b.stack[:i]
	}
}

func (b *builder) endTag(tok html.Token) error {
	if cur := b.current(); cur != nil && cur.name.Space != tree.NamespaceHTML {
		if b.foreignEndTag(tok.Data) {
			return nil
		}
	}

	a := tok.DataAtom
	switch {
	case a == atom.Html || a == atom.Body:
		if b.body.IsZero() {
			b.sink.ParseError("unexpected " + tok.Data + " end tag")
		}
		return nil
	case a == atom.Head:
		if cur := b.current(); cur != nil && cur.h == b.head {
			b.stack = b.stack[:len(b.stack)-1]
			return nil
		}
	case a == atom.P:
		i := b.inScope(buttonScope, atom.P)
		if i >= 0 {
			b.closeTo(i)
			return nil
		}
		b.sink.ParseError("no p element in scope")
		if err := b.ensureBody(); err != nil {
			return err
		}
		return b.insert(htmlElement("p", atom.P, nil), false)
	case a == atom.Br:
		b.sink.ParseError("unexpected br end tag")
		return b.startTag(html.Token{Type: html.StartTagToken, DataAtom: atom.Br, Data: "br"}, false)
	case isFormatting(a):
		return b.closeFormatting(a)
	case isOneOf(a, atom.Table, atom.Tbody, atom.Thead, atom.Tfoot, atom.Tr, atom.Td, atom.Th):
		if i := b.inScope(tableScope, a); i >= 0 {
			b.stack = b.stack[:i]
			return nil
		}
	case isSpecial(a):
		if i := b.inScope(defaultScope, a); i >= 0 {
			b.closeTo(i)
			return nil
		}
	default:
		for i := len(b.stack) - 1; i >= 0; i-- {
			e := b.stack[i]
			if e.name.Space == tree.NamespaceHTML && e.name.Local == tok.Data {
				b.closeTo(i)
				return nil
			}
			if isSpecial(e.a) {
				break
			}
		}
	}
	b.sink.ParseError("unexpected " + tok.Data + " end tag")
	return nil
}

// foreignEndTag closes the matching SVG or MathML element, if any.
func (b *builder) foreignEndTag(name string) bool {
	for i := len(b.stack) - 1; i >= 0; i-- {
		e := b.stack[i]
		if e.name.Space == tree.NamespaceHTML {
			return false
		}
		if strings.EqualFold(e.name.Local, name) {
			b.stack = b.stack[:i]
			return true
		}
	}
	return false
}

// closeFormatting handles a formatting end tag. When a block element was
// opened inside the formatting element, the block is moved out of it and
// its contents are rewrapped in a clone of the formatting element, so
// "<b>1<p>2</b>3" becomes "<b>1</b><p><b>2</b>3</p>".
func (b *builder) closeFormatting(a atom.Atom) error {
	if b.currentAtom() == a {
		b.stack = b.stack[:len(b.stack)-1]
		return nil
	}
	fi := b.indexOf(a)
	if fi < 0 || b.inScope(defaultScope, a) != fi {
		b.sink.ParseError("unexpected " + a.String() + " end tag")
		return nil
	}
	b.sink.ParseError("misnested " + a.String() + " end tag")

	fb := -1
	for j := fi + 1; j < len(b.stack); j++ {
		if isSpecial(b.stack[j].a) {
			fb = j
			break
		}
	}
	if fb < 0 {
		b.stack = b.stack[:fi]
		return nil
	}

	formatting, common, furthest := b.stack[fi], b.stack[fi-1], b.stack[fb]
	if err := b.sink.RemoveFromParent(furthest.h); err != nil {
		return err
	}
	if err := b.sink.Append(common.container, sink.Node(furthest.h)); err != nil {
		return err
	}
	clone, err := b.sink.CreateElement(formatting.name, formatting.attrs)
	if err != nil {
		return err
	}
	if err := b.sink.ReparentChildren(furthest.container, clone); err != nil {
		return err
	}
	if err := b.sink.Append(furthest.container, sink.Node(clone)); err != nil {
		return err
	}
	b.stack = append(b.stack[:fi], furthest)
	return nil
}

// implicitlyClosed lists elements whose end tag may be omitted at end of input.
func implicitlyClosed(a atom.Atom) bool {
	return isOneOf(a,
		atom.Html, atom.Head, atom.Body, atom.P, atom.Li, atom.Dd, atom.Dt,
		atom.Option, atom.Optgroup, atom.Tbody, atom.Thead, atom.Tfoot, atom.Tr,
		atom.Td, atom.Th)
}

func (b *builder) eof() error {
	if err := b.ensureBody(); err != nil {
		return err
	}
	for _, e := range b.stack {
		if e.name.Space == tree.NamespaceHTML && !implicitlyClosed(e.a) {
			b.sink.ParseError("unclosed " + e.name.Local + " element at end of input")
			break
		}
	}
	b.stack = nil
	if !b.sawDoctype {
		b.sink.ParseError("missing doctype")
		return b.sink.SetQuirksMode(tree.Quirks)
	}
	return nil
}
