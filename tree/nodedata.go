package tree

import "golang.org/x/net/html/atom"

// Kind identifies the variant of a node's data. Values follow the DOM
// nodeType numbering.
type Kind uint16

const (
	// ElementKind is an element node.
	ElementKind Kind = 1
	// TextKind is a text node.
	TextKind Kind = 3
	// ProcessingInstructionKind is a processing instruction node.
	ProcessingInstructionKind Kind = 7
	// CommentKind is a comment node.
	CommentKind Kind = 8
	// DocumentKind is the document node.
	DocumentKind Kind = 9
	// DoctypeKind is a document type node.
	DoctypeKind Kind = 10
	// DocumentFragmentKind is a document fragment node.
	DocumentFragmentKind Kind = 11
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case ElementKind:
		return "ELEMENT_NODE"
	case TextKind:
		return "TEXT_NODE"
	case ProcessingInstructionKind:
		return "PROCESSING_INSTRUCTION_NODE"
	case CommentKind:
		return "COMMENT_NODE"
	case DocumentKind:
		return "DOCUMENT_NODE"
	case DoctypeKind:
		return "DOCUMENT_TYPE_NODE"
	case DocumentFragmentKind:
		return "DOCUMENT_FRAGMENT_NODE"
	default:
		return "UNKNOWN_NODE"
	}
}

// Namespace URIs used for element names.
const (
	NamespaceHTML   = "http://www.w3.org/1999/xhtml"
	NamespaceSVG    = "http://www.w3.org/2000/svg"
	NamespaceMathML = "http://www.w3.org/1998/Math/MathML"
	NamespaceXLink  = "http://www.w3.org/1999/xlink"
	NamespaceXML    = "http://www.w3.org/XML/1998/namespace"
	NamespaceXMLNS  = "http://www.w3.org/2000/xmlns/"
)

// QualName is a namespaced element name.
type QualName struct {
	Space  string
	Prefix string
	Local  string
}

// HTMLName returns the name of an element in the HTML namespace.
func HTMLName(local string) QualName {
	return QualName{Space: NamespaceHTML, Local: local}
}

// Atom returns the interned atom for the local name, or 0 if the name is
// not a known HTML name.
func (q QualName) Atom() atom.Atom {
	return atom.Lookup([]byte(q.Local))
}

// Is reports whether q has the given namespace and local name.
func (q QualName) Is(space, local string) bool {
	return q.Space == space && q.Local == local
}

func (q QualName) String() string {
	if q.Prefix != "" {
		return q.Prefix + ":" + q.Local
	}
	return q.Local
}

// Attribute is a single element attribute. Two attributes name the same
// slot when Namespace and Key match.
type Attribute struct {
	Namespace string
	Key       string
	Value     string
}

// QuirksMode is the document compatibility mode chosen by the parser.
type QuirksMode uint8

const (
	NoQuirks QuirksMode = iota
	LimitedQuirks
	Quirks
)

func (m QuirksMode) String() string {
	switch m {
	case NoQuirks:
		return "no-quirks"
	case LimitedQuirks:
		return "limited-quirks"
	case Quirks:
		return "quirks"
	default:
		return "unknown"
	}
}

// NodeData is the payload of a node. The set of implementations is closed:
// *Element, *Text, *Comment, *ProcessingInstruction, *Doctype, *Document
// and *DocumentFragment.
type NodeData interface {
	Kind() Kind
	nodeData()
}

// Element holds data specific to element nodes.
type Element struct {
	Name  QualName
	Attrs []Attribute
	// TemplateContents is the fragment root holding a template element's
	// contents. It is zero for every other element.
	TemplateContents Handle
}

// Attr returns the value of the attribute with the given namespace and key.
func (e *Element) Attr(namespace, key string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Namespace == namespace && a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// Text holds the content of a text node.
type Text struct {
	Data string
}

// Comment holds the content of a comment node.
type Comment struct {
	Data string
}

// ProcessingInstruction holds a processing instruction's target and data.
type ProcessingInstruction struct {
	Target string
	Data   string
}

// Doctype holds data specific to document type nodes.
type Doctype struct {
	Name     string
	PublicID string
	SystemID string
}

// Document holds data specific to the document node.
type Document struct {
	QuirksMode QuirksMode
}

// DocumentFragment is the payload of fragment nodes such as template contents.
type DocumentFragment struct{}

func (*Element) Kind() Kind               { return ElementKind }
func (*Text) Kind() Kind                  { return TextKind }
func (*Comment) Kind() Kind               { return CommentKind }
func (*ProcessingInstruction) Kind() Kind { return ProcessingInstructionKind }
func (*Doctype) Kind() Kind               { return DoctypeKind }
func (*Document) Kind() Kind              { return DocumentKind }
func (*DocumentFragment) Kind() Kind      { return DocumentFragmentKind }

func (*Element) nodeData()               {}
func (*Text) nodeData()                  {}
func (*Comment) nodeData()               {}
func (*ProcessingInstruction) nodeData() {}
func (*Doctype) nodeData()               {}
func (*Document) nodeData()              {}
func (*DocumentFragment) nodeData()      {}
