package html

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/chrisuehlinger/domarena/tree"
)

// namespaceURI converts the short namespace names used by
// golang.org/x/net/html into namespace URIs.
func namespaceURI(ns string) string {
	switch ns {
	case "":
		return tree.NamespaceHTML
	case "svg":
		return tree.NamespaceSVG
	case "math":
		return tree.NamespaceMathML
	case "xlink":
		return tree.NamespaceXLink
	case "xml":
		return tree.NamespaceXML
	case "xmlns":
		return tree.NamespaceXMLNS
	default:
		return ns
	}
}

// attrNamespaceURI is like namespaceURI but keeps unnamespaced attributes
// unnamespaced.
func attrNamespaceURI(ns string) string {
	if ns == "" {
		return ""
	}
	return namespaceURI(ns)
}

func qualName(n *html.Node) tree.QualName {
	return tree.QualName{Space: namespaceURI(n.Namespace), Local: n.Data}
}

// convertAttributes converts attributes, dropping later duplicates.
func convertAttributes(attrs []html.Attribute) []tree.Attribute {
	if len(attrs) == 0 {
		return nil
	}
	result := make([]tree.Attribute, 0, len(attrs))
	for _, a := range attrs {
		ns := attrNamespaceURI(a.Namespace)
		dup := false
		for _, seen := range result {
			if seen.Namespace == ns && seen.Key == a.Key {
				dup = true
				break
			}
		}
		if !dup {
			result = append(result, tree.Attribute{Namespace: ns, Key: a.Key, Value: a.Val})
		}
	}
	return result
}

// svgTagNames maps lower-cased SVG tag names back to their camel-cased form.
var svgTagNames = map[string]string{
	"clippath":         "clipPath",
	"feblend":          "feBlend",
	"fecolormatrix":    "feColorMatrix",
	"fegaussianblur":   "feGaussianBlur",
	"feoffset":         "feOffset",
	"foreignobject":    "foreignObject",
	"lineargradient":   "linearGradient",
	"radialgradient":   "radialGradient",
	"textpath":         "textPath",
	"animatemotion":    "animateMotion",
	"animatetransform": "animateTransform",
}

func isOneOf(a atom.Atom, set ...atom.Atom) bool {
	for _, s := range set {
		if a == s {
			return true
		}
	}
	return false
}

func isVoid(a atom.Atom) bool {
	return isOneOf(a,
		atom.Area, atom.Base, atom.Br, atom.Col, atom.Embed, atom.Hr, atom.Img,
		atom.Input, atom.Keygen, atom.Link, atom.Meta, atom.Param, atom.Source,
		atom.Track, atom.Wbr)
}

func isFormatting(a atom.Atom) bool {
	return isOneOf(a,
		atom.A, atom.B, atom.Big, atom.Code, atom.Em, atom.Font, atom.I, atom.Nobr,
		atom.S, atom.Small, atom.Strike, atom.Strong, atom.Tt, atom.U)
}

// isSpecial reports membership in the "special" category of HTML elements.
func isSpecial(a atom.Atom) bool {
	return isOneOf(a,
		atom.Address, atom.Applet, atom.Area, atom.Article, atom.Aside, atom.Base,
		atom.Basefont, atom.Bgsound, atom.Blockquote, atom.Body, atom.Br, atom.Button,
		atom.Caption, atom.Center, atom.Col, atom.Colgroup, atom.Dd, atom.Details,
		atom.Dir, atom.Div, atom.Dl, atom.Dt, atom.Embed, atom.Fieldset,
		atom.Figcaption, atom.Figure, atom.Footer, atom.Form, atom.Frame,
		atom.Frameset, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Head, atom.Header, atom.Hgroup, atom.Hr, atom.Html, atom.Iframe,
		atom.Img, atom.Input, atom.Keygen, atom.Li, atom.Link, atom.Listing,
		atom.Main, atom.Marquee, atom.Menu, atom.Meta, atom.Nav, atom.Noembed,
		atom.Noframes, atom.Noscript, atom.Object, atom.Ol, atom.P, atom.Param,
		atom.Plaintext, atom.Pre, atom.Script, atom.Section, atom.Select,
		atom.Source, atom.Style, atom.Summary, atom.Table, atom.Tbody, atom.Td,
		atom.Template, atom.Textarea, atom.Tfoot, atom.Th, atom.Thead, atom.Title,
		atom.Tr, atom.Track, atom.Ul, atom.Wbr, atom.Xmp)
}

// closesP lists start tags that close an open p element.
func closesP(a atom.Atom) bool {
	return isOneOf(a,
		atom.Address, atom.Article, atom.Aside, atom.Blockquote, atom.Center,
		atom.Details, atom.Dialog, atom.Dir, atom.Div, atom.Dl, atom.Fieldset,
		atom.Figcaption, atom.Figure, atom.Footer, atom.Form, atom.H1, atom.H2,
		atom.H3, atom.H4, atom.H5, atom.H6, atom.Header, atom.Hgroup, atom.Hr,
		atom.Li, atom.Main, atom.Menu, atom.Nav, atom.Ol, atom.P, atom.Pre,
		atom.Section, atom.Summary, atom.Table, atom.Ul)
}

// isHeadContent lists elements that belong in head when seen before body.
func isHeadContent(a atom.Atom) bool {
	return isOneOf(a,
		atom.Base, atom.Basefont, atom.Bgsound, atom.Link, atom.Meta, atom.Noscript,
		atom.Script, atom.Style, atom.Template, atom.Title)
}

// isTableContext lists elements whose misplaced content is foster parented.
func isTableContext(a atom.Atom) bool {
	return isOneOf(a, atom.Table, atom.Tbody, atom.Tfoot, atom.Thead, atom.Tr)
}

// isTableContent lists start tags allowed directly in a table context.
func isTableContent(a atom.Atom) bool {
	return isOneOf(a,
		atom.Caption, atom.Col, atom.Colgroup, atom.Tbody, atom.Td, atom.Tfoot,
		atom.Th, atom.Thead, atom.Tr, atom.Script, atom.Style, atom.Template)
}

// defaultScope bounds the "has an element in scope" search.
func defaultScope(a atom.Atom) bool {
	return isOneOf(a,
		atom.Applet, atom.Caption, atom.Html, atom.Table, atom.Td, atom.Th,
		atom.Marquee, atom.Object, atom.Template)
}

// tableScope bounds the "has an element in table scope" search.
func tableScope(a atom.Atom) bool {
	return isOneOf(a, atom.Html, atom.Table, atom.Template)
}

// buttonScope bounds the "has an element in button scope" search.
func buttonScope(a atom.Atom) bool {
	return a == atom.Button || defaultScope(a)
}

// breaksOutOfForeign lists HTML start tags that end foreign content.
func breaksOutOfForeign(a atom.Atom) bool {
	return isOneOf(a,
		atom.B, atom.Big, atom.Blockquote, atom.Body, atom.Br, atom.Center,
		atom.Code, atom.Dd, atom.Div, atom.Dl, atom.Dt, atom.Em, atom.Embed,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6, atom.Head, atom.Hr,
		atom.I, atom.Img, atom.Li, atom.Listing, atom.Menu, atom.Meta, atom.Nobr,
		atom.Ol, atom.P, atom.Pre, atom.Ruby, atom.S, atom.Small, atom.Span,
		atom.Strike, atom.Strong, atom.Sub, atom.Sup, atom.Table, atom.Tt, atom.U,
		atom.Ul, atom.Var)
}
