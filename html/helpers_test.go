package html

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chrisuehlinger/domarena/sink"
	"github.com/chrisuehlinger/domarena/tree"
)

type driver func(ctx context.Context, r io.Reader, s Sink) error

func replay(ctx context.Context, r io.Reader, s Sink) error {
	return Replay(ctx, r, s)
}

var drivers = []struct {
	name  string
	drive driver
}{
	{"replay", replay},
	{"stream", Stream},
}

// build runs drive over input and returns the verified result and its
// rendered outline.
func build(t *testing.T, drive driver, input string) (*sink.Result, string) {
	t.Helper()
	s, err := sink.New(sink.WithParseErrorHandler(func(string) {}))
	require.NoError(t, err)
	require.NoError(t, drive(context.Background(), strings.NewReader(input), s))
	res, err := s.Finish()
	require.NoError(t, err)
	return res, render(t, res.Arena, res.Root)
}

// render prints the children of root one node per line, indented two
// spaces per level. Attributes are sorted and listed under their element;
// template contents appear under a "content" line.
func render(t *testing.T, a *tree.Arena, root tree.Handle) string {
	t.Helper()
	var sb strings.Builder
	var visit func(h tree.Handle, depth int)
	children := func(h tree.Handle, depth int) {
		kids, err := a.Children(h)
		require.NoError(t, err)
		for _, c := range kids {
			visit(c, depth)
		}
	}
	visit = func(h tree.Handle, depth int) {
		n, err := a.Get(h)
		require.NoError(t, err)
		indent := strings.Repeat("  ", depth)
		switch d := n.Data().(type) {
		case *tree.Element:
			name := d.Name.Local
			switch d.Name.Space {
			case tree.NamespaceSVG:
				name = "svg " + name
			case tree.NamespaceMathML:
				name = "math " + name
			}
			fmt.Fprintf(&sb, "%s<%s>\n", indent, name)
			attrs := slices.Clone(d.Attrs)
			slices.SortFunc(attrs, func(x, y tree.Attribute) int { return strings.Compare(x.Key, y.Key) })
			for _, at := range attrs {
				fmt.Fprintf(&sb, "%s  %s=%q\n", indent, at.Key, at.Value)
			}
			if !d.TemplateContents.IsZero() {
				fmt.Fprintf(&sb, "%s  content\n", indent)
				children(d.TemplateContents, depth+2)
			}
		case *tree.Text:
			fmt.Fprintf(&sb, "%s%q\n", indent, d.Data)
		case *tree.Comment:
			fmt.Fprintf(&sb, "%s<!-- %s -->\n", indent, d.Data)
		case *tree.ProcessingInstruction:
			fmt.Fprintf(&sb, "%s<?%s %s>\n", indent, d.Target, d.Data)
		case *tree.Doctype:
			fmt.Fprintf(&sb, "%s<!DOCTYPE %s>\n", indent, d.Name)
		}
		children(h, depth+1)
	}
	children(root, 0)
	return sb.String()
}

func outline(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}
