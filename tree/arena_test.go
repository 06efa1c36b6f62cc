package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newElement(t *testing.T, a *Arena, local string) Handle {
	t.Helper()
	h, err := a.NewNode(&Element{Name: HTMLName(local)})
	require.NoError(t, err)
	return h
}

func newText(t *testing.T, a *Arena, data string) Handle {
	t.Helper()
	h, err := a.NewNode(&Text{Data: data})
	require.NoError(t, err)
	return h
}

func TestNewNode_IssuesIncreasingHandles(t *testing.T) {
	a := New()
	var prev Handle
	for i := 0; i < 10; i++ {
		h := newText(t, a, "x")
		assert.False(t, h.IsZero())
		assert.True(t, prev.Less(h), "handle %s should follow %s", h, prev)
		prev = h
	}
	assert.Equal(t, 10, a.Len())
	assert.Len(t, a.Orphans(), 10)
}

func TestNewNode_NilData(t *testing.T) {
	a := New()
	_, err := a.NewNode(nil)
	require.ErrorIs(t, err, ErrInvalidData)

	typedNils := []NodeData{
		(*Element)(nil),
		(*Text)(nil),
		(*Comment)(nil),
		(*ProcessingInstruction)(nil),
		(*Doctype)(nil),
		(*Document)(nil),
		(*DocumentFragment)(nil),
	}
	for _, data := range typedNils {
		_, err := a.NewNode(data)
		require.ErrorIs(t, err, ErrInvalidData, "%T", data)
	}
	assert.Equal(t, 0, a.Len())
	assert.Empty(t, a.Orphans())
}

func TestNewNode_IndexExhausted(t *testing.T) {
	saved := maxIndex
	maxIndex = 3
	defer func() { maxIndex = saved }()

	a := New()
	for i := 0; i < 3; i++ {
		newText(t, a, "x")
	}
	h, err := a.NewNode(&Text{})
	require.ErrorIs(t, err, ErrArenaFull)
	assert.True(t, h.IsZero())
	assert.Equal(t, 3, a.Len())
}

func TestHandle_ForeignArena(t *testing.T) {
	first := New()
	div := newElement(t, first, "div")

	second := New()
	span := newElement(t, second, "span")
	require.Equal(t, div.index, span.index, "both arenas issue the same index")
	assert.NotEqual(t, div, span)

	_, err := second.Get(div)
	require.ErrorIs(t, err, ErrUnknownHandle)
	_, err = second.IsOrphan(div)
	require.ErrorIs(t, err, ErrUnknownHandle)
	require.ErrorIs(t, second.Append(span, div), ErrUnknownHandle)

	el, err := first.Element(div)
	require.NoError(t, err)
	assert.Equal(t, "div", el.Name.Local)
}

func TestGet_UnknownHandle(t *testing.T) {
	a := New()
	_, err := a.Get(Handle{})
	require.ErrorIs(t, err, ErrUnknownHandle)

	_, err = a.Get(Handle{index: 7})
	require.ErrorIs(t, err, ErrUnknownHandle)

	var opErr *OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "get", opErr.Op)
	assert.Equal(t, Handle{index: 7}, opErr.Handle)
}

func TestReset_InvalidatesOutstandingHandles(t *testing.T) {
	a := New()
	old := newElement(t, a, "div")

	a.Reset()
	assert.Equal(t, 0, a.Len())

	fresh := newElement(t, a, "span")
	assert.Equal(t, old.index, fresh.index, "slot is reused after reset")
	assert.NotEqual(t, old, fresh)
	assert.True(t, old.Less(fresh))

	_, err := a.Get(old)
	require.ErrorIs(t, err, ErrUnknownHandle)
	_, err = a.IsOrphan(old)
	require.ErrorIs(t, err, ErrUnknownHandle)
	require.ErrorIs(t, a.Append(fresh, old), ErrUnknownHandle)

	el, err := a.Element(fresh)
	require.NoError(t, err)
	assert.Equal(t, "span", el.Name.Local)
}

func TestHandle_String(t *testing.T) {
	assert.Equal(t, "#nil", Handle{}.String())
	assert.Equal(t, "#3", Handle{index: 3}.String())
	assert.Equal(t, "#3@2", Handle{index: 3, epoch: 2}.String())
}

func TestElement_WrongKind(t *testing.T) {
	a := New()
	txt := newText(t, a, "hi")
	_, err := a.Element(txt)
	require.ErrorIs(t, err, ErrNotAnElement)
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		data NodeData
		want string
	}{
		{&Element{}, "ELEMENT_NODE"},
		{&Text{}, "TEXT_NODE"},
		{&Comment{}, "COMMENT_NODE"},
		{&ProcessingInstruction{}, "PROCESSING_INSTRUCTION_NODE"},
		{&Doctype{}, "DOCUMENT_TYPE_NODE"},
		{&Document{}, "DOCUMENT_NODE"},
		{&DocumentFragment{}, "DOCUMENT_FRAGMENT_NODE"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.data.Kind().String())
	}
	assert.Equal(t, "UNKNOWN_NODE", Kind(42).String())
}

func TestWalk_DocumentOrder(t *testing.T) {
	a := New()
	root := newElement(t, a, "html")
	head := newElement(t, a, "head")
	body := newElement(t, a, "body")
	p := newElement(t, a, "p")
	txt := newText(t, a, "hello")
	require.NoError(t, a.Append(root, head))
	require.NoError(t, a.Append(root, body))
	require.NoError(t, a.Append(body, p))
	require.NoError(t, a.Append(p, txt))

	var order []Handle
	var depths []int
	err := a.Walk(root, func(h Handle, _ *Node, depth int) error {
		order = append(order, h)
		depths = append(depths, depth)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []Handle{root, head, body, p, txt}, order)
	assert.Equal(t, []int{0, 1, 1, 2, 3}, depths)

	order = nil
	err = a.Walk(root, func(h Handle, _ *Node, _ int) error {
		order = append(order, h)
		if h == body {
			return SkipChildren
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []Handle{root, head, body}, order)
}

func TestParentOf_WalksToFirstChild(t *testing.T) {
	a := New()
	ul := newElement(t, a, "ul")
	var items []Handle
	for i := 0; i < 5; i++ {
		li := newElement(t, a, "li")
		require.NoError(t, a.Append(ul, li))
		items = append(items, li)
	}

	for _, li := range items {
		p, err := a.ParentOf(li)
		require.NoError(t, err)
		assert.Equal(t, ul, p)
	}

	p, err := a.ParentOf(ul)
	require.NoError(t, err)
	assert.True(t, p.IsZero())
}

func TestQualName_Is(t *testing.T) {
	div := HTMLName("div")
	assert.True(t, div.Is(NamespaceHTML, "div"))
	assert.False(t, div.Is(NamespaceSVG, "div"))
	assert.False(t, div.Is(NamespaceHTML, "span"))
}
