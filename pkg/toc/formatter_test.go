package toc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/htmltoc/pkg/markup"
)

func newTestFormatter(t *testing.T, d Directive) *Formatter {
	t.Helper()
	levels, err := ResolveOutline(d, OutlineOptions{})
	require.NoError(t, err)
	return NewFormatter(levels)
}

func render(t *testing.T, events []markup.Event) string {
	t.Helper()
	s, err := markup.Render(events)
	require.NoError(t, err)
	return s
}

// entry feeds a complete indexed element through the formatter.
func entry(t *testing.T, f *Formatter, name, id, text string) {
	t.Helper()
	require.NoError(t, f.Open(markup.Start(name), id))
	require.NoError(t, f.AddContent(markup.Text(text)))
	require.NoError(t, f.Close(markup.End(name)))
}

func TestFormatter_JumpNesting(t *testing.T) {
	f := newTestFormatter(t, Directive{Outline: "h1,h2", BlockTags: "ul,ul", LineTags: "li,li"})

	entry(t, f, "h1", "a", "A")
	entry(t, f, "h2", "b", "B")
	entry(t, f, "h1", "c", "C")
	require.NoError(t, f.End())

	want := "<ul>\n" +
		`<li><a href="#a">A</a></li>` + "\n" +
		"<ul>\n" +
		`<li><a href="#b">B</a></li>` + "\n" +
		"</ul>\n" +
		`<li><a href="#c">C</a></li>` + "\n" +
		"</ul>\n"
	assert.Equal(t, want, render(t, f.Drain()))
}

func TestFormatter_JumpSkipsLevels(t *testing.T) {
	f := newTestFormatter(t, Directive{Outline: "h1,h2,h3", BlockTags: "ol.l1,ol.l2,ol.l3"})

	entry(t, f, "h3", "x", "Deep")
	require.NoError(t, f.End())

	want := `<ol class="l1">` + "\n" +
		`<ol class="l2">` + "\n" +
		`<ol class="l3">` + "\n" +
		`<div><a href="#x">Deep</a></div>` + "\n" +
		"</ol>\n</ol>\n</ol>\n"
	assert.Equal(t, want, render(t, f.Drain()))
}

func TestFormatter_DefaultWrappers(t *testing.T) {
	f := newTestFormatter(t, Directive{Outline: "h1,h2"})

	entry(t, f, "h1", "toc000001", "Intro")
	entry(t, f, "h2", "toc000002", "Details")
	require.NoError(t, f.End())

	want := `<div><a href="#toc000001">Intro</a></div>` + "\n" +
		`<div><a href="#toc000002">Details</a></div>` + "\n"
	assert.Equal(t, want, render(t, f.Drain()))
}

func TestFormatter_AddContentKeepsOnlyText(t *testing.T) {
	f := newTestFormatter(t, Directive{Outline: "h1"})

	require.NoError(t, f.Open(markup.Start("h1"), "id1"))
	f.Drain()
	require.NoError(t, f.AddContent(markup.Start("em")))
	require.NoError(t, f.AddContent(markup.Text("Big")))
	require.NoError(t, f.AddContent(markup.End("em")))
	require.NoError(t, f.AddContent(markup.Text("  \n ")))
	require.NoError(t, f.AddContent(markup.Event{Kind: markup.KindComment, Text: "note"}))
	require.NoError(t, f.AddContent(markup.Text(" News")))

	assert.Equal(t, []markup.Event{markup.Text("Big"), markup.Text(" News")}, f.Drain())
}

func TestFormatter_EntryHook(t *testing.T) {
	f := newTestFormatter(t, Directive{Outline: "h1,h2"})
	var got []Entry
	f.OnEntry(func(e Entry) { got = append(got, e) })

	require.NoError(t, f.Open(markup.Start("h2"), "toc000001"))
	require.NoError(t, f.AddContent(markup.Text(" Getting ")))
	require.NoError(t, f.AddContent(markup.Text("started\n")))
	require.NoError(t, f.Close(markup.End("h2")))

	require.Len(t, got, 1)
	assert.Equal(t, Entry{Level: 1, Element: "h2", ID: "toc000001", Title: "Getting started"}, got[0])
}

func TestFormatter_Accept(t *testing.T) {
	f := newTestFormatter(t, Directive{Outline: "h1,x:sect"})

	assert.True(t, f.Accept(markup.Start("h1")))
	assert.True(t, f.Accept(markup.Start("x:sect")))
	assert.False(t, f.Accept(markup.Start("sect")))
	assert.False(t, f.Accept(markup.Start("h2")))
	assert.False(t, f.Accept(markup.End("h1")))
	assert.False(t, f.Accept(markup.Text("h1")))
}

func TestFormatter_Errors(t *testing.T) {
	tests := []struct {
		name string
		run  func(f *Formatter) error
		code Code
	}{
		{
			name: "open while open",
			run: func(f *Formatter) error {
				_ = f.Open(markup.Start("h1"), "a")
				return f.Open(markup.Start("h2"), "b")
			},
			code: ErrItemAlreadyOpen,
		},
		{
			name: "open with non-start event",
			run: func(f *Formatter) error {
				return f.Open(markup.Text("h1"), "a")
			},
			code: ErrUnexpectedEventType,
		},
		{
			name: "open element outside outline",
			run: func(f *Formatter) error {
				return f.Open(markup.Start("h3"), "a")
			},
			code: ErrNotInOutline,
		},
		{
			name: "close without open",
			run: func(f *Formatter) error {
				return f.Close(markup.End("h1"))
			},
			code: ErrNoOpenItem,
		},
		{
			name: "close with other element",
			run: func(f *Formatter) error {
				_ = f.Open(markup.Start("h1"), "a")
				return f.Close(markup.End("h2"))
			},
			code: ErrUnmatchedClose,
		},
		{
			name: "content outside entry",
			run: func(f *Formatter) error {
				return f.AddContent(markup.Text("stray"))
			},
			code: ErrContentOutsideItem,
		},
		{
			name: "end with open entry",
			run: func(f *Formatter) error {
				_ = f.Open(markup.Start("h1"), "a")
				return f.End()
			},
			code: ErrUnclosedItem,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestFormatter(t, Directive{Outline: "h1,h2"})
			err := tt.run(f)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.code), "got %v", err)
		})
	}
}
