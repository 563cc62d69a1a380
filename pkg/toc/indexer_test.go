package toc

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/htmltoc/pkg/markup"
)

// doc expands the "<?toc " shorthand to the default directive target.
func doc(s string) string {
	return strings.ReplaceAll(s, "<?toc ", "<?"+DefaultTarget+" ")
}

func run(t *testing.T, input string, opts ...Option) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	ix := NewIndexer(markup.NewXMLReader(strings.NewReader(input)), opts...)
	err := markup.Copy(markup.NewWriter(&buf), ix)
	return buf.String(), err
}

type sliceSource struct {
	events []markup.Event
}

func (s *sliceSource) Next() (markup.Event, error) {
	if len(s.events) == 0 {
		return markup.Event{}, io.EOF
	}
	ev := s.events[0]
	s.events = s.events[1:]
	return ev, nil
}

func TestIndexer_Identity(t *testing.T) {
	input := `<?xml version="1.0" encoding="UTF-8"?>` + "\n" +
		"<!DOCTYPE html>\n" +
		`<html><head><title>T</title></head><body><p class="x">a &amp; b<br/></p><!-- c --></body></html>` + "\n"

	got, err := run(t, input)
	require.NoError(t, err)
	assert.Equal(t, "<!DOCTYPE html>\n"+
		`<html><head><title>T</title></head><body><p class="x">a &amp; b<br/></p><!-- c --></body></html>`+"\n", got)
}

func TestIndexer_PrologKeepsSourceForm(t *testing.T) {
	input := `<?xml version="1.0"?>` + "\n" +
		"<!-- c -->\n" +
		`<html><body><p>&nbsp;&#169;<![CDATA[<x>]]></p></body></html>` + "\n"

	got, err := run(t, input)
	require.NoError(t, err)
	assert.Equal(t, "<!-- c -->\n<!DOCTYPE html>\n"+
		`<html><body><p>&nbsp;&#169;<![CDATA[<x>]]></p></body></html>`+"\n", got)
}

func TestIndexer_DoctypeFollowsRoot(t *testing.T) {
	got, err := run(t, `<x:doc xmlns:x="urn:x"><x:p/></x:doc>`)
	require.NoError(t, err)
	assert.Equal(t, "<!DOCTYPE x:doc>\n"+`<x:doc xmlns:x="urn:x"><x:p/></x:doc>`, got)
}

func TestIndexer_NestedOutline(t *testing.T) {
	input := doc(`<html><body>` +
		`<?toc version="1.0" outline="h1,h2" blocktags="ul,ul" linetags="li,li"?><p>placeholder</p><?toc /?>` + "\n" +
		`<h1>A</h1><h2>B</h2><h1>C</h1>` + "\n" +
		`</body></html>`)

	got, err := run(t, input)
	require.NoError(t, err)

	want := "<!DOCTYPE html>\n" +
		"<html><body>\n" +
		"<ul>\n" +
		`<li><a href="#toc000001">A</a></li>` + "\n" +
		"<ul>\n" +
		`<li><a href="#toc000002">B</a></li>` + "\n" +
		"</ul>\n" +
		`<li><a href="#toc000003">C</a></li>` + "\n" +
		"</ul>\n" +
		"\n" +
		`<h1 id="toc000001"><a name="toc000001"> </a>A</h1>` +
		`<h2 id="toc000002"><a name="toc000002"> </a>B</h2>` +
		`<h1 id="toc000003"><a name="toc000003"> </a>C</h1>` + "\n" +
		"</body></html>"
	assert.Equal(t, want, got)
	assert.NotContains(t, got, "placeholder")
}

func TestIndexer_DefaultWrappersAndExistingID(t *testing.T) {
	input := doc(`<html><body><?toc version="1.0" outline="h1,h2" /?>` +
		`<h1 id="intro">Intro</h1><h2>More <em>detail</em></h2></body></html>`)

	got, err := run(t, input)
	require.NoError(t, err)

	want := "<!DOCTYPE html>\n" +
		"<html><body>\n" +
		`<div><a href="#intro">Intro</a></div>` + "\n" +
		`<div><a href="#toc000001">More detail</a></div>` + "\n" +
		`<h1 id="intro"><a name="intro"> </a>Intro</h1>` +
		`<h2 id="toc000001"><a name="toc000001"> </a>More <em>detail</em></h2>` +
		"</body></html>"
	assert.Equal(t, want, got)
}

func TestIndexer_LinksMatchAnchors(t *testing.T) {
	input := doc(`<html><body><?toc version="1.0" outline="h1,h2,h3" /?>` +
		`<h2>a</h2><h1>b</h1><h3>c</h3><h3 id="own">d</h3><h1>e</h1></body></html>`)

	var entries []Entry
	got, err := run(t, input, WithEntryHook(func(e Entry) { entries = append(entries, e) }))
	require.NoError(t, err)
	require.Len(t, entries, 5)

	for _, e := range entries {
		assert.Equal(t, 1, strings.Count(got, `href="#`+e.ID+`"`), "link to %s", e.ID)
		assert.Equal(t, 1, strings.Count(got, `id="`+e.ID+`"`), "anchor %s", e.ID)
	}
	assert.Equal(t, []int{1, 0, 2, 2, 0}, []int{
		entries[0].Level, entries[1].Level, entries[2].Level, entries[3].Level, entries[4].Level,
	})
}

func TestIndexer_ClosingDirectiveEndsIndexing(t *testing.T) {
	input := doc(`<html><body><?toc version="1.0" outline="h1"/?>` +
		`<h1>A</h1><?toc /?><h1>B</h1></body></html>`)

	got, err := run(t, input)
	require.NoError(t, err)

	want := "<!DOCTYPE html>\n" +
		"<html><body>\n" +
		`<div><a href="#toc000001">A</a></div>` + "\n" +
		`<h1 id="toc000001"><a name="toc000001"> </a>A</h1>` + "\n" +
		"<h1>B</h1></body></html>"
	assert.Equal(t, want, got)
}

func TestIndexer_MultipleTOCs(t *testing.T) {
	input := doc(`<html><body><?toc version="1.0" outline="h1"/?>` +
		`<h1>A</h1><?toc version="1.0" outline="h2"/?><h2>B</h2></body></html>`)

	got, err := run(t, input)
	require.NoError(t, err)

	want := "<!DOCTYPE html>\n" +
		"<html><body>\n" +
		`<div><a href="#toc000001">A</a></div>` + "\n" +
		`<h1 id="toc000001"><a name="toc000001"> </a>A</h1>` + "\n" +
		`<div><a href="#toc000002">B</a></div>` + "\n" +
		`<h2 id="toc000002"><a name="toc000002"> </a>B</h2>` +
		"</body></html>"
	assert.Equal(t, want, got)
}

func TestIndexer_ForeignInstructionsKeepOrder(t *testing.T) {
	input := doc(`<html><body><?toc version="1.0" outline="h1"/?>` +
		`<?php echo 1; ?><h1>A</h1></body></html>`)

	got, err := run(t, input)
	require.NoError(t, err)
	assert.Contains(t, got, `</div>`+"\n"+`<?php echo 1; ?><h1 id="toc000001">`)
}

func TestIndexer_Idempotent(t *testing.T) {
	input := doc(`<html><body><?toc version="1.0" outline="h1,h2" blocktags="ol"?><?toc /?>` +
		`<h1>A</h1><p>text</p><h2>B</h2></body></html>`)

	once, err := run(t, input)
	require.NoError(t, err)
	twice, err := run(t, once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestIndexer_CustomTarget(t *testing.T) {
	input := `<html><body><?toc version="1.0" outline="h1"/?><h1>A</h1></body></html>`

	got, err := run(t, input)
	require.NoError(t, err)
	assert.Contains(t, got, `<?toc version="1.0" outline="h1"/?>`, "foreign target passes through")

	got, err = run(t, input, WithTarget("toc"))
	require.NoError(t, err)
	assert.Contains(t, got, `href="#toc000001"`)
}

func TestIndexer_TOCHook(t *testing.T) {
	input := doc(`<html><body><?toc version="1.0" outline="h1" blocktags="ul" linetags="li"/?>` +
		`<h1>A</h1><h1>B</h1></body></html>`)

	var toc []markup.Event
	_, err := run(t, input, WithTOCHook(func(ev markup.Event) { toc = append(toc, ev) }))
	require.NoError(t, err)

	s, err := markup.Render(toc)
	require.NoError(t, err)
	assert.Equal(t, "<ul>\n"+
		`<li><a href="#toc000001">A</a></li>`+"\n"+
		`<li><a href="#toc000002">B</a></li>`+"\n"+
		"</ul>\n", s)
}

func TestIndexer_StrictWrappers(t *testing.T) {
	input := doc(`<html><body><?toc version="1.0" outline="h1,h2" blocktags="ul"/?></body></html>`)

	_, err := run(t, input)
	require.NoError(t, err)

	_, err = run(t, input, WithStrictWrappers(true))
	assert.True(t, errors.Is(err, ErrMissingWrapper))

	surplus := doc(`<html><body><?toc version="1.0" outline="h1" blocktags="ul,ul"/?></body></html>`)
	_, err = run(t, surplus)
	require.NoError(t, err)

	_, err = run(t, surplus, WithStrictWrappers(true))
	assert.True(t, errors.Is(err, ErrSurplusWrapper))
}

func TestIndexer_Warnings(t *testing.T) {
	input := doc(`<html><body><?toc version="1.0" outline="h1" linetags="li,li"/?></body></html>`)

	var warnings []error
	_, err := run(t, input, WithWarnings(func(err error) { warnings = append(warnings, err) }))
	require.NoError(t, err)
	assert.Len(t, warnings, 1)
}

func TestIndexer_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  Code
	}{
		{
			name:  "closing directive without opening",
			input: `<html><body><?toc /?></body></html>`,
			code:  ErrNoOpenItem,
		},
		{
			name:  "directive before root",
			input: `<?toc version="1.0" outline="h1"?><html/>`,
			code:  ErrDirectiveOutsideRoot,
		},
		{
			name:  "nested opening directive",
			input: `<html><body><?toc version="1.0" outline="h1"?><?toc version="1.0" outline="h2"?><?toc /?></body></html>`,
			code:  ErrDirectiveNesting,
		},
		{
			name:  "placeholder left open",
			input: `<html><body><?toc version="1.0" outline="h1"?><div><?toc /?></div></body></html>`,
			code:  ErrUnclosedElement,
		},
		{
			name:  "directive inside indexed element",
			input: `<html><body><?toc version="1.0" outline="h1"/?><h1>A<?toc /?></h1></body></html>`,
			code:  ErrDisallowedDirectiveNesting,
		},
		{
			name:  "unsupported version",
			input: `<html><body><?toc version="2.0" outline="h1"?></body></html>`,
			code:  ErrMalformedDirective,
		},
		{
			name:  "duplicate outline entry",
			input: `<html><body><?toc version="1.0" outline="h1,h1"/?></body></html>`,
			code:  ErrDuplicateOutlineEntry,
		},
		{
			name:  "empty document",
			input: ``,
			code:  ErrMissingRoot,
		},
		{
			name:  "prolog only",
			input: `<!-- nothing here -->`,
			code:  ErrMissingRoot,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, doc(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.code), "got %v", err)
		})
	}
}

func TestIndexer_NestedOutlineElementIsContent(t *testing.T) {
	input := doc(`<html><body><?toc version="1.0" outline="section"/?>` +
		`<section>A<section>B</section></section></body></html>`)

	got, err := run(t, input)
	require.NoError(t, err)
	assert.Contains(t, got, `<div><a href="#toc000001">AB</a></div>`)
	assert.Contains(t, got, `<section id="toc000001"><a name="toc000001"> </a>A<section>B</section></section>`)
}

func TestIndexer_ErrorPosition(t *testing.T) {
	input := doc("<html><body>\n" +
		`<?toc version="1.0" outline="h1"?>` + "\n" +
		"<div><?toc /?></div>\n" +
		"</body></html>")

	_, err := run(t, input)
	require.Error(t, err)

	var te *Error
	require.True(t, errors.As(err, &te))
	assert.Equal(t, ErrUnclosedElement, te.Code)
	assert.Equal(t, 3, te.Pos.Line)
	assert.Contains(t, err.Error(), "line 3")
}

func TestIndexer_IDSpaceExhausted(t *testing.T) {
	input := doc(`<html><body><?toc version="1.0" outline="h1"/?><h1>A</h1></body></html>`)

	var buf bytes.Buffer
	ix := NewIndexer(markup.NewXMLReader(strings.NewReader(input)))
	ix.ids.last = 999999

	err := markup.Copy(markup.NewWriter(&buf), ix)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIDSpaceExhausted))
	assert.NotContains(t, buf.String(), "href")
}

func TestIndexer_UnclosedAtEndOfDocument(t *testing.T) {
	src := &sliceSource{events: []markup.Event{
		markup.Start("html"),
		pi(`version="1.0" outline="h1" /`),
		markup.Start("h1"),
		markup.Text("A"),
		markup.EndDocument(),
	}}
	ix := NewIndexer(src)

	var err error
	for err == nil {
		_, err = ix.Next()
	}
	require.True(t, errors.Is(err, ErrUnclosedElement), "got %v", err)

	_, again := ix.Next()
	assert.Equal(t, err, again, "errors are sticky")
}

func TestIndexer_Reset(t *testing.T) {
	input := doc(`<html><body><?toc version="1.0" outline="h1"/?><h1>A</h1></body></html>`)
	ix := NewIndexer(markup.NewXMLReader(strings.NewReader(input)))

	var first, second bytes.Buffer
	require.NoError(t, markup.Copy(markup.NewWriter(&first), ix))

	ix.Reset(markup.NewXMLReader(strings.NewReader(input)))
	require.NoError(t, markup.Copy(markup.NewWriter(&second), ix))

	assert.Equal(t, first.String(), second.String())
	assert.Contains(t, second.String(), "toc000001")
}
