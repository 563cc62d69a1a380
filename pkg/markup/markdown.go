// markdown.go renders markdown into an XHTML event stream.
package markup

import (
	"bytes"
	"fmt"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// mdRenderer emits XHTML and keeps raw HTML blocks, which is how
// processing instructions written in markdown survive rendering.
var mdRenderer = goldmark.New(
	goldmark.WithExtensions(extension.Table),
	goldmark.WithRendererOptions(
		gmhtml.WithXHTML(),
		gmhtml.WithUnsafe(),
	),
)

// NewMarkdownReader renders markdown input to XHTML wrapped in
// <html><body> and returns a reader over the result.
func NewMarkdownReader(r io.Reader) (*XMLReader, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString("<html><body>\n")
	if err := mdRenderer.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("failed to render markdown: %w", err)
	}
	buf.WriteString("</body></html>\n")

	return NewXMLReader(&buf), nil
}
