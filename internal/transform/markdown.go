package transform

import (
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// Markdown converts the TOC fragment to markdown. Entries keep their
// links to the anchors of the rewritten document.
func (o *Outline) Markdown() (string, error) {
	if o.Fragment == "" {
		return "", nil
	}
	md, err := htmltomarkdown.ConvertString(o.Fragment)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(md), nil
}
