// html_reader.go tokenizes non-XML HTML with golang.org/x/net/html.
package markup

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// voidElements never have content or an end tag in HTML.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// HTMLReader is a lenient Source over HTML that need not be well-formed
// XML. It works at the token level, so implied end tags are not inserted;
// only void elements get a synthesized end. "<?target data?>", which HTML
// parses as a bogus comment, is reported as a processing instruction.
type HTMLReader struct {
	z        *html.Tokenizer
	pos      Position
	pending  []Event
	finished bool
}

// NewHTMLReader creates a reader over already-decoded (UTF-8) input.
func NewHTMLReader(r io.Reader) *HTMLReader {
	return &HTMLReader{
		z:   html.NewTokenizer(r),
		pos: Position{Line: 1, Column: 1},
	}
}

// advance moves the running position past raw.
func (h *HTMLReader) advance(raw []byte) {
	h.pos.Offset += int64(len(raw))
	if n := bytes.Count(raw, []byte{'\n'}); n > 0 {
		h.pos.Line += n
		h.pos.Column = len(raw) - bytes.LastIndexByte(raw, '\n')
	} else {
		h.pos.Column += len(raw)
	}
}

// Next returns the next event of the document.
func (h *HTMLReader) Next() (Event, error) {
	if len(h.pending) > 0 {
		ev := h.pending[0]
		h.pending = h.pending[1:]
		return ev, nil
	}
	if h.finished {
		return Event{}, io.EOF
	}
	for {
		tt := h.z.Next()
		pos := h.pos
		h.advance(h.z.Raw())

		switch tt {
		case html.ErrorToken:
			if err := h.z.Err(); !errors.Is(err, io.EOF) {
				return Event{}, err
			}
			h.finished = true
			return Event{Kind: KindEndDocument, Pos: pos}, nil

		case html.TextToken:
			return Event{Kind: KindText, Text: string(h.z.Text()), Pos: pos}, nil

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := h.z.Token()
			ev := Event{Kind: KindStartElement, Name: ParseName(tok.Data), Pos: pos}
			for _, a := range tok.Attr {
				ev.Attrs = append(ev.Attrs, Attr{Name: ParseName(a.Key), Value: a.Val})
			}
			if tt == html.SelfClosingTagToken || voidElements[tok.Data] {
				h.pending = append(h.pending, Event{Kind: KindEndElement, Name: ev.Name, SelfClosing: true, Pos: pos})
			}
			return ev, nil

		case html.EndTagToken:
			tok := h.z.Token()
			if voidElements[tok.Data] {
				continue
			}
			return Event{Kind: KindEndElement, Name: ParseName(tok.Data), Pos: pos}, nil

		case html.CommentToken:
			data := string(h.z.Text())
			if strings.HasPrefix(data, "?") {
				return instructionFromBogusComment(data, pos), nil
			}
			return Event{Kind: KindComment, Text: data, Pos: pos}, nil

		case html.DoctypeToken:
			return Event{Kind: KindDoctype, Text: "DOCTYPE " + string(h.z.Text()), Pos: pos}, nil
		}
	}
}

// instructionFromBogusComment turns "?target data?" into an instruction.
func instructionFromBogusComment(data string, pos Position) Event {
	body := strings.TrimSuffix(strings.TrimPrefix(data, "?"), "?")
	target, rest := body, ""
	if i := strings.IndexAny(body, " \t\r\n"); i >= 0 {
		target, rest = body[:i], strings.TrimLeft(body[i:], " \t\r\n")
	}
	return Event{Kind: KindInstruction, Target: target, Data: rest, Pos: pos}
}
