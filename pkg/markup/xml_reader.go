// xml_reader.go tokenizes well-formed XHTML with encoding/xml, keeping the
// source form of character data.
package markup

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// XMLReader is a Source over a well-formed XML document. Namespace prefixes
// are kept as written, the XML declaration is dropped, HTML named entities
// are resolved and element nesting is verified. Text events keep their
// source form in Raw when it differs from the escaped text, so character
// references and CDATA sections are written back as they were read.
type XMLReader struct {
	dec      *xml.Decoder
	rec      *recorder
	open     []Name
	finished bool
}

// NewXMLReader creates a reader over already-decoded (UTF-8) input.
func NewXMLReader(r io.Reader) *XMLReader {
	rec := &recorder{r: bufio.NewReader(r)}
	dec := xml.NewDecoder(rec)
	dec.Strict = true
	dec.Entity = xml.HTMLEntity
	// Input is transcoded before it reaches the decoder, so the encoding
	// named in the XML declaration is informational only.
	dec.CharsetReader = func(_ string, in io.Reader) (io.Reader, error) {
		return in, nil
	}
	return &XMLReader{dec: dec, rec: rec}
}

// recorder keeps the bytes the decoder consumed since the last discard.
// The decoder reads one byte at a time through ReadByte.
type recorder struct {
	r    *bufio.Reader
	buf  []byte
	base int64
}

func (c *recorder) ReadByte() (byte, error) {
	b, err := c.r.ReadByte()
	if err == nil {
		c.buf = append(c.buf, b)
	}
	return b, err
}

func (c *recorder) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.buf = append(c.buf, p[:n]...)
	return n, err
}

// discard forgets everything before the absolute offset.
func (c *recorder) discard(offset int64) {
	k := int(offset - c.base)
	if k <= 0 {
		return
	}
	n := copy(c.buf, c.buf[k:])
	c.buf = c.buf[:n]
	c.base = offset
}

func (c *recorder) slice(from, to int64) string {
	return string(c.buf[from-c.base : to-c.base])
}

func (x *XMLReader) position() Position {
	line, col := x.dec.InputPos()
	return Position{Offset: x.dec.InputOffset(), Line: line, Column: col}
}

// Next returns the next event of the document.
func (x *XMLReader) Next() (Event, error) {
	if x.finished {
		return Event{}, io.EOF
	}
	for {
		pos := x.position()
		x.rec.discard(pos.Offset)
		tok, err := x.dec.RawToken()
		if errors.Is(err, io.EOF) {
			if n := len(x.open); n > 0 {
				return Event{}, &SyntaxError{
					Msg: fmt.Sprintf("unexpected end of input, element <%s> is not closed", x.open[n-1]),
					Pos: pos,
				}
			}
			x.finished = true
			return Event{Kind: KindEndDocument, Pos: pos}, nil
		}
		if err != nil {
			var se *xml.SyntaxError
			if errors.As(err, &se) {
				p := x.position()
				p.Line = se.Line
				return Event{}, &SyntaxError{Msg: se.Msg, Pos: p}
			}
			return Event{}, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := Name{Prefix: t.Name.Space, Local: t.Name.Local}
			x.open = append(x.open, name)
			ev := Event{Kind: KindStartElement, Name: name, Pos: pos}
			if len(t.Attr) > 0 {
				ev.Attrs = make([]Attr, len(t.Attr))
				for i, a := range t.Attr {
					ev.Attrs[i] = Attr{Name: Name{Prefix: a.Name.Space, Local: a.Name.Local}, Value: a.Value}
				}
			}
			return ev, nil

		case xml.EndElement:
			name := Name{Prefix: t.Name.Space, Local: t.Name.Local}
			n := len(x.open)
			if n == 0 {
				return Event{}, &SyntaxError{Msg: fmt.Sprintf("unexpected end element </%s>", name), Pos: pos}
			}
			if x.open[n-1] != name {
				return Event{}, &SyntaxError{
					Msg: fmt.Sprintf("element <%s> closed by </%s>", x.open[n-1], name),
					Pos: pos,
				}
			}
			x.open = x.open[:n-1]
			// The decoder synthesizes the end of <x/> without consuming input.
			selfClosing := x.dec.InputOffset() == pos.Offset
			return Event{Kind: KindEndElement, Name: name, SelfClosing: selfClosing, Pos: pos}, nil

		case xml.CharData:
			ev := Event{Kind: KindText, Text: string(t), Pos: pos}
			if raw := x.rec.slice(pos.Offset, x.dec.InputOffset()); raw != textEscaper.Replace(ev.Text) {
				ev.Raw = raw
			}
			return ev, nil

		case xml.Comment:
			return Event{Kind: KindComment, Text: string(t), Pos: pos}, nil

		case xml.ProcInst:
			if t.Target == "xml" {
				continue
			}
			return Event{Kind: KindInstruction, Target: t.Target, Data: string(t.Inst), Pos: pos}, nil

		case xml.Directive:
			text := strings.TrimSpace(string(t))
			return Event{Kind: KindDoctype, Text: text, Pos: pos}, nil
		}
	}
}
