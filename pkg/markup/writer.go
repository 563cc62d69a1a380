// writer.go serializes events as XHTML.
package markup

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		`"`, "&quot;",
		"\t", "&#x9;",
		"\n", "&#xA;",
		"\r", "&#xD;",
	)
)

// Writer serializes an event stream. A start tag is held open until the
// next event so that an element read as <x/> is written back as <x/>.
type Writer struct {
	w       *bufio.Writer
	pending bool
}

// NewWriter creates a writer. Call Flush (or write KindEndDocument) when done.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write serializes one event.
func (w *Writer) Write(ev Event) error {
	if w.pending {
		w.pending = false
		if ev.Kind == KindEndElement && ev.SelfClosing {
			_, err := w.w.WriteString("/>")
			return err
		}
		if err := w.w.WriteByte('>'); err != nil {
			return err
		}
	}

	var err error
	switch ev.Kind {
	case KindStartElement:
		w.w.WriteByte('<')
		w.w.WriteString(ev.Name.String())
		for _, a := range ev.Attrs {
			w.w.WriteByte(' ')
			w.w.WriteString(a.Name.String())
			w.w.WriteString(`="`)
			attrEscaper.WriteString(w.w, a.Value)
			err = w.w.WriteByte('"')
		}
		w.pending = true
	case KindEndElement:
		w.w.WriteString("</")
		w.w.WriteString(ev.Name.String())
		err = w.w.WriteByte('>')
	case KindText:
		if ev.Raw != "" {
			_, err = w.w.WriteString(ev.Raw)
			break
		}
		_, err = textEscaper.WriteString(w.w, ev.Text)
	case KindComment:
		w.w.WriteString("<!--")
		w.w.WriteString(ev.Text)
		_, err = w.w.WriteString("-->")
	case KindInstruction:
		w.w.WriteString("<?")
		w.w.WriteString(ev.Target)
		if ev.Data != "" {
			w.w.WriteByte(' ')
			w.w.WriteString(ev.Data)
		}
		_, err = w.w.WriteString("?>")
	case KindDoctype:
		w.w.WriteString("<!")
		w.w.WriteString(ev.Text)
		err = w.w.WriteByte('>')
	case KindEndDocument:
		err = w.w.Flush()
	}
	return err
}

// Flush writes buffered output to the underlying writer.
func (w *Writer) Flush() error {
	if w.pending {
		w.pending = false
		if err := w.w.WriteByte('>'); err != nil {
			return err
		}
	}
	return w.w.Flush()
}

// Copy writes every event of src to w and flushes. It stops at io.EOF.
func Copy(w *Writer, src Source) error {
	for {
		ev, err := src.Next()
		if errors.Is(err, io.EOF) {
			return w.Flush()
		}
		if err != nil {
			// Keep what was produced before the failure.
			_ = w.Flush()
			return err
		}
		if err := w.Write(ev); err != nil {
			return err
		}
	}
}

// Render serializes a complete event slice to a string.
func Render(events []Event) (string, error) {
	var sb strings.Builder
	w := NewWriter(&sb)
	for _, ev := range events {
		if err := w.Write(ev); err != nil {
			return "", err
		}
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	return sb.String(), nil
}
