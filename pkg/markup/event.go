// Package markup provides the event model shared by the document sources,
// the TOC engine and the XHTML writer.
package markup

import (
	"fmt"
	"strings"
)

// Kind identifies the variant carried by an Event.
type Kind int

const (
	KindStartElement Kind = iota // <name attr="...">
	KindEndElement               // </name>, or the end half of <name/>
	KindText                     // character data, entities resolved
	KindComment                  // <!-- ... -->
	KindInstruction              // <?target data?>
	KindDoctype                  // <!DOCTYPE ...>
	KindEndDocument              // end of input
)

var kindNames = [...]string{
	KindStartElement: "start element",
	KindEndElement:   "end element",
	KindText:         "text",
	KindComment:      "comment",
	KindInstruction:  "processing instruction",
	KindDoctype:      "document type declaration",
	KindEndDocument:  "end of document",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Name is a qualified element or attribute name. Prefixes are kept as
// written; no namespace resolution is performed.
type Name struct {
	Prefix string
	Local  string
}

// ParseName splits "prefix:local" into a Name.
func ParseName(s string) Name {
	if i := strings.IndexByte(s, ':'); i > 0 && i < len(s)-1 {
		return Name{Prefix: s[:i], Local: s[i+1:]}
	}
	return Name{Local: s}
}

func (n Name) String() string {
	if n.Prefix == "" {
		return n.Local
	}
	return n.Prefix + ":" + n.Local
}

// Attr is a single attribute of a start element.
type Attr struct {
	Name  Name
	Value string
}

// Position locates an event in the input. Offset is in bytes, Line and
// Column are 1-based. The zero Position means "unknown".
type Position struct {
	Offset int64
	Line   int
	Column int
}

// IsZero reports whether the position is unknown.
func (p Position) IsZero() bool {
	return p.Line == 0 && p.Offset == 0
}

func (p Position) String() string {
	return fmt.Sprintf("at offset %d, line %d, column %d", p.Offset, p.Line, p.Column)
}

// Event is one item of a markup event stream. Which fields are meaningful
// depends on Kind:
//
//	KindStartElement  Name, Attrs
//	KindEndElement    Name, SelfClosing
//	KindText          Text, Raw (source form when it differs from escaped Text)
//	KindComment       Text
//	KindInstruction   Target, Data
//	KindDoctype       Text (everything between "<!" and ">")
//	KindEndDocument   -
type Event struct {
	Kind        Kind
	Name        Name
	Attrs       []Attr
	Text        string
	Raw         string
	Target      string
	Data        string
	SelfClosing bool
	Pos         Position
}

// Attr returns the value of the attribute with the given name.
func (e Event) Attr(name Name) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// WithAttr returns a copy of a start element with the attribute appended.
// The receiver's attribute slice is never modified.
func (e Event) WithAttr(name Name, value string) Event {
	attrs := make([]Attr, 0, len(e.Attrs)+1)
	attrs = append(attrs, e.Attrs...)
	e.Attrs = append(attrs, Attr{Name: name, Value: value})
	return e
}

// IsWhitespace reports whether the event is text made only of XML
// whitespace.
func (e Event) IsWhitespace() bool {
	return e.Kind == KindText && strings.TrimLeft(e.Text, " \t\r\n") == ""
}

// String describes the event for error messages.
func (e Event) String() string {
	switch e.Kind {
	case KindStartElement:
		return "element <" + e.Name.String() + ">"
	case KindEndElement:
		return "end of element </" + e.Name.String() + ">"
	case KindInstruction:
		return "processing instruction <?" + e.Target + " " + e.Data + "?>"
	case KindText:
		return fmt.Sprintf("text %q", truncate(e.Text, 40))
	case KindComment:
		return "comment"
	case KindDoctype:
		return "<!" + e.Text + ">"
	case KindEndDocument:
		return "end of document"
	default:
		return e.Kind.String()
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// Start builds a start element event.
func Start(name string, attrs ...Attr) Event {
	return Event{Kind: KindStartElement, Name: ParseName(name), Attrs: attrs}
}

// End builds an end element event.
func End(name string) Event {
	return Event{Kind: KindEndElement, Name: ParseName(name)}
}

// Text builds a text event.
func Text(s string) Event {
	return Event{Kind: KindText, Text: s}
}

// EOL is the end-of-line marker inserted between generated lines.
func EOL() Event {
	return Text("\n")
}

// Doctype builds a "<!DOCTYPE root>" declaration event.
func Doctype(root Name) Event {
	return Event{Kind: KindDoctype, Text: "DOCTYPE " + root.String()}
}

// EndDocument builds the terminal event.
func EndDocument() Event {
	return Event{Kind: KindEndDocument}
}

// Source produces events in document order. After the KindEndDocument event
// Next returns io.EOF.
type Source interface {
	Next() (Event, error)
}

// SyntaxError reports input that could not be tokenized.
type SyntaxError struct {
	Msg string
	Pos Position
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s %s", e.Msg, e.Pos)
}
