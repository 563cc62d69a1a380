package toc

import (
	"fmt"
	"strings"

	"github.com/open-cli-collective/htmltoc/pkg/markup"
)

// Entry describes one completed TOC line.
type Entry struct {
	Level   int    `json:"level"`
	Element string `json:"element"`
	ID      string `json:"id"`
	Title   string `json:"title"`
}

// Formatter turns indexed elements into TOC markup grouped by outline
// level. Generated events accumulate in a queue that the caller drains.
type Formatter struct {
	levels []Level
	byName map[string]int

	current  int // index into levels, -1 above all levels
	openItem markup.Event
	isOpen   bool
	openID   string
	title    strings.Builder

	queue   []markup.Event
	onEntry func(Entry)
}

// NewFormatter creates a formatter for resolved levels.
func NewFormatter(levels []Level) *Formatter {
	f := &Formatter{
		levels:  levels,
		byName:  make(map[string]int, len(levels)),
		current: -1,
	}
	for _, l := range levels {
		f.byName[l.Name] = l.Index
	}
	return f
}

// OnEntry registers a callback invoked when an entry is closed.
func (f *Formatter) OnEntry(fn func(Entry)) {
	f.onEntry = fn
}

// Accept reports whether ev starts an element listed in the outline.
func (f *Formatter) Accept(ev markup.Event) bool {
	if ev.Kind != markup.KindStartElement {
		return false
	}
	_, ok := f.byName[ev.Name.String()]
	return ok
}

// Open starts a TOC entry for the element begun by start, linking to id.
func (f *Formatter) Open(start markup.Event, id string) error {
	if f.isOpen {
		return newError(ErrItemAlreadyOpen,
			fmt.Sprintf("TOC item %s is improperly nested within another TOC item %s that began %s",
				start, f.openItem, f.openItem.Pos),
			start.Pos)
	}
	if start.Kind != markup.KindStartElement {
		return newError(ErrUnexpectedEventType,
			fmt.Sprintf("unexpected event type %s opening a TOC item", start), start.Pos)
	}
	index, ok := f.byName[start.Name.String()]
	if !ok {
		return newError(ErrNotInOutline,
			fmt.Sprintf("TOC item %s is not included in the outline", start), start.Pos)
	}

	f.jump(index)
	level := f.levels[index]
	if ev, ok := level.lineStart(); ok {
		f.emit(ev)
	}
	f.emit(markup.Start("a", markup.Attr{Name: markup.Name{Local: "href"}, Value: "#" + id}))

	f.openItem = start
	f.isOpen = true
	f.openID = id
	f.title.Reset()
	return nil
}

// Close ends the open entry. end must close the element that opened it.
func (f *Formatter) Close(end markup.Event) error {
	if !f.isOpen {
		return newError(ErrNoOpenItem,
			fmt.Sprintf("attempted to close TOC item %s that was never opened", end), end.Pos)
	}
	if end.Kind != markup.KindEndElement {
		return newError(ErrUnexpectedEventType,
			fmt.Sprintf("unexpected event type %s closing the TOC item %s %s", end, f.openItem, f.openItem.Pos),
			end.Pos)
	}
	if end.Name != f.openItem.Name {
		return newError(ErrUnmatchedClose,
			fmt.Sprintf("closing event %s does not match the opening of the TOC item %s %s",
				end, f.openItem, f.openItem.Pos),
			end.Pos)
	}

	f.emit(markup.End("a"))
	if ev, ok := f.levels[f.current].lineEnd(); ok {
		f.emit(ev)
	}
	f.emit(markup.EOL())

	if f.onEntry != nil {
		f.onEntry(Entry{
			Level:   f.current,
			Element: f.openItem.Name.String(),
			ID:      f.openID,
			Title:   strings.Join(strings.Fields(f.title.String()), " "),
		})
	}
	f.isOpen = false
	f.openItem = markup.Event{}
	f.openID = ""
	return nil
}

// AddContent copies the text of the open entry into the TOC. Markup and
// whitespace-only text are dropped.
func (f *Formatter) AddContent(ev markup.Event) error {
	if !f.isOpen {
		return newError(ErrContentOutsideItem,
			fmt.Sprintf("TOC content %s is not expected outside of a TOC item", ev), ev.Pos)
	}
	if ev.Kind == markup.KindText && !ev.IsWhitespace() {
		f.emit(markup.Text(ev.Text))
		f.title.WriteString(ev.Text)
	}
	return nil
}

// End closes every block still open. No entry may be open.
func (f *Formatter) End() error {
	if f.isOpen {
		return newError(ErrUnclosedItem,
			fmt.Sprintf("TOC item %s has never been closed", f.openItem), f.openItem.Pos)
	}
	f.jump(-1)
	return nil
}

// Drain returns the queued events and empties the queue.
func (f *Formatter) Drain() []markup.Event {
	out := f.queue
	f.queue = nil
	return out
}

func (f *Formatter) emit(ev markup.Event) {
	f.queue = append(f.queue, ev)
}

// jump moves from the current level to target, opening block wrappers of
// every level entered on the way down and closing those of every level
// left on the way up.
func (f *Formatter) jump(target int) {
	for f.current < target {
		f.current++
		if ev, ok := f.levels[f.current].blockStart(); ok {
			f.emit(ev)
			f.emit(markup.EOL())
		}
	}
	for f.current > target {
		if ev, ok := f.levels[f.current].blockEnd(); ok {
			f.emit(ev)
			f.emit(markup.EOL())
		}
		f.current--
	}
}
