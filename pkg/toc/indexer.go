// Package toc rewrites a markup event stream, replacing TOC directives with
// a generated table of contents and anchoring the indexed elements.
//
// A directive is a processing instruction such as
//
//	<?name.livitski.tools.html.toc version="1.0" outline="h1,h2" blocktags="ul,ul" linetags="li,li"?>
//	  ... placeholder markup, discarded ...
//	<?name.livitski.tools.html.toc /?>
//
// Elements named in the outline that follow the directive get an id and an
// anchor, and each becomes a TOC entry nested by its outline position. The
// TOC is written where the directive was; the indexed content follows once
// the directive ends, either at the end of the document or at the next
// top-level directive.
package toc

import (
	"errors"
	"fmt"
	"io"

	"github.com/open-cli-collective/htmltoc/pkg/markup"
)

type state int

const (
	stateRoot        state = iota // before the root element
	statePassthrough              // no directive active
	statePlaceholder              // inside an opening directive's placeholder markup
	stateIndexed                  // directive active, capturing content
)

var idAttr = markup.Name{Local: "id"}

// Option configures an Indexer.
type Option func(*options)

type options struct {
	target  string
	strict  bool
	warn    func(error)
	onEntry func(Entry)
	onTOC   func(markup.Event)
}

// WithTarget changes the processing instruction target of directives.
func WithTarget(target string) Option {
	return func(o *options) {
		if target != "" {
			o.target = target
		}
	}
}

// WithStrictWrappers rejects wrapper lists shorter than the outline.
func WithStrictWrappers(strict bool) Option {
	return func(o *options) { o.strict = strict }
}

// WithWarnings sets the sink for non-fatal findings.
func WithWarnings(fn func(error)) Option {
	return func(o *options) { o.warn = fn }
}

// WithEntryHook observes every completed TOC entry.
func WithEntryHook(fn func(Entry)) Option {
	return func(o *options) { o.onEntry = fn }
}

// WithTOCHook observes every generated TOC event, in output order.
func WithTOCHook(fn func(markup.Event)) Option {
	return func(o *options) { o.onTOC = fn }
}

// Indexer is the streaming transformation. It is pull-based: each call to
// Next reads as much input as needed to produce one output event.
type Indexer struct {
	src  markup.Source
	opts options

	state     state
	out       []markup.Event
	deferred  []markup.Event
	ctx       *contextTracker
	ids       IDAllocator
	formatter *Formatter
	// dropSpace is set at the start of the document and after a dropped
	// DOCTYPE, where whitespace separated prolog items that are not written.
	dropSpace bool
	done      bool
	err       error
}

// NewIndexer creates an indexer reading from src.
func NewIndexer(src markup.Source, opts ...Option) *Indexer {
	o := options{target: DefaultTarget}
	for _, opt := range opts {
		opt(&o)
	}
	ix := &Indexer{opts: o}
	ix.ctx = newContextTracker(ix.isDirective)
	ix.Reset(src)
	return ix
}

// Reset prepares the indexer for a new document.
func (ix *Indexer) Reset(src markup.Source) {
	ix.src = src
	ix.state = stateRoot
	ix.out = nil
	ix.deferred = nil
	ix.ctx.reset()
	ix.ids.Reset()
	ix.formatter = nil
	ix.dropSpace = true
	ix.done = false
	ix.err = nil
}

// Next returns the next output event, or io.EOF after the end of the
// document. Once it fails, every later call returns the same error.
func (ix *Indexer) Next() (markup.Event, error) {
	for len(ix.out) == 0 {
		if ix.err != nil {
			return markup.Event{}, ix.err
		}
		if ix.done {
			return markup.Event{}, io.EOF
		}
		ev, err := ix.src.Next()
		if errors.Is(err, io.EOF) {
			ev, err = markup.EndDocument(), nil
		}
		if err != nil {
			ix.err = err
			return markup.Event{}, err
		}
		if err := ix.process(ev); err != nil {
			ix.out = nil
			ix.err = atEvent(err, ev)
			return markup.Event{}, ix.err
		}
	}
	ev := ix.out[0]
	ix.out = ix.out[1:]
	return ev, nil
}

func (ix *Indexer) isDirective(ev markup.Event) bool {
	return ParseDirective(ev, ix.opts.target).Recognized()
}

func (ix *Indexer) emit(events ...markup.Event) {
	ix.out = append(ix.out, events...)
}

func (ix *Indexer) process(ev markup.Event) error {
	switch ix.state {
	case stateRoot:
		return ix.root(ev)
	case statePassthrough:
		return ix.passthrough(ev)
	case statePlaceholder:
		return ix.placeholder(ev)
	case stateIndexed:
		return ix.indexed(ev)
	default:
		return fmt.Errorf("unexpected indexer state: %d", ix.state)
	}
}

func (ix *Indexer) root(ev markup.Event) error {
	switch ev.Kind {
	case markup.KindStartElement:
		ix.emit(markup.Doctype(ev.Name), markup.EOL(), ev)
		ix.state = statePassthrough
	case markup.KindInstruction:
		if ix.isDirective(ev) {
			return newError(ErrDirectiveOutsideRoot,
				fmt.Sprintf("processing instructions <?%s?> cannot be placed outside the root element", ix.opts.target),
				ev.Pos)
		}
		ix.emit(ev)
		ix.dropSpace = false
	case markup.KindText:
		if !ix.dropSpace || !ev.IsWhitespace() {
			ix.emit(ev)
			ix.dropSpace = false
		}
	case markup.KindDoctype:
		// Replaced by the declaration synthesized from the root element.
		ix.dropSpace = true
	case markup.KindComment:
		ix.emit(ev)
		ix.dropSpace = false
	case markup.KindEndDocument:
		return newError(ErrMissingRoot, "document has no root element", ev.Pos)
	case markup.KindEndElement:
		return newError(ErrUnclosedElement, fmt.Sprintf("unexpected %s before the root element", ev), ev.Pos)
	}
	return nil
}

func (ix *Indexer) passthrough(ev markup.Event) error {
	switch ev.Kind {
	case markup.KindInstruction:
		res := ParseDirective(ev, ix.opts.target)
		switch res.Outcome {
		case NotApplicable:
			ix.emit(ev)
			return nil
		case Malformed:
			return res.Err
		case Parsed:
		}
		return ix.begin(ev, res.Directive)
	case markup.KindEndDocument:
		ix.emit(ev)
		ix.done = true
	case markup.KindStartElement, markup.KindEndElement, markup.KindText,
		markup.KindComment, markup.KindDoctype:
		ix.emit(ev)
	}
	return nil
}

// begin starts a directive read at top level.
func (ix *Indexer) begin(ev markup.Event, d Directive) error {
	if !d.Opening {
		return newError(ErrNoOpenItem,
			fmt.Sprintf("closing %s does not match an open directive", ev), ev.Pos)
	}
	levels, err := ResolveOutline(d, OutlineOptions{Strict: ix.opts.strict, Warn: ix.opts.warn})
	if err != nil {
		return err
	}
	ix.formatter = NewFormatter(levels)
	ix.formatter.OnEntry(ix.opts.onEntry)

	if d.Closing {
		ix.emit(markup.EOL())
		ix.state = stateIndexed
		return nil
	}
	if err := ix.ctx.enter(ev); err != nil {
		return err
	}
	ix.state = statePlaceholder
	return nil
}

func (ix *Indexer) placeholder(ev markup.Event) error {
	if ev.Kind != markup.KindInstruction {
		return ix.ctx.track(ev)
	}
	res := ParseDirective(ev, ix.opts.target)
	switch res.Outcome {
	case NotApplicable:
		return nil
	case Malformed:
		return res.Err
	case Parsed:
	}
	if res.Directive.Opening {
		origin := ix.ctx.origin
		return newError(ErrDirectiveNesting,
			fmt.Sprintf("processing instruction <?%s?> cannot be nested, nesting instruction began %s",
				ix.opts.target, origin.Pos),
			ev.Pos)
	}
	if open, ok := ix.ctx.innermost(); ok {
		return newError(ErrUnclosedElement,
			fmt.Sprintf("unclosed %s %s within placeholder markup for <?%s?>", open, open.Pos, ix.opts.target),
			ev.Pos)
	}
	if err := ix.ctx.exit(); err != nil {
		return err
	}
	ix.emit(markup.EOL())
	ix.state = stateIndexed
	return nil
}

func (ix *Indexer) indexed(ev markup.Event) error {
	capturing := ix.ctx.active

	switch {
	case ev.Kind == markup.KindEndDocument:
		if capturing {
			if err := ix.ctx.track(ev); err != nil {
				return err
			}
		}
		if err := ix.finish(); err != nil {
			return err
		}
		ix.emit(ev)
		ix.done = true
		return nil

	case ev.Kind == markup.KindInstruction && !capturing:
		res := ParseDirective(ev, ix.opts.target)
		switch res.Outcome {
		case NotApplicable:
			ix.deferred = append(ix.deferred, ev)
			return nil
		case Malformed:
			return res.Err
		case Parsed:
		}
		if err := ix.finish(); err != nil {
			return err
		}
		ix.state = statePassthrough
		if res.Directive.Opening {
			return ix.begin(ev, res.Directive)
		}
		ix.emit(markup.EOL())
		return nil

	case ev.Kind == markup.KindEndElement && capturing && ix.ctx.balanced():
		origin := ix.ctx.origin
		if origin.Name != ev.Name {
			return newError(ErrUnclosedElement, fmt.Sprintf("unclosed %s %s", origin, origin.Pos), ev.Pos)
		}
		if err := ix.ctx.exit(); err != nil {
			return err
		}
		if err := ix.formatter.Close(ev); err != nil {
			return err
		}
		ix.conveyFormatted()
		ix.deferred = append(ix.deferred, ev)
		return nil

	case !capturing:
		if !ix.formatter.Accept(ev) {
			ix.deferred = append(ix.deferred, ev)
			return nil
		}
		start, id, err := ix.assignID(ev)
		if err != nil {
			return err
		}
		if err := ix.formatter.Open(start, id); err != nil {
			return err
		}
		ix.deferred = append(ix.deferred,
			start,
			markup.Start("a", markup.Attr{Name: markup.Name{Local: "name"}, Value: id}),
			markup.Text(" "),
			markup.End("a"),
		)
		ix.conveyFormatted()
		return ix.ctx.enter(start)

	default:
		if err := ix.ctx.track(ev); err != nil {
			return err
		}
		ix.deferred = append(ix.deferred, ev)
		if err := ix.formatter.AddContent(ev); err != nil {
			return err
		}
		ix.conveyFormatted()
		return nil
	}
}

// finish closes the active TOC and releases the deferred content.
func (ix *Indexer) finish() error {
	if ix.formatter != nil {
		if err := ix.formatter.End(); err != nil {
			return err
		}
		ix.conveyFormatted()
		ix.formatter = nil
	}
	ix.emit(ix.deferred...)
	ix.deferred = nil
	return nil
}

// conveyFormatted moves generated TOC events to the output.
func (ix *Indexer) conveyFormatted() {
	for _, ev := range ix.formatter.Drain() {
		if ix.opts.onTOC != nil {
			ix.opts.onTOC(ev)
		}
		ix.emit(ev)
	}
}

// assignID returns the element with an id attribute, allocating one unless
// the element already has it.
func (ix *Indexer) assignID(start markup.Event) (markup.Event, string, error) {
	if id, ok := start.Attr(idAttr); ok {
		return start, id, nil
	}
	id, err := ix.ids.Next()
	if err != nil {
		return markup.Event{}, "", err
	}
	return start.WithAttr(idAttr, id), id, nil
}
