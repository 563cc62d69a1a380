package toc

import (
	"fmt"

	"github.com/open-cli-collective/htmltoc/pkg/markup"
)

// contextTracker follows element nesting inside one captured subtree: a
// placeholder region or the body of an indexed element.
type contextTracker struct {
	origin      markup.Event
	open        []markup.Event
	active      bool
	isDirective func(markup.Event) bool
}

func newContextTracker(isDirective func(markup.Event) bool) *contextTracker {
	return &contextTracker{isDirective: isDirective}
}

// enter starts tracking the subtree begun by ev.
func (c *contextTracker) enter(ev markup.Event) error {
	if c.active {
		return newError(ErrNestedContext,
			fmt.Sprintf("cannot create nested context for %s within a context of %s %s",
				ev, c.origin, c.origin.Pos),
			ev.Pos)
	}
	c.origin = ev
	c.open = c.open[:0]
	c.active = true
	return nil
}

// track consumes one event inside the subtree.
func (c *contextTracker) track(ev markup.Event) error {
	switch ev.Kind {
	case markup.KindStartElement:
		c.open = append(c.open, ev)
	case markup.KindEndElement, markup.KindEndDocument:
		n := len(c.open)
		if n == 0 {
			return newError(ErrUnclosedElement,
				fmt.Sprintf("unclosed %s %s", c.origin, c.origin.Pos), ev.Pos)
		}
		top := c.open[n-1]
		if ev.Kind != markup.KindEndElement || top.Name != ev.Name {
			return newError(ErrUnclosedElement,
				fmt.Sprintf("unclosed %s %s", top, top.Pos), ev.Pos)
		}
		c.open = c.open[:n-1]
	case markup.KindInstruction:
		if c.isDirective != nil && c.isDirective(ev) {
			return newError(ErrDisallowedDirectiveNesting,
				fmt.Sprintf("%s is not allowed within the context of %s", ev, c.origin), ev.Pos)
		}
	case markup.KindText, markup.KindComment, markup.KindDoctype:
	}
	return nil
}

// balanced reports whether every element opened in the subtree is closed.
func (c *contextTracker) balanced() bool {
	return len(c.open) == 0
}

// innermost returns the most recently opened element still open.
func (c *contextTracker) innermost() (markup.Event, bool) {
	if len(c.open) == 0 {
		return markup.Event{}, false
	}
	return c.open[len(c.open)-1], true
}

// exit stops tracking. The subtree must be balanced.
func (c *contextTracker) exit() error {
	if ev, open := c.innermost(); open {
		return newError(ErrUnclosedElement, fmt.Sprintf("unclosed %s %s", ev, ev.Pos), ev.Pos)
	}
	c.active = false
	c.origin = markup.Event{}
	return nil
}

func (c *contextTracker) reset() {
	c.active = false
	c.origin = markup.Event{}
	c.open = c.open[:0]
}
