package toc

import (
	"errors"

	"github.com/open-cli-collective/htmltoc/pkg/markup"
)

// Code identifies a class of TOC processing failure. Codes are errors
// themselves, so errors.Is(err, ErrUnclosedElement) matches any *Error
// carrying that code.
type Code string

func (c Code) Error() string { return string(c) }

const (
	// Directive configuration.
	ErrMalformedDirective    Code = "malformed-directive"
	ErrEmptyOutline          Code = "empty-outline"
	ErrEmptyOutlineEntry     Code = "empty-outline-entry"
	ErrDuplicateOutlineEntry Code = "duplicate-outline-entry"
	ErrMissingWrapper        Code = "missing-wrapper"
	ErrSurplusWrapper        Code = "surplus-wrapper"

	// Document structure.
	ErrMissingRoot                Code = "missing-root"
	ErrDirectiveOutsideRoot       Code = "directive-outside-root"
	ErrDirectiveNesting           Code = "directive-nesting"
	ErrDisallowedDirectiveNesting Code = "disallowed-directive-nesting"
	ErrUnclosedElement            Code = "unclosed-element"
	ErrItemAlreadyOpen            Code = "item-already-open"
	ErrNotInOutline               Code = "not-in-outline"
	ErrNoOpenItem                 Code = "no-open-item"
	ErrUnmatchedClose             Code = "unmatched-close"
	ErrContentOutsideItem         Code = "content-outside-item"
	ErrUnclosedItem               Code = "unclosed-item"

	// Invariant violations and resource limits.
	ErrUnexpectedEventType Code = "unexpected-event-type"
	ErrNestedContext       Code = "nested-context"
	ErrIDSpaceExhausted    Code = "id-space-exhausted"
)

// Class groups codes by who is at fault.
type Class int

const (
	ClassStructural Class = iota // the document is malformed
	ClassConfig                  // a directive is malformed
	ClassInternal                // a tool bug or resource limit
)

func (c Class) String() string {
	switch c {
	case ClassConfig:
		return "configuration"
	case ClassInternal:
		return "internal"
	default:
		return "structural"
	}
}

// Class returns the class of the code.
func (c Code) Class() Class {
	switch c {
	case ErrMalformedDirective, ErrEmptyOutline, ErrEmptyOutlineEntry,
		ErrDuplicateOutlineEntry, ErrMissingWrapper, ErrSurplusWrapper:
		return ClassConfig
	case ErrUnexpectedEventType, ErrNestedContext, ErrIDSpaceExhausted:
		return ClassInternal
	default:
		return ClassStructural
	}
}

// Error is a TOC processing failure.
type Error struct {
	Code Code
	Msg  string
	Pos  markup.Position

	// Index and Conflict are outline positions for the outline codes.
	Index    int
	Conflict int

	Err error
}

func newError(code Code, msg string, pos markup.Position) *Error {
	return &Error{Code: code, Msg: msg, Pos: pos, Index: -1, Conflict: -1}
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Code)
	}
	if !e.Pos.IsZero() {
		msg += " " + e.Pos.String()
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the code and the cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Code}
	}
	return []error{e.Code, e.Err}
}

// CodeOf returns the code of the first *Error in err's chain.
func CodeOf(err error) (Code, bool) {
	var te *Error
	if errors.As(err, &te) {
		return te.Code, true
	}
	return "", false
}

// atEvent stamps err with the event position unless it already has one.
func atEvent(err error, ev markup.Event) error {
	var te *Error
	if errors.As(err, &te) && te.Pos.IsZero() {
		te.Pos = ev.Pos
	}
	return err
}
