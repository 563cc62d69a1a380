package transform

import (
	"errors"

	"github.com/open-cli-collective/htmltoc/pkg/markup"
	"github.com/open-cli-collective/htmltoc/pkg/toc"
)

// Kind is the category of a failed run.
type Kind int

const (
	KindContent  Kind = iota // the document or a directive is invalid
	KindIO                   // reading or writing failed
	KindInternal             // a bug or an exhausted resource
)

// Legend returns the heading used when reporting an error of this kind.
func (k Kind) Legend() string {
	switch k {
	case KindIO:
		return "Input/output error"
	case KindInternal:
		return "Internal error"
	default:
		return "Data error"
	}
}

// Classify sorts err into a Kind. Errors of unknown origin are raised by
// the tokenizers and count as content errors.
func Classify(err error) Kind {
	var ioErr *IOError
	if errors.As(err, &ioErr) {
		return KindIO
	}
	if code, ok := toc.CodeOf(err); ok {
		if code.Class() == toc.ClassInternal {
			return KindInternal
		}
		return KindContent
	}
	var syntaxErr *markup.SyntaxError
	if errors.As(err, &syntaxErr) {
		return KindContent
	}
	if errors.Is(err, ErrUnsupportedEncoding) {
		return KindInternal
	}
	return KindContent
}

// Position returns the input position recorded in err, if any.
func Position(err error) (markup.Position, bool) {
	var te *toc.Error
	if errors.As(err, &te) && !te.Pos.IsZero() {
		return te.Pos, true
	}
	var se *markup.SyntaxError
	if errors.As(err, &se) && !se.Pos.IsZero() {
		return se.Pos, true
	}
	return markup.Position{}, false
}
