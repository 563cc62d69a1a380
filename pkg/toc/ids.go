package toc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/open-cli-collective/htmltoc/pkg/markup"
)

const (
	idPrefix = "toc"
	idWidth  = 6
)

// IDAllocator hands out anchor identifiers toc000001, toc000002, ...
type IDAllocator struct {
	last int
}

// Next returns a fresh identifier. It fails with ErrIDSpaceExhausted once
// the number no longer fits the fixed width.
func (a *IDAllocator) Next() (string, error) {
	digits := strconv.Itoa(a.last + 1)
	if len(digits) > idWidth {
		return "", newError(ErrIDSpaceExhausted,
			fmt.Sprintf("too many TOC entries: %s, cannot allocate an id", digits),
			markup.Position{})
	}
	a.last++
	return idPrefix + strings.Repeat("0", idWidth-len(digits)) + digits, nil
}

// Reset restarts numbering from 1.
func (a *IDAllocator) Reset() {
	a.last = 0
}
