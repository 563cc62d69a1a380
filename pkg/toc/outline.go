package toc

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/open-cli-collective/htmltoc/pkg/markup"
)

// Default wrapper specs substituted for missing or empty list entries.
const (
	DefaultBlockWrapper = ""
	DefaultLineWrapper  = "div"
)

var (
	listSeparator  = regexp.MustCompile(`\s*,\s*`)
	classDelimiter = regexp.MustCompile(`\s*\.\s*`)
)

// splitList splits a comma-separated directive attribute. Empty entries
// are kept so positions line up with the outline.
func splitList(s string) []string {
	return listSeparator.Split(strings.TrimSpace(s), -1)
}

// Wrapper is an element generated around TOC content, with an optional
// class attribute.
type Wrapper struct {
	Name  string
	Class string
}

// parseWrapper parses "tag" or "tag.class". An empty tag means no wrapper.
func parseWrapper(spec string) *Wrapper {
	parts := classDelimiter.Split(spec, 2)
	if parts[0] == "" {
		return nil
	}
	w := &Wrapper{Name: parts[0]}
	if len(parts) > 1 {
		w.Class = parts[1]
	}
	return w
}

func (w *Wrapper) start() (markup.Event, bool) {
	if w == nil {
		return markup.Event{}, false
	}
	if w.Class == "" {
		return markup.Start(w.Name), true
	}
	return markup.Start(w.Name, markup.Attr{Name: markup.Name{Local: "class"}, Value: w.Class}), true
}

func (w *Wrapper) end() (markup.Event, bool) {
	if w == nil {
		return markup.Event{}, false
	}
	return markup.End(w.Name), true
}

// Level is one resolved outline entry.
type Level struct {
	Index int
	// Name is the qualified name of the elements indexed at this level.
	Name  string
	Block *Wrapper // groups the entries of this level; nil for none
	Line  *Wrapper // wraps each entry; nil for none
}

func (l Level) blockStart() (markup.Event, bool) { return l.Block.start() }
func (l Level) blockEnd() (markup.Event, bool)   { return l.Block.end() }
func (l Level) lineStart() (markup.Event, bool)  { return l.Line.start() }
func (l Level) lineEnd() (markup.Event, bool)    { return l.Line.end() }

// OutlineOptions tunes ResolveOutline.
type OutlineOptions struct {
	// Strict rejects wrapper lists whose length differs from the outline's
	// instead of padding short lists and ignoring surplus entries.
	Strict bool
	// Warn receives non-fatal findings such as surplus wrapper entries.
	Warn func(error)
}

// ResolveOutline builds the levels of an opening directive in outline order.
func ResolveOutline(d Directive, opts OutlineOptions) ([]Level, error) {
	if strings.TrimSpace(d.Outline) == "" {
		return nil, newError(ErrEmptyOutline, "invalid empty outline", markup.Position{})
	}
	outline := splitList(d.Outline)
	blocks := splitList(d.BlockTags)
	lines := splitList(d.LineTags)

	if opts.Strict {
		if err := checkWrapperList("blocktags", d.BlockTags, blocks, len(outline)); err != nil {
			return nil, err
		}
		if err := checkWrapperList("linetags", d.LineTags, lines, len(outline)); err != nil {
			return nil, err
		}
	}
	if opts.Warn != nil {
		if len(blocks) > len(outline) {
			opts.Warn(surplusWrappers("blocktags", len(blocks), len(outline)))
		}
		if len(lines) > len(outline) {
			opts.Warn(surplusWrappers("linetags", len(lines), len(outline)))
		}
	}

	levels := make([]Level, 0, len(outline))
	seen := make(map[string]int, len(outline))
	for i, name := range outline {
		if name == "" {
			err := newError(ErrEmptyOutlineEntry, fmt.Sprintf("outline element #%d is empty", i), markup.Position{})
			err.Index = i
			return nil, err
		}
		if j, dup := seen[name]; dup {
			err := newError(ErrDuplicateOutlineEntry,
				fmt.Sprintf("outline element #%d <%s> is the same as element #%d, outline elements must be unique", i, name, j),
				markup.Position{})
			err.Index = i
			err.Conflict = j
			return nil, err
		}
		seen[name] = i
		levels = append(levels, Level{
			Index: i,
			Name:  name,
			Block: parseWrapper(entryOr(blocks, i, DefaultBlockWrapper)),
			Line:  parseWrapper(entryOr(lines, i, DefaultLineWrapper)),
		})
	}
	return levels, nil
}

func entryOr(list []string, i int, def string) string {
	if i < len(list) && list[i] != "" {
		return list[i]
	}
	return def
}

func surplusWrappers(attr string, have, want int) error {
	return fmt.Errorf("%s lists %d entries for an outline of %d, extra entries ignored", attr, have, want)
}

func checkWrapperList(attr, raw string, list []string, want int) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	msg := fmt.Sprintf("%s lists %d entries for an outline of %d", attr, len(list), want)
	switch {
	case len(list) < want:
		return newError(ErrMissingWrapper, msg, markup.Position{})
	case len(list) > want:
		return newError(ErrSurplusWrapper, msg, markup.Position{})
	}
	return nil
}
