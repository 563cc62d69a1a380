package toc

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/open-cli-collective/htmltoc/pkg/markup"
)

// DefaultTarget is the processing instruction target recognized as a
// TOC directive.
const DefaultTarget = "name.livitski.tools.html.toc"

// SupportedVersion is the only accepted value of the version attribute.
const SupportedVersion = "1.0"

// Directive is the parsed content of one TOC processing instruction.
//
// An opening directive carries the outline and wrapper lists; a closing
// directive (data ending with "/") ends a placeholder region or, at top
// level, the active TOC. A directive may be both.
type Directive struct {
	Version   string `xml:"version,attr"`
	Outline   string `xml:"outline,attr"`
	BlockTags string `xml:"blocktags,attr"`
	LineTags  string `xml:"linetags,attr"`

	Opening bool `xml:"-"`
	Closing bool `xml:"-"`
}

// Outcome tells what ParseDirective made of an event.
type Outcome int

const (
	NotApplicable Outcome = iota // not an instruction for this target
	Malformed                    // addressed to this target but unusable
	Parsed                       // a valid directive
)

// DirectiveResult is the result of ParseDirective.
type DirectiveResult struct {
	Outcome   Outcome
	Directive Directive
	Err       error // set when Outcome is Malformed
}

// Recognized reports whether the event was addressed to the directive
// target, valid or not.
func (r DirectiveResult) Recognized() bool {
	return r.Outcome != NotApplicable
}

// ParseDirective inspects an event and parses it if it is a processing
// instruction with the given target.
func ParseDirective(ev markup.Event, target string) DirectiveResult {
	if ev.Kind != markup.KindInstruction || ev.Target != target {
		return DirectiveResult{Outcome: NotApplicable}
	}

	raw := strings.TrimSpace(ev.Data)
	closing := strings.HasSuffix(raw, "/")
	if closing {
		raw = strings.TrimSpace(strings.TrimSuffix(raw, "/"))
	}

	var d Directive
	switch {
	case raw != "":
		parsed, err := parseDirectiveAttrs(raw, target)
		if err != nil {
			return malformed(ev, err)
		}
		d = parsed
		d.Opening = true
	case closing:
	default:
		return malformed(ev, fmt.Errorf("<?%s?> contains no data", target))
	}
	d.Closing = closing
	return DirectiveResult{Outcome: Parsed, Directive: d}
}

// parseDirectiveAttrs reads raw as the attribute list of a dummy element,
// which gives XML quoting and entity rules for free.
func parseDirectiveAttrs(raw, target string) (Directive, error) {
	var d Directive
	if err := xml.Unmarshal([]byte("<toc-pi "+raw+" />"), &d); err != nil {
		return Directive{}, fmt.Errorf("invalid attributes: %w", err)
	}
	if d.Version == "" {
		return Directive{}, fmt.Errorf("version attribute missing for <?%s?>", target)
	}
	if d.Version != SupportedVersion {
		return Directive{}, fmt.Errorf("unsupported version %q for <?%s?>", d.Version, target)
	}
	return d, nil
}

func malformed(ev markup.Event, cause error) DirectiveResult {
	err := newError(ErrMalformedDirective, "error parsing "+ev.String(), ev.Pos)
	err.Err = cause
	return DirectiveResult{Outcome: Malformed, Err: err}
}
