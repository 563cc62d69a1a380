// Package transform runs the TOC indexer over files and streams: it picks
// the input format and character encoding, pumps events to the writer and
// sorts failures into the categories the CLI reports.
package transform

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	xtransform "golang.org/x/text/transform"

	"github.com/open-cli-collective/htmltoc/pkg/markup"
	"github.com/open-cli-collective/htmltoc/pkg/toc"
)

// Format is an input document format.
type Format string

const (
	FormatXML      Format = "xml"
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

// ValidFormats returns the accepted input format names.
func ValidFormats() []string {
	return []string{string(FormatXML), string(FormatHTML), string(FormatMarkdown)}
}

// ParseFormat validates a format name. The empty string means xml.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "":
		return FormatXML, nil
	case FormatXML, FormatHTML, FormatMarkdown:
		return Format(s), nil
	default:
		return "", fmt.Errorf("invalid input format %q: must be one of %s", s, strings.Join(ValidFormats(), ", "))
	}
}

// Options configures a run.
type Options struct {
	Format         Format
	Encoding       string
	Target         string
	StrictWrappers bool

	// Warn receives non-fatal findings.
	Warn func(error)
	// OnEntry observes each completed TOC entry.
	OnEntry func(toc.Entry)
	// OnTOC observes the generated TOC markup.
	OnTOC func(markup.Event)
}

func (o Options) indexerOptions() []toc.Option {
	return []toc.Option{
		toc.WithTarget(o.Target),
		toc.WithStrictWrappers(o.StrictWrappers),
		toc.WithWarnings(o.Warn),
		toc.WithEntryHook(o.OnEntry),
		toc.WithTOCHook(o.OnTOC),
	}
}

func newSource(r io.Reader, f Format) (markup.Source, error) {
	switch f {
	case FormatHTML:
		return markup.NewHTMLReader(r), nil
	case FormatMarkdown:
		src, err := markup.NewMarkdownReader(r)
		if err != nil {
			return nil, err
		}
		return src, nil
	case FormatXML, "":
		return markup.NewXMLReader(r), nil
	default:
		return nil, fmt.Errorf("invalid input format %q", f)
	}
}

// Run reads a document from in and writes the rewritten document to out,
// both in the configured encoding.
func Run(in io.Reader, out io.Writer, opts Options) (err error) {
	enc, _, err := LookupEncoding(opts.Encoding)
	if err != nil {
		return err
	}

	if _, tracked := in.(*ioTracker); !tracked {
		in = &ioTracker{r: in}
	}
	src, err := newSource(enc.NewDecoder().Reader(in), opts.Format)
	if err != nil {
		return err
	}

	// Characters the output encoding cannot represent become references.
	encoded := xtransform.NewWriter(&ioTracker{w: out}, encoding.HTMLEscapeUnsupported(enc.NewEncoder()))
	defer func() {
		if cerr := encoded.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return markup.Copy(markup.NewWriter(encoded), toc.NewIndexer(src, opts.indexerOptions()...))
}

// File transforms the file at path. Failure to close the file is reported
// only when the transformation itself succeeded.
func File(path string, out io.Writer, opts Options) (err error) {
	f, err := os.Open(path)
	if err != nil {
		return &IOError{Op: "open", Path: path, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &IOError{Op: "close", Path: path, Err: cerr}
		}
	}()

	return Run(&ioTracker{r: f, path: path}, out, opts)
}

// Outline is the table of contents of a document without the document.
type Outline struct {
	Entries  []toc.Entry `json:"entries"`
	Fragment string      `json:"fragment"`
}

// ExtractOutline runs the transformation, discarding the document and
// keeping the TOC entries and the generated TOC markup.
func ExtractOutline(in io.Reader, opts Options) (*Outline, error) {
	var (
		entries []toc.Entry
		events  []markup.Event
	)
	opts.OnEntry = chainEntry(opts.OnEntry, func(e toc.Entry) { entries = append(entries, e) })
	opts.OnTOC = chainTOC(opts.OnTOC, func(ev markup.Event) { events = append(events, ev) })

	if err := Run(in, io.Discard, opts); err != nil {
		return nil, err
	}
	fragment, err := markup.Render(events)
	if err != nil {
		return nil, err
	}
	return &Outline{Entries: entries, Fragment: fragment}, nil
}

func chainEntry(first, second func(toc.Entry)) func(toc.Entry) {
	if first == nil {
		return second
	}
	return func(e toc.Entry) {
		first(e)
		second(e)
	}
}

func chainTOC(first, second func(markup.Event)) func(markup.Event) {
	if first == nil {
		return second
	}
	return func(ev markup.Event) {
		first(ev)
		second(ev)
	}
}

// IOError is a failure to read the input or write the output.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	var pathErr *fs.PathError
	if errors.As(e.Err, &pathErr) {
		return e.Err.Error()
	}
	if e.Path == "" {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *IOError) Unwrap() error { return e.Err }

// ioTracker marks errors of the underlying reader or writer as IOError so
// they stay distinguishable after passing through the tokenizers.
type ioTracker struct {
	r    io.Reader
	w    io.Writer
	path string
}

func (t *ioTracker) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		err = &IOError{Op: "read", Path: t.path, Err: err}
	}
	return n, err
}

func (t *ioTracker) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	if err != nil {
		err = &IOError{Op: "write", Err: err}
	}
	return n, err
}
