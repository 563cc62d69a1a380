package cmdutil

import (
	"bytes"
	"fmt"
	"io"

	"github.com/open-cli-collective/htmltoc/internal/config"
	"github.com/open-cli-collective/htmltoc/internal/transform"
	"github.com/open-cli-collective/htmltoc/pkg/toc"
)

// Verify runs a small sample document through the transformation with
// cfg's settings and checks that it produces a TOC entry.
func Verify(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	opts, err := cfg.TransformOptions()
	if err != nil {
		return err
	}
	enc, name, err := transform.LookupEncoding(opts.Encoding)
	if err != nil {
		return err
	}

	target := opts.Target
	if target == "" {
		target = toc.DefaultTarget
	}
	sample := sampleDocument(opts.Format, target)
	encoded, err := enc.NewEncoder().Bytes([]byte(sample))
	if err != nil {
		return fmt.Errorf("sample document cannot be encoded as %s: %w", name, err)
	}

	entries := 0
	opts.OnEntry = func(toc.Entry) { entries++ }
	if err := transform.Run(bytes.NewReader(encoded), io.Discard, opts); err != nil {
		return fmt.Errorf("sample transformation failed: %w", err)
	}
	if entries != 1 {
		return fmt.Errorf("sample transformation produced %d entries, expected 1", entries)
	}
	return nil
}

func sampleDocument(format transform.Format, target string) string {
	directive := fmt.Sprintf(`<?%s version="1.0" outline="h1" /?>`, target)
	if format == transform.FormatMarkdown {
		return directive + "\n\n# Check\n"
	}
	return "<html><body>" + directive + "<h1>Check</h1></body></html>"
}
