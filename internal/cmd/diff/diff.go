// Package diff provides the diff command, which previews the changes the
// transformation would make to a document.
package diff

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/htmltoc/internal/cmd/cmdutil"
	textdiff "github.com/open-cli-collective/htmltoc/internal/diff"
	"github.com/open-cli-collective/htmltoc/internal/transform"
)

type diffOptions struct {
	context  int
	maxBytes int
}

// NewCmdDiff creates the diff command.
func NewCmdDiff() *cobra.Command {
	opts := &diffOptions{}

	cmd := &cobra.Command{
		Use:   "diff <file>",
		Short: "Show the changes the transformation would make",
		Long: `Transform a document and print a unified diff between the file and the
rewritten document. The file is not modified.`,
		Example: `  # Preview changes
  htmltoc diff guide.xhtml

  # More context around each hunk
  htmltoc diff guide.xhtml --context 10`,
		Args: cmdutil.FileArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd, args[0], opts)
		},
	}

	cmd.Flags().IntVarP(&opts.context, "context", "U", textdiff.DefaultContext, "lines of context around each change")
	cmd.Flags().IntVar(&opts.maxBytes, "max-bytes", 0, "skip the diff when the documents are larger than this (0 for no limit)")

	return cmd
}

func runDiff(cmd *cobra.Command, file string, opts *diffOptions) error {
	s, err := cmdutil.Load(cmd)
	if err != nil {
		return err
	}
	r := s.Renderer(cmd)

	original, err := os.ReadFile(file)
	if err != nil {
		return cmdutil.Failure(r, file, &transform.IOError{Op: "read", Path: file, Err: err}, s.Config.Debug)
	}

	var rewritten bytes.Buffer
	if err := transform.Run(bytes.NewReader(original), &rewritten, s.TransformOptions(r)); err != nil {
		return cmdutil.Failure(r, file, err, s.Config.Debug)
	}

	patch, oversize, err := textdiff.Unified(file, file+" (with toc)", original, rewritten.Bytes(),
		textdiff.Options{Context: opts.context, MaxBytes: opts.maxBytes})
	if err != nil {
		return err
	}
	if oversize {
		r.Warning(fmt.Sprintf("documents exceed %d bytes, diff omitted", opts.maxBytes))
	}
	if patch == "" {
		r.Success("No changes")
		return nil
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), patch)
	return err
}
