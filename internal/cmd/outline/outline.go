// Package outline provides the outline command, which lists the entries
// of a document's tables of contents without rewriting the document.
package outline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/htmltoc/api"
	"github.com/open-cli-collective/htmltoc/internal/cmd/cmdutil"
	"github.com/open-cli-collective/htmltoc/internal/transform"
	"github.com/open-cli-collective/htmltoc/internal/view"
	"github.com/open-cli-collective/htmltoc/pkg/toc"
)

type outlineOptions struct {
	markdown bool
	fragment bool
	server   string
}

// NewCmdOutline creates the outline command.
func NewCmdOutline() *cobra.Command {
	opts := &outlineOptions{}

	cmd := &cobra.Command{
		Use:   "outline <file>",
		Short: "List the table of contents entries of a document",
		Long: `Run the transformation and print the TOC entries it generates instead
of the rewritten document. IDs are the ones the rewritten document would
carry, so they match what htmltoc <file> produces.`,
		Example: `  # List entries as a table
  htmltoc outline guide.xhtml

  # Print the TOC as markdown links
  htmltoc outline guide.xhtml --markdown

  # Entries and generated markup as JSON
  htmltoc outline guide.xhtml -o json

  # Ask a running htmltoc server instead of transforming locally
  htmltoc outline guide.xhtml --server http://localhost:8080`,
		Args: cmdutil.FileArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOutline(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.markdown, "markdown", false, "print the TOC as markdown")
	cmd.Flags().BoolVar(&opts.fragment, "fragment", false, "print the generated TOC markup")
	cmd.Flags().StringVar(&opts.server, "server", "", "URL of an htmltoc server to send the document to")

	return cmd
}

func runOutline(cmd *cobra.Command, file string, opts *outlineOptions) error {
	s, err := cmdutil.Load(cmd)
	if err != nil {
		return err
	}
	r := s.Renderer(cmd)

	var result *transform.Outline
	var md string
	if opts.server != "" {
		result, md, err = fetch(cmd.Context(), opts.server, file, s, r, opts.markdown)
		if err != nil {
			return err
		}
	} else {
		result, err = extract(file, s.TransformOptions(r))
		if err != nil {
			return cmdutil.Failure(r, file, err, s.Config.Debug)
		}
		if opts.markdown {
			if md, err = result.Markdown(); err != nil {
				return err
			}
		}
	}

	switch {
	case opts.markdown:
		r.RenderText(md)
		return nil
	case opts.fragment:
		r.RenderText(result.Fragment)
		return nil
	case r.Format() == view.FormatJSON:
		if result.Entries == nil {
			result.Entries = []toc.Entry{}
		}
		return r.RenderJSON(result)
	}

	if len(result.Entries) == 0 {
		r.RenderText("No table of contents entries found.")
		return nil
	}

	headers := []string{"LEVEL", "ELEMENT", "ID", "TITLE"}
	var rows [][]string
	for _, e := range result.Entries {
		rows = append(rows, []string{
			strconv.Itoa(e.Level),
			e.Element,
			e.ID,
			view.Truncate(e.Title, 60),
		})
	}
	r.RenderTable(headers, rows)
	return nil
}

func extract(file string, opts transform.Options) (*transform.Outline, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, &transform.IOError{Op: "open", Path: file, Err: err}
	}
	defer func() { _ = f.Close() }()
	return transform.ExtractOutline(f, opts)
}

// fetch sends file to an htmltoc server. Server warnings are reported
// the way local ones are.
func fetch(ctx context.Context, serverURL, file string, s *cmdutil.Settings, r *view.Renderer, markdown bool) (*transform.Outline, string, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, "", cmdutil.Failure(r, file, &transform.IOError{Op: "open", Path: file, Err: err}, s.Config.Debug)
	}
	defer func() { _ = f.Close() }()

	cfg := s.Config
	params := api.Params{
		Format:   cfg.Format,
		Encoding: cfg.Encoding,
		Target:   cfg.Target,
		Markdown: markdown,
	}
	if cfg.StrictWrappers {
		params.StrictWrappers = &cfg.StrictWrappers
	}

	out, err := api.NewClient(serverURL).Outline(ctx, f, api.ContentType(cfg.Format), params)
	if err != nil {
		return nil, "", &cmdutil.ExitError{
			Code: remoteExitCode(err),
			Err:  fmt.Errorf("failed to fetch outline from %s: %w", serverURL, err),
		}
	}
	for _, w := range out.Warnings {
		r.Warning(w)
	}
	return &transform.Outline{Entries: out.Entries, Fragment: out.Fragment}, out.Markdown, nil
}

// remoteExitCode maps a server failure to the exit code the same failure
// would produce locally.
func remoteExitCode(err error) int {
	var errResp *api.ErrorResponse
	if !errors.As(err, &errResp) {
		return cmdutil.ExitIO
	}
	switch {
	case errResp.StatusCode == http.StatusUnprocessableEntity:
		return cmdutil.ExitSyntax
	case errResp.StatusCode >= http.StatusInternalServerError:
		return cmdutil.ExitInternal
	default:
		return cmdutil.ExitIO
	}
}
