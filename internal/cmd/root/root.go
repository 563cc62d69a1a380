// Package root provides the root command for the htmltoc CLI.
package root

import (
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/htmltoc/internal/cmd/cmdutil"
	"github.com/open-cli-collective/htmltoc/internal/cmd/completion"
	"github.com/open-cli-collective/htmltoc/internal/cmd/configcmd"
	"github.com/open-cli-collective/htmltoc/internal/cmd/diff"
	initcmd "github.com/open-cli-collective/htmltoc/internal/cmd/init"
	"github.com/open-cli-collective/htmltoc/internal/cmd/outline"
	"github.com/open-cli-collective/htmltoc/internal/cmd/serve"
	"github.com/open-cli-collective/htmltoc/internal/transform"
	"github.com/open-cli-collective/htmltoc/internal/version"
)

// NewCmdRoot creates the root command for htmltoc.
func NewCmdRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "htmltoc <file>",
		Short: "Generate tables of contents for XHTML documents",
		Long: `htmltoc replaces TOC processing instructions in an XHTML document
with a generated table of contents linking to the document's headings.

The transformed document is written to standard output in the encoding
it was read with. Headings without an id attribute get one assigned.

  <?name.livitski.tools.html.toc version="1.0" outline="h1,h2"
      blocktags="ul,ul" linetags="li,li"?>
  <?name.livitski.tools.html.toc /?>

Use --target to recognize a shorter instruction target such as "toc".

Get started by running: htmltoc init`,
		Example: `  # Transform a document
  htmltoc index.xhtml > index.toc.xhtml

  # Read HTML5 and write the result as XHTML
  htmltoc --format html page.html

  # Read a Latin-1 document
  htmltoc --encoding iso-8859-1 legacy.xhtml`,
		Args:          cmdutil.FileArg,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransform(cmd, args[0])
		},
	}

	// Global flags
	cmdutil.AddGlobalFlags(cmd)

	// Set version template
	cmd.SetVersionTemplate(version.String() + "\n")

	// Subcommands
	cmd.AddCommand(initcmd.NewCmdInit())
	cmd.AddCommand(outline.NewCmdOutline())
	cmd.AddCommand(diff.NewCmdDiff())
	cmd.AddCommand(serve.NewCmdServe())
	cmd.AddCommand(configcmd.NewCmdConfig())
	cmd.AddCommand(completion.NewCmdCompletion())

	return cmd
}

func runTransform(cmd *cobra.Command, file string) error {
	s, err := cmdutil.Load(cmd)
	if err != nil {
		return err
	}
	r := s.Renderer(cmd)

	if err := transform.File(file, cmd.OutOrStdout(), s.TransformOptions(r)); err != nil {
		return cmdutil.Failure(r, file, err, s.Config.Debug)
	}
	return nil
}
