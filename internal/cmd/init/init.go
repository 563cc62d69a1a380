// Package init provides the init command for htmltoc.
package init

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/htmltoc/internal/cmd/cmdutil"
	"github.com/open-cli-collective/htmltoc/internal/config"
	"github.com/open-cli-collective/htmltoc/internal/transform"
	"github.com/open-cli-collective/htmltoc/internal/view"
	"github.com/open-cli-collective/htmltoc/pkg/toc"
)

// NewCmdInit creates the init command.
func NewCmdInit() *cobra.Command {
	var noVerify bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize htmltoc configuration",
		Long: `Initialize htmltoc with default settings for your documents.

This command will guide you through choosing the input format, character
encoding and directive target. The configuration will be saved to
~/.config/htmltoc/config.yml.`,
		Example: `  # Interactive setup
  htmltoc init

  # Save without checking the settings
  htmltoc init --no-verify`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("config")
			if path == "" {
				path = config.DefaultConfigPath()
			}
			return runInit(cmd.OutOrStdout(), path, noVerify)
		},
	}

	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "Skip checking the settings against a sample document")

	return cmd
}

func runInit(w io.Writer, configPath string, noVerify bool) error {
	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		var overwrite bool
		err := huh.NewConfirm().
			Title("Configuration already exists").
			Description(fmt.Sprintf("Overwrite %s?", configPath)).
			Value(&overwrite).
			Run()
		if err != nil {
			return err
		}
		if !overwrite {
			_, _ = fmt.Fprintln(w, "Initialization cancelled.")
			return nil
		}
	}

	cfg := &config.Config{
		Encoding:     transform.DefaultEncoding,
		Format:       string(transform.FormatXML),
		OutputFormat: string(view.FormatTable),
		Target:       toc.DefaultTarget,
	}

	if err := newForm(cfg).Run(); err != nil {
		return err
	}

	return finishInit(w, cfg, configPath, noVerify)
}

// newForm builds the prompts that fill cfg.
func newForm(cfg *config.Config) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Input format").
				Description("How documents are parsed").
				Options(selectOptions(transform.ValidFormats())...).
				Value(&cfg.Format),

			huh.NewInput().
				Title("Character encoding").
				Description("Documents are read and written in this encoding").
				Placeholder(transform.DefaultEncoding).
				Value(&cfg.Encoding).
				Validate(validateEncoding),

			huh.NewInput().
				Title("Directive target").
				Description("Processing instruction target that marks where a TOC goes").
				Placeholder(toc.DefaultTarget).
				Value(&cfg.Target),

			huh.NewConfirm().
				Title("Strict wrappers").
				Description("Reject blocktags and linetags lists that do not match the outline").
				Value(&cfg.StrictWrappers),

			huh.NewSelect[string]().
				Title("Output format").
				Description("Format for outline listings").
				Options(selectOptions(view.ValidFormats())...).
				Value(&cfg.OutputFormat),
		),
	)
}

func selectOptions(values []string) []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(values))
	for _, v := range values {
		opts = append(opts, huh.NewOption(v, v))
	}
	return opts
}

func validateEncoding(s string) error {
	if s == "" {
		return fmt.Errorf("encoding is required")
	}
	_, _, err := transform.LookupEncoding(s)
	return err
}

func finishInit(w io.Writer, cfg *config.Config, configPath string, noVerify bool) error {
	// Validate
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Verify settings unless skipped
	if !noVerify {
		_, _ = fmt.Fprint(w, "Checking settings... ")
		if err := cmdutil.Verify(cfg); err != nil {
			_, _ = fmt.Fprintln(w, "failed!")
			return fmt.Errorf("settings check failed: %w", err)
		}
		_, _ = fmt.Fprintln(w, "success!")
	}

	// Save configuration
	if err := cfg.Save(configPath); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(w, "\nConfiguration saved to %s\n", configPath)
	_, _ = fmt.Fprintln(w, "\nYou're all set! Try running:")
	_, _ = fmt.Fprintln(w, "  htmltoc outline <file>")
	_, _ = fmt.Fprintln(w, "  htmltoc <file> > <output>")

	return nil
}
