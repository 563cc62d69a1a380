// Package cmdutil holds what the htmltoc commands share: settings
// resolution from config file, environment and flags, file argument
// checks, and the mapping of failures to exit codes.
package cmdutil

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/htmltoc/internal/config"
	"github.com/open-cli-collective/htmltoc/internal/transform"
	"github.com/open-cli-collective/htmltoc/internal/view"
	"github.com/open-cli-collective/htmltoc/pkg/toc"
)

// Settings is the effective configuration of one command invocation.
type Settings struct {
	Config     *config.Config
	ConfigPath string
	NoColor    bool
}

// AddGlobalFlags registers the persistent flags Load reads.
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP("config", "c", "", "config file (default: ~/.config/htmltoc/config.yml)")
	cmd.PersistentFlags().StringP("output", "o", "table", "output format: table, json, plain")
	cmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	cmd.PersistentFlags().Bool("debug", false, "report the full error chain on failure")
	cmd.PersistentFlags().StringP("encoding", "e", "", "input and output character encoding (default: utf-8)")
	cmd.PersistentFlags().StringP("format", "f", "", "input format: xml, html, markdown (default: xml)")
	cmd.PersistentFlags().String("target", "", "processing instruction target for directives (default: "+toc.DefaultTarget+")")
	cmd.PersistentFlags().Bool("strict-wrappers", false, "reject wrapper lists that do not match the outline length")
}

// Load resolves settings for cmd. Precedence: flags → environment →
// config file → defaults. Only flags the user actually set override.
func Load(cmd *cobra.Command) (*Settings, error) {
	flags := cmd.Flags()

	path, _ := flags.GetString("config")
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, err := config.LoadWithEnv(path)
	if err != nil {
		return nil, err
	}

	if flags.Changed("output") {
		cfg.OutputFormat, _ = flags.GetString("output")
	}
	if flags.Changed("encoding") {
		cfg.Encoding, _ = flags.GetString("encoding")
	}
	if flags.Changed("format") {
		cfg.Format, _ = flags.GetString("format")
	}
	if flags.Changed("target") {
		cfg.Target, _ = flags.GetString("target")
	}
	if flags.Changed("strict-wrappers") {
		cfg.StrictWrappers, _ = flags.GetBool("strict-wrappers")
	}
	if flags.Changed("debug") {
		cfg.Debug, _ = flags.GetBool("debug")
	}

	if err := cfg.Validate(); err != nil {
		return nil, &ExitError{Code: ExitUsage, Err: fmt.Errorf("invalid configuration: %w", err)}
	}

	noColor, _ := flags.GetBool("no-color")
	return &Settings{Config: cfg, ConfigPath: path, NoColor: noColor}, nil
}

// Renderer returns a renderer writing to the command's output streams.
func (s *Settings) Renderer(cmd *cobra.Command) *view.Renderer {
	r := view.NewRenderer(view.Format(s.Config.OutputFormat), s.NoColor)
	r.SetWriter(cmd.OutOrStdout())
	r.SetErrWriter(cmd.ErrOrStderr())
	return r
}

// TransformOptions returns the transformation options, reporting
// warnings through r.
func (s *Settings) TransformOptions(r *view.Renderer) transform.Options {
	// Validate has already accepted the format.
	opts, _ := s.Config.TransformOptions()
	opts.Warn = func(err error) { r.Warning(err.Error()) }
	return opts
}

// FileArg accepts exactly one argument naming an existing regular file.
func FileArg(_ *cobra.Command, args []string) error {
	switch {
	case len(args) == 0:
		return &ExitError{Code: ExitNoArgs, Err: fmt.Errorf("please enter location of a file to transform as an argument")}
	case len(args) > 1:
		return &ExitError{Code: ExitExtraArgs, Err: fmt.Errorf("cannot process extra argument %q", args[1])}
	}
	info, err := os.Stat(args[0])
	if err != nil || info.IsDir() {
		return &ExitError{Code: ExitNoFile, Err: fmt.Errorf("file %q does not exist or is a directory", args[0])}
	}
	return nil
}

// Failure reports a failed transformation of file through r and returns
// the error to hand back to cobra.
func Failure(r *view.Renderer, file string, err error, debug bool) error {
	kind := transform.Classify(err)
	r.ReportError(kind.Legend(), file, err, debug)
	return &ExitError{Code: KindExitCode(kind), Err: err, Reported: true}
}
