package configcmd

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/htmltoc/internal/config"
	"github.com/open-cli-collective/htmltoc/internal/transform"
	"github.com/open-cli-collective/htmltoc/pkg/toc"
)

// NewCmdShow creates the config show command.
func NewCmdShow() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long:  `Display the current htmltoc configuration with source indicators.`,
		Example: `  # Show current config
  htmltoc config show`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			noColor, _ := cmd.Flags().GetBool("no-color")
			return runShow(cmd.OutOrStdout(), configPath(cmd), noColor)
		},
	}

	return cmd
}

func runShow(w io.Writer, configPath string, noColor bool) error {
	if noColor {
		color.NoColor = true
	}

	// Load file config (may not exist)
	fileCfg, fileErr := config.Load(configPath)
	if fileErr != nil {
		fileCfg = &config.Config{}
	}

	// Load full config with env overrides
	cfg, _ := config.LoadWithEnv(configPath)

	bold := color.New(color.Bold)
	dim := color.New(color.Faint)

	printField := func(label, value, fileValue, fallback string, envVars ...string) {
		_, _ = bold.Fprintf(w, "%-16s", label+":")
		if value == "" {
			_, _ = dim.Fprintf(w, "%s  (default)\n", fallback)
			return
		}

		_, _ = fmt.Fprint(w, value)

		// Determine source
		source := "config"
		if fileErr != nil {
			source = "-"
		}
		for _, envVar := range envVars {
			if v := os.Getenv(envVar); v != "" && v == value {
				source = envVar
				break
			}
		}
		if fileValue != value && source == "config" {
			source = "-"
		}

		_, _ = dim.Fprintf(w, "  (source: %s)\n", source)
	}

	printBool := func(label string, value, fileValue bool, envVars ...string) {
		v, fv := "", ""
		if value {
			v = strconv.FormatBool(value)
		}
		if fileValue {
			fv = strconv.FormatBool(fileValue)
		}
		printField(label, v, fv, "false", envVars...)
	}

	printField("Encoding", cfg.Encoding, fileCfg.Encoding, transform.DefaultEncoding, "HTMLTOC_ENCODING")
	printField("Format", cfg.Format, fileCfg.Format, string(transform.FormatXML), "HTMLTOC_FORMAT")
	printField("Output", cfg.OutputFormat, fileCfg.OutputFormat, "table", "HTMLTOC_OUTPUT")
	printField("Target", cfg.Target, fileCfg.Target, toc.DefaultTarget, "HTMLTOC_TARGET")
	printBool("Strict wrappers", cfg.StrictWrappers, fileCfg.StrictWrappers, "HTMLTOC_STRICT_WRAPPERS")
	printBool("Debug", cfg.Debug, fileCfg.Debug, "HTMLTOC_DEBUG", "DEBUG")
	printField("Listen", cfg.Listen, fileCfg.Listen, config.DefaultListen, "HTMLTOC_LISTEN")

	_, _ = fmt.Fprintln(w)
	_, _ = dim.Fprintf(w, "Config file: %s\n", configPath)
	if fileErr != nil {
		_, _ = dim.Fprintln(w, "(file not found)")
	}

	return nil
}
