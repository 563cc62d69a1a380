package configcmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/htmltoc/internal/cmd/cmdutil"
	"github.com/open-cli-collective/htmltoc/internal/config"
	"github.com/open-cli-collective/htmltoc/internal/transform"
)

// NewCmdTest creates the config test command.
func NewCmdTest() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Check the configuration against a sample document",
		Long: `Validate the current configuration and run a sample document through
the transformation with it.`,
		Example: `  # Test configuration
  htmltoc config test`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			noColor, _ := cmd.Flags().GetBool("no-color")
			cfg, err := config.LoadWithEnv(configPath(cmd))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return runTest(cmd.OutOrStdout(), noColor, cfg)
		},
	}

	return cmd
}

func runTest(w io.Writer, noColor bool, cfg *config.Config) error {
	if noColor {
		color.NoColor = true
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	if err := cfg.Validate(); err != nil {
		_, _ = red.Fprintln(w, "✗ Invalid configuration:", err)
		_, _ = fmt.Fprintln(w, "\nCheck your settings with: htmltoc config show")
		_, _ = fmt.Fprintln(w, "Reconfigure with: htmltoc init")
		return fmt.Errorf("invalid config: %w", err)
	}
	_, _ = green.Fprintln(w, "✓ Configuration valid")

	if err := cmdutil.Verify(cfg); err != nil {
		_, _ = red.Fprintln(w, "✗ Sample transformation failed:", err)
		return err
	}
	_, _ = green.Fprintln(w, "✓ Sample transformation succeeded")

	_, name, _ := transform.LookupEncoding(cfg.Encoding)
	_, _ = fmt.Fprintf(w, "\nDocuments are read and written as %s.\n", name)

	return nil
}
