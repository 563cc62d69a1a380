package serve

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/htmltoc/internal/cmd/cmdutil"
	"github.com/open-cli-collective/htmltoc/internal/config"
)

// newCmd returns the serve command under a root carrying the global flags.
func newCmd(t *testing.T, args ...string) (*cobra.Command, *serveOptions, *bytes.Buffer) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, v := range config.EnvVars() {
		t.Setenv(v, "")
	}

	root := &cobra.Command{Use: "htmltoc"}
	cmdutil.AddGlobalFlags(root)
	cmd := NewCmdServe()
	root.AddCommand(cmd)

	var logs bytes.Buffer
	root.SetErr(&logs)
	require.NoError(t, root.ParseFlags(nil))
	require.NoError(t, cmd.ParseFlags(args))

	listen, _ := cmd.Flags().GetString("listen")
	maxBody, _ := cmd.Flags().GetInt64("max-body")
	return cmd, &serveOptions{listen: listen, maxBody: maxBody}, &logs
}

func TestRunServe_Shutdown(t *testing.T) {
	cmd, opts, logs := newCmd(t, "--listen", "127.0.0.1:0")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runServe(ctx, cmd, opts) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.Contains(t, logs.String(), `"msg":"starting htmltoc"`)
	assert.Contains(t, logs.String(), `"msg":"shutting down..."`)
}

func TestRunServe_ListenError(t *testing.T) {
	cmd, opts, _ := newCmd(t, "--listen", "256.0.0.1:99999")

	err := runServe(context.Background(), cmd, opts)
	require.Error(t, err)
}

func TestNewCmdServe_Flags(t *testing.T) {
	cmd := NewCmdServe()
	assert.NotNil(t, cmd.Flags().Lookup("listen"))
	assert.NotNil(t, cmd.Flags().Lookup("max-body"))
}
