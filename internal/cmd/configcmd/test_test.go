package configcmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/htmltoc/internal/config"
)

func TestRunTest(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		out  string
	}{
		{"defaults", config.Config{}, "as utf-8"},
		{"latin1 html", config.Config{Encoding: "latin1", Format: "html"}, "as windows-1252"},
		{"markdown with short target", config.Config{Format: "markdown", Target: "toc"}, "Sample transformation succeeded"},
		{"utf-16", config.Config{Encoding: "utf-16le"}, "Sample transformation succeeded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, runTest(&buf, true, &tt.cfg))
			assert.Contains(t, buf.String(), tt.out)
		})
	}
}

func TestRunTest_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
	}{
		{"bad format", config.Config{Format: "pdf"}},
		{"bad encoding", config.Config{Encoding: "no-such-charset"}},
		{"bad output", config.Config{OutputFormat: "yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := runTest(&buf, true, &tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid config")
			assert.Contains(t, buf.String(), "Invalid configuration")
		})
	}
}
