// Package serve provides the serve command, which runs the HTTP API.
package serve

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/htmltoc/internal/cmd/cmdutil"
	"github.com/open-cli-collective/htmltoc/internal/config"
	"github.com/open-cli-collective/htmltoc/internal/server"
)

const shutdownTimeout = 10 * time.Second

type serveOptions struct {
	listen  string
	maxBody int64
}

// NewCmdServe creates the serve command.
func NewCmdServe() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the transformation over HTTP",
		Long: `Start an HTTP server exposing the transformation.

Endpoints:
  GET  /health        liveness check
  POST /api/toc       rewrite the request body, respond with the document
  POST /api/outline   respond with the TOC entries as JSON

Query parameters format, encoding, target and strict override the
configured defaults per request. The server stops on SIGINT or SIGTERM.`,
		Example: `  # Listen on the configured address (default :8080)
  htmltoc serve

  # Listen on a specific address
  htmltoc serve --listen 127.0.0.1:9000

  # Transform a document
  curl -H 'Content-Type: application/xhtml+xml' --data-binary @guide.xhtml localhost:8080/api/toc`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.listen, "listen", "l", "", "address to listen on (default: "+config.DefaultListen+")")
	cmd.Flags().Int64Var(&opts.maxBody, "max-body", server.DefaultMaxBodyBytes, "maximum request body size in bytes")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, opts *serveOptions) error {
	s, err := cmdutil.Load(cmd)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if s.Config.Debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	addr := opts.listen
	if addr == "" {
		addr = s.Config.Listen
	}
	if addr == "" {
		addr = config.DefaultListen
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	defaults, _ := s.Config.TransformOptions()
	srv := server.New(defaults, log)
	srv.SetMaxBodyBytes(opts.maxBody)

	httpServer := &http.Server{
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		log.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown error", "error", err)
		}
	}()

	log.Info("starting htmltoc", "addr", ln.Addr().String())
	if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done
	return nil
}
