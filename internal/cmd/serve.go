package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AGLOP-1354/taskboard/internal/config"
	"github.com/AGLOP-1354/taskboard/internal/server"
	"github.com/AGLOP-1354/taskboard/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the configured store over HTTP",
	Long: `Serve the configured store over HTTP so that other taskboard processes
can share it with --backend remote.

Endpoints:
  GET    /api/health
  GET    /api/tasks
  POST   /api/tasks
  PATCH  /api/tasks/{id}
  DELETE /api/tasks/{id}
  GET    /api/tasks/watch   (WebSocket, one JSON snapshot per change)`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Store.Backend == store.BackendRemote {
		return fmt.Errorf("serve needs a local store backend, not %q", store.BackendRemote)
	}
	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	logger := CreateLogger(cfg)
	defer func() { _ = logger.Close() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	srv := server.New(st, addr, server.WithLogger(logger))
	fmt.Fprintf(cmd.OutOrStdout(), "Serving %s store %q on %s (Ctrl+C to stop)\n", st.Backend(), cfg.Store.Collection, addr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.ListenAndServe)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout())
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
