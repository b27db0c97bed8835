package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/josephgoksu/chorepay/internal/chores"
	"github.com/josephgoksu/chorepay/internal/server"
	"github.com/josephgoksu/chorepay/internal/watch"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the chore API on server.port (PORT, default 3000).

The service stores tasks in data.file, keeps proof pictures in
data.uploadsDir and, when server.staticDir is set, serves the
family pages from that directory.`,
	Example: `  chorepay serve
  PORT=8080 chorepay serve --static ./public`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 0, "listen port (overrides server.port and PORT)")
	serveCmd.Flags().String("static", "", "directory of static pages to serve at /")
	serveCmd.Flags().Bool("watch", false, "recalculate values when the data file is edited by hand")
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.staticDir", serveCmd.Flags().Lookup("static"))
	_ = viper.BindPFlag("watch.enabled", serveCmd.Flags().Lookup("watch"))
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := a.cfg
	if cfg.Data.Seed {
		if _, err := a.svc.SeedIfEmpty(ctx); err != nil {
			return friendlyError("seed starter tasks", err)
		}
	}
	// Bring stored values in line with the current pool before serving.
	if _, err := a.svc.Recalculate(ctx); err != nil {
		return friendlyError("recalculate values", err)
	}

	if cfg.Watch.Enabled && cfg.Data.Backend == "file" {
		w, err := watchDataFile(a.svc, cfg.Data.File, watch.DefaultDelay)
		if err != nil {
			return err
		}
		defer w.Stop()
	}

	srv := server.New(a.svc, a.proofs, server.Options{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		StaticDir:      cfg.Server.StaticDir,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		Version:        version,
		Logger:         slog.Default(),
		Telemetry:      a.telemetry,
	})

	var wg sync.WaitGroup
	errChan := make(chan error, 1)
	srv.Start(&wg, errChan)
	fmt.Fprintf(cmd.OutOrStdout(), "chorepay listening on %s\n", srv.Addr())

	var serveErr error
	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case serveErr = <-errChan:
	}

	timeout := time.Duration(cfg.Server.ShutdownTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("graceful shutdown failed", "error", err)
	}
	wg.Wait()
	return serveErr
}

// watchDataFile accepts hand edits of the data file and recalculates values after each one.
func watchDataFile(svc *chores.Service, path string, delay time.Duration) (*watch.Watcher, error) {
	w, err := watch.New(watch.Config{
		Path:   path,
		Delay:  delay,
		Logger: slog.Default(),
		OnChange: func(ctx context.Context) error {
			changed, err := svc.ApplyExternalEdit(ctx)
			if changed {
				slog.Info("values recalculated after data file edit")
			}
			return err
		},
	})
	if err != nil {
		return nil, err
	}
	if err := w.Start(); err != nil {
		return nil, err
	}
	return w, nil
}
