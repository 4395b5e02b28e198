package cli

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kilupskalvis/catalogd/internal/server"
	"github.com/kilupskalvis/catalogd/internal/service"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the catalog HTTP server",
	Run: func(_ *cobra.Command, _ []string) {
		ctx := initContext()
		defer ctx.Close()
		logger := ctx.Logger

		// The fallback placeholder must always exist.
		if err := ctx.Blobs.EnsureDefault(placeholderJPEG); err != nil {
			exitError("%v", err)
		}

		svc := service.New(ctx.Repo, ctx.Blobs, logger)

		cfg := server.DefaultServerConfig()
		cfg.MaxUploadSize = ctx.Config.MaxUploadSize
		cfg.FrontURL = ctx.Config.FrontURL

		srv := &http.Server{
			Addr:         ctx.Config.Listen,
			Handler:      server.Handler(svc, cfg, logger),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  120 * time.Second,
			BaseContext:  func(_ net.Listener) context.Context { return context.Background() },
		}

		done := make(chan os.Signal, 1)
		signal.Notify(done, os.Interrupt, syscall.SIGTERM)

		go func() {
			logger.Info("starting catalogd",
				"listen", ctx.Config.Listen,
				"backend", ctx.Config.Backend,
				"data_dir", ctx.Config.DataPath(),
			)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("server error", "error", err)
				os.Exit(1)
			}
		}()

		<-done
		logger.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
		logger.Info("server stopped")
	},
}
