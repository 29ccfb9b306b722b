package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finreport/routers"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the report HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}

		router, closeFn, err := routers.Route(cfg)
		if err != nil {
			return err
		}
		defer closeFn()

		srv := &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      router,
			WriteTimeout: cfg.Server.WriteTimeout,
			ReadTimeout:  cfg.Server.ReadTimeout,
		}
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		return runServer(srv, quit, cfg.Server.ShutdownTimeout)
	},
}

// runServer serves until quit fires or the listener fails, whichever comes
// first.
func runServer(srv *http.Server, quit <-chan os.Signal, shutdownTimeout time.Duration) error {
	errc := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		log.WithError(err).Error("server stopped")
		return err
	case <-quit:
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("shutting down")
	return srv.Shutdown(ctx)
}
