package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"statewatch/internal/api"
	"statewatch/internal/logging"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bindFlag string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := ctx.openRuntime(true)
			if err != nil {
				return err
			}
			defer rt.Close()

			bind := bindFlag
			if bind == "" {
				bind = rt.cfg.Paths.APIBind
			}

			server := api.NewServer(rt.engine, rt.records, rt.inbox, rt.metrics, rt.logger)
			httpServer := &http.Server{
				Addr:              bind,
				Handler:           server.Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				rt.logger.Info("http server listening", logging.String("bind", bind))
				errCh <- httpServer.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-runCtx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return err
			}
			rt.logger.Info("http server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&bindFlag, "bind", "", "Listen address (overrides api_bind from configuration)")
	return cmd
}
