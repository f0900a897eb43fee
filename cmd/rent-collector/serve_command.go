package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AlexZinkM/rent-collector/internal/api"
	"github.com/AlexZinkM/rent-collector/internal/config"
	"github.com/AlexZinkM/rent-collector/internal/handler"
	"github.com/AlexZinkM/rent-collector/internal/keyfile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API with Swagger UI at /swagger/",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := ctx.log()
			settings, err := ctx.settings()
			if err != nil {
				return err
			}

			// Kept in memory for the life of the server, like an unlocked wallet
			password, err := ctx.promptPassword("Enter store password: ")
			if err != nil {
				return err
			}
			defer clear(password)

			router, err := api.SetupRouter(handler.Deps{
				Ring:      keyfile.NewRing(logger),
				Settings:  settings,
				Password:  password,
				StorePath: config.GetStorePath(),
				Network:   ctx.newNetwork,
				Options:   ctx.options(),
				Logger:    logger,
			})
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              ":" + config.GetPort(),
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			sigCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("server listening", zap.String("addr", srv.Addr))
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-sigCtx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}
