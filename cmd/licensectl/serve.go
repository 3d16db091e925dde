package main

import (
	"os/signal"
	"syscall"

	"github.com/LerianStudio/lib-commons/commons/zap"
	"github.com/LerianStudio/lib-offline-license-go/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve license verification over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := zap.InitializeLogger()

			encoded, err := publicKey(v)
			if err != nil {
				return err
			}

			srv, err := server.New(encoded, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errs := make(chan error, 1)
			go func() { errs <- srv.Listen(v.GetString("addr")) }()

			select {
			case err := <-errs:
				return err
			case <-ctx.Done():
			}

			logger.Info("Shutting down license verification server")

			return srv.Shutdown()
		},
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().String("public-key", "", "base64 PKIX public key")
	cmd.Flags().String("public-key-file", "license.pub", "public key file")

	return cmd
}

