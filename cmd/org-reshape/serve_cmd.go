package main

import (
	"context"
	"os/signal"
	"syscall"

	gerrors "github.com/go-faster/errors"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/iota-uz/org-reshape/modules"
	"github.com/iota-uz/org-reshape/pkg/configuration"
	"github.com/iota-uz/org-reshape/pkg/middleware"
	"github.com/iota-uz/org-reshape/pkg/server"
)

func newServeCmd(cc *cliContext) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the upload/preview/download HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cc.conf == nil {
				return withCode(exitUsage, gerrors.New("configuration not loaded"))
			}
			if addr == "" {
				addr = cc.conf.SocketAddress
			}
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return runServe(ctx, cc.conf, cc.logger(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: derived from PORT and GO_APP_ENV)")
	return cmd
}

func newHTTPServer(conf *configuration.Configuration, logger *logrus.Logger) *server.HTTPServer {
	return server.NewHTTPServer(
		modules.Controllers(conf, logger),
		[]mux.MiddlewareFunc{middleware.WithLogger(logger, conf.RequestIDHeader)},
		conf.AllowedOrigins(),
	)
}

func runServe(ctx context.Context, conf *configuration.Configuration, logger *logrus.Logger, addr string) error {
	srv := newHTTPServer(conf, logger)
	logger.WithField("addr", addr).Info("listening")
	if err := srv.Start(ctx, addr); err != nil {
		return withCode(exitIO, err)
	}
	logger.Info("server stopped")
	return nil
}
