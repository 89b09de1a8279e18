package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the virtual filesystem service",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openService(cmd)
			if err != nil {
				return err
			}
			defer svc.close()

			ctx, stop := signal.NotifyContext(context.Background(),
				syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			svc.logger.Info("serving",
				"repo", svc.cfg.RepoPath,
				"store", svc.cfg.StorePath,
			)

			<-ctx.Done()
			svc.logger.Info("shutting down")
			return nil
		},
	}
}
