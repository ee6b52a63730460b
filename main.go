package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"yolo/app"
	"yolo/internal/buildinfo"
	"yolo/internal/config"
	"yolo/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "yolo [flags] <fragment-shader>",
		Short:         "Live fragment shader previewer",
		Example:       "yolo -i -r shaders/plasma.kage\nyolo --backend headless --frames 600 shaders/plasma.wgsl",
		Args:          cobra.MaximumNArgs(1),
		Version:       buildinfo.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var fragment string
			if len(args) == 1 {
				fragment = args[0]
			}

			cfg, err := config.Load(cmd.Flags(), fragment)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log := logging.New(os.Stderr, cfg.Debug)
			if cfg.File != "" {
				log.WithField("file", cfg.File).Debug("using config file")
			}
			return app.New(cfg, log, os.Stdin, os.Stdout).Run(cmd.Context())
		},
	}
	config.BindFlags(cmd.Flags())
	return cmd
}
