package main

import (
	"context"
	"log"
	"os"

	"DefiPrime/internal/di"
	"DefiPrime/pkg/config"
	"DefiPrime/pkg/server"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

type flags struct {
	configPath string
	entities   []string
	protocols  []string
	sinkType   string
	sinkPath   string
	port       int
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:           "defiprime",
		Short:         "TVL-weighted composite yield of a set of DeFi pools",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&f.configPath, "config", "config/config.yaml", "config file path")
	root.PersistentFlags().StringSliceVar(&f.entities, "entities", nil, "pool ids (overrides config)")

	run := &cobra.Command{
		Use:   "run",
		Short: "Build the composite once and write it to the configured sink",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(f, func(app *server.App) error { return app.Run(cmd.Context()) })
		},
	}
	run.Flags().StringVar(&f.sinkType, "sink", "", "sink type: console, csv, json or kafka")
	run.Flags().StringVar(&f.sinkPath, "out", "", "output path for csv/json sinks")

	tvl := &cobra.Command{
		Use:   "tvl [protocol...]",
		Short: "Write the locked value of protocols from their common start date",
		RunE: func(cmd *cobra.Command, args []string) error {
			f.protocols = args
			return withApp(f, func(app *server.App) error { return app.TVL(cmd.Context(), nil) })
		},
	}
	tvl.Flags().StringVar(&f.sinkType, "sink", "", "sink type: console, csv, json or kafka")
	tvl.Flags().StringVar(&f.sinkPath, "out", "", "output path for csv/json sinks")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the composite over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(f, func(app *server.App) error { return app.Serve(cmd.Context()) })
		},
	}
	serve.Flags().IntVar(&f.port, "port", 0, "listen port (overrides config)")

	root.AddCommand(run, tvl, serve)
	return root
}

func withApp(f *flags, fn func(*server.App) error) error {
	cfg, err := config.LoadWithEnv(f.configPath)
	if err != nil {
		log.Printf("config load failed: %v", err)
		return err
	}
	if err := f.apply(cfg); err != nil {
		log.Printf("invalid flags: %v", err)
		return err
	}

	// Wire DI: Initialize all dependencies
	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		log.Printf("app initialization failed: %v", err)
		return err
	}
	defer cleanup()

	return fn(app)
}

func (f *flags) apply(cfg *config.Config) error {
	if len(f.entities) > 0 {
		cfg.Entities = f.entities
	}
	if len(f.protocols) > 0 {
		cfg.TVL.Protocols = f.protocols
	}
	if f.sinkType != "" {
		cfg.Sink.Type = f.sinkType
	}
	if f.sinkPath != "" {
		cfg.Sink.Path = f.sinkPath
	}
	if f.port > 0 {
		cfg.Server.Port = f.port
	}
	return cfg.Validate()
}
