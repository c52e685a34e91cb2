package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jonathan/skillgap/internal/catalog"
	"github.com/jonathan/skillgap/internal/gap"
	"github.com/jonathan/skillgap/internal/server"
	"github.com/jonathan/skillgap/internal/service"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server exposing POST /gap-analysis/run, POST /course-recommendations/run and GET /health.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from config, 4000)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	if servePort != 0 {
		cfg.Port = servePort
	}

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	client, err := newLLMClient(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if client != nil {
		defer func() { _ = client.Close() }()
	}

	catalogClient, closeCatalog, err := newCatalogClient(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeCatalog()

	gaps := service.NewGapService(store, gap.NewAnalyzer(client, logger), cfg.GapLimit, logger)
	recommend := service.NewRecommendService(store, gaps,
		catalog.NewFetcher(catalogClient, cfg.CatalogWorkers, logger), logger,
		service.WithRecommendationLimit(cfg.RecommendationLimit))

	srv := server.New(server.Config{Port: cfg.Port}, gaps, recommend, logger)
	return srv.Start()
}
