package main

import (
	"os"

	"github.com/andresuchdata/stockline/internal/config"
	"github.com/andresuchdata/stockline/pkg/logger"
	"github.com/urfave/cli/v2"
)

func main() {
	cfg := config.Load()
	logger.Configure(cfg.LogLevel, logger.ParseFormat(cfg.LogFormat, logger.FormatConsole))

	app := newApp(cfg)
	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("stockline failed")
	}
}

func newApp(cfg *config.Config) *cli.App {
	return &cli.App{
		Name:  "stockline",
		Usage: "Compute inventory policies, costs and demand forecasts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "db-url",
				Usage:   "Database connection string (defaults to DB_* settings)",
				EnvVars: []string{"DATABASE_URL"},
			},
		},
		Before: func(c *cli.Context) error { return initStore(c, cfg) },
		After:  closeStore,
		Commands: []*cli.Command{
			{
				Name:  "recompute",
				Usage: "Recompute the inventory policy of one article or of every article",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "article", Usage: "Article id"},
					&cli.BoolFlag{Name: "all", Usage: "Recompute every active article"},
					&cli.IntFlag{Name: "workers", Usage: "Concurrent recomputations with --all", Value: 4},
				},
				Action: runRecompute,
			},
			{
				Name:  "cgi",
				Usage: "Print the annual inventory cost of an article",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "article", Usage: "Article id", Required: true},
				},
				Action: runCGI,
			},
			{
				Name:  "forecast",
				Usage: "Print demand statistics and the smoothed forecast of an article",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "article", Usage: "Article id", Required: true},
				},
				Action: runForecast,
			},
			{
				Name:  "seed",
				Usage: "Load suppliers, articles, terms, sales and purchase orders from CSV or XLSX files",
				Description: "Master data is upserted by id. Sales and purchase order rows are keyed by their\n" +
					"content, so running seed again over the same files does not duplicate history.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "data-dir",
						Usage:   "Directory containing the seed files",
						Value:   "./data/seeds",
						EnvVars: []string{"SEED_DATA_DIR"},
					},
				},
				Action: runSeed,
			},
			{
				Name:  "report",
				Usage: "Export the policy report of every article",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Usage: "csv or xlsx", Value: "csv"},
					&cli.StringFlag{Name: "out", Usage: "Output file", Required: true},
					&cli.BoolFlag{Name: "upload", Usage: "Upload the file to object storage"},
				},
				Action: func(c *cli.Context) error { return runReport(c, cfg) },
			},
		},
	}
}
