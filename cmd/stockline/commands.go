package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/andresuchdata/stockline/internal/config"
	"github.com/andresuchdata/stockline/internal/report"
	"github.com/andresuchdata/stockline/internal/repository/postgres"
	"github.com/andresuchdata/stockline/internal/seed"
	"github.com/andresuchdata/stockline/internal/storage"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func runRecompute(c *cli.Context) error {
	svc, err := inventoryService(c)
	if err != nil {
		return err
	}

	all := c.Bool("all")
	articleID := c.Int64("article")
	if all == (articleID != 0) {
		return cli.Exit("exactly one of --article or --all is required", 2)
	}

	if !all {
		record, err := svc.RecomputePolicy(c.Context, articleID)
		if err != nil {
			return err
		}
		return printJSON(c.App.Writer, record)
	}

	result, err := svc.RecomputeAll(c.Context, c.Int("workers"))
	if err != nil {
		return err
	}

	failedIDs := make([]int64, 0, len(result.Failed))
	for id := range result.Failed {
		failedIDs = append(failedIDs, id)
	}
	sort.Slice(failedIDs, func(i, j int) bool { return failedIDs[i] < failedIDs[j] })
	for _, id := range failedIDs {
		log.Warn().Int64("article_id", id).Err(result.Failed[id]).Msg("policy not recomputed")
	}

	fmt.Fprintf(c.App.Writer, "updated %d articles, %d failed\n", len(result.Updated), len(result.Failed))
	return nil
}

func runCGI(c *cli.Context) error {
	svc, err := inventoryService(c)
	if err != nil {
		return err
	}

	breakdown, err := svc.ComputeCGI(c.Context, c.Int64("article"))
	if err != nil {
		return err
	}
	return printJSON(c.App.Writer, breakdown)
}

func runForecast(c *cli.Context) error {
	svc, err := inventoryService(c)
	if err != nil {
		return err
	}

	forecast, err := svc.DemandStatistics(c.Context, c.Int64("article"))
	if err != nil {
		return err
	}
	return printJSON(c.App.Writer, forecast)
}

func runReport(c *cli.Context, cfg *config.Config) error {
	svc, err := inventoryService(c)
	if err != nil {
		return err
	}

	format, err := report.ParseFormat(c.String("format"))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	rows, err := svc.ReportRows(c.Context)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, format, rows); err != nil {
		return err
	}

	out := c.String("out")
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed writing %s: %w", out, err)
	}
	log.Info().Str("path", out).Int("rows", len(rows)).Msg("report written")

	if !c.Bool("upload") {
		return nil
	}

	client, err := storage.NewMinioClient(cfg.Storage)
	if err != nil {
		return err
	}
	key := filepath.Base(out)
	if err := client.UploadObject(c.Context, key, bytes.NewReader(buf.Bytes()), int64(buf.Len()), format.ContentType()); err != nil {
		return err
	}
	log.Info().Str("bucket", cfg.Storage.Bucket).Str("key", key).Msg("report uploaded")
	return nil
}

func runSeed(c *cli.Context) error {
	db, ok := c.Context.Value(dbKey).(*postgres.DB)
	if !ok || db == nil {
		return fmt.Errorf("database not initialised")
	}

	result, err := seed.Load(c.Context, db, c.String("data-dir"))
	if err != nil {
		return err
	}
	return printJSON(c.App.Writer, result)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
