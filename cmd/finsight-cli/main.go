/*One-shot analysis CLI for bank statement files.*/
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/patrickmn/go-cache"
	"github.com/username/finsight/backend/src/config"
	"github.com/username/finsight/backend/src/logger"
	"github.com/username/finsight/backend/src/narrative"
	"github.com/username/finsight/backend/src/processors"
	"github.com/username/finsight/backend/src/services"
	"github.com/username/finsight/backend/src/storage"
)

var cli struct {
	Analyze analyzeCmd `cmd:"" help:"Ingest a statement file and print its report, without persisting anything."`
}

type analyzeCmd struct {
	File            string `arg:"" required:"" help:"Path to the statement file (.csv, .tsv, .xlsx, .xls)."`
	Month           string `help:"Report month in YYYY-MM format (default: latest month in the file)."`
	Recommendations int    `default:"3" help:"Number of savings recommendations."`
	Source          string `default:"cli" help:"Source label stored with the dataset."`
}

func (c *analyzeCmd) Run() error {
	config.LoadConfig()
	logger.InitLogger("warn")

	f, err := os.Open(c.File)
	if err != nil {
		return fmt.Errorf("opening %s: %w", c.File, err)
	}
	defer f.Close()

	ctx := context.Background()
	store := storage.NewMemoryStore()

	result, err := services.NewIngestionService(store).IngestFile(ctx, f, c.File, c.Source)
	if err != nil {
		return fmt.Errorf("ingesting %s: %w", c.File, err)
	}

	reportService := services.NewReportService(
		store,
		processors.NewSummaryProcessor(config.Cfg.TopMerchantsLimit),
		processors.NewAnomalyProcessor(processors.DefaultAnomalyConfig()),
		processors.NewRecommendationProcessor(config.Cfg.DefaultRecommendations),
		narrative.Disabled{},
		cache.New(cache.NoExpiration, 0),
	)

	report, err := reportService.GenerateReport(ctx, result.DatasetID, c.Month, c.Recommendations)
	if err != nil {
		return fmt.Errorf("generating report: %w", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

func main() {
	ctx := kong.Parse(&cli)
	ctx.FatalIfErrorf(ctx.Run())
}
