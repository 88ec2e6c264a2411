// Command evaluate compares the prompting approaches on a labelled review
// dataset (CSV with "text" and "stars" columns) using the configured LLM.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	pkgconfig "github.com/utafrali/FeedbackAI/pkg/config"
	"github.com/utafrali/FeedbackAI/pkg/logger"
	"github.com/utafrali/FeedbackAI/services/feedback/internal/app"
	"github.com/utafrali/FeedbackAI/services/feedback/internal/config"
	"github.com/utafrali/FeedbackAI/services/feedback/internal/domain"
	"github.com/utafrali/FeedbackAI/services/feedback/internal/evaluation"
	"github.com/utafrali/FeedbackAI/services/feedback/internal/llm"
	"github.com/utafrali/FeedbackAI/services/feedback/internal/service"
)

func main() {
	data := flag.String("data", "", "path to the labelled CSV dataset")
	approach := flag.String("approach", "", "evaluate only this approach (zero-shot, few-shot, chain-of-thought)")
	limit := flag.Int("limit", 200, "maximum number of samples; 0 reads the whole file")
	out := flag.String("out", "", "optional CSV file for per-sample results")
	flag.Parse()

	if err := run(*data, *approach, *limit, *out); err != nil {
		fmt.Fprintln(os.Stderr, "evaluate:", err)
		os.Exit(1)
	}
}

func run(dataPath, approachFlag string, limit int, outPath string) error {
	if dataPath == "" {
		return fmt.Errorf("-data is required")
	}

	approaches := domain.Approaches()
	if approachFlag != "" {
		a, err := domain.ParseApproach(approachFlag)
		if err != nil {
			return err
		}
		approaches = []domain.Approach{a}
	}

	if err := pkgconfig.LoadDotEnv(); err != nil {
		return err
	}
	cfg := &config.Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return err
	}
	log := logger.New("feedback-evaluate", cfg.LogLevel)

	f, err := os.Open(dataPath)
	if err != nil {
		return fmt.Errorf("open dataset: %w", err)
	}
	samples, err := evaluation.LoadDataset(f, limit)
	_ = f.Close()
	if err != nil {
		return err
	}
	log.Info("dataset loaded", slog.String("path", dataPath), slog.Int("samples", len(samples)))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	base, err := app.NewGenerator(ctx, cfg, log)
	if err != nil {
		return err
	}
	gen := llm.Wrap(base,
		llm.Instrument(log),
		llm.RateLimit(cfg.LLMRPS, cfg.LLMBurst),
		llm.WithTimeout(cfg.LLMTimeout),
	)
	predictions := service.NewPredictionService(gen, log)

	var rows *evaluation.RowWriter
	if outPath != "" {
		of, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create results file: %w", err)
		}
		defer func() { _ = of.Close() }()
		rows = evaluation.NewRowWriter(of)
	}

	var writeErr error
	reports, err := evaluation.Run(ctx, predictions, samples, approaches, func(r evaluation.Row) {
		if rows != nil && writeErr == nil {
			writeErr = rows.Write(r)
		}
	})
	if err != nil {
		return err
	}
	if rows != nil {
		if err := rows.Flush(); err != nil && writeErr == nil {
			writeErr = err
		}
		if writeErr != nil {
			return fmt.Errorf("write results: %w", writeErr)
		}
		log.Info("per-sample results written", slog.String("path", outPath))
	}

	return evaluation.WriteSummary(os.Stdout, reports)
}
