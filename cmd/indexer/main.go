package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/normalizer"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/source"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/store"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/postgres"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	sourceKind := flag.String("source", "xml", "corpus source: xml, dir or postgres")
	input := flag.String("input", "", "collection file (xml) or directory (dir); defaults to <dataDir>/<collection>.xml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *sourceKind, *input); err != nil {
		slog.Error("index build failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, sourceKind, input string) error {
	norm, err := normalizer.NewByName(cfg.Index.Stemmer)
	if err != nil {
		return err
	}

	var src source.Source
	switch sourceKind {
	case "xml":
		if input == "" {
			input = filepath.Join(cfg.Index.DataDir, cfg.Index.Collection+".xml")
		}
		src = source.NewXMLSource(input)
	case "dir":
		if input == "" {
			return fmt.Errorf("-input directory is required for the dir source")
		}
		src = source.NewDirSource(input)
	case "postgres":
		db, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			return err
		}
		defer db.Close()
		src = source.NewPostgresSource(db.DB)
	default:
		return fmt.Errorf("unknown source %q", sourceKind)
	}

	opts := indexer.Options{
		Collection: cfg.Index.Collection,
		Workers:    cfg.Index.Workers,
	}
	if cfg.Metrics.Enabled {
		// scrapeable while the build runs
		opts.Metrics = metrics.New()
		shutdown := metrics.StartServer(cfg.Metrics.Port)
		defer shutdown(context.Background())
	}
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.IndexComplete)
		defer producer.Close()
		opts.Publisher = producer
	}

	slog.Info("starting index build",
		"collection", cfg.Index.Collection,
		"source", sourceKind,
		"input", input,
		"stemmer", cfg.Index.Stemmer,
		"workers", cfg.Index.Workers,
	)
	st := store.New(cfg.Index.DataDir, cfg.Index.Collection)
	_, err = indexer.NewEngine(norm, st, opts).Build(ctx, src)
	return err
}
