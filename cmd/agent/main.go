package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"news-agent/internal/config"
	"news-agent/internal/document"
	"news-agent/internal/enrich"
	"news-agent/internal/extract"
	"news-agent/internal/llm"
	"news-agent/internal/pipeline"
	"news-agent/internal/record"
	"news-agent/internal/scheduler"
	"news-agent/internal/source"
	"news-agent/internal/watermark"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	stream, err := source.NewTelegramStream(cfg.TelegramBotToken)
	if err != nil {
		log.Fatalf("failed to connect to source stream: %v", err)
	}

	marks, err := watermark.New(cfg.WatermarkFilePath)
	if err != nil {
		log.Fatalf("failed to init watermark store: %v", err)
	}
	records, err := record.NewStore(cfg.RecordsFilePath)
	if err != nil {
		log.Fatalf("failed to init record store: %v", err)
	}
	docs, err := document.NewWriter(cfg.PublicationsDir)
	if err != nil {
		log.Fatalf("failed to init document writer: %v", err)
	}

	chain, err := newEnrichmentChain(cfg)
	if err != nil {
		log.Fatalf("failed to init enrichment chain: %v", err)
	}

	for streamID, mark := range marks.Summary() {
		log.Printf("last check for stream %s: %s", streamID, mark.Format(time.RFC3339))
	}

	sched := scheduler.New(cfg.StatusCronSpec)
	sched.SetStatusFunc(func(ctx context.Context) error {
		count, err := records.Count()
		if err != nil {
			return err
		}
		log.Printf("status: %d records persisted", count)
		for streamID, mark := range marks.Summary() {
			log.Printf("status: stream %s last check %s", streamID, mark.Format(time.RFC3339))
		}
		return nil
	})
	if err := sched.Start(); err != nil {
		log.Printf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	streamID := strconv.FormatInt(cfg.TelegramChatID, 10)
	p := pipeline.New(stream, marks, extract.New(cfg.ExtractTimeout), chain, records, docs, streamID, cfg.FetchLimit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("pipeline stopped: %v", err)
	}
	log.Println("agent stopped")
}

// newEnrichmentChain builds the provider chain from the configured mode: a
// single named provider, or the configured order for "auto". Providers
// without credentials are skipped; an empty chain degrades to pass-through.
func newEnrichmentChain(cfg *config.Config) (*enrich.Chain, error) {
	f := llm.NewFactory(cfg)

	order := cfg.ProviderOrder
	if cfg.LLMProvider != "" && cfg.LLMProvider != "auto" {
		order = []string{cfg.LLMProvider}
	}

	var providers []enrich.Provider
	for _, name := range order {
		if !f.HasCredentials(name) {
			log.Printf("provider %s skipped: no credentials configured", name)
			continue
		}
		client, err := f.CreateClient(name)
		if err != nil {
			return nil, err
		}
		providers = append(providers, enrich.Provider{Name: name, Client: client})
		log.Printf("enrichment provider ready: %s", name)
	}
	if len(providers) == 0 {
		log.Printf("no enrichment providers available, records will be pass-through only")
	}
	return enrich.NewChain(providers, cfg.EnrichTimeout), nil
}
