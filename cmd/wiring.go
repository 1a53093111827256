package cmd

import (
	"fmt"

	"basket-prices/metrics"
	"basket-prices/scraper/economiza"
	"basket-prices/services"
	"basket-prices/storage"
)

// pipeline bundles the collaborators shared by serve and collect.
type pipeline struct {
	store     *storage.PostgresStore
	mirror    *storage.RedisProgressMirror
	metrics   *metrics.Metrics
	collector *services.Collector
}

func newPipeline() (*pipeline, error) {
	if cfg.EconomizaToken == "" {
		logger.Warn("[config] ECONOMIZA_TOKEN is empty, upstream requests will be rejected")
	}

	store, err := storage.NewPostgresStore(cfg.DSN())
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		logger.Error("Make sure Docker is running: docker compose up -d")
		return nil, fmt.Errorf("storage: %w", err)
	}

	p := &pipeline{store: store, metrics: metrics.New()}

	client := economiza.New(cfg, logger, p.metrics)
	p.collector = services.NewCollector(client, store, store, store,
		services.NewProgressTracker(), services.CollectorOptionsFromConfig(cfg), logger, p.metrics)

	if cfg.RedisURL != "" {
		mirror, err := storage.NewRedisProgressMirror(cfg.RedisURL)
		if err != nil {
			logger.Warn("[config] Progress mirror disabled: %v", err)
		} else {
			p.mirror = mirror
			p.collector.WithMirror(mirror)
		}
	}

	return p, nil
}

func (p *pipeline) Close() {
	if p.mirror != nil {
		p.mirror.Close()
	}
	p.store.Close()
}
