package main

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	backend "github.com/redis/go-redis/v9"

	"github.com/plumedoc/plume"
	"github.com/plumedoc/plume/internal/config"
	"github.com/plumedoc/plume/internal/normalizer"
	"github.com/plumedoc/plume/internal/responder"
	"github.com/plumedoc/plume/pkg/adapters/redis"
	"github.com/plumedoc/plume/pkg/adapters/yamlclients"
	"github.com/plumedoc/plume/pkg/observability"
)

// buildAssembly turns the configuration into a wired engine.
func buildAssembly(cfg config.Config, logger *slog.Logger, reg *prometheus.Registry) (*plume.Assembly, error) {
	norm := normalizer.New()

	opts := []plume.Option{
		plume.WithLogger(logger),
		plume.WithNormalizer(norm),
		plume.WithGenerator(cfg.Generator.BaseURL, cfg.Generator.Model,
			responder.WithStream(cfg.Generator.Stream),
			responder.WithTimeouts(cfg.Generator.GenerateTimeout, cfg.Generator.ProbeTimeout),
		),
		plume.WithBreakerOptions(
			responder.WithThreshold(cfg.Generator.FailureThreshold),
			responder.WithCooldown(cfg.Generator.Cooldown),
		),
	}

	if reg != nil {
		opts = append(opts, plume.WithMetrics(observability.NewMetrics(reg)))
	}

	if cfg.ClientBook != "" {
		repo, err := yamlclients.Open(cfg.ClientBook, norm)
		if err != nil {
			return nil, fmt.Errorf("opening client book: %w", err)
		}
		opts = append(opts, plume.WithClientRepository(repo))
	}

	if cfg.Redis.Addr != "" {
		rdb := backend.NewClient(&backend.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		opts = append(opts,
			plume.WithContextStore(redis.NewFromClient(rdb)),
			plume.WithLocker(redis.NewLocker(rdb, "plume:session:")),
		)
	}

	return plume.New(cfg.TemplatesDir, opts...), nil
}
