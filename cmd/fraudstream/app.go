package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Alias1177/FraudStream/internal/api/modelserver"
	"github.com/Alias1177/FraudStream/internal/config"
	"github.com/Alias1177/FraudStream/internal/generator"
	"github.com/Alias1177/FraudStream/internal/geo"
	"github.com/Alias1177/FraudStream/internal/scoring"
	"github.com/Alias1177/FraudStream/internal/sink"
	"github.com/Alias1177/FraudStream/internal/synth"
	"github.com/Alias1177/FraudStream/models"
)

// buildClassifier returns nil when no model is configured
func buildClassifier(cfg *config.Config) (models.Classifier, error) {
	switch {
	case cfg.ModelPath != "":
		m, err := scoring.LoadLogisticModel(cfg.ModelPath)
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", cfg.ModelPath).Str("model", m.Name).Msg("Loaded classifier")
		return m, nil
	case cfg.ModelURL != "":
		log.Info().Str("url", cfg.ModelURL).Msg("Using remote classifier")
		return modelserver.NewClient(modelserver.ClientOptions{
			BaseURL:        cfg.ModelURL,
			RequestTimeout: cfg.ModelTimeout,
			RequestsPerSec: cfg.ModelRPS,
		}), nil
	default:
		log.Warn().Msg("No classifier configured, transactions will be unscored")
		return nil, nil
	}
}

func buildGenerator(cfg *config.Config) (*generator.Generator, error) {
	s, err := synth.New(cfg.Synthesis)
	if err != nil {
		return nil, err
	}
	catalog, err := geo.NewCatalog(cfg.Regions)
	if err != nil {
		return nil, err
	}
	pairer, err := geo.NewPairer(catalog, cfg.Geo())
	if err != nil {
		return nil, err
	}

	classifier, err := buildClassifier(cfg)
	if err != nil {
		return nil, fmt.Errorf("building classifier: %w", err)
	}
	scorer, err := scoring.NewScorer(classifier, cfg.HotThreshold)
	if err != nil {
		return nil, err
	}

	return generator.New(s, pairer, scorer)
}

func randFactory(cfg *config.Config) *generator.RandFactory {
	if cfg.Seeded {
		log.Info().Uint64("seed", cfg.RNGSeed).Msg("Using deterministic random source")
		return generator.NewSeededRandFactory(cfg.RNGSeed)
	}
	return generator.NewRandFactory()
}

// buildSinks connects every configured sink. Already opened sinks are
// closed when a later one fails.
func buildSinks(ctx context.Context, cfg *config.Config) (*sink.Multi, error) {
	var publishers []sink.Publisher
	fail := func(err error) (*sink.Multi, error) {
		_ = sink.NewMulti(publishers...).Close()
		return nil, err
	}

	if cfg.KafkaBroker != "" {
		k, err := sink.NewKafkaSink(cfg.KafkaBroker, cfg.KafkaTopic)
		if err != nil {
			return fail(err)
		}
		publishers = append(publishers, k)
	}

	if len(cfg.RedisAddrs) > 0 {
		r, err := sink.NewRedisSink(ctx, sink.RedisOptions{Addrs: cfg.RedisAddrs, Channel: cfg.RedisChannel})
		if err != nil {
			return fail(err)
		}
		publishers = append(publishers, r)
	}

	if cfg.TelegramBotToken != "" {
		bot, err := sink.NewTelegramBot(cfg.TelegramBotToken)
		if err != nil {
			return fail(err)
		}
		log.Info().Str("bot", bot.Self.UserName).Msg("Telegram alerts enabled")
		publishers = append(publishers, sink.NewTelegramSink(bot, sink.TelegramOptions{ChatID: cfg.TelegramChatID}))
	}

	return sink.NewMulti(publishers...), nil
}
