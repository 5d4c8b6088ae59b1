package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Alias1177/FraudStream/internal/stream"
	"github.com/Alias1177/FraudStream/internal/web"
)

var serveAddr string

// errStopped ends the errgroup when a component stops cleanly so the others follow
var errStopped = errors.New("stopped")

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the transaction API and the live stream",
	Long: `Start the HTTP server and the streaming loop.

Examples:
  fraudstream serve
  fraudstream serve --addr :8080
  MODEL_PATH=configs/fraud_model.yaml fraudstream serve`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides HTTP_ADDR)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if serveAddr != "" {
		cfg.HTTPAddr = serveAddr
	}
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	gen, err := buildGenerator(cfg)
	if err != nil {
		return err
	}
	rngs := randFactory(cfg)

	sinks, err := buildSinks(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connecting sinks: %w", err)
	}
	defer func() {
		if err := sinks.Close(); err != nil {
			log.Error().Err(err).Msg("Closing sinks")
		}
	}()

	scheduler, err := stream.NewScheduler(cfg.StreamMinInterval, cfg.StreamMaxInterval)
	if err != nil {
		return err
	}
	hub := stream.NewHub(stream.DefaultSubscriberBuffer)

	streamOpts := stream.StreamerOptions{FraudPrior: &cfg.StreamFraudPrior}
	if sinks.Len() > 0 {
		streamOpts.Sink = sinks
	}
	streamer, err := stream.NewStreamer(gen, scheduler, hub, rngs.New(), streamOpts)
	if err != nil {
		return err
	}

	server := web.NewServer(gen, hub, rngs, web.Options{
		CORSOrigins:  cfg.CORSOrigins,
		BatchSize:    cfg.BatchSize,
		MaxBatchSize: cfg.MaxBatchSize,
		Heartbeat:    15 * time.Second,
	})

	log.Info().
		Str("addr", cfg.HTTPAddr).
		Bool("model_loaded", gen.Scorer().Available()).
		Int("sinks", sinks.Len()).
		Msg("Starting FraudStream")

	err = runAll(ctx, []component{
		{name: "streamer", run: streamer.Run},
		{name: "http server", run: func(ctx context.Context) error { return server.Run(ctx, cfg.HTTPAddr) }},
	})

	st := streamer.Stats()
	log.Info().
		Int64("generated", st.Generated).
		Int64("unscored", st.Unscored).
		Int64("sink_errors", st.SinkErrors).
		Msg("Shutdown complete")

	return err
}

type component struct {
	name string
	run  func(ctx context.Context) error
}

// runAll runs every component until one stops, then cancels the rest and
// returns the first real error.
func runAll(ctx context.Context, components []component) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, c := range components {
		g.Go(func() error {
			if err := c.run(gctx); err != nil {
				return fmt.Errorf("%s: %w", c.name, err)
			}
			return errStopped
		})
	}

	if err := g.Wait(); !errors.Is(err, errStopped) {
		return err
	}
	return nil
}
