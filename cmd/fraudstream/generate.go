package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Alias1177/FraudStream/internal/generator"
	"github.com/Alias1177/FraudStream/models"
)

var (
	generateCount int
	generateFraud string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Print scored transactions as JSON lines",
	Long: `Generate transactions and write one JSON event per line to stdout.

Examples:
  fraudstream generate -n 100
  RNG_SEED=7 fraudstream generate -n 10 --fraud true`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().IntVarP(&generateCount, "count", "n", 20, "number of transactions")
	generateCmd.Flags().StringVar(&generateFraud, "fraud", "", "force the class: true or false")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if generateCount < 1 {
		return fmt.Errorf("--count must be positive, got %d", generateCount)
	}

	var opts generator.Options
	if generateFraud != "" {
		forced, err := strconv.ParseBool(generateFraud)
		if err != nil {
			return fmt.Errorf("--fraud must be true or false: %w", err)
		}
		opts.ClassOverride = &forced
	}

	gen, err := buildGenerator(cfg)
	if err != nil {
		return err
	}
	rng := randFactory(cfg).New()
	ctx := cmd.Context()

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()
	enc := json.NewEncoder(out)

	unscored := 0
	for i := 0; i < generateCount; i++ {
		tx, err := gen.Generate(ctx, rng, opts)
		if err != nil {
			if !errors.Is(err, models.ErrClassifierUnavailable) {
				return err
			}
			unscored++
		}
		if err := enc.Encode(models.NewEvent(tx)); err != nil {
			return fmt.Errorf("writing event: %w", err)
		}
	}

	if unscored > 0 {
		log.Warn().Int("unscored", unscored).Int("total", generateCount).Msg("Some transactions could not be scored")
	}
	return nil
}
