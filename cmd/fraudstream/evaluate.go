package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Alias1177/FraudStream/internal/evaluate"
	"github.com/Alias1177/FraudStream/internal/generator"
)

var (
	evaluateSamples int
	evaluateJSON    bool
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Measure the classifier against synthesized ground truth",
	Long: `Synthesize a sample, score it and report the confusion matrix,
accuracy, precision, recall and F1.

Examples:
  MODEL_PATH=configs/fraud_model.yaml fraudstream evaluate -n 10000
  MODEL_URL=http://localhost:8000 fraudstream evaluate --json`,
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().IntVarP(&evaluateSamples, "samples", "n", 5000, "sample size")
	evaluateCmd.Flags().BoolVar(&evaluateJSON, "json", false, "print the report as JSON")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	gen, err := buildGenerator(cfg)
	if err != nil {
		return err
	}
	if !gen.Scorer().Available() {
		return fmt.Errorf("no classifier configured: set MODEL_PATH or MODEL_URL")
	}

	report, err := evaluate.Run(cmd.Context(), gen, randFactory(cfg).New(), evaluateSamples, generator.Options{})
	if err != nil {
		return err
	}

	if evaluateJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	fmt.Print(evaluate.FormatReport(report))
	return nil
}
