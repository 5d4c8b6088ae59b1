// Package evaluate measures how well the classifier separates synthesized
// fraud from legitimate traffic.
package evaluate

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/Alias1177/FraudStream/internal/generator"
	"github.com/Alias1177/FraudStream/models"
)

// Report is a confusion matrix plus summary statistics over a sample
type Report struct {
	Samples  int `json:"samples"`
	Scored   int `json:"scored"`
	Unscored int `json:"unscored"`

	TruePositives  int `json:"true_positives"`
	FalsePositives int `json:"false_positives"`
	TrueNegatives  int `json:"true_negatives"`
	FalseNegatives int `json:"false_negatives"`

	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`

	FraudRate            float64               `json:"fraud_rate"`
	MeanAmountFraud      float64               `json:"mean_amount_fraud"`
	MeanAmountLegit      float64               `json:"mean_amount_legit"`
	MeanProbabilityFraud float64               `json:"mean_probability_fraud"`
	MeanProbabilityLegit float64               `json:"mean_probability_legit"`
	StatusCounts         map[models.Status]int `json:"status_counts"`
}

// Evaluate builds a report from already scored transactions. Only records
// with a prediction enter the confusion matrix.
func Evaluate(txs []models.ScoredTransaction) *Report {
	r := &Report{
		Samples:      len(txs),
		StatusCounts: make(map[models.Status]int),
	}
	if len(txs) == 0 {
		return r
	}

	var fraud, legit int
	var amountFraud, amountLegit float64
	var probFraud, probLegit float64
	var probFraudN, probLegitN int

	for _, tx := range txs {
		r.StatusCounts[tx.Status]++
		amount := tx.Record.Features.Amount()

		if tx.Record.IsFraud {
			fraud++
			amountFraud += amount
		} else {
			legit++
			amountLegit += amount
		}

		if p := tx.Score.FraudProbability; p != nil {
			if tx.Record.IsFraud {
				probFraud += *p
				probFraudN++
			} else {
				probLegit += *p
				probLegitN++
			}
		}

		if tx.Score.Prediction == nil {
			r.Unscored++
			continue
		}
		r.Scored++

		switch predicted := *tx.Score.Prediction; {
		case predicted && tx.Record.IsFraud:
			r.TruePositives++
		case predicted && !tx.Record.IsFraud:
			r.FalsePositives++
		case !predicted && !tx.Record.IsFraud:
			r.TrueNegatives++
		default:
			r.FalseNegatives++
		}
	}

	r.FraudRate = ratio(fraud, r.Samples)
	r.MeanAmountFraud = mean(amountFraud, fraud)
	r.MeanAmountLegit = mean(amountLegit, legit)
	r.MeanProbabilityFraud = mean(probFraud, probFraudN)
	r.MeanProbabilityLegit = mean(probLegit, probLegitN)

	r.Accuracy = ratio(r.TruePositives+r.TrueNegatives, r.Scored)
	r.Precision = ratio(r.TruePositives, r.TruePositives+r.FalsePositives)
	r.Recall = ratio(r.TruePositives, r.TruePositives+r.FalseNegatives)
	if r.Precision+r.Recall > 0 {
		r.F1 = 2 * r.Precision * r.Recall / (r.Precision + r.Recall)
	}

	return r
}

// Run generates n transactions and evaluates them. An unavailable
// classifier is not an error here; the report then has no scored records.
func Run(ctx context.Context, g *generator.Generator, rng *rand.Rand, n int, opts generator.Options) (*Report, error) {
	if n <= 0 {
		return nil, fmt.Errorf("sample size must be positive, got %d", n)
	}
	txs, err := g.Batch(ctx, rng, n, opts)
	if err != nil && !errors.Is(err, models.ErrClassifierUnavailable) {
		return nil, err
	}
	return Evaluate(txs), nil
}

// FormatReport renders a report for the terminal
func FormatReport(r *Report) string {
	var b strings.Builder

	b.WriteString("Classifier Evaluation\n")
	b.WriteString("=====================\n\n")

	fmt.Fprintf(&b, "Samples:    %d (scored %d, unscored %d)\n", r.Samples, r.Scored, r.Unscored)
	fmt.Fprintf(&b, "Fraud rate: %.2f%%\n\n", r.FraudRate*100)

	b.WriteString("Confusion matrix (rows = actual, columns = predicted)\n")
	fmt.Fprintf(&b, "%-8s %8s %8s\n", "", "fraud", "legit")
	fmt.Fprintf(&b, "%-8s %8d %8d\n", "fraud", r.TruePositives, r.FalseNegatives)
	fmt.Fprintf(&b, "%-8s %8d %8d\n\n", "legit", r.FalsePositives, r.TrueNegatives)

	fmt.Fprintf(&b, "Accuracy:  %.4f\n", r.Accuracy)
	fmt.Fprintf(&b, "Precision: %.4f\n", r.Precision)
	fmt.Fprintf(&b, "Recall:    %.4f\n", r.Recall)
	fmt.Fprintf(&b, "F1:        %.4f\n\n", r.F1)

	fmt.Fprintf(&b, "Mean amount:      fraud $%.2f, legit $%.2f\n", r.MeanAmountFraud, r.MeanAmountLegit)
	fmt.Fprintf(&b, "Mean probability: fraud %.3f, legit %.3f\n\n", r.MeanProbabilityFraud, r.MeanProbabilityLegit)

	b.WriteString("Status counts:\n")
	statuses := make([]string, 0, len(r.StatusCounts))
	for s := range r.StatusCounts {
		statuses = append(statuses, string(s))
	}
	sort.Strings(statuses)
	for _, s := range statuses {
		fmt.Fprintf(&b, "  %-14s %d\n", s, r.StatusCounts[models.Status(s)])
	}

	return b.String()
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func mean(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
