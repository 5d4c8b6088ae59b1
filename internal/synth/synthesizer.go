// Package synth draws class labels and class-conditioned feature vectors for
// synthetic transactions.
package synth

import (
	"math"
	"math/rand/v2"

	"github.com/Alias1177/FraudStream/models"
)

// Synthesizer is immutable after New and safe for concurrent use as long as
// each goroutine passes its own *rand.Rand.
type Synthesizer struct {
	cfg Config
}

// New validates the configuration and builds a Synthesizer
func New(cfg Config) (*Synthesizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	// Hour sets are copied so later edits by the caller cannot leak in.
	cfg.Fraud.Hours = append([]int(nil), cfg.Fraud.Hours...)
	cfg.Legit.Hours = append([]int(nil), cfg.Legit.Hours...)
	return &Synthesizer{cfg: cfg}, nil
}

// Config returns a copy of the active configuration
func (s *Synthesizer) Config() Config {
	return s.cfg
}

// Draw synthesizes a record using the configured fraud prior
func (s *Synthesizer) Draw(rng *rand.Rand, classOverride *bool) (bool, models.FeatureVector) {
	return s.Synthesize(rng, classOverride, s.cfg.FraudPrior)
}

// Synthesize picks the label (classOverride wins, otherwise a Bernoulli trial
// with fraudPrior) and draws the feature vector conditioned on it.
func (s *Synthesizer) Synthesize(rng *rand.Rand, classOverride *bool, fraudPrior float64) (bool, models.FeatureVector) {
	var isFraud bool
	if classOverride != nil {
		isFraud = *classOverride
	} else {
		isFraud = rng.Float64() < fraudPrior
	}

	profile := s.cfg.Legit
	if isFraud {
		profile = s.cfg.Fraud
	}

	return isFraud, drawFeatures(rng, profile)
}

func drawFeatures(rng *rand.Rand, p ClassProfile) models.FeatureVector {
	amount := uniform(rng, p.Amount)
	txType := rng.IntN(2)
	priorTx := uniformInt(rng, p.PriorTxCount)
	risk := math.Max(0, math.Min(1, uniform(rng, p.RiskScore)))
	hour := drawHour(rng, p)
	total := amount * uniform(rng, p.Multiplier)
	avg := total / float64(max(1, priorTx))

	var f models.FeatureVector
	f[models.FeatureAmount] = amount
	f[models.FeatureTxType] = float64(txType)
	f[models.FeaturePriorTxCount] = float64(priorTx)
	f[models.FeatureRiskScore] = risk
	f[models.FeatureHour] = float64(hour)
	f[models.FeatureTotalAmount] = total
	f[models.FeatureAvgAmount] = avg
	return f
}

func drawHour(rng *rand.Rand, p ClassProfile) int {
	if len(p.Hours) > 0 {
		return p.Hours[rng.IntN(len(p.Hours))]
	}
	return uniformInt(rng, p.HourRange)
}

func uniform(rng *rand.Rand, r Range) float64 {
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

func uniformInt(rng *rand.Rand, r IntRange) int {
	return r.Min + rng.IntN(r.Max-r.Min+1)
}
