package synth

import (
	"fmt"
	"math"

	"github.com/Alias1177/FraudStream/models"
)

// Range is a closed float interval sampled uniformly
type Range struct {
	Min float64 `mapstructure:"min" yaml:"min"`
	Max float64 `mapstructure:"max" yaml:"max"`
}

// IntRange is a closed integer interval sampled uniformly
type IntRange struct {
	Min int `mapstructure:"min" yaml:"min"`
	Max int `mapstructure:"max" yaml:"max"`
}

// ClassProfile holds the feature distributions for one class.
// When Hours is non-empty the hour is picked from it, otherwise from HourRange.
type ClassProfile struct {
	Amount       Range    `mapstructure:"amount" yaml:"amount"`
	RiskScore    Range    `mapstructure:"risk_score" yaml:"risk_score"`
	PriorTxCount IntRange `mapstructure:"prior_tx_count" yaml:"prior_tx_count"`
	Multiplier   Range    `mapstructure:"multiplier" yaml:"multiplier"`
	Hours        []int    `mapstructure:"hours" yaml:"hours"`
	HourRange    IntRange `mapstructure:"hour_range" yaml:"hour_range"`
}

// Config holds everything the synthesizer needs
type Config struct {
	FraudPrior float64      `mapstructure:"fraud_prior" yaml:"fraud_prior"`
	Fraud      ClassProfile `mapstructure:"fraud" yaml:"fraud"`
	Legit      ClassProfile `mapstructure:"legit" yaml:"legit"`
}

// DefaultConfig returns the distributions used by the demo dashboard
func DefaultConfig() Config {
	return Config{
		FraudPrior: 0.5,
		Fraud: ClassProfile{
			Amount:       Range{Min: 500, Max: 5000},
			RiskScore:    Range{Min: 0.7, Max: 1.0},
			PriorTxCount: IntRange{Min: 0, Max: 5},
			Multiplier:   Range{Min: 1.5, Max: 3.0},
			Hours:        []int{0, 1, 2, 3, 4, 23},
		},
		Legit: ClassProfile{
			Amount:       Range{Min: 10, Max: 500},
			RiskScore:    Range{Min: 0.0, Max: 0.3},
			PriorTxCount: IntRange{Min: 5, Max: 100},
			Multiplier:   Range{Min: 1.0, Max: 1.5},
			HourRange:    IntRange{Min: 8, Max: 20},
		},
	}
}

// Validate rejects settings that could produce invalid or non-finite records
func (c Config) Validate() error {
	if !finite(c.FraudPrior) || c.FraudPrior < 0 || c.FraudPrior > 1 {
		return models.NewConfigError("fraud_prior", "must be within [0,1], got %v", c.FraudPrior)
	}
	if err := c.Fraud.validate("fraud"); err != nil {
		return err
	}
	return c.Legit.validate("legit")
}

func (p ClassProfile) validate(class string) error {
	field := func(name string) string { return fmt.Sprintf("%s.%s", class, name) }

	if err := p.Amount.validate(field("amount")); err != nil {
		return err
	}
	if p.Amount.Min < 0 {
		return models.NewConfigError(field("amount"), "must not be negative")
	}
	if err := p.RiskScore.validate(field("risk_score")); err != nil {
		return err
	}
	if p.RiskScore.Min < 0 || p.RiskScore.Max > 1 {
		return models.NewConfigError(field("risk_score"), "must be within [0,1]")
	}
	if err := p.PriorTxCount.validate(field("prior_tx_count")); err != nil {
		return err
	}
	if p.PriorTxCount.Min < 0 {
		return models.NewConfigError(field("prior_tx_count"), "must not be negative")
	}
	if err := p.Multiplier.validate(field("multiplier")); err != nil {
		return err
	}
	if p.Multiplier.Min <= 0 {
		return models.NewConfigError(field("multiplier"), "must be positive")
	}
	if !finite(p.Amount.Max * p.Multiplier.Max) {
		return models.NewConfigError(field("multiplier"), "amount.max * multiplier.max overflows")
	}

	if len(p.Hours) > 0 {
		for _, h := range p.Hours {
			if h < 0 || h > 23 {
				return models.NewConfigError(field("hours"), "hour %d outside [0,23]", h)
			}
		}
		return nil
	}
	if err := p.HourRange.validate(field("hour_range")); err != nil {
		return err
	}
	if p.HourRange.Min < 0 || p.HourRange.Max > 23 {
		return models.NewConfigError(field("hour_range"), "must be within [0,23]")
	}
	return nil
}

func (r Range) validate(field string) error {
	if !finite(r.Min) || !finite(r.Max) {
		return models.NewConfigError(field, "bounds must be finite")
	}
	if r.Min > r.Max {
		return models.NewConfigError(field, "min %v greater than max %v", r.Min, r.Max)
	}
	return nil
}

func (r IntRange) validate(field string) error {
	if r.Min > r.Max {
		return models.NewConfigError(field, "min %d greater than max %d", r.Min, r.Max)
	}
	// the span is sampled with IntN(span+1)
	if uint(r.Max)-uint(r.Min) >= uint(math.MaxInt) {
		return models.NewConfigError(field, "span from %d to %d is too wide", r.Min, r.Max)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
