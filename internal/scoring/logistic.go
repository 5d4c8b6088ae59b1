package scoring

import (
	"context"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Alias1177/FraudStream/models"
)

// LogisticModel is a standardized logistic regression exported from the
// training pipeline: p = sigmoid(intercept + Σ coef_i * (x_i - mean_i) / scale_i)
type LogisticModel struct {
	Name         string    `yaml:"name"`
	Threshold    float64   `yaml:"threshold"`
	Intercept    float64   `yaml:"intercept"`
	Coefficients []float64 `yaml:"coefficients"`
	Scaler       struct {
		Mean  []float64 `yaml:"mean"`
		Scale []float64 `yaml:"scale"`
	} `yaml:"scaler"`
}

// LoadLogisticModel reads and validates a model artifact from a YAML file
func LoadLogisticModel(path string) (*LogisticModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model file: %w", err)
	}
	return ParseLogisticModel(data)
}

// ParseLogisticModel decodes and validates a YAML model artifact
func ParseLogisticModel(data []byte) (*LogisticModel, error) {
	m := &LogisticModel{Threshold: 0.5}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parsing model: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *LogisticModel) validate() error {
	if len(m.Coefficients) != models.FeatureCount {
		return fmt.Errorf("model has %d coefficients, want %d", len(m.Coefficients), models.FeatureCount)
	}
	if m.Scaler.Mean == nil {
		m.Scaler.Mean = make([]float64, models.FeatureCount)
	}
	if m.Scaler.Scale == nil {
		m.Scaler.Scale = []float64{1, 1, 1, 1, 1, 1, 1}
	}
	if len(m.Scaler.Mean) != models.FeatureCount || len(m.Scaler.Scale) != models.FeatureCount {
		return fmt.Errorf("scaler must have %d means and scales", models.FeatureCount)
	}
	for i := 0; i < models.FeatureCount; i++ {
		if m.Scaler.Scale[i] == 0 {
			return fmt.Errorf("scaler scale %d is zero", i)
		}
		for _, v := range []float64{m.Coefficients[i], m.Scaler.Mean[i], m.Scaler.Scale[i]} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("model parameter %d is not finite", i)
			}
		}
	}
	if math.IsNaN(m.Intercept) || math.IsInf(m.Intercept, 0) {
		return fmt.Errorf("model intercept is not finite")
	}
	if m.Threshold < 0 || m.Threshold > 1 {
		return fmt.Errorf("model threshold %v outside [0,1]", m.Threshold)
	}
	return nil
}

// PredictProbability returns the fraud probability for features
func (m *LogisticModel) PredictProbability(_ context.Context, features models.FeatureVector) (float64, error) {
	z := m.Intercept
	for i, x := range features {
		z += m.Coefficients[i] * (x - m.Scaler.Mean[i]) / m.Scaler.Scale[i]
	}
	return 1 / (1 + math.Exp(-z)), nil
}

// Predict labels features as fraud when the probability reaches the model threshold
func (m *LogisticModel) Predict(ctx context.Context, features models.FeatureVector) (bool, error) {
	p, err := m.PredictProbability(ctx, features)
	if err != nil {
		return false, err
	}
	return p >= m.Threshold, nil
}
