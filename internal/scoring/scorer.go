// Package scoring runs feature vectors through the injected classifier and
// turns the result into a review status.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/FraudStream/models"
)

// DefaultHotThreshold is the probability above which a legitimate-labelled
// transaction is flagged for review
const DefaultHotThreshold = 0.4

// Scorer wraps an optional classifier. A nil classifier means no model is loaded.
type Scorer struct {
	classifier   models.Classifier
	hotThreshold float64
	logger       zerolog.Logger
}

// NewScorer builds a Scorer. classifier may be nil.
func NewScorer(classifier models.Classifier, hotThreshold float64) (*Scorer, error) {
	if hotThreshold < 0 || hotThreshold > 1 || math.IsNaN(hotThreshold) {
		return nil, models.NewConfigError("hot_threshold", "must be within [0,1], got %v", hotThreshold)
	}
	return &Scorer{
		classifier:   classifier,
		hotThreshold: hotThreshold,
		logger:       log.With().Str("component", "scorer").Logger(),
	}, nil
}

// Available reports whether a classifier was injected
func (s *Scorer) Available() bool {
	return s.classifier != nil
}

// HotThreshold returns the review threshold in use
func (s *Scorer) HotThreshold() float64 {
	return s.hotThreshold
}

// Score asks the classifier for both a label and a probability. Whatever it
// manages to produce is returned; when it produces nothing the error wraps
// models.ErrClassifierUnavailable. Nothing is retried here.
func (s *Scorer) Score(ctx context.Context, features models.FeatureVector) (models.Score, error) {
	if s.classifier == nil {
		return models.Score{}, models.ErrClassifierUnavailable
	}
	if joint, ok := s.classifier.(models.ScoreClassifier); ok {
		return s.scoreJoint(ctx, joint, features)
	}

	var score models.Score

	prob, probErr := s.classifier.PredictProbability(ctx, features)
	if probErr == nil {
		if math.IsNaN(prob) || prob < 0 || prob > 1 {
			probErr = fmt.Errorf("probability %v outside [0,1]", prob)
		} else {
			score.FraudProbability = &prob
		}
	}

	pred, predErr := s.classifier.Predict(ctx, features)
	if predErr == nil {
		score.Prediction = &pred
	}

	if score.Available() {
		if probErr != nil || predErr != nil {
			s.logger.Debug().AnErr("probability_err", probErr).AnErr("predict_err", predErr).Msg("Partial classifier output")
		}
		return score, nil
	}

	return score, unavailable(errors.Join(probErr, predErr))
}

func (s *Scorer) scoreJoint(ctx context.Context, c models.ScoreClassifier, features models.FeatureVector) (models.Score, error) {
	score, err := c.Classify(ctx, features)
	if err != nil {
		return models.Score{}, unavailable(err)
	}
	if p := score.FraudProbability; p != nil && (math.IsNaN(*p) || *p < 0 || *p > 1) {
		s.logger.Debug().Float64("probability", *p).Msg("Dropping probability outside [0,1]")
		score.FraudProbability = nil
	}
	if !score.Available() {
		return models.Score{}, models.ErrClassifierUnavailable
	}
	return score, nil
}

// Status derives the review status for a record
func (s *Scorer) Status(isFraud bool, score models.Score) models.Status {
	return DeriveStatus(isFraud, score, s.hotThreshold)
}

// DeriveStatus applies the review policy: ground-truth fraud is always
// "fraud"; otherwise a probability above threshold is "hot_potential". Without
// a probability the predicted label decides, and with neither the record is
// "unscored".
func DeriveStatus(isFraud bool, score models.Score, threshold float64) models.Status {
	if isFraud {
		return models.StatusFraud
	}
	if score.FraudProbability != nil {
		if *score.FraudProbability > threshold {
			return models.StatusHotPotential
		}
		return models.StatusSafe
	}
	if score.Prediction != nil {
		if *score.Prediction {
			return models.StatusHotPotential
		}
		return models.StatusSafe
	}
	return models.StatusUnscored
}

func unavailable(err error) error {
	switch {
	case err == nil:
		return models.ErrClassifierUnavailable
	case errors.Is(err, models.ErrClassifierUnavailable):
		return err
	default:
		return fmt.Errorf("%w: %v", models.ErrClassifierUnavailable, err)
	}
}
