package models

import "context"

// Classifier is the pre-trained fraud model. Implementations return
// ErrClassifierUnavailable (possibly wrapped) when no model is loaded.
//
//go:generate mockgen -destination=../internal/scoring/mocks/mock_classifier.go -package=mocks -source=interfaces.go
type Classifier interface {
	Predict(ctx context.Context, features FeatureVector) (bool, error)
	PredictProbability(ctx context.Context, features FeatureVector) (float64, error)
}

// ScoreClassifier is implemented by classifiers that produce the label and
// the probability in one call. Either field of the returned Score may be nil.
type ScoreClassifier interface {
	Classifier
	Classify(ctx context.Context, features FeatureVector) (Score, error)
}
