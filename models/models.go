package models

import (
	"math"
	"time"
)

// Positions inside a FeatureVector. The classifier consumes the vector
// positionally, so the order must never change.
const (
	FeatureAmount = iota
	FeatureTxType
	FeaturePriorTxCount
	FeatureRiskScore
	FeatureHour
	FeatureTotalAmount
	FeatureAvgAmount

	FeatureCount
)

// FeatureVector is the fixed-order classifier input:
// [amount, txType, priorTxCount, riskScore, hour, totalAmount, avgAmount]
type FeatureVector [FeatureCount]float64

func (f FeatureVector) Amount() float64      { return f[FeatureAmount] }
func (f FeatureVector) TxType() int          { return int(f[FeatureTxType]) }
func (f FeatureVector) PriorTxCount() int    { return int(f[FeaturePriorTxCount]) }
func (f FeatureVector) RiskScore() float64   { return f[FeatureRiskScore] }
func (f FeatureVector) Hour() int            { return int(f[FeatureHour]) }
func (f FeatureVector) TotalAmount() float64 { return f[FeatureTotalAmount] }
func (f FeatureVector) AvgAmount() float64   { return f[FeatureAvgAmount] }

// Finite reports whether every field is a finite number
func (f FeatureVector) Finite() bool {
	for _, v := range f {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Coordinate is a WGS84 point in degrees
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Clamp returns the coordinate forced into the valid latitude/longitude ranges
func (c Coordinate) Clamp() Coordinate {
	return Coordinate{
		Lat: math.Max(-90, math.Min(90, c.Lat)),
		Lon: math.Max(-180, math.Min(180, c.Lon)),
	}
}

// Valid reports whether the coordinate lies inside WGS84 ranges
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// TransactionRecord is one synthesized transaction before scoring
type TransactionRecord struct {
	IsFraud  bool
	Features FeatureVector

	Source            Coordinate
	Destination       Coordinate
	SourceRegion      string
	DestinationRegion string
	// Perturbed is set when the destination was replaced by a long-haul override
	Perturbed  bool
	DistanceKm float64

	SourceAccount      string
	DestinationAccount string
}

// Score holds whatever the classifier produced. A nil field was not produced.
type Score struct {
	Prediction       *bool
	FraudProbability *float64
}

// Available reports whether the classifier produced anything at all
func (s Score) Available() bool {
	return s.Prediction != nil || s.FraudProbability != nil
}

// Status is the review classification of a scored transaction
type Status string

const (
	StatusFraud        Status = "fraud"
	StatusHotPotential Status = "hot_potential"
	StatusSafe         Status = "safe"
	StatusUnscored     Status = "unscored"
)

// ScoredTransaction is a record after it went through the classifier
type ScoredTransaction struct {
	ID        string
	Timestamp time.Time
	Record    TransactionRecord
	Score     Score
	Status    Status
}
