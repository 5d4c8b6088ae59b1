package models

import "github.com/shopspring/decimal"

// EventFeatures is the feature breakdown shown by the dashboard
type EventFeatures struct {
	Type              int     `json:"type"`
	PriorTransactions int     `json:"prior_transactions"`
	RiskScore         float64 `json:"risk_score"`
	Hour              int     `json:"hour"`
	TotalAmount       float64 `json:"total_amount"`
	AvgAmount         float64 `json:"avg_amount"`
}

// TransactionEvent is the JSON shape served over HTTP, SSE and the sinks.
// Prediction and FraudProbability are null when the classifier was unavailable.
type TransactionEvent struct {
	ID               string        `json:"id"`
	Source           string        `json:"source"`
	Target           string        `json:"target"`
	SourceLatitude   float64       `json:"source_latitude"`
	SourceLongitude  float64       `json:"source_longitude"`
	TargetLatitude   float64       `json:"target_latitude"`
	TargetLongitude  float64       `json:"target_longitude"`
	SourceRegion     string        `json:"source_region"`
	TargetRegion     string        `json:"target_region"`
	DistanceKm       float64       `json:"distance_km"`
	Amount           float64       `json:"amount"`
	IsFraud          bool          `json:"is_fraud"`
	Prediction       *bool         `json:"prediction"`
	FraudProbability *float64      `json:"fraud_probability"`
	Status           Status        `json:"status"`
	Type             string        `json:"type"`
	Timestamp        int64         `json:"timestamp"`
	Features         EventFeatures `json:"features"`
}

// NewEvent converts a scored transaction to its wire representation
func NewEvent(tx ScoredTransaction) TransactionEvent {
	r := tx.Record
	f := r.Features

	return TransactionEvent{
		ID:               tx.ID,
		Source:           r.SourceAccount,
		Target:           r.DestinationAccount,
		SourceLatitude:   r.Source.Lat,
		SourceLongitude:  r.Source.Lon,
		TargetLatitude:   r.Destination.Lat,
		TargetLongitude:  r.Destination.Lon,
		SourceRegion:     r.SourceRegion,
		TargetRegion:     r.DestinationRegion,
		DistanceKm:       round(r.DistanceKm, 1),
		Amount:           round(f.Amount(), 2),
		IsFraud:          r.IsFraud,
		Prediction:       tx.Score.Prediction,
		FraudProbability: tx.Score.FraudProbability,
		Status:           tx.Status,
		Type:             "transaction",
		Timestamp:        tx.Timestamp.UnixMilli(),
		Features: EventFeatures{
			Type:              f.TxType(),
			PriorTransactions: f.PriorTxCount(),
			RiskScore:         f.RiskScore(),
			Hour:              f.Hour(),
			TotalAmount:       round(f.TotalAmount(), 2),
			AvgAmount:         round(f.AvgAmount(), 2),
		},
	}
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
