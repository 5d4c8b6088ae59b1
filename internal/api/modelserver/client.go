package modelserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpClient "github.com/Alias1177/FraudStream/internal/platform/http"
	"github.com/Alias1177/FraudStream/models"
)

// Client calls a remote model server that hosts the fraud pipeline
type Client struct {
	baseURL    string
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new model server client
type ClientOptions struct {
	BaseURL         string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetries      int
	MaxRetryTimeout time.Duration
}

type predictRequest struct {
	Features []float64 `json:"features"`
}

type predictResponse struct {
	Prediction       *bool    `json:"prediction"`
	FraudProbability *float64 `json:"fraud_probability"`
	Error            string   `json:"error,omitempty"`
}

// NewClient creates a new model server client
func NewClient(options ClientOptions) *Client {
	httpOpts := httpClient.ClientOptions{
		Timeout:         options.RequestTimeout,
		RequestsPerSec:  options.RequestsPerSec,
		MaxRetries:      options.MaxRetries,
		MaxRetryTimeout: options.MaxRetryTimeout,
	}

	// Scoring sits on the streaming path, so keep retries short
	if httpOpts.Timeout == 0 {
		httpOpts.Timeout = 5 * time.Second
	}
	if httpOpts.MaxRetries == 0 {
		httpOpts.MaxRetries = 2
	}
	if httpOpts.MaxRetryTimeout == 0 {
		httpOpts.MaxRetryTimeout = 2 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(options.BaseURL, "/"),
		httpClient: httpClient.NewClient(httpOpts),
		logger:     log.With().Str("component", "modelserver_client").Logger(),
	}
}

// Predict returns the model's fraud label
func (c *Client) Predict(ctx context.Context, features models.FeatureVector) (bool, error) {
	resp, err := c.predict(ctx, features)
	if err != nil {
		return false, err
	}
	if resp.Prediction == nil {
		return false, fmt.Errorf("%w: response has no prediction", models.ErrClassifierUnavailable)
	}
	return *resp.Prediction, nil
}

// PredictProbability returns the model's fraud probability
func (c *Client) PredictProbability(ctx context.Context, features models.FeatureVector) (float64, error) {
	resp, err := c.predict(ctx, features)
	if err != nil {
		return 0, err
	}
	if resp.FraudProbability == nil {
		return 0, fmt.Errorf("%w: response has no fraud_probability", models.ErrClassifierUnavailable)
	}
	return *resp.FraudProbability, nil
}

// Classify returns the label and the probability from a single request
func (c *Client) Classify(ctx context.Context, features models.FeatureVector) (models.Score, error) {
	resp, err := c.predict(ctx, features)
	if err != nil {
		return models.Score{}, err
	}
	score := models.Score{Prediction: resp.Prediction, FraudProbability: resp.FraudProbability}
	if !score.Available() {
		return score, fmt.Errorf("%w: response has neither prediction nor fraud_probability", models.ErrClassifierUnavailable)
	}
	return score, nil
}

func (c *Client) predict(ctx context.Context, features models.FeatureVector) (*predictResponse, error) {
	body, err := json.Marshal(predictRequest{Features: features[:]})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	url := c.baseURL + "/predict"
	c.logger.Debug().Str("url", url).Msg("Scoring transaction")

	// Create a new request with context
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Model server request failed")
		return nil, fmt.Errorf("%w: %v", models.ErrClassifierUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response body: %v", models.ErrClassifierUnavailable, err)
	}

	var data predictResponse
	if err := json.Unmarshal(raw, &data); err != nil {
		c.logger.Error().Err(err).Str("response", string(raw)).Msg("Error parsing JSON")
		return nil, fmt.Errorf("%w: parsing JSON: %v", models.ErrClassifierUnavailable, err)
	}
	if data.Error != "" {
		return nil, fmt.Errorf("%w: %s", models.ErrClassifierUnavailable, data.Error)
	}

	return &data, nil
}
