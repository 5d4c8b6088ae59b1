package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/FraudStream/internal/geo"
	"github.com/Alias1177/FraudStream/internal/scoring"
	"github.com/Alias1177/FraudStream/internal/synth"
	"github.com/Alias1177/FraudStream/models"
)

// Config holds all application configuration. Each field is read from the
// upper snake case environment variable of the same name.
type Config struct {
	LogLevel  string
	LogFormat string

	HTTPAddr     string
	CORSOrigins  []string
	BatchSize    int
	MaxBatchSize int

	FraudPrior             float64
	StreamFraudPrior       float64
	CrossBorderProbability float64
	PerturbProbability     float64
	PerturbMode            string
	MirrorFactor           float64
	MinSeparationDeg       float64
	MaxPairAttempts        int
	HotThreshold           float64

	StreamMinInterval time.Duration
	StreamMaxInterval time.Duration

	// RNGSeed is only honoured when Seeded is true. Seeded is set when RNG_SEED is present.
	RNGSeed uint64
	Seeded  bool

	ModelPath    string
	ModelURL     string
	ModelTimeout time.Duration
	ModelRPS     int

	KafkaBroker      string
	KafkaTopic       string
	RedisAddrs       []string
	RedisChannel     string
	TelegramBotToken string
	TelegramChatID   int64

	ConfigFile string

	// Synthesis and Regions come from CONFIG_FILE when set, defaults otherwise
	Synthesis synth.Config
	Regions   []geo.Region
}

var defaultCORSOrigins = []string{
	"http://localhost:5173",
	"http://localhost:5174",
	"http://localhost:3000",
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	var cfg Config
	env := &envReader{}

	cfg.LogLevel = env.getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = env.getEnv("LOG_FORMAT", "console")
	cfg.HTTPAddr = env.getEnv("HTTP_ADDR", ":5000")
	cfg.CORSOrigins = env.getEnvList("CORS_ORIGINS", defaultCORSOrigins)
	cfg.BatchSize = env.getEnvInt("BATCH_SIZE", 20)
	cfg.MaxBatchSize = env.getEnvInt("MAX_BATCH_SIZE", 500)

	geoDefaults := geo.DefaultConfig()
	cfg.FraudPrior = env.getEnvFloat("FRAUD_PRIOR", synth.DefaultConfig().FraudPrior)
	cfg.StreamFraudPrior = env.getEnvFloat("STREAM_FRAUD_PRIOR", 0.33)
	cfg.CrossBorderProbability = env.getEnvFloat("CROSS_BORDER_PROBABILITY", geoDefaults.CrossBorderProbability)
	cfg.PerturbProbability = env.getEnvFloat("PERTURB_PROBABILITY", geoDefaults.PerturbProbability)
	cfg.PerturbMode = env.getEnv("PERTURB_MODE", string(geoDefaults.PerturbMode))
	cfg.MirrorFactor = env.getEnvFloat("MIRROR_FACTOR", geoDefaults.MirrorFactor)
	cfg.MinSeparationDeg = env.getEnvFloat("MIN_SEPARATION_DEG", geoDefaults.MinSeparation)
	cfg.MaxPairAttempts = env.getEnvInt("MAX_PAIR_ATTEMPTS", geoDefaults.MaxAttempts)
	cfg.HotThreshold = env.getEnvFloat("HOT_THRESHOLD", scoring.DefaultHotThreshold)

	cfg.StreamMinInterval = env.getEnvDuration("STREAM_MIN_INTERVAL", 500*time.Millisecond)
	cfg.StreamMaxInterval = env.getEnvDuration("STREAM_MAX_INTERVAL", 2500*time.Millisecond)
	cfg.RNGSeed, cfg.Seeded = env.getEnvUint64("RNG_SEED")

	cfg.ModelPath = os.Getenv("MODEL_PATH")
	cfg.ModelURL = os.Getenv("MODEL_URL")
	cfg.ModelTimeout = env.getEnvDuration("MODEL_TIMEOUT", 5*time.Second)
	cfg.ModelRPS = env.getEnvInt("MODEL_RPS", 50)

	cfg.KafkaBroker = os.Getenv("KAFKA_BROKER")
	cfg.KafkaTopic = env.getEnv("KAFKA_TOPIC", "scored_transactions")
	cfg.RedisAddrs = env.getEnvList("REDIS_ADDRS", nil)
	cfg.RedisChannel = env.getEnv("REDIS_CHANNEL", "transactions")
	cfg.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.TelegramChatID = env.getEnvInt64("TELEGRAM_CHAT_ID", 0)

	if env.err != nil {
		return nil, env.err
	}

	cfg.Synthesis = synth.DefaultConfig()
	cfg.Regions = geo.DefaultRegions()
	cfg.ConfigFile = os.Getenv("CONFIG_FILE")
	if cfg.ConfigFile != "" {
		if err := loadFile(cfg.ConfigFile, &cfg); err != nil {
			return nil, err
		}
		log.Info().Str("path", cfg.ConfigFile).Msg("Loaded config file")
	}
	cfg.Synthesis.FraudPrior = cfg.FraudPrior

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every setting that does not belong to a component's own validation
func (c *Config) Validate() error {
	switch c.LogFormat {
	case "console", "json":
	default:
		return models.NewConfigError("log_format", "must be console or json, got %q", c.LogFormat)
	}
	if c.HTTPAddr == "" {
		return models.NewConfigError("http_addr", "must not be empty")
	}
	for _, o := range c.CORSOrigins {
		if o != "*" && !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			return models.NewConfigError("cors_origins", "origin %q must be * or start with http:// or https://", o)
		}
	}
	if c.BatchSize < 1 {
		return models.NewConfigError("batch_size", "must be >= 1, got %d", c.BatchSize)
	}
	if c.MaxBatchSize < c.BatchSize {
		return models.NewConfigError("max_batch_size", "must be >= batch_size (%d), got %d", c.BatchSize, c.MaxBatchSize)
	}
	if !(c.StreamFraudPrior >= 0 && c.StreamFraudPrior <= 1) {
		return models.NewConfigError("stream_fraud_prior", "must be in [0,1], got %v", c.StreamFraudPrior)
	}
	if !(c.HotThreshold >= 0 && c.HotThreshold <= 1) {
		return models.NewConfigError("hot_threshold", "must be in [0,1], got %v", c.HotThreshold)
	}
	if c.StreamMinInterval < 0 {
		return models.NewConfigError("stream_min_interval", "must not be negative, got %s", c.StreamMinInterval)
	}
	if c.StreamMaxInterval < c.StreamMinInterval {
		return models.NewConfigError("stream_max_interval", "must be >= stream_min_interval (%s), got %s", c.StreamMinInterval, c.StreamMaxInterval)
	}
	if c.ModelPath != "" && c.ModelURL != "" {
		return models.NewConfigError("model", "set MODEL_PATH or MODEL_URL, not both")
	}
	if c.ModelTimeout <= 0 {
		return models.NewConfigError("model_timeout", "must be positive, got %s", c.ModelTimeout)
	}
	if c.ModelRPS < 1 {
		return models.NewConfigError("model_rps", "must be >= 1, got %d", c.ModelRPS)
	}
	if c.KafkaBroker != "" && c.KafkaTopic == "" {
		return models.NewConfigError("kafka_topic", "must not be empty when KAFKA_BROKER is set")
	}
	if len(c.RedisAddrs) > 0 && c.RedisChannel == "" {
		return models.NewConfigError("redis_channel", "must not be empty when REDIS_ADDRS is set")
	}
	if c.TelegramBotToken != "" && c.TelegramChatID == 0 {
		return models.NewConfigError("telegram_chat_id", "required when TELEGRAM_BOT_TOKEN is set")
	}

	if err := c.Synthesis.Validate(); err != nil {
		return err
	}
	return c.Geo().Validate()
}

// Geo returns the pairing configuration
func (c *Config) Geo() geo.Config {
	g := geo.DefaultConfig()
	g.CrossBorderProbability = c.CrossBorderProbability
	g.PerturbProbability = c.PerturbProbability
	g.PerturbMode = geo.PerturbMode(c.PerturbMode)
	g.MirrorFactor = c.MirrorFactor
	g.MinSeparation = c.MinSeparationDeg
	g.MaxAttempts = c.MaxPairAttempts
	return g
}

// envReader reads typed environment variables, keeping the first parse error
type envReader struct {
	err error
}

func (r *envReader) fail(key, value, kind string) {
	if r.err == nil {
		r.err = models.NewConfigError(strings.ToLower(key), "%q is not a valid %s", value, kind)
	}
}

func (r *envReader) getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (r *envReader) getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		r.fail(key, value, "integer")
		return defaultValue
	}
	return intValue
}

func (r *envReader) getEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		r.fail(key, value, "integer")
		return defaultValue
	}
	return intValue
}

func (r *envReader) getEnvUint64(key string) (uint64, bool) {
	value := os.Getenv(key)
	if value == "" {
		return 0, false
	}
	v, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		r.fail(key, value, "unsigned integer")
		return 0, false
	}
	return v, true
}

func (r *envReader) getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		r.fail(key, value, "number")
		return defaultValue
	}
	return floatValue
}

func (r *envReader) getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		r.fail(key, value, "duration")
		return defaultValue
	}
	return d
}

func (r *envReader) getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (c *Config) String() string {
	classifier := "none"
	switch {
	case c.ModelPath != "":
		classifier = "file:" + c.ModelPath
	case c.ModelURL != "":
		classifier = "remote:" + c.ModelURL
	}
	return fmt.Sprintf("addr=%s classifier=%s fraud_prior=%.2f stream_prior=%.2f regions=%d",
		c.HTTPAddr, classifier, c.FraudPrior, c.StreamFraudPrior, len(c.Regions))
}
