package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/Alias1177/FraudStream/internal/geo"
	"github.com/Alias1177/FraudStream/internal/synth"
)

// loadFile applies the optional YAML overrides. A class profile or region
// list present in the file replaces the default wholesale.
func loadFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("config file: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	if v.IsSet("synthesis.fraud_prior") && os.Getenv("FRAUD_PRIOR") == "" {
		cfg.FraudPrior = v.GetFloat64("synthesis.fraud_prior")
	}
	for key, profile := range map[string]*synth.ClassProfile{
		"synthesis.fraud": &cfg.Synthesis.Fraud,
		"synthesis.legit": &cfg.Synthesis.Legit,
	} {
		if !v.IsSet(key) {
			continue
		}
		var p synth.ClassProfile
		if err := v.UnmarshalKey(key, &p); err != nil {
			return fmt.Errorf("decoding %s: %w", key, err)
		}
		*profile = p
	}

	if v.IsSet("regions") {
		var regions []geo.Region
		if err := v.UnmarshalKey("regions", &regions); err != nil {
			return fmt.Errorf("decoding regions: %w", err)
		}
		cfg.Regions = regions
	}

	return nil
}
