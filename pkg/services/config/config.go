// Package config loads the application configuration from a yaml file with
// environment overrides. Every threshold and keyword list the checks use is
// overridable here; the defaults match the built-in rule settings.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/de-tools/claim-audit/pkg/services/outlier"
	"github.com/de-tools/claim-audit/pkg/services/quality"
	"github.com/de-tools/claim-audit/pkg/services/rules"
	"github.com/de-tools/claim-audit/pkg/services/semantic"
)

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type Rules struct {
	HighValueThreshold float64  `mapstructure:"high_value_threshold"`
	ProformaLower      float64  `mapstructure:"proforma_lower"`
	ProformaUpper      float64  `mapstructure:"proforma_upper"`
	DiscountKeywords   []string `mapstructure:"discount_keywords"`
	TopErrorSources    int      `mapstructure:"top_error_sources"`
}

type Outlier struct {
	RatioThreshold float64 `mapstructure:"ratio_threshold"`
}

type Semantic struct {
	Enabled         bool    `mapstructure:"enabled"`
	APIKey          string  `mapstructure:"api_key"`
	Model           string  `mapstructure:"model"`
	Threshold       float64 `mapstructure:"threshold"`
	EncodeBatchSize int     `mapstructure:"encode_batch_size"`
	RowBatchSize    int     `mapstructure:"row_batch_size"`
}

type TradeKeywords struct {
	Trade    string   `mapstructure:"trade"`
	Keywords []string `mapstructure:"keywords"`
}

type Config struct {
	DataDir string `mapstructure:"data_dir"`
	InputDB string `mapstructure:"input_db"`

	Server        Server          `mapstructure:"server"`
	Rules         Rules           `mapstructure:"rules"`
	Outlier       Outlier         `mapstructure:"outlier"`
	Semantic      Semantic        `mapstructure:"semantic"`
	TradeKeywords []TradeKeywords `mapstructure:"trade_keywords"`
}

// Load reads the config file at path. A missing file is not an error; the
// defaults plus environment overrides (prefix CLAIM_AUDIT, dots as
// underscores) then apply. The embedding key additionally honors
// GEMINI_API_KEY so the standard provider variable keeps working.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("CLAIM_AUDIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("semantic.api_key", "GEMINI_API_KEY", "CLAIM_AUDIT_SEMANTIC_API_KEY"); err != nil {
		return nil, fmt.Errorf("bind embedding key: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	ruleDefaults := rules.DefaultSettings()
	outlierDefaults := outlier.DefaultSettings()
	semanticDefaults := semantic.DefaultSettings()

	v.SetDefault("data_dir", "data")
	v.SetDefault("input_db", "data/auftragsdaten.duckdb")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("rules.high_value_threshold", ruleDefaults.HighValueThreshold)
	v.SetDefault("rules.proforma_lower", ruleDefaults.ProformaLower)
	v.SetDefault("rules.proforma_upper", ruleDefaults.ProformaUpper)
	v.SetDefault("rules.discount_keywords", ruleDefaults.DiscountKeywords)
	v.SetDefault("rules.top_error_sources", ruleDefaults.TopErrorSources)
	v.SetDefault("outlier.ratio_threshold", outlierDefaults.RatioThreshold)
	v.SetDefault("semantic.enabled", true)
	v.SetDefault("semantic.threshold", semanticDefaults.Threshold)
	v.SetDefault("semantic.encode_batch_size", semanticDefaults.EncodeBatchSize)
	v.SetDefault("semantic.row_batch_size", semanticDefaults.RowBatchSize)
}

// QualitySettings maps the loaded config onto the evaluation settings.
func (c *Config) QualitySettings() quality.Settings {
	s := quality.DefaultSettings()
	s.Rules.HighValueThreshold = c.Rules.HighValueThreshold
	s.Rules.ProformaLower = c.Rules.ProformaLower
	s.Rules.ProformaUpper = c.Rules.ProformaUpper
	if len(c.Rules.DiscountKeywords) > 0 {
		s.Rules.DiscountKeywords = c.Rules.DiscountKeywords
	}
	if c.Rules.TopErrorSources > 0 {
		s.Rules.TopErrorSources = c.Rules.TopErrorSources
	}
	s.Outlier.RatioThreshold = c.Outlier.RatioThreshold
	if len(c.TradeKeywords) > 0 {
		catalogue := make([]outlier.TradeKeywords, len(c.TradeKeywords))
		for i, tk := range c.TradeKeywords {
			catalogue[i] = outlier.TradeKeywords{Trade: tk.Trade, Keywords: tk.Keywords}
		}
		s.TradeKeywords = catalogue
	}
	s.Semantic.Threshold = c.Semantic.Threshold
	if c.Semantic.EncodeBatchSize > 0 {
		s.Semantic.EncodeBatchSize = c.Semantic.EncodeBatchSize
	}
	if c.Semantic.RowBatchSize > 0 {
		s.Semantic.RowBatchSize = c.Semantic.RowBatchSize
	}
	return s
}
