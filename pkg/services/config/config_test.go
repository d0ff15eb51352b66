package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/claim-audit/pkg/services/outlier"
	"github.com/de-tools/claim-audit/pkg/services/rules"
	"github.com/de-tools/claim-audit/pkg/services/semantic"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	ruleDefaults := rules.DefaultSettings()

	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "data/auftragsdaten.duckdb", cfg.InputDB)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, ruleDefaults.HighValueThreshold, cfg.Rules.HighValueThreshold)
	assert.Equal(t, ruleDefaults.DiscountKeywords, cfg.Rules.DiscountKeywords)
	assert.Equal(t, outlier.DefaultSettings().RatioThreshold, cfg.Outlier.RatioThreshold)
	assert.True(t, cfg.Semantic.Enabled)
	assert.Equal(t, semantic.DefaultSettings().Threshold, cfg.Semantic.Threshold)
	assert.Empty(t, cfg.Semantic.APIKey)
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "data", cfg.DataDir)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
data_dir: /var/lib/audit
server:
  port: "9000"
rules:
  high_value_threshold: 75000
  discount_keywords:
    - sonderkondition
outlier:
  ratio_threshold: 0.25
semantic:
  enabled: false
trade_keywords:
  - trade: Elektro
    keywords: [elektro, blitzschutz]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/audit", cfg.DataDir)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, 75000.0, cfg.Rules.HighValueThreshold)
	assert.Equal(t, []string{"sonderkondition"}, cfg.Rules.DiscountKeywords)
	assert.Equal(t, 0.25, cfg.Outlier.RatioThreshold)
	assert.False(t, cfg.Semantic.Enabled)
	require.Len(t, cfg.TradeKeywords, 1)
	assert.Equal(t, "Elektro", cfg.TradeKeywords[0].Trade)

	// untouched keys keep their defaults
	assert.Equal(t, "localhost", cfg.Server.Host)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("CLAIM_AUDIT_DATA_DIR", "/tmp/audit")
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/audit", cfg.DataDir)
	assert.Equal(t, "test-key", cfg.Semantic.APIKey)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeConfigFile(t, "data_dir: [unclosed")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestConfig_QualitySettings(t *testing.T) {
	t.Run("config values carry over", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		cfg.Rules.HighValueThreshold = 75000
		cfg.Rules.TopErrorSources = 5
		cfg.Outlier.RatioThreshold = 0.3
		cfg.TradeKeywords = []TradeKeywords{{Trade: "Elektro", Keywords: []string{"elektro"}}}

		s := cfg.QualitySettings()

		assert.Equal(t, 75000.0, s.Rules.HighValueThreshold)
		assert.Equal(t, 5, s.Rules.TopErrorSources)
		assert.Equal(t, 0.3, s.Outlier.RatioThreshold)
		require.Len(t, s.TradeKeywords, 1)
		assert.Equal(t, "Elektro", s.TradeKeywords[0].Trade)
	})

	t.Run("empty lists and zero counts keep the defaults", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		cfg.Rules.DiscountKeywords = nil
		cfg.Rules.TopErrorSources = 0
		cfg.Semantic.EncodeBatchSize = 0

		s := cfg.QualitySettings()
		defaults := rules.DefaultSettings()

		assert.Equal(t, defaults.DiscountKeywords, s.Rules.DiscountKeywords)
		assert.Equal(t, defaults.TopErrorSources, s.Rules.TopErrorSources)
		assert.Equal(t, semantic.DefaultSettings().EncodeBatchSize, s.Semantic.EncodeBatchSize)
	})
}
