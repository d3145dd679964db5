// Package config loads the learning core's tunables from YAML via viper,
// the same Load/setDefaults shape the teacher uses for its server config.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Store        StoreConfig        `mapstructure:"store"`
	Registry     RegistryConfig     `mapstructure:"registry"`
	Transfer     TransferConfig     `mapstructure:"transfer"`
	Discovery    DiscoveryConfig    `mapstructure:"discovery"`
	FailureLearn FailureLearnConfig `mapstructure:"failure_learn"`
	FormLearn    FormLearnConfig    `mapstructure:"form_learn"`
	Language     LanguageConfig     `mapstructure:"language"`
}

type StoreConfig struct {
	PatternFilePath string `mapstructure:"pattern_file_path"`
	SessionFilePath string `mapstructure:"session_file_path"`
	DebounceMs      int    `mapstructure:"debounce_ms"`
}

type RegistryConfig struct {
	ArchiveAfterDays int     `mapstructure:"archive_after_days"`
	ConfidenceFloor  float64 `mapstructure:"confidence_floor"`
	DecayEpsilon     float64 `mapstructure:"decay_epsilon"`
}

type TransferConfig struct {
	MinSimilarity     float64 `mapstructure:"min_similarity"`
	ConfidenceDecay   float64 `mapstructure:"confidence_decay"`
	BoostOnSuccess    float64 `mapstructure:"boost_on_success"`
	PenaltyOnFail     float64 `mapstructure:"penalty_on_fail"`
	MaxAutoCandidates int     `mapstructure:"max_auto_candidates"`
}

type DiscoveryConfig struct {
	PerSourceTimeout time.Duration `mapstructure:"per_source_timeout"`
	CacheTTL         time.Duration `mapstructure:"cache_ttl"`
	CacheSize        int           `mapstructure:"cache_size"`
}

type FailureLearnConfig struct {
	RecentFailureCapacity int           `mapstructure:"recent_failure_capacity"`
	AntiPatternThreshold  int           `mapstructure:"anti_pattern_threshold"`
	AntiPatternTTL        time.Duration `mapstructure:"anti_pattern_ttl"`
	MaxRetryAttempts      int           `mapstructure:"max_retry_attempts"`
	MaxBackoffSeconds     int           `mapstructure:"max_backoff_seconds"`
}

type FormLearnConfig struct {
	DefaultRatePerSecond float64 `mapstructure:"default_rate_per_second"`
	DefaultBurst         int     `mapstructure:"default_burst"`
	MaxBackoffSeconds    int     `mapstructure:"max_backoff_seconds"`
}

type LanguageConfig struct {
	DefaultLanguage    string `mapstructure:"default_language"`
	DetectionCacheSize int    `mapstructure:"detection_cache_size"`
}

// EncryptionEnvVar is the fixed environment-variable name that enables
// AES-256-GCM at-rest encryption for the pattern and session stores, per
// spec §6. It is a constant (rather than config) because the spec ties
// it to getEncryptionEnvVar(), a fixed name, not a tunable.
const EncryptionEnvVar = "PATTERNCORE_SESSION_ENCRYPTION_KEY"

func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Default returns the built-in defaults without reading any file, for
// callers (and tests) that don't need a config.yaml on disk.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			PatternFilePath: "patterns.json",
			SessionFilePath: "session.json",
			DebounceMs:      500,
		},
		Registry: RegistryConfig{
			ArchiveAfterDays: 90,
			ConfidenceFloor:  0.1,
			DecayEpsilon:     0.01,
		},
		Transfer: TransferConfig{
			MinSimilarity:     0.3,
			ConfidenceDecay:   0.5,
			BoostOnSuccess:    1.3,
			PenaltyOnFail:     0.6,
			MaxAutoCandidates: 3,
		},
		Discovery: DiscoveryConfig{
			PerSourceTimeout: 30 * time.Second,
			CacheTTL:         time.Hour,
			CacheSize:        512,
		},
		FailureLearn: FailureLearnConfig{
			RecentFailureCapacity: 20,
			AntiPatternThreshold:  3,
			AntiPatternTTL:        24 * time.Hour,
			MaxRetryAttempts:      3,
			MaxBackoffSeconds:     60,
		},
		FormLearn: FormLearnConfig{
			DefaultRatePerSecond: 1,
			DefaultBurst:         3,
			MaxBackoffSeconds:    60,
		},
		Language: LanguageConfig{
			DefaultLanguage:    "en",
			DetectionCacheSize: 256,
		},
	}
}

func setDefaults() {
	d := Default()

	viper.SetDefault("store.pattern_file_path", d.Store.PatternFilePath)
	viper.SetDefault("store.session_file_path", d.Store.SessionFilePath)
	viper.SetDefault("store.debounce_ms", d.Store.DebounceMs)

	viper.SetDefault("registry.archive_after_days", d.Registry.ArchiveAfterDays)
	viper.SetDefault("registry.confidence_floor", d.Registry.ConfidenceFloor)
	viper.SetDefault("registry.decay_epsilon", d.Registry.DecayEpsilon)

	viper.SetDefault("transfer.min_similarity", d.Transfer.MinSimilarity)
	viper.SetDefault("transfer.confidence_decay", d.Transfer.ConfidenceDecay)
	viper.SetDefault("transfer.boost_on_success", d.Transfer.BoostOnSuccess)
	viper.SetDefault("transfer.penalty_on_fail", d.Transfer.PenaltyOnFail)
	viper.SetDefault("transfer.max_auto_candidates", d.Transfer.MaxAutoCandidates)

	viper.SetDefault("discovery.per_source_timeout", d.Discovery.PerSourceTimeout)
	viper.SetDefault("discovery.cache_ttl", d.Discovery.CacheTTL)
	viper.SetDefault("discovery.cache_size", d.Discovery.CacheSize)

	viper.SetDefault("failure_learn.recent_failure_capacity", d.FailureLearn.RecentFailureCapacity)
	viper.SetDefault("failure_learn.anti_pattern_threshold", d.FailureLearn.AntiPatternThreshold)
	viper.SetDefault("failure_learn.anti_pattern_ttl", d.FailureLearn.AntiPatternTTL)
	viper.SetDefault("failure_learn.max_retry_attempts", d.FailureLearn.MaxRetryAttempts)
	viper.SetDefault("failure_learn.max_backoff_seconds", d.FailureLearn.MaxBackoffSeconds)

	viper.SetDefault("form_learn.default_rate_per_second", d.FormLearn.DefaultRatePerSecond)
	viper.SetDefault("form_learn.default_burst", d.FormLearn.DefaultBurst)
	viper.SetDefault("form_learn.max_backoff_seconds", d.FormLearn.MaxBackoffSeconds)

	viper.SetDefault("language.default_language", d.Language.DefaultLanguage)
	viper.SetDefault("language.detection_cache_size", d.Language.DetectionCacheSize)
}
