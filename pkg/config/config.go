// Package config loads the validator's runtime configuration from the
// environment and manages the AI provider key store on disk.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the single immutable configuration value threaded through the
// orchestrator and every checker. All ambient environment reads happen here,
// once, at startup.
type Config struct {
	// AI provider settings. APIURL supports OpenAI-compatible gateways.
	Provider  string `mapstructure:"provider"`
	APIKey    string `mapstructure:"api_key"`
	APIURL    string `mapstructure:"api_url"`
	ModelName string `mapstructure:"model_name"`

	// Repository settings.
	RepoURL string `mapstructure:"repo_url"`
	Branch  string `mapstructure:"branch"`

	// Checker settings.
	SchemaLocation  string `mapstructure:"schema_location"`
	FixTemplatesDir string `mapstructure:"fix_templates_dir"`

	// Run settings.
	BatchSize     int           `mapstructure:"batch_size" validate:"gt=0"`
	Workers       int           `mapstructure:"workers" validate:"gte=0"`
	CheckTimeout  time.Duration `mapstructure:"check_timeout" validate:"gt=0"`
	CloneTimeout  time.Duration `mapstructure:"clone_timeout" validate:"gt=0"`
	OutputFormat  string        `mapstructure:"output_format" validate:"oneof=text json"`
	SeverityLevel string        `mapstructure:"severity_level" validate:"oneof=info warning error critical"`
}

// Load reads configuration from the environment with defaults applied, then
// validates it. An invalid configuration is a fatal error: no run can start
// from it.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("provider", "openai")
	v.SetDefault("branch", "main")
	v.SetDefault("batch_size", 10)
	v.SetDefault("workers", 4)
	v.SetDefault("check_timeout", 30*time.Second)
	v.SetDefault("clone_timeout", 300*time.Second)
	v.SetDefault("output_format", "text")
	v.SetDefault("severity_level", "error")

	v.AutomaticEnv()
	// The environment variable names predate this tool's Go rewrite and
	// are kept for compatibility with existing pipeline configs.
	_ = v.BindEnv("api_key", "API_KEY")
	_ = v.BindEnv("api_url", "API_URL")
	_ = v.BindEnv("model_name", "MODEL_NAME")
	_ = v.BindEnv("provider", "AI_PROVIDER")
	_ = v.BindEnv("repo_url", "REPO_URL")
	_ = v.BindEnv("branch", "REPO_BRANCH")
	_ = v.BindEnv("schema_location", "KUBECONFORM_SCHEMA_LOCATION")
	_ = v.BindEnv("fix_templates_dir", "FIX_TEMPLATES_DIR")
	_ = v.BindEnv("batch_size", "BATCH_SIZE")
	_ = v.BindEnv("workers", "VALIDATION_WORKERS")
	_ = v.BindEnv("check_timeout", "CHECK_TIMEOUT")
	_ = v.BindEnv("clone_timeout", "CLONE_TIMEOUT")
	_ = v.BindEnv("output_format", "OUTPUT_FORMAT")
	_ = v.BindEnv("severity_level", "REPORT_SEVERITY_LEVEL")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
