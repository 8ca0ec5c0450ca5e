package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, "main", cfg.Branch)
	assert.Equal(t, 10, cfg.BatchSize)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 30*time.Second, cfg.CheckTimeout)
	assert.Equal(t, 300*time.Second, cfg.CloneTimeout)
	assert.Equal(t, "text", cfg.OutputFormat)
	assert.Equal(t, "error", cfg.SeverityLevel)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("API_KEY", "sk-test")
	t.Setenv("API_URL", "https://gateway.example.com/v1")
	t.Setenv("MODEL_NAME", "gpt-4o")
	t.Setenv("AI_PROVIDER", "anthropic")
	t.Setenv("REPO_URL", "https://example.com/infra.git")
	t.Setenv("REPO_BRANCH", "release")
	t.Setenv("KUBECONFORM_SCHEMA_LOCATION", "https://schemas.example.com")
	t.Setenv("BATCH_SIZE", "25")
	t.Setenv("OUTPUT_FORMAT", "json")
	t.Setenv("REPORT_SEVERITY_LEVEL", "warning")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.APIKey)
	assert.Equal(t, "https://gateway.example.com/v1", cfg.APIURL)
	assert.Equal(t, "gpt-4o", cfg.ModelName)
	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, "https://example.com/infra.git", cfg.RepoURL)
	assert.Equal(t, "release", cfg.Branch)
	assert.Equal(t, "https://schemas.example.com", cfg.SchemaLocation)
	assert.Equal(t, 25, cfg.BatchSize)
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.Equal(t, "warning", cfg.SeverityLevel)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("BATCH_SIZE", "-5")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownOutputFormat(t *testing.T) {
	t.Setenv("OUTPUT_FORMAT", "xml")
	_, err := Load()
	assert.Error(t, err)
}

func TestKeyStoreRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	ks, err := LoadKeyStore()
	require.NoError(t, err)
	assert.Empty(t, ks.GetAPIKey("openai"))

	ks.SelectedProvider = "anthropic"
	ks.SelectedModel = "claude-sonnet-4-5"
	ks.SetAPIKey("anthropic", "sk-ant-test")
	require.NoError(t, SaveKeyStore(ks))

	reloaded, err := LoadKeyStore()
	require.NoError(t, err)
	assert.Equal(t, "anthropic", reloaded.SelectedProvider)
	assert.Equal(t, "claude-sonnet-4-5", reloaded.SelectedModel)
	assert.Equal(t, "sk-ant-test", reloaded.GetAPIKey("anthropic"))
}

func TestApplyKeyStoreFillsOnlyMissingValues(t *testing.T) {
	ks := &KeyStore{
		SelectedProvider: "gemini",
		SelectedModel:    "gemini-pro",
		Providers: map[string]ProviderConfig{
			"gemini": {APIKey: "stored-key"},
		},
	}

	cfg := &Config{}
	ApplyKeyStore(cfg, ks)
	assert.Equal(t, "gemini", cfg.Provider)
	assert.Equal(t, "gemini-pro", cfg.ModelName)
	assert.Equal(t, "stored-key", cfg.APIKey)

	cfg = &Config{Provider: "openai", APIKey: "env-key", ModelName: "gpt-4o"}
	ApplyKeyStore(cfg, ks)
	assert.Equal(t, "openai", cfg.Provider, "environment provider wins")
	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, "gpt-4o", cfg.ModelName)
}
