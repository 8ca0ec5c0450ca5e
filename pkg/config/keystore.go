package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProviderConfig holds the stored credentials for one AI provider.
type ProviderConfig struct {
	APIKey string `yaml:"api_key"`
	APIURL string `yaml:"api_url,omitempty"`
}

// KeyStore is the on-disk provider configuration managed by the setup
// command. It persists under the user's home directory so API keys do not
// have to live in every pipeline's environment.
type KeyStore struct {
	SelectedProvider string                    `yaml:"selected_provider"`
	SelectedModel    string                    `yaml:"selected_model"`
	Providers        map[string]ProviderConfig `yaml:"providers"`
}

// KeyStorePath returns the key store location, creating the config
// directory if needed.
func KeyStorePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(home, ".kubevalid")
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

// LoadKeyStore reads the key store, returning defaults if none exists yet.
func LoadKeyStore() (*KeyStore, error) {
	path, err := KeyStorePath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &KeyStore{
			SelectedProvider: "openai",
			Providers:        make(map[string]ProviderConfig),
		}, nil
	}
	if err != nil {
		return nil, err
	}

	var ks KeyStore
	if err := yaml.Unmarshal(data, &ks); err != nil {
		return nil, err
	}
	if ks.Providers == nil {
		ks.Providers = make(map[string]ProviderConfig)
	}
	return &ks, nil
}

// SaveKeyStore writes the key store with owner-only permissions, since it
// contains API keys.
func SaveKeyStore(ks *KeyStore) error {
	path, err := KeyStorePath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(ks)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// SetAPIKey stores the key for a provider.
func (ks *KeyStore) SetAPIKey(provider, key string) {
	p := ks.Providers[provider]
	p.APIKey = key
	ks.Providers[provider] = p
}

// GetAPIKey returns the stored key for a provider, empty if unset.
func (ks *KeyStore) GetAPIKey(provider string) string {
	return ks.Providers[provider].APIKey
}

// ApplyKeyStore fills provider credentials from the key store into a Config
// when the environment did not supply them.
func ApplyKeyStore(cfg *Config, ks *KeyStore) {
	if cfg.Provider == "" && ks.SelectedProvider != "" {
		cfg.Provider = ks.SelectedProvider
	}
	if cfg.ModelName == "" && ks.SelectedModel != "" {
		cfg.ModelName = ks.SelectedModel
	}
	if cfg.APIKey == "" {
		cfg.APIKey = ks.GetAPIKey(cfg.Provider)
	}
	if cfg.APIURL == "" {
		cfg.APIURL = ks.Providers[cfg.Provider].APIURL
	}
}
