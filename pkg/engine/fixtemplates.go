package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FixTemplate is a user-supplied remediation template loaded from YAML.
// Loaded templates extend the built-in rule table, keyed by check rule id,
// so teams can ship remediations for their own kube-linter custom checks.
type FixTemplate struct {
	ID      string `yaml:"id"`
	Type    string `yaml:"type"`
	FixText string `yaml:"fix"`
	Example string `yaml:"example"`
}

// LoadFixTemplates reads YAML fix templates from a directory and registers
// them in the rule table. Templates with an id that is already known
// override the built-in entry. Returns the number of templates loaded.
func LoadFixTemplates(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return loaded, err
		}

		var t FixTemplate
		if err := yaml.Unmarshal(data, &t); err != nil {
			return loaded, fmt.Errorf("failed to parse %s: %v", entry.Name(), err)
		}
		if t.ID == "" {
			return loaded, fmt.Errorf("fix template %s has no id", entry.Name())
		}

		ruleFixes[t.ID] = fixTemplate{
			Type:    t.Type,
			FixText: t.FixText,
			Example: t.Example,
		}
		loaded++
	}
	return loaded, nil
}
