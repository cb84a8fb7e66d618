package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// SeedRule is one rule from the optional local rules.yml, loaded into the
// store on first run or when the remote rule store is disabled.
type SeedRule struct {
	Kind     string `yaml:"kind"` // "location" or "company"
	Pattern  string `yaml:"pattern"`
	Severity string `yaml:"severity"`
	Message  string `yaml:"message"`
	Expires  string `yaml:"expires"` // YYYY-MM-DD, empty means never
}

type seedFile struct {
	Rules []SeedRule `yaml:"rules"`
}

// LoadSeedRules reads the local rules file. A missing file is not an error:
// running without local seeds is the normal remote-backed setup.
func LoadSeedRules(path string) ([]SeedRule, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, nil
	}

	var sf seedFile
	if err := yaml.Unmarshal(b, &sf); err != nil {
		return nil, err
	}
	return sf.Rules, nil
}
