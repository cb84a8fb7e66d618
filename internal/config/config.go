package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Port    int    `yaml:"port"`
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	RuleStore struct {
		Enabled        bool   `yaml:"enabled"`
		BaseURL        string `yaml:"base_url"`
		Team           string `yaml:"team"`
		RefreshSeconds int    `yaml:"refresh_seconds"`
	} `yaml:"rule_store"`

	Scan struct {
		QuietMS          int    `yaml:"quiet_ms"`
		MaxWaitMS        int    `yaml:"max_wait_ms"`
		URLPollMS        int    `yaml:"url_poll_ms"`
		CardSelector     string `yaml:"card_selector"`
		MinCardChars     int    `yaml:"min_card_chars"`
		StalenessSeconds int    `yaml:"staleness_seconds"`
		SafetySeconds    int    `yaml:"safety_seconds"`
	} `yaml:"scan"`

	Notify struct {
		Enabled  bool     `yaml:"enabled"`
		SMTPHost string   `yaml:"smtp_host"`
		SMTPPort int      `yaml:"smtp_port"`
		Username string   `yaml:"username"`
		From     string   `yaml:"from"`
		To       []string `yaml:"to"`
	} `yaml:"notify"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

// Default returns the configuration written on first run.
func Default() Config {
	var cfg Config
	cfg.App.Port = 8787
	cfg.App.DataDir = "."
	cfg.RuleStore.RefreshSeconds = 900
	cfg.Scan.QuietMS = 250
	cfg.Scan.MaxWaitMS = 2000
	cfg.Scan.URLPollMS = 1500
	cfg.Scan.MinCardChars = 30
	cfg.Scan.StalenessSeconds = 30
	cfg.Scan.SafetySeconds = 10
	cfg.Notify.SMTPPort = 587
	return cfg
}
