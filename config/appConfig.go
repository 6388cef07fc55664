package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"gocatalog_api/config/values"
)

// FeedConfig describes where the supplier feed document comes from.
// Exactly one of URL or Path is expected; Path wins when both are set.
type FeedConfig struct {
	URL      string `yaml:"url"`
	Path     string `yaml:"path"`
	Encoding string `yaml:"encoding"` // "", "utf-8", "windows-1250", "windows-1252"
}

type AppConfig struct {
	Postgres PostgresConfig      `yaml:"postgres"`
	Feed     FeedConfig          `yaml:"feed"`
	Import   values.ImportValues `yaml:"import"`
}

func LoadConfig(filename string) (*AppConfig, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	config := &AppConfig{}
	if err := decoder.Decode(config); err != nil {
		return nil, err
	}
	config.Import.ApplyDefaults()
	return config, nil
}
