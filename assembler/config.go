package assembler

import (
	"encoding/json"
	"fmt"
	"os"
)

type AssemblerConfig struct {
	Workers                 int  `json:"workers"` // pass 2 workers, 1 or less runs sequentially
	ReportUnusedLabels      bool `json:"reportUnusedLabels"`
	ReportUnknownDirectives bool `json:"reportUnknownDirectives"`
}

func DefaultConfig() AssemblerConfig {
	return AssemblerConfig{
		Workers:                 1,
		ReportUnusedLabels:      true,
		ReportUnknownDirectives: true,
	}
}

var assemblerConfig = DefaultConfig()

func GetConfig() AssemblerConfig {
	return assemblerConfig
}

func SetConfig(config AssemblerConfig) {
	assemblerConfig = config
}

// LoadConfig reads a JSON config file. Fields missing from the file keep their defaults.
func LoadConfig(path string) (AssemblerConfig, error) {
	conf := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return conf, err
	}
	if err := json.Unmarshal(b, &conf); err != nil {
		return conf, fmt.Errorf("parsing %s: %w", path, err)
	}
	return conf, nil
}
