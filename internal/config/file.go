package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// LoadSettingsFile reads a flat YAML map of settings keyed like the
// environment variables, e.g.
//
//	DMEZONEID: "1119443"
//	RECORDS: home, vpn
//	SECRETKEY: ${DME_SECRET}
//
// ${ENV_VAR} references in values are expanded.
func LoadSettingsFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings file: %w", err)
	}

	settings := make(map[string]string)
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parsing settings file: %w", err)
	}

	for k, v := range settings {
		settings[k] = os.ExpandEnv(v)
	}
	return settings, nil
}
