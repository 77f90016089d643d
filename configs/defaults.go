package configs

import (
	_ "embed"
	"fmt"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

//go:embed config.example.yaml
var defaultConfigYAML string

// SetDefaults registers the embedded example values as defaults of v, so a
// partial config file only overrides the keys it sets.
func SetDefaults(v *viper.Viper) error {
	var values map[string]any
	if err := yaml.Unmarshal([]byte(defaultConfigYAML), &values); err != nil {
		return fmt.Errorf("failed to parse embedded config.example.yaml: %w", err)
	}

	for key, value := range values {
		v.SetDefault(key, value)
	}
	return nil
}
