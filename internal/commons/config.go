package commons

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// LoadConfigFile reads a flat YAML document of configuration keys, e.g.
//
//	GCASH_NUMBER: "09171234567"
//	SALES_API_URL: https://sales.example.com
func LoadConfigFile(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	values := map[string]interface{}{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return values, nil
}
