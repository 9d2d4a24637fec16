package config

import (
	"fmt"
	"os"

	domainconfig "seds-backend/domain/config"

	"gopkg.in/yaml.v3"
)

// LoadDomainRules reads business rules from a YAML file layered over the
// environment defaults. An empty path returns the defaults.
func LoadDomainRules(path, environment string) (*domainconfig.DomainConfig, error) {
	rules := domainconfig.LoadDomainConfig(environment)
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read domain config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, rules); err != nil {
		return nil, fmt.Errorf("failed to parse domain config %s: %w", path, err)
	}

	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid domain config %s: %w", path, err)
	}
	return rules, nil
}
