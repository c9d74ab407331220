package config

import (
	"os"

	"github.com/kelseyhightower/envconfig"

	"convflow/internal/logging"
	"convflow/internal/nluoracle"
)

// AppConfig aggregates the ambient settings a running server needs
// beyond the domain/flow documents: logging, the NLU oracle, the
// durable store path, and the in-process cache's resident-user limit.
// Every field can be overridden by an environment variable through its
// envconfig tag, the same convention internal/nluoracle.Config and
// internal/logging.Config use.
type AppConfig struct {
	Domain       string           `yaml:"domain" envconfig:"DOMAIN_FILE" default:"domain.yaml"`
	Flow         string           `yaml:"flow" envconfig:"FLOW_FILE" default:"flow.yaml"`
	DatabasePath string           `yaml:"database_path" envconfig:"DATABASE_PATH" default:"convflow.db"`
	CacheLimit   int              `yaml:"cache_limit" envconfig:"CACHE_LIMIT" default:"256"`
	RedisURL     string           `yaml:"redis_url" envconfig:"REDIS_URL"`
	Logging      logging.Config   `yaml:"logging"`
	NLU          nluoracle.Config `yaml:"nlu"`
}

// LoadAppConfig reads path (if it exists) as YAML, then lets
// environment variables declared via envconfig tags override any
// field left unset.
func LoadAppConfig(path string) (AppConfig, error) {
	var cfg AppConfig
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := readYAML(path, &cfg); err != nil {
				return AppConfig{}, err
			}
		} else if !os.IsNotExist(err) {
			return AppConfig{}, err
		}
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}
