package cmd

import (
	"errors"

	"github.com/caarlos0/env/v11"
)

// EnvConfig holds defaults taken from the environment. Explicit flags win.
type EnvConfig struct {
	LogLevel  string `env:"LOG_LEVEL" envDefault:"warn"`
	OutputDir string `env:"OUTPUT_DIR" envDefault:"."`
	DB        string `env:"DB"`
	Workers   int    `env:"WORKERS" envDefault:"1"`
}

// envPrefix namespaces every variable, e.g. COHORTSIM_WORKERS.
const envPrefix = "COHORTSIM_"

// LoadEnvConfig parses COHORTSIM_* variables from environ, or from the
// process environment when environ is nil.
func LoadEnvConfig(environ map[string]string) (*EnvConfig, error) {
	cfg := &EnvConfig{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix, Environment: environ}); err != nil {
		aggErr := env.AggregateError{}
		if errors.As(err, &aggErr) {
			// the first error is enough to point at the bad variable
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}
	return cfg, nil
}
