// Package config loads runtime configuration from the environment.
// Binaries declare their own config structs with env tags and defaults.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv populates target, a pointer to a struct with env tags, from
// environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
