// Package config loads command configuration from GREEN_BUDDY_* environment
// variables. Commands parse the environment first and overlay flag values
// afterwards, so a flag always wins over its variable.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv fills target's env-tagged fields from the process environment.
// Fields carrying an envDefault tag fall back to it, so an empty environment
// still yields a runnable config.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
