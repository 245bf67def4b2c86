package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// FromEnv overlays FLOWSIM_* environment variables onto base.
// Unset variables leave the corresponding field untouched.
func FromEnv(base Params) (Params, error) {
	p := base
	if err := env.Parse(&p); err != nil {
		return Params{}, fmt.Errorf("parse env: %w", err)
	}
	return p, nil
}
