// Package config holds the simulation parameter record and its loaders.
// Parameters resolve in layers: built-in defaults, then an optional YAML
// file, then FLOWSIM_* environment variables, then command-line overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Params is the immutable configuration record for one simulation run.
// It is passed by value; the engine never mutates it.
type Params struct {
	NumUsers          int     `yaml:"num_users" json:"num_users" env:"FLOWSIM_NUM_USERS"`
	ActivitiesPerUser int     `yaml:"activities_per_user" json:"activities_per_user" env:"FLOWSIM_ACTIVITIES_PER_USER"`
	InitialPool       float64 `yaml:"initial_pool" json:"initial_pool" env:"FLOWSIM_INITIAL_POOL"`
	InitialSupply     int     `yaml:"initial_supply" json:"initial_supply" env:"FLOWSIM_INITIAL_SUPPLY"`
	InitialNFTSupply  int     `yaml:"initial_nft_supply" json:"initial_nft_supply" env:"FLOWSIM_INITIAL_NFT_SUPPLY"`
	InitialLegendary  int     `yaml:"initial_legendary" json:"initial_legendary" env:"FLOWSIM_INITIAL_LEGENDARY"`
	NumRounds         int     `yaml:"num_rounds" json:"num_rounds" env:"FLOWSIM_NUM_ROUNDS"`
	SuccessProb       float64 `yaml:"success_prob" json:"success_prob" env:"FLOWSIM_SUCCESS_PROB"`
	SellFraction      float64 `yaml:"sell_fraction" json:"sell_fraction" env:"FLOWSIM_SELL_FRACTION"`
	BurnRate          float64 `yaml:"burn_rate" json:"burn_rate" env:"FLOWSIM_BURN_RATE"`
	EffortThreshold   float64 `yaml:"effort_threshold" json:"effort_threshold" env:"FLOWSIM_EFFORT_THRESHOLD"`
	LegendaryProb     float64 `yaml:"legendary_prob" json:"legendary_prob" env:"FLOWSIM_LEGENDARY_PROB"`

	// Model constants. Rarely changed, but kept in the record so a run is
	// fully described by its Params.
	BaseEffort   float64 `yaml:"base_effort" json:"base_effort" env:"FLOWSIM_BASE_EFFORT"`
	EffortStdDev float64 `yaml:"effort_stddev" json:"effort_stddev" env:"FLOWSIM_EFFORT_STDDEV"`
	BasePrice    float64 `yaml:"base_price" json:"base_price" env:"FLOWSIM_BASE_PRICE"`
	CurveFactor  float64 `yaml:"curve_factor" json:"curve_factor" env:"FLOWSIM_CURVE_FACTOR"`
	FeeRate      float64 `yaml:"fee_rate" json:"fee_rate" env:"FLOWSIM_FEE_RATE"`

	// Seed for the run's random source. Zero means pick one at startup.
	Seed uint64 `yaml:"seed" json:"seed" env:"FLOWSIM_SEED"`
}

// Default returns the reference parameter set.
func Default() Params {
	return Params{
		NumUsers:          100,
		ActivitiesPerUser: 5,
		InitialPool:       10000,
		InitialSupply:     0,
		InitialNFTSupply:  0,
		InitialLegendary:  0,
		NumRounds:         10,
		SuccessProb:       0.5,
		SellFraction:      0.3,  // fraction of users selling per round
		BurnRate:          0.2,  // burn on regular sells
		EffortThreshold:   12,   // above the base effort of 10
		LegendaryProb:     0.05, // chance once the threshold is met

		BaseEffort:   10,
		EffortStdDev: 2,
		BasePrice:    1,
		CurveFactor:  0.01,
		FeeRate:      0.1,
	}
}

// Load returns the defaults overlaid with the YAML file at path (if path is
// non-empty) and then with environment variables.
func Load(path string) (Params, error) {
	p := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Params{}, fmt.Errorf("read config: %w", err)
		}
		if p, err = Decode(data); err != nil {
			return Params{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	return FromEnv(p)
}

// Decode parses YAML onto the defaults. Unknown keys are rejected.
func Decode(data []byte) (Params, error) {
	p := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return Params{}, err
	}
	return p, nil
}

// YAML encodes the parameters in the same layout Load accepts.
func (p Params) YAML() ([]byte, error) {
	return yaml.Marshal(p)
}
