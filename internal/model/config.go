package model

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Defaults for the make invocation. The benchmark target is the one
// whose wall clock time ends up in the CSV; prepare targets run before
// it on every iteration and are not timed.
const (
	DefaultMarker     = "Makefile"
	DefaultMakeBinary = "make"
	DefaultTarget     = "result"
)

type Config struct {
	Proofs     string `yaml:"proofs"`     // root directory holding proof subdirectories
	Iterations int    `yaml:"iterations"` // runs per proof, >= 1
	Parallel   int    `yaml:"parallel"`   // concurrently running proofs, >= 1
	CSV        string `yaml:"csv"`        // output file, one row per proof
	Marker     string `yaml:"marker"`     // file marking a directory as a proof
	Make       Make   `yaml:"make"`
	Verbose    bool   `yaml:"verbose"`
}

type Make struct {
	Binary  string   `yaml:"binary"`
	Prepare []string `yaml:"prepare"` // untimed targets run before every benchmark run
	Target  string   `yaml:"target"`  // the timed target
}

func DefaultConfig() Config {
	return Config{
		Iterations: 1,
		Parallel:   4,
		CSV:        "results.csv",
		Marker:     DefaultMarker,
		Make: Make{
			Binary:  DefaultMakeBinary,
			Prepare: []string{"veryclean", "goto"},
			Target:  DefaultTarget,
		},
	}
}

// LoadConfig decodes YAML from r on top of the defaults, so a config
// file only needs to mention the fields it changes.
func LoadConfig(r io.Reader) (Config, error) {
	config := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&config); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return config, nil
}

func (c Config) Validate() error {
	if c.Proofs == "" {
		return ErrNoProofsRoot
	}
	if c.CSV == "" {
		return ErrNoCSVPath
	}
	if c.Iterations < 1 {
		return fmt.Errorf("%w: iterations %d", ErrBadIterations, c.Iterations)
	}
	if c.Parallel < 1 {
		return fmt.Errorf("%w: parallel %d", ErrBadParallel, c.Parallel)
	}
	if c.Marker == "" {
		return ErrNoMarker
	}
	if c.Make.Binary == "" || c.Make.Target == "" {
		return ErrNoMakeTarget
	}
	return nil
}
