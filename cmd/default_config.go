package cmd

import (
	"bytes"
	_ "embed"
	"fmt"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/jaemoore/class-simulation/sim"
)

// DefaultPreset is used when neither --config nor --preset is given.
const DefaultPreset = "two-week"

//go:embed presets.yaml
var presetsYAML []byte

// Preset is a named schedule layered over the shared defaults.
type Preset struct {
	Description string          `yaml:"description"`
	Schedule    []sim.CohortKey `yaml:"schedule"`
}

// Config represents the full presets.yaml structure.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type Config struct {
	Version  string               `yaml:"version"`
	Defaults sim.SimulationParams `yaml:"defaults"`
	Presets  map[string]Preset    `yaml:"presets"`
}

// loadDefaultsConfig parses a presets document with strict field checking.
func loadDefaultsConfig(data []byte) (Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing presets: %w", err)
	}
	return cfg, nil
}

// builtinConfig returns the embedded presets.
func builtinConfig() (Config, error) {
	return loadDefaultsConfig(presetsYAML)
}

// PresetNames returns preset names in sorted order.
func (c Config) PresetNames() []string {
	names := make([]string, 0, len(c.Presets))
	for name := range c.Presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ParamsForPreset returns the defaults with the preset's schedule.
// The result is not yet validated; the caller applies flag overrides first.
func (c Config) ParamsForPreset(name string) (sim.SimulationParams, error) {
	preset, ok := c.Presets[name]
	if !ok {
		return sim.SimulationParams{}, fmt.Errorf("unknown preset %q; valid: %v", name, c.PresetNames())
	}
	params := c.Defaults
	params.OutsideGradeProbability = maps.Clone(c.Defaults.OutsideGradeProbability)
	params.Schedule = slices.Clone(preset.Schedule)
	return params, nil
}
