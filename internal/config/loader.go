package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	staticlib "github.com/contriboss/staticlib-go"
)

// Plan is the on-disk description of a build: shared settings plus the
// list of steps to run. Zero values mean "unspecified" and fall back to
// defaults at the call site.
type Plan struct {
	OutDir string       `json:"out_dir" yaml:"out_dir" toml:"out_dir"`
	Steps  []StepConfig `json:"steps" yaml:"steps" toml:"steps"`
}

// StepConfig is one step as written in a plan file. Defines use the
// compact "NAME" / "NAME=VALUE" string form.
type StepConfig struct {
	Name           string   `json:"name" yaml:"name" toml:"name"`
	Sources        []string `json:"sources" yaml:"sources" toml:"sources"`
	IncludeDirs    []string `json:"include_dirs" yaml:"include_dirs" toml:"include_dirs"`
	Defines        []string `json:"defines" yaml:"defines" toml:"defines"`
	Flags          []string `json:"flags" yaml:"flags" toml:"flags"`
	Archive        string   `json:"archive" yaml:"archive" toml:"archive"`
	RerunIfChanged []string `json:"rerun_if_changed" yaml:"rerun_if_changed" toml:"rerun_if_changed"`
}

// Load reads a plan file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Plan, error) {
	var plan Plan
	if path == "" {
		return plan, fmt.Errorf("empty plan path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return plan, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &plan); err != nil {
			return plan, err
		}
	case ".json":
		if err := json.Unmarshal(b, &plan); err != nil {
			return plan, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &plan); err != nil {
			return plan, err
		}
	default:
		return plan, fmt.Errorf("unsupported plan extension: %s", ext)
	}
	return plan, nil
}

// ToSteps converts the plan's step configs into build steps.
func (p Plan) ToSteps() ([]*staticlib.Step, error) {
	var steps []*staticlib.Step
	for i, sc := range p.Steps {
		step, err := sc.ToStep()
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// ToStep converts one step config into a build step.
func (s StepConfig) ToStep() (*staticlib.Step, error) {
	step := &staticlib.Step{
		Name:           s.Name,
		Sources:        s.Sources,
		IncludeDirs:    s.IncludeDirs,
		Flags:          s.Flags,
		Archive:        s.Archive,
		RerunIfChanged: s.RerunIfChanged,
	}

	for _, raw := range s.Defines {
		def, err := staticlib.ParseDefine(raw)
		if err != nil {
			return nil, err
		}
		step.Defines = append(step.Defines, def)
	}

	if step.Archive == "" && step.Name != "" {
		step.Archive = step.Name
	}

	return step, nil
}
