package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/talekit/talekit/runtime"
)

// playConfig is the optional YAML preset file for the play command: a
// start node plus initial variables seeded into the environment.
type playConfig struct {
	StartNode string         `yaml:"start_node"`
	Variables map[string]any `yaml:"variables"`
}

func loadPlayConfig(path string) (*playConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg playConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// seedEnvironment copies config variables into the runner environment,
// mapping YAML scalars onto script values.
func seedEnvironment(env runtime.Environment, vars map[string]any) error {
	for name, raw := range vars {
		switch v := raw.(type) {
		case nil:
			env.SetVariable(name, runtime.Null())
		case bool:
			env.SetVariable(name, runtime.Bool(v))
		case int:
			env.SetVariable(name, runtime.Num(float64(v)))
		case int64:
			env.SetVariable(name, runtime.Num(float64(v)))
		case float64:
			env.SetVariable(name, runtime.Num(v))
		case string:
			env.SetVariable(name, runtime.Str(v))
		default:
			return fmt.Errorf("variable %q: unsupported type %T", name, raw)
		}
	}
	return nil
}
