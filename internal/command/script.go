package command

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Script is a list of calls run in order against each project.
type Script struct {
	Version  string   `yaml:"version,omitempty"`
	Commands []string `yaml:"commands"`
}

// ReadScript reads a script from a YAML file and checks that every call parses.
func ReadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	lines := script.Commands[:0]
	for i, line := range script.Commands {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if _, err := Parse(line); err != nil {
			return nil, fmt.Errorf("%s: command %d: %w", path, i+1, err)
		}
		lines = append(lines, line)
	}
	script.Commands = lines
	return &script, nil
}

// WriteScript writes a script to a YAML file.
func WriteScript(script *Script, path string) error {
	data, err := yaml.Marshal(script)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
