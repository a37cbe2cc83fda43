// Package persona holds the assistant's name, model and system instructions.
package persona

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed persona.yaml
var defaultPersona []byte

// Persona describes the assistant created on the hosted service.
type Persona struct {
	Name         string `yaml:"name"`
	Model        string `yaml:"model"`
	Instructions string `yaml:"instructions"`
}

// Default returns the built-in Blinx persona.
func Default() Persona {
	var p Persona
	if err := yaml.Unmarshal(defaultPersona, &p); err != nil {
		panic(fmt.Sprintf("persona: embedded default is invalid: %v", err))
	}
	return p
}

// Load reads a persona file and fills any field it leaves empty from Default.
// An empty path returns Default.
func Load(path string) (Persona, error) {
	p := Default()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Persona{}, fmt.Errorf("read persona %s: %w", path, err)
	}

	var override Persona
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Persona{}, fmt.Errorf("parse persona %s: %w", path, err)
	}
	if override.Name != "" {
		p.Name = override.Name
	}
	if override.Model != "" {
		p.Model = override.Model
	}
	if override.Instructions != "" {
		p.Instructions = override.Instructions
	}
	return p, nil
}
