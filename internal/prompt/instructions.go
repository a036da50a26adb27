package prompt

import (
	_ "embed"
	"fmt"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed instructions.yaml
var defaultInstructions []byte

// Axis is one generation preference (tone, goal or length).
type Axis struct {
	Default string            `yaml:"default"`
	Options map[string]string `yaml:"options"`
}

// Lookup returns the instruction sentence for key, or the axis default.
func (a Axis) Lookup(key string) string {
	if s, ok := a.Options[strings.ToLower(strings.TrimSpace(key))]; ok {
		return s
	}
	return a.Default
}

// Keys returns the recognised option names, sorted.
func (a Axis) Keys() []string {
	keys := make([]string, 0, len(a.Options))
	for k := range a.Options {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Instructions holds the three instruction tables.
type Instructions struct {
	Tone   Axis `yaml:"tone"`
	Goal   Axis `yaml:"goal"`
	Length Axis `yaml:"length"`
}

// ParseInstructions decodes instruction tables from YAML. Option keys are
// lower-cased; every axis must have a default.
func ParseInstructions(data []byte) (*Instructions, error) {
	var ins Instructions
	if err := yaml.Unmarshal(data, &ins); err != nil {
		return nil, fmt.Errorf("parse instructions: %w", err)
	}

	for name, axis := range map[string]*Axis{"tone": &ins.Tone, "goal": &ins.Goal, "length": &ins.Length} {
		if axis.Default == "" {
			return nil, fmt.Errorf("parse instructions: %s has no default", name)
		}
		lowered := make(map[string]string, len(axis.Options))
		for k, v := range axis.Options {
			lowered[strings.ToLower(k)] = v
		}
		axis.Options = lowered
	}
	return &ins, nil
}

var loadDefault = sync.OnceValues(func() (*Instructions, error) {
	return ParseInstructions(defaultInstructions)
})

// DefaultInstructions returns the tables compiled into the binary.
func DefaultInstructions() (*Instructions, error) {
	return loadDefault()
}
