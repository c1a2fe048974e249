package taxonomy

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ParseYAML decodes and indexes a taxonomy document.
// Option lists missing from the document fall back to the built-in ones.
func ParseYAML(data []byte) (*Tree, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("taxonomy: document is empty")
	}

	var seed Seed
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil {
		return nil, fmt.Errorf("taxonomy: decode: %w", err)
	}

	defaults := DefaultSeed()
	if seed.Partners == nil {
		seed.Partners = defaults.Partners
	}
	if seed.Printers == nil {
		seed.Printers = defaults.Printers
	}
	if seed.MeasureUnits == nil {
		seed.MeasureUnits = defaults.MeasureUnits
	}
	if seed.Statuses == nil {
		seed.Statuses = defaults.Statuses
	}

	tree, err := NewTree(&seed)
	if err != nil {
		return nil, fmt.Errorf("taxonomy: %w", err)
	}
	return tree, nil
}

// LoadFile reads and parses a taxonomy YAML file.
func LoadFile(path string) (*Tree, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("taxonomy: read %s: %w", path, err)
	}
	tree, err := ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tree, nil
}

// MarshalYAML renders a seed, used to export the built-in taxonomy as a starting file.
func MarshalYAML(seed *Seed) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(seed); err != nil {
		return nil, fmt.Errorf("taxonomy: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("taxonomy: encode: %w", err)
	}
	return buf.Bytes(), nil
}
