package store

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Seed is the initial content of an in-memory store.
type Seed struct {
	Users    []User    `yaml:"users" validate:"dive"`
	Products []Product `yaml:"products" validate:"dive"`
}

// LoadSeed decodes and validates a YAML seed document. Unknown fields are rejected.
func LoadSeed(r io.Reader) (Seed, error) {
	var seed Seed
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil && !errors.Is(err, io.EOF) {
		return Seed{}, fmt.Errorf("failed to decode seed: %w", err)
	}
	if err := validator.New().Struct(seed); err != nil {
		return Seed{}, fmt.Errorf("invalid seed: %w", err)
	}
	return seed, nil
}

// LoadSeedFile reads a seed from path. An empty path yields an empty seed.
func LoadSeedFile(path string) (Seed, error) {
	if path == "" {
		return Seed{}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Seed{}, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return LoadSeed(f)
}
