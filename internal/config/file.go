package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// FeedProfile names one transit network's feed pair so a single config file
// can describe several networks.
type FeedProfile struct {
	Name        string `yaml:"name" validate:"required"`
	GTFSSource  string `yaml:"gtfs_source" validate:"required"`
	VehiclesURL string `yaml:"vehicles_url" validate:"required,url"`
}

// FeedFile is the parsed YAML feed configuration.
type FeedFile struct {
	Profiles []FeedProfile `yaml:"profiles" validate:"required,min=1,dive"`
}

var validate = validator.New()

// LoadFile parses and validates a feed profile file.
func LoadFile(path string) (*FeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feed config: %w", err)
	}

	var f FeedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse feed config: %w", err)
	}
	if err := validate.Struct(&f); err != nil {
		return nil, fmt.Errorf("invalid feed config: %w", err)
	}
	return &f, nil
}

// Select returns the named profile, or the first one when name is empty.
func (f *FeedFile) Select(name string) (*FeedProfile, error) {
	if name == "" {
		return &f.Profiles[0], nil
	}
	for i := range f.Profiles {
		if f.Profiles[i].Name == name {
			return &f.Profiles[i], nil
		}
	}
	return nil, fmt.Errorf("feed profile %q not found", name)
}
