package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type FeedConfig struct {
	// Local path or HTTP URL of the source GTFS archive
	Source string `yaml:"source" validate:"required"`
}

type OverridesConfig struct {
	Path string `yaml:"path" validate:"omitempty"`
	URL  string `yaml:"url" validate:"omitempty,url"`
}

type OutputConfig struct {
	Feed   string `yaml:"feed" validate:"required"`
	Report string `yaml:"report" validate:"omitempty"`
}

type ExportConfig struct {
	PruneRoutes      []string `yaml:"pruneRoutes"`
	RoundCoordinates bool     `yaml:"roundCoordinates"`
	MaxShapePoints   int      `yaml:"maxShapePoints" validate:"gte=0"`
}

type ServerConfig struct {
	Listen string `yaml:"listen"`
}

type JobConfig struct {
	Feed      FeedConfig      `yaml:"feed" validate:"required"`
	Overrides OverridesConfig `yaml:"overrides"`
	Output    OutputConfig    `yaml:"output" validate:"required"`
	Export    ExportConfig    `yaml:"export"`
	Server    ServerConfig    `yaml:"server"`
}

// Load reads and validates a job config. With an empty path the usual
// candidate locations are tried in order.
func Load(path string) (*JobConfig, error) {
	paths := []string{path}
	if path == "" {
		paths = []string{"odsplit.yml", "config.yml"}
	}

	var body []byte
	var err error
	for _, candidate := range paths {
		body, err = os.ReadFile(candidate)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("no config file found: %w", err)
	}

	var jobConfig JobConfig
	if err := yaml.Unmarshal(body, &jobConfig); err != nil {
		return nil, err
	}

	validate := validator.New()
	if err := validate.Struct(&jobConfig); err != nil {
		return nil, err
	}

	return &jobConfig, nil
}
