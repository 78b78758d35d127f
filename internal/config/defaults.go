// Package config holds the run defaults for the GCP preparation tools.
// Flags always win; a small optional JSON file can override the built-in
// defaults for crews that standardise on different values.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Built-in defaults. These match the values the field workflow has used
// since the tools were introduced.
const (
	// DefaultImagesPerMarker is how many images the picker keeps per
	// marker when -n is not given. Zero keeps every detection, sorted.
	DefaultImagesPerMarker = 0

	// DefaultMaxDistance is the mapper's match threshold in metres.
	DefaultMaxDistance = 50.0

	// DefaultPickerOutput is the picker's output path when -o is not given.
	DefaultPickerOutput = "gcp_list_selected.txt"

	// DefaultMapperOutput is the mapper's output path when -o is not given.
	DefaultMapperOutput = "gcp_to_image_matches.txt"
)

// Defaults represents the overridable run defaults. Fields left out of the
// JSON file keep their built-in values, so partial override files are safe.
type Defaults struct {
	ImagesPerMarker *int     `json:"images_per_marker,omitempty"`
	MaxDistance     *float64 `json:"max_distance_m,omitempty"`
	PickerOutput    *string  `json:"picker_output,omitempty"`
	MapperOutput    *string  `json:"mapper_output,omitempty"`
}

// Load reads a Defaults override file. The file must have a .json
// extension. A missing path argument ("") returns the built-in defaults.
func Load(path string) (*Defaults, error) {
	d := &Defaults{}
	if path == "" {
		return d, nil
	}

	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("defaults file must have .json extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read defaults file: %w", err)
	}
	if err := json.Unmarshal(data, d); err != nil {
		return nil, fmt.Errorf("failed to parse defaults JSON: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("invalid defaults: %w", err)
	}
	return d, nil
}

// Validate checks that any overridden values are usable.
func (d *Defaults) Validate() error {
	if d.ImagesPerMarker != nil && *d.ImagesPerMarker < 0 {
		return fmt.Errorf("images_per_marker must be non-negative, got %d", *d.ImagesPerMarker)
	}
	if d.MaxDistance != nil && *d.MaxDistance <= 0 {
		return fmt.Errorf("max_distance_m must be positive, got %f", *d.MaxDistance)
	}
	return nil
}

// GetImagesPerMarker returns the per-marker image count default.
func (d *Defaults) GetImagesPerMarker() int {
	if d.ImagesPerMarker == nil {
		return DefaultImagesPerMarker
	}
	return *d.ImagesPerMarker
}

// GetMaxDistance returns the match threshold default in metres.
func (d *Defaults) GetMaxDistance() float64 {
	if d.MaxDistance == nil {
		return DefaultMaxDistance
	}
	return *d.MaxDistance
}

// GetPickerOutput returns the picker's default output path.
func (d *Defaults) GetPickerOutput() string {
	if d.PickerOutput == nil || *d.PickerOutput == "" {
		return DefaultPickerOutput
	}
	return *d.PickerOutput
}

// GetMapperOutput returns the mapper's default output path.
func (d *Defaults) GetMapperOutput() string {
	if d.MapperOutput == nil || *d.MapperOutput == "" {
		return DefaultMapperOutput
	}
	return *d.MapperOutput
}
