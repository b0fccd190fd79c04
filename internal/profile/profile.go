// Package profile loads the candidate profile document consumed by the
// evaluation pipeline.
package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultExperienceThreshold applies when the profile carries no usable
// preferences.seniority.max_required_years value.
const DefaultExperienceThreshold = 2

// Document is a candidate profile. The pipeline treats it as an opaque
// structured document; only the seniority preference is interpreted.
type Document struct {
	raw map[string]any
}

// New wraps an already decoded document.
func New(raw map[string]any) *Document {
	return &Document{raw: raw}
}

// Load reads a profile from a JSON or YAML file, decided by extension. A
// missing or unparseable profile is an error: nothing can be evaluated
// without one.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile %q: %w", path, err)
	}

	raw := make(map[string]any)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing profile %q: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing profile %q: %w", path, err)
		}
	}

	return &Document{raw: raw}, nil
}

type seniorityPreferences struct {
	Preferences struct {
		Seniority struct {
			MaxRequiredYears *float64 `mapstructure:"max_required_years"`
		} `mapstructure:"seniority"`
	} `mapstructure:"preferences"`
}

// ExperienceThreshold resolves the maximum acceptable years-of-experience
// requirement from the profile. Missing keys, a wrong type or a negative
// value fall back to DefaultExperienceThreshold.
func (d *Document) ExperienceThreshold() int {
	if d == nil || d.raw == nil {
		return DefaultExperienceThreshold
	}

	var prefs seniorityPreferences
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{Result: &prefs})
	if err != nil {
		return DefaultExperienceThreshold
	}
	if err := decoder.Decode(d.raw); err != nil {
		return DefaultExperienceThreshold
	}

	years := prefs.Preferences.Seniority.MaxRequiredYears
	if years == nil || *years < 0 {
		return DefaultExperienceThreshold
	}

	return int(*years)
}

// JSON renders the document as indented JSON for embedding in prompts.
func (d *Document) JSON() (string, error) {
	data, err := json.MarshalIndent(d.raw, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal profile: %w", err)
	}

	return string(data), nil
}
