package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"medassist-ai/internal/llm"
	"medassist-ai/internal/places"
)

// Profile groups the tunables that are fixed for a deployment: model
// sampling, the nearby search and the role-setting prompts.
type Profile struct {
	Sampling llm.Sampling  `yaml:"sampling"`
	Search   places.Search `yaml:"search"`
	Prompts  llm.Prompts   `yaml:"prompts"`
}

func DefaultProfile() Profile {
	return Profile{
		Sampling: llm.DefaultSampling(),
		Search:   places.DefaultSearch(),
		Prompts:  llm.DefaultPrompts(),
	}
}

// LoadProfile overlays the YAML file at path on DefaultProfile. Keys absent
// from the file keep their default. An empty path returns the defaults.
func LoadProfile(path string) (Profile, error) {
	profile := DefaultProfile()

	path = strings.TrimSpace(path)
	if path == "" {
		return profile, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return Profile{}, fmt.Errorf("parse profile %s: %w", path, err)
	}

	if err := profile.validate(); err != nil {
		return Profile{}, fmt.Errorf("profile %s: %w", path, err)
	}
	profile.Prompts = profile.Prompts.WithDefaults()
	return profile, nil
}

func (p Profile) validate() error {
	switch {
	case p.Sampling.Temperature < 0 || p.Sampling.Temperature > 2:
		return fmt.Errorf("sampling.temperature %v out of range [0, 2]", p.Sampling.Temperature)
	case p.Sampling.TopP < 0 || p.Sampling.TopP > 1:
		return fmt.Errorf("sampling.top_p %v out of range [0, 1]", p.Sampling.TopP)
	case p.Sampling.TopK < 0:
		return fmt.Errorf("sampling.top_k must not be negative")
	case p.Sampling.MaxOutputTokens <= 0:
		return fmt.Errorf("sampling.max_output_tokens must be positive")
	case p.Search.RadiusMeters <= 0:
		return fmt.Errorf("search.radius_meters must be positive")
	case p.Search.Limit <= 0:
		return fmt.Errorf("search.limit must be positive")
	}
	return nil
}
