package profiles

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"svacron-metals/internal/models"
)

// File is the YAML layout of a profiles file
type File struct {
	Metals []Profile `yaml:"metals"`
}

// LoadFromYAML reads profiles from a YAML file. Metals absent from the file
// keep their built-in defaults; fields left empty in a listed metal are filled
// from the default for that metal.
func LoadFromYAML(filePath string) (Set, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse profiles YAML: %w", err)
	}

	if len(file.Metals) == 0 {
		return nil, fmt.Errorf("no metals found in profiles file")
	}

	set := Defaults()
	for _, p := range file.Metals {
		metal, ok := models.ParseMetalType(string(p.Metal))
		if !ok {
			return nil, fmt.Errorf("unknown metal %q in profiles file", p.Metal)
		}
		p.Metal = metal
		merged := merge(set[metal], p)
		if err := merged.Validate(); err != nil {
			return nil, fmt.Errorf("invalid profile: %w", err)
		}
		set[metal] = merged
	}

	return set, nil
}

// LoadWithFallback tries the YAML file and falls back to the defaults
func LoadWithFallback(filePath string, logger *logrus.Logger) Set {
	set, err := LoadFromYAML(filePath)
	if err != nil {
		logger.WithError(err).WithField("file", filePath).Warn("Using built-in metal profiles")
		return Defaults()
	}
	logger.WithField("file", filePath).Info("Loaded metal profiles")
	return set
}

func merge(base, override Profile) Profile {
	out := base
	if override.Name != "" {
		out.Name = override.Name
	}
	if override.Color != "" {
		out.Color = override.Color
	}
	if !override.HistoryBasisGrams.IsZero() {
		out.HistoryBasisGrams = override.HistoryBasisGrams
	}
	if len(override.Purities) > 0 {
		out.Purities = override.Purities
	}
	if len(override.Weights) > 0 {
		out.Weights = override.Weights
	}
	if override.SummaryWindow != 0 {
		out.SummaryWindow = override.SummaryWindow
	}
	if override.WeightRows != 0 {
		out.WeightRows = override.WeightRows
	}
	if !override.BasePrice.IsZero() {
		out.BasePrice = override.BasePrice
	}
	return out
}
