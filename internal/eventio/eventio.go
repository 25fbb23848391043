// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package eventio reads event files and writes feature files. Both are YAML
// or JSON, chosen by file extension.
package eventio

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/singlelep/internal/calc"
	"github.com/pdiddy/singlelep/pkg/types"
)

// EventFile is the on-disk representation of a batch of events.
type EventFile struct {
	Events []types.Event `json:"events" yaml:"events"`
}

// FeatureFile is the on-disk representation of an analysed batch.
type FeatureFile struct {
	Source string               `json:"source,omitempty" yaml:"source,omitempty"`
	Events []calc.EventFeatures `json:"events" yaml:"events"`
}

// FormatOf returns the encoding implied by the extension of path.
func FormatOf(path string) (types.OutputFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return types.OutputYAML, nil
	case ".json":
		return types.OutputJSON, nil
	default:
		return "", fmt.Errorf("unsupported file extension %q (want .yaml, .yml or .json)", filepath.Ext(path))
	}
}

// ReadEventFile loads the events stored at path.
func ReadEventFile(path string) ([]types.Event, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading event file: %w", err)
	}

	var ef EventFile
	switch format {
	case types.OutputJSON:
		err = json.Unmarshal(data, &ef)
	default:
		err = yaml.Unmarshal(data, &ef)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing event file %s: %w", path, err)
	}
	return ef.Events, nil
}

// WriteFeatureFile saves ff to path.
func WriteFeatureFile(path string, ff FeatureFile) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	if ff.Events == nil {
		ff.Events = []calc.EventFeatures{}
	}

	var data []byte
	switch format {
	case types.OutputJSON:
		data, err = json.MarshalIndent(&ff, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	default:
		data, err = yaml.Marshal(&ff)
	}
	if err != nil {
		return fmt.Errorf("marshaling feature file: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}
