package io

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/hicluster/pkg/pipeline"
)

// Report formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ValidFormats is the set of supported report formats.
var ValidFormats = map[string]bool{
	FormatCSV:  true,
	FormatJSON: true,
	FormatYAML: true,
}

// FormatFromPath guesses a report format from a file extension, defaulting
// to CSV.
func FormatFromPath(path string) string {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".json"):
		return FormatJSON
	case strings.HasSuffix(lower, ".yaml"), strings.HasSuffix(lower, ".yml"):
		return FormatYAML
	}
	return FormatCSV
}

// WriteReport writes res to w in format.
func WriteReport(w io.Writer, res *pipeline.Result, format string) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, res)
	case FormatJSON:
		return WriteJSON(w, res)
	case FormatYAML:
		return WriteYAML(w, res)
	}
	return fmt.Errorf("unsupported report format: %q", format)
}

// ReadReport reads a report written by [WriteReport].
func ReadReport(r io.Reader, format string) (*pipeline.Result, error) {
	switch format {
	case FormatCSV:
		return ReadCSV(r)
	case FormatJSON:
		var res pipeline.Result
		if err := json.NewDecoder(r).Decode(&res); err != nil {
			return nil, fmt.Errorf("decode json report: %w", err)
		}
		return &res, nil
	case FormatYAML:
		var res pipeline.Result
		if err := yaml.NewDecoder(r).Decode(&res); err != nil {
			return nil, fmt.Errorf("decode yaml report: %w", err)
		}
		return &res, nil
	}
	return nil, fmt.Errorf("unsupported report format: %q", format)
}

// WriteJSON writes res as indented JSON.
func WriteJSON(w io.Writer, res *pipeline.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}
	return nil
}

// WriteYAML writes res as YAML.
func WriteYAML(w io.Writer, res *pipeline.Result) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encode yaml report: %w", err)
	}
	return enc.Close()
}
