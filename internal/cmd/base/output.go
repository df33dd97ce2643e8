package base

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Output formats accepted by the -format flag.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ValidateFormat returns an error for unknown output formats.
func ValidateFormat(format string) error {
	switch format {
	case FormatText, FormatJSON, FormatYAML:
		return nil
	default:
		return fmt.Errorf("unknown format %q: must be text, json or yaml", format)
	}
}

// Render encodes v as JSON or YAML. For the text format, text is called
// instead. YAML uses the JSON field names.
func Render(format string, v any, text func() string) (string, error) {
	switch format {
	case FormatText:
		return text(), nil

	case FormatJSON:
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", fmt.Errorf("error encoding JSON: %w", err)
		}
		return string(out), nil

	case FormatYAML:
		raw, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("error encoding YAML: %w", err)
		}
		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return "", fmt.Errorf("error encoding YAML: %w", err)
		}
		out, err := yaml.Marshal(generic)
		if err != nil {
			return "", fmt.Errorf("error encoding YAML: %w", err)
		}
		return strings.TrimSuffix(string(out), "\n"), nil

	default:
		return "", ValidateFormat(format)
	}
}

// Output renders v in format and writes it to the UI.
func (c *Command) Output(format string, v any, text func() string) int {
	out, err := Render(format, v, text)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	c.UI.Output(out)
	return 0
}
