package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLTheme is a terminal color scheme with 16 ANSI colors, as exported
// by gogh and most terminal theme collections
type YAMLTheme struct {
	Name       string `yaml:"name"`
	Author     string `yaml:"author"`
	Variant    string `yaml:"variant"` // dark or light
	Background string `yaml:"background"`
	Foreground string `yaml:"foreground"`

	Color01 string `yaml:"color_01"` // Black
	Color02 string `yaml:"color_02"` // Red
	Color03 string `yaml:"color_03"` // Green
	Color04 string `yaml:"color_04"` // Yellow
	Color05 string `yaml:"color_05"` // Blue
	Color06 string `yaml:"color_06"` // Magenta
	Color07 string `yaml:"color_07"` // Cyan
	Color08 string `yaml:"color_08"` // White
	Color10 string `yaml:"color_10"` // Bright Red
	Color11 string `yaml:"color_11"` // Bright Green
	Color12 string `yaml:"color_12"` // Bright Yellow
	Color13 string `yaml:"color_13"` // Bright Blue
	Color14 string `yaml:"color_14"` // Bright Magenta
}

// ConvertToTheme maps the ANSI colors onto game colors.
// Semantic colors come from the bright half of the palette for contrast.
func (yt *YAMLTheme) ConvertToTheme() Theme {
	return Theme{
		Background: yt.Background,
		Foreground: yt.Foreground,
		Subtle:     generateShade(yt.Background, 1.3),

		Red:    yt.Color10,
		Green:  yt.Color11,
		Yellow: yt.Color12,
		Blue:   yt.Color13,
		Purple: yt.Color14,
		Cyan:   yt.Color07,
		Gray:   yt.Color08,

		Rarity: [5]string{yt.Color08, yt.Color03, yt.Color05, yt.Color06, yt.Color12},

		HPCritical: yt.Color02,
		HPLow:      yt.Color04,
		HPHigh:     yt.Color03,
	}
}

// LoadThemeFromYAML loads a single YAML theme file
func LoadThemeFromYAML(filePath string) (*YAMLTheme, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read theme file: %w", err)
	}

	var yamlTheme YAMLTheme
	if err := yaml.Unmarshal(data, &yamlTheme); err != nil {
		return nil, fmt.Errorf("failed to parse theme file %s: %w", filePath, err)
	}
	if yamlTheme.Name == "" {
		yamlTheme.Name = filePath
	}

	return &yamlTheme, nil
}
