package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	goghthemes "github.com/willyv3/gogh-themes"
)

const defaultThemeName = "Dracula"

// Theme provides all colors for the game screens.
type Theme struct {
	// Base colors
	Background string
	Foreground string
	Subtle     string

	// Semantic colors
	Red    string
	Green  string
	Yellow string
	Blue   string
	Purple string
	Cyan   string
	Gray   string

	// Rarity colors, index 0 is one star
	Rarity [5]string

	// HP bar levels from empty to full
	HPCritical string
	HPLow      string
	HPHigh     string
}

// themes registry - all themes from gogh-themes package
var themes = make(map[string]Theme)

// CurrentTheme is the active theme
var CurrentTheme Theme

// currentThemeName is reported by the themes command
var currentThemeName string

// themeOrder is the sorted list of registered names
var themeOrder []string

// InitTheme selects the palette by name, or loads it from a YAML file when
// file is set. Unknown names fall back to Dracula, then to the first theme.
func InitTheme(name, file string) error {
	if len(themes) == 0 {
		loadAllThemes()
		buildThemeOrder()
	}

	if file != "" {
		yt, err := LoadThemeFromYAML(file)
		if err != nil {
			return err
		}
		CurrentTheme = yt.ConvertToTheme()
		currentThemeName = yt.Name
		InitStyles()
		return nil
	}

	if name == "" {
		name = defaultThemeName
	}
	theme, exists := themes[name]
	if !exists {
		theme, exists = themes[defaultThemeName]
		name = defaultThemeName
	}
	if !exists && len(themeOrder) > 0 {
		name = themeOrder[0]
		theme = themes[name]
	}

	CurrentTheme = theme
	currentThemeName = name
	InitStyles()
	return nil
}

// loadAllThemes converts every gogh theme
func loadAllThemes() {
	for name, g := range goghthemes.All() {
		themes[name] = Theme{
			Background: g.Background,
			Foreground: g.Foreground,
			Subtle:     generateShade(g.Background, 1.3),

			Red:    g.Red,
			Green:  g.Green,
			Yellow: g.Yellow,
			Blue:   g.Blue,
			Purple: g.Magenta,
			Cyan:   g.Cyan,
			Gray:   g.White,

			Rarity: [5]string{g.White, g.Green, g.Blue, g.Magenta, g.BrightYellow},

			HPCritical: g.Red,
			HPLow:      g.Yellow,
			HPHigh:     g.Green,
		}
	}
}

// buildThemeOrder sorts theme names alphabetically
func buildThemeOrder() {
	themeOrder = make([]string, 0, len(themes))
	for name := range themes {
		themeOrder = append(themeOrder, name)
	}
	sort.Strings(themeOrder)
}

// ThemeNames returns every registered theme name in sorted order
func ThemeNames() []string {
	if len(themes) == 0 {
		loadAllThemes()
		buildThemeOrder()
	}
	return themeOrder
}

// GetCurrentThemeName returns the name of the active theme
func GetCurrentThemeName() string {
	return currentThemeName
}

// RarityColor returns the theme color for a star count
func (t Theme) RarityColor(rarity int) string {
	if rarity < 1 || rarity > len(t.Rarity) {
		rarity = 1
	}
	return t.Rarity[rarity-1]
}

// HPColor picks the bar color for the remaining HP ratio
func (t Theme) HPColor(ratio float64) string {
	switch {
	case ratio > 0.5:
		return t.HPHigh
	case ratio > 0.2:
		return t.HPLow
	default:
		return t.HPCritical
	}
}

// generateShade adjusts the brightness of a color
// factor < 1.0 darkens, factor > 1.0 brightens
func generateShade(hexColor string, factor float64) string {
	hex := strings.TrimPrefix(hexColor, "#")
	if len(hex) != 6 {
		return hexColor
	}

	r, _ := strconv.ParseInt(hex[0:2], 16, 64)
	g, _ := strconv.ParseInt(hex[2:4], 16, 64)
	b, _ := strconv.ParseInt(hex[4:6], 16, 64)

	return fmt.Sprintf("#%02x%02x%02x", scaleChannel(r, factor), scaleChannel(g, factor), scaleChannel(b, factor))
}

func scaleChannel(v int64, factor float64) int64 {
	v = int64(float64(v) * factor)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
