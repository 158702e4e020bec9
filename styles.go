package main

import "github.com/charmbracelet/lipgloss"

// Styles are rebuilt by InitStyles whenever the theme changes

// GetBaseStyle returns the base text style with theme foreground color
func GetBaseStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(CurrentTheme.Foreground))
}

// GetTitleStyle returns the title style with theme blue color
func GetTitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(CurrentTheme.Blue))
}

// GetLabelStyle returns the label style with theme gray color
func GetLabelStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(CurrentTheme.Gray))
}

// GetAccentStyle returns the accent style with theme green color
func GetAccentStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(CurrentTheme.Green)).
		Bold(true)
}

// GetSubtleStyle returns the subtle style with theme subtle color
func GetSubtleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(CurrentTheme.Subtle))
}

// GetErrorStyle returns the error style with theme red color
func GetErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(CurrentTheme.Red)).
		Bold(true)
}

// GetLoadingStyle returns the loading style with theme gray color
func GetLoadingStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(CurrentTheme.Gray)).
		Bold(true)
}

// GetEnemyStyle returns the style for enemy names and attacks
func GetEnemyStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(CurrentTheme.Purple)).
		Bold(true)
}

var (
	baseStyle    = GetBaseStyle()
	titleStyle   = GetTitleStyle()
	labelStyle   = GetLabelStyle()
	accentStyle  = GetAccentStyle()
	subtleStyle  = GetSubtleStyle()
	errorStyle   = GetErrorStyle()
	loadingStyle = GetLoadingStyle()
	enemyStyle   = GetEnemyStyle()
)

// InitStyles must be called after the theme is selected
func InitStyles() {
	baseStyle = GetBaseStyle()
	titleStyle = GetTitleStyle()
	labelStyle = GetLabelStyle()
	accentStyle = GetAccentStyle()
	subtleStyle = GetSubtleStyle()
	errorStyle = GetErrorStyle()
	loadingStyle = GetLoadingStyle()
	enemyStyle = GetEnemyStyle()
}

// rarityStyle colors a character name or star string by rarity
func rarityStyle(rarity int) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(CurrentTheme.RarityColor(rarity))).
		Bold(rarity >= 4)
}

// barStyle is a filled bar segment of the given fraction of maxWidth
func barStyle(fraction float64, maxWidth int, color string) lipgloss.Style {
	width := int(fraction * float64(maxWidth))
	if width < 1 {
		width = 1
	}
	return lipgloss.NewStyle().
		Background(lipgloss.Color(color)).
		Width(width)
}
