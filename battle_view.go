package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	hpBarWidth = 20
	hpFullChar = "█"
	hpLostChar = "░"
)

// renderHPBar draws current/max as a bar colored by the remaining ratio
func renderHPBar(current, maxHP, width int) string {
	if width < 1 {
		width = 1
	}
	ratio := 0.0
	if maxHP > 0 {
		ratio = float64(max(current, 0)) / float64(maxHP)
	}
	ratio = clamp(ratio, 0, 1)

	filled := int(ratio * float64(width))
	// Any HP left shows at least one cell
	if filled == 0 && current > 0 {
		filled = 1
	}

	full := lipgloss.NewStyle().
		Foreground(lipgloss.Color(CurrentTheme.HPColor(ratio))).
		Render(strings.Repeat(hpFullChar, filled))
	lost := subtleStyle.Render(strings.Repeat(hpLostChar, width-filled))

	return full + lost
}

// renderCombatant is one "name [bar] cur/max" status line
func renderCombatant(name string, style lipgloss.Style, current, maxHP int) string {
	label := style.Render(fmt.Sprintf("%-16s", name))
	return fmt.Sprintf("%s %s %d/%d", label, renderHPBar(current, maxHP, hpBarWidth), max(current, 0), maxHP)
}

// renderBattleStatus shows the enemy and every team member
func renderBattleStatus(enemy *Enemy, team []*Character) string {
	lines := []string{renderCombatant(enemy.Name, enemyStyle, enemy.HP, enemy.MaxHP)}
	for _, c := range team {
		lines = append(lines, renderCombatant(c.Name, rarityStyle(c.Rarity), c.CurrentHP, c.MaxHP))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
