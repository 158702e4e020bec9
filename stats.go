package main

import (
	"fmt"
	"sort"
	"strings"
)

// TeamStats holds figures derived from a set of characters
type TeamStats struct {
	Size          int
	AverageRarity float64
	TotalHP       int
	TotalAttack   int
	RarityCounts  map[int]int // rarity -> number of characters
	Strongest     string
}

// CalculateAverageRarity returns the mean star count, or 1 for an empty team
func CalculateAverageRarity(members []*Character) float64 {
	if len(members) == 0 {
		return 1.0
	}

	sum := 0
	for _, c := range members {
		sum += c.Rarity
	}
	return float64(sum) / float64(len(members))
}

// CalculateRarityDistribution counts characters per rarity
func CalculateRarityDistribution(characters []Character) map[int]int {
	counts := make(map[int]int)
	for _, c := range characters {
		counts[c.Rarity]++
	}
	return counts
}

// CalculateTeamStats calculates all team statistics
func CalculateTeamStats(members []*Character) TeamStats {
	stats := TeamStats{
		Size:          len(members),
		AverageRarity: CalculateAverageRarity(members),
		RarityCounts:  make(map[int]int),
	}

	bestAttack := -1
	for _, c := range members {
		stats.TotalHP += c.MaxHP
		stats.TotalAttack += c.Attack
		stats.RarityCounts[c.Rarity]++

		// Ties keep the earlier team slot
		if c.Attack > bestAttack {
			bestAttack = c.Attack
			stats.Strongest = c.Name
		}
	}

	return stats
}

// formatRarityDistribution renders "5★ x1 | 3★ x2", highest rarity first
func formatRarityDistribution(counts map[int]int) string {
	if len(counts) == 0 {
		return "No characters"
	}

	var rarities []int
	for r := range counts {
		rarities = append(rarities, r)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(rarities)))

	parts := make([]string, 0, len(rarities))
	for _, r := range rarities {
		parts = append(parts, fmt.Sprintf("%d★ x%d", r, counts[r]))
	}
	return strings.Join(parts, " | ")
}
