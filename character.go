package main

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yml
var catalogYAML []byte

var errTemplateNotFound = errors.New("character template not found")

// CharacterTemplate is an immutable catalog entry
type CharacterTemplate struct {
	Name    string `yaml:"name"`
	Rarity  int    `yaml:"rarity"`
	BaseHP  int    `yaml:"hp"`
	BaseATK int    `yaml:"attack"`
	Skill   string `yaml:"skill"`
	Prompt  string `yaml:"prompt"`
}

// Character is an owned copy of a template plus its art
type Character struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Rarity       int    `json:"rarity"`
	MaxHP        int    `json:"maxHP"`
	Attack       int    `json:"attack"`
	Skill        string `json:"skill"`
	ASCIIArt     string `json:"asciiArt"`
	ArtCachePath string `json:"artCachePath"`
	ArtImagePath string `json:"artImagePath,omitempty"`
	CurrentHP    int    `json:"-"`
}

// NewCharacter instantiates a template at full HP
func NewCharacter(id int, tmpl CharacterTemplate) Character {
	return Character{
		ID:        id,
		Name:      tmpl.Name,
		Rarity:    tmpl.Rarity,
		MaxHP:     tmpl.BaseHP,
		Attack:    tmpl.BaseATK,
		Skill:     tmpl.Skill,
		CurrentHP: tmpl.BaseHP,
	}
}

// ResetHP restores the character to full health
func (c *Character) ResetHP() {
	c.CurrentHP = c.MaxHP
}

// IsAlive reports whether the character can still act
func (c *Character) IsAlive() bool {
	return c.CurrentHP > 0
}

// rarityToString renders 1-5 stars; anything out of range shows one star
func rarityToString(rarity int) string {
	if rarity < 1 || rarity > 5 {
		rarity = 1
	}
	return strings.Repeat("★", rarity)
}

// Catalog holds every template grouped by rarity with the roll weights
type Catalog struct {
	Weights   map[int]float64     `yaml:"weights"`
	Templates []CharacterTemplate `yaml:"templates"`
}

// LoadCatalog parses the embedded catalog
func LoadCatalog() (*Catalog, error) {
	return parseCatalog(catalogYAML)
}

func parseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(c.Templates) == 0 {
		return nil, fmt.Errorf("catalog has no templates")
	}
	for _, rarity := range c.Rarities() {
		if len(c.ByRarity(rarity)) == 0 {
			return nil, fmt.Errorf("catalog has weight for rarity %d but no templates", rarity)
		}
	}
	return &c, nil
}

// Rarities returns the weighted rarity levels in ascending order
func (c *Catalog) Rarities() []int {
	rarities := make([]int, 0, len(c.Weights))
	for r, w := range c.Weights {
		if w > 0 {
			rarities = append(rarities, r)
		}
	}
	sort.Ints(rarities)
	return rarities
}

// ByRarity returns the templates of one rarity in catalog order
func (c *Catalog) ByRarity(rarity int) []CharacterTemplate {
	var out []CharacterTemplate
	for _, t := range c.Templates {
		if t.Rarity == rarity {
			out = append(out, t)
		}
	}
	return out
}

// Find looks a template up by case-insensitive name
func (c *Catalog) Find(name string) (CharacterTemplate, error) {
	for _, t := range c.Templates {
		if strings.EqualFold(t.Name, strings.TrimSpace(name)) {
			return t, nil
		}
	}
	return CharacterTemplate{}, fmt.Errorf("%w: %q", errTemplateNotFound, name)
}
