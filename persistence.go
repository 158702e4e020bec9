package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/gjson"
)

var errEmptySave = errors.New("save file is empty")

// saveFile is the on-disk layout: {"characters":[...],"team":[...]}
type saveFile struct {
	Characters []Character `json:"characters"`
	Team       []int       `json:"team"`
}

// SaveInventory writes the inventory as indented JSON
func SaveInventory(inv *Inventory, path string) error {
	data := saveFile{
		Characters: inv.Characters(),
		Team:       inv.TeamIDs(),
	}
	if data.Characters == nil {
		data.Characters = []Character{}
	}
	if data.Team == nil {
		data.Team = []int{}
	}

	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode save data: %w", err)
	}
	if err := writeFileAtomic(path, encoded); err != nil {
		return fmt.Errorf("failed to write save file: %w", err)
	}
	return nil
}

// LoadInventory reads a save file. Missing character fields take their
// defaults (name "Unknown", rarity 1) and every character starts at full HP.
func LoadInventory(path string) (*Inventory, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read save file: %w", err)
	}
	if len(content) == 0 {
		return nil, errEmptySave
	}
	if !gjson.ValidBytes(content) {
		return nil, fmt.Errorf("failed to parse save file %s: invalid JSON", path)
	}

	root := gjson.ParseBytes(content)
	inv := NewInventory()

	root.Get("characters").ForEach(func(_, value gjson.Result) bool {
		inv.Add(characterFromJSON(value))
		return true
	})

	root.Get("team").ForEach(func(_, value gjson.Result) bool {
		inv.teamIDs = append(inv.teamIDs, int(value.Int()))
		return true
	})

	return inv, nil
}

func characterFromJSON(value gjson.Result) Character {
	c := Character{
		ID:           int(value.Get("id").Int()),
		Name:         stringOr(value.Get("name"), "Unknown"),
		Rarity:       1,
		MaxHP:        int(value.Get("maxHP").Int()),
		Attack:       int(value.Get("attack").Int()),
		Skill:        value.Get("skill").String(),
		ASCIIArt:     value.Get("asciiArt").String(),
		ArtCachePath: value.Get("artCachePath").String(),
		ArtImagePath: value.Get("artImagePath").String(),
	}
	if r := value.Get("rarity"); r.Exists() {
		c.Rarity = int(r.Int())
	}
	c.ResetHP()
	return c
}

func stringOr(r gjson.Result, fallback string) string {
	if !r.Exists() {
		return fallback
	}
	return r.String()
}
