package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

// ArtAttacher fills in a freshly rolled character's art
type ArtAttacher interface {
	AttachASCIIArt(ctx context.Context, c *Character, tmpl CharacterTemplate, userPrompt string)
}

// GachaSystem rolls characters from the catalog
type GachaSystem struct {
	catalog *Catalog
	art     ArtAttacher
	rng     *rand.Rand
	nextID  int
}

// NewGachaSystem creates a roller. A zero seed is replaced by the clock.
func NewGachaSystem(catalog *Catalog, art ArtAttacher, seed uint64) *GachaSystem {
	return &GachaSystem{
		catalog: catalog,
		art:     art,
		rng:     newRand(seed),
		nextID:  1,
	}
}

func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Roll picks a rarity by weight, then a template uniformly within it,
// assigns the next id and attaches art
func (g *GachaSystem) Roll(ctx context.Context, userPrompt string) (Character, error) {
	tmpl, err := g.pickTemplate()
	if err != nil {
		return Character{}, err
	}

	c := NewCharacter(g.nextID, tmpl)
	g.nextID++

	g.art.AttachASCIIArt(ctx, &c, tmpl, userPrompt)
	return c, nil
}

func (g *GachaSystem) pickTemplate() (CharacterTemplate, error) {
	rarity := g.pickRarity()
	candidates := g.catalog.ByRarity(rarity)
	if len(candidates) == 0 {
		return CharacterTemplate{}, fmt.Errorf("%w: no templates for rarity %d", errTemplateNotFound, rarity)
	}
	return candidates[g.rng.IntN(len(candidates))], nil
}

// pickRarity walks the cumulative weights in ascending rarity order
func (g *GachaSystem) pickRarity() int {
	rarities := g.catalog.Rarities()
	if len(rarities) == 0 {
		return 1
	}

	total := 0.0
	for _, r := range rarities {
		total += g.catalog.Weights[r]
	}

	roll := g.rng.Float64() * total
	for _, r := range rarities {
		roll -= g.catalog.Weights[r]
		if roll < 0 {
			return r
		}
	}
	return rarities[len(rarities)-1]
}

// SyncNextID makes the next id exceed every id already in inv
func (g *GachaSystem) SyncNextID(inv *Inventory) {
	maxID := 0
	for _, c := range inv.Characters() {
		maxID = max(maxID, c.ID)
	}
	g.nextID = max(g.nextID, maxID+1)
}
