package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// Game is the numbered-menu loop tying the gacha, inventory and battles
// together
type Game struct {
	inv      *Inventory
	gacha    *GachaSystem
	battle   *BattleSystem
	in       *bufio.Reader
	out      io.Writer
	savePath string
	log      *slog.Logger
}

// GameOptions wires a Game
type GameOptions struct {
	Catalog  *Catalog
	Art      ArtAttacher
	In       io.Reader
	Out      io.Writer
	SavePath string
	Seed     uint64
	Pause    time.Duration // between narrated battle actions
	Logger   *slog.Logger
}

// NewGame builds a game. Battles read from the same buffered input as the
// menu so no typed-ahead lines are lost.
func NewGame(opts GameOptions) *Game {
	in := bufio.NewReader(opts.In)
	return &Game{
		inv:      NewInventory(),
		gacha:    NewGachaSystem(opts.Catalog, opts.Art, opts.Seed),
		battle:   NewBattleSystem(in, opts.Out, opts.Seed, opts.Pause),
		in:       in,
		out:      opts.Out,
		savePath: opts.SavePath,
		log:      opts.Logger,
	}
}

// Load restores the save file when there is one. A missing file is not an error.
func (g *Game) Load() error {
	inv, err := LoadInventory(g.savePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	g.inv = inv
	g.gacha.SyncNextID(inv)
	g.log.Info("loaded save file", "path", g.savePath, "characters", len(inv.Characters()))
	fmt.Fprintf(g.out, "Loaded %d characters from %s\n", len(inv.Characters()), g.savePath)
	return nil
}

// Run shows the menu until the player quits or input ends
func (g *Game) Run(ctx context.Context) error {
	for {
		g.printMenu()

		line, ok := g.readLine()
		if !ok {
			fmt.Fprintln(g.out)
			break
		}

		switch strings.TrimSpace(line) {
		case "1":
			g.roll(ctx)
		case "2":
			g.showInventory()
		case "3":
			g.configureTeam()
		case "4":
			g.startBattle()
		case "5":
			g.inspect()
		case "6":
			g.save()
		case "0":
			fmt.Fprintln(g.out, "Goodbye!")
			return nil
		case "":
		default:
			fmt.Fprintln(g.out, errorStyle.Render("Please choose a valid menu option."))
		}

		if err := ctx.Err(); err != nil {
			return err
		}
	}

	fmt.Fprintln(g.out, "Goodbye!")
	return nil
}

func (g *Game) printMenu() {
	fmt.Fprintln(g.out, "\n"+titleStyle.Render("===== AI ASCII Gacha RPG ====="))
	for _, item := range []string{
		"1. Roll gacha",
		"2. View inventory",
		"3. Set team",
		"4. Start battle",
		"5. Inspect portrait",
		"6. Save",
		"0. Quit",
	} {
		fmt.Fprintln(g.out, baseStyle.Render(item))
	}
	fmt.Fprint(g.out, labelStyle.Render("Choice: "))
}

// readLine returns the next input line without its newline; ok is false
// once input is exhausted
func (g *Game) readLine() (string, bool) {
	line, err := g.in.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimRight(line, "\r\n"), true
}

func (g *Game) roll(ctx context.Context) {
	fmt.Fprint(g.out, "Enter a prompt for the portrait (blank for default):\n> ")
	prompt, _ := g.readLine()
	prompt = strings.TrimSpace(prompt)

	c, err := g.gacha.Roll(ctx, prompt)
	if err != nil {
		g.log.Error("roll failed", "error", err)
		fmt.Fprintln(g.out, errorStyle.Render("Roll failed: "+err.Error()))
		return
	}
	g.inv.Add(c)

	fmt.Fprintln(g.out, "\n"+accentStyle.Render("A new hero appears!"))
	fmt.Fprintln(g.out, formatCharacter(&c))
	fmt.Fprintln(g.out, "\n"+c.ASCIIArt)
}

func (g *Game) showInventory() {
	characters := g.inv.Characters()
	if len(characters) == 0 {
		fmt.Fprintln(g.out, "Your inventory is empty.")
		return
	}

	fmt.Fprintln(g.out, "\n"+titleStyle.Render("--- Inventory ---"))
	for i := range characters {
		fmt.Fprintln(g.out, formatCharacter(&characters[i]))
	}
	fmt.Fprintln(g.out, labelStyle.Render("Collection: ")+formatRarityDistribution(CalculateRarityDistribution(characters)))

	fmt.Fprintln(g.out, "\n"+titleStyle.Render("--- Team ---"))
	members := g.inv.TeamMembers()
	if len(members) == 0 {
		fmt.Fprintln(g.out, "No team selected.")
		return
	}
	for _, c := range members {
		fmt.Fprintln(g.out, "* "+formatCharacter(c))
	}

	stats := CalculateTeamStats(members)
	fmt.Fprintf(g.out, "%s %.1f | %s %d | %s %d | %s %s\n",
		labelStyle.Render("Avg rarity:"), stats.AverageRarity,
		labelStyle.Render("Total HP:"), stats.TotalHP,
		labelStyle.Render("Total ATK:"), stats.TotalAttack,
		labelStyle.Render("Strongest:"), stats.Strongest)
}

func (g *Game) configureTeam() {
	if len(g.inv.Characters()) == 0 {
		fmt.Fprintln(g.out, "Roll a character first.")
		return
	}

	fmt.Fprintf(g.out, "Enter up to %d character IDs separated by spaces: ", maxTeamSize)
	line, _ := g.readLine()

	for _, id := range g.inv.SetTeam(parseIDs(line)) {
		fmt.Fprintf(g.out, "No character with ID %d.\n", id)
	}
	fmt.Fprintln(g.out, "Team updated.")
}

// parseIDs reads integers until the first token that is not one
func parseIDs(input string) []int {
	var ids []int
	for _, field := range strings.Fields(input) {
		id, err := strconv.Atoi(field)
		if err != nil {
			break
		}
		ids = append(ids, id)
	}
	return ids
}

func (g *Game) startBattle() {
	team := g.inv.TeamMembers()
	if len(team) == 0 {
		fmt.Fprintln(g.out, "Your team is empty. Set a team first.")
		return
	}
	outcome := g.battle.RunBattle(team)
	g.log.Info("battle finished", "outcome", outcome.String(), "team", len(team))
}

func (g *Game) inspect() {
	if len(g.inv.Characters()) == 0 {
		fmt.Fprintln(g.out, "Your inventory is empty.")
		return
	}

	fmt.Fprint(g.out, "Character ID: ")
	line, _ := g.readLine()
	id, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		fmt.Fprintln(g.out, errorStyle.Render("Please enter a number."))
		return
	}

	c := g.inv.FindByID(id)
	if c == nil {
		fmt.Fprintf(g.out, "No character with ID %d.\n", id)
		return
	}

	fmt.Fprintln(g.out, formatCharacter(c))
	fmt.Fprintln(g.out, "\n"+c.ASCIIArt)

	if c.ArtImagePath == "" {
		fmt.Fprintln(g.out, subtleStyle.Render("No generated image is cached for this character."))
		return
	}
	portrait, err := RenderPortraitFile(c)
	if err != nil {
		g.log.Warn("portrait unavailable", "character", c.Name, "error", err)
		fmt.Fprintln(g.out, errorStyle.Render("Portrait unavailable: "+err.Error()))
		return
	}
	fmt.Fprintln(g.out, "\n"+portrait)
}

func (g *Game) save() {
	if err := SaveInventory(g.inv, g.savePath); err != nil {
		g.log.Error("save failed", "path", g.savePath, "error", err)
		fmt.Fprintln(g.out, errorStyle.Render("Save failed: "+err.Error()))
		return
	}
	fmt.Fprintf(g.out, "Saved %d characters to %s\n", len(g.inv.Characters()), g.savePath)
}

// formatCharacter is the one-line summary used by every listing
func formatCharacter(c *Character) string {
	stars := rarityStyle(c.Rarity).Render(rarityToString(c.Rarity))
	return fmt.Sprintf("ID: %d | %s | %s | HP: %d | ATK: %d | Skill: %s",
		c.ID, stars, c.Name, c.MaxHP, c.Attack, c.Skill)
}
