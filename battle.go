package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"time"
)

const (
	enemyName      = "Void Wraith"
	retreatChance  = 0.6
	defaultPause   = 200 * time.Millisecond
	actionPrompt   = "Choose an action (1. Attack  2. Defend  3. Retreat): "
	invalidActionF = "Unknown action %q.\n"
)

// PlayerAction is a choice made at the start of a round
type PlayerAction int

const (
	ActionAttack PlayerAction = iota + 1
	ActionDefend
	ActionRetreat
)

// BattleOutcome is how a battle ended
type BattleOutcome int

const (
	OutcomeNone BattleOutcome = iota
	OutcomeVictory
	OutcomeDefeat
	OutcomeRetreat
)

// String returns the display name for an outcome
func (o BattleOutcome) String() string {
	switch o {
	case OutcomeVictory:
		return "Victory"
	case OutcomeDefeat:
		return "Defeat"
	case OutcomeRetreat:
		return "Retreat"
	default:
		return "None"
	}
}

// Enemy is the opponent of a single battle
type Enemy struct {
	Name   string
	HP     int
	MaxHP  int
	Attack int
}

// BattleSystem runs turn-based fights against one scaled enemy
type BattleSystem struct {
	in    *bufio.Reader
	out   io.Writer
	rng   *rand.Rand
	pause time.Duration
}

// NewBattleSystem reads actions from in and narrates to out.
// A zero seed is replaced by the clock.
func NewBattleSystem(in io.Reader, out io.Writer, seed uint64, pause time.Duration) *BattleSystem {
	return &BattleSystem{
		in:    bufio.NewReader(in),
		out:   out,
		rng:   newRand(seed),
		pause: pause,
	}
}

// CreateEnemy scales the Void Wraith to the team
func CreateEnemy(team []*Character) Enemy {
	avg := CalculateAverageRarity(team)
	hp := int(200 + avg*60 + float64(len(team))*30)
	return Enemy{
		Name:   enemyName,
		HP:     hp,
		MaxHP:  hp,
		Attack: int(35 + avg*8),
	}
}

// incomingDamage halves the enemy's hit while defending, never below 1
func incomingDamage(attack int, defending bool) int {
	if defending {
		return max(1, attack/2)
	}
	return attack
}

// RunBattle fights until the enemy falls, the team falls, or the team
// retreats. Every member starts at full HP.
func (b *BattleSystem) RunBattle(team []*Character) BattleOutcome {
	if len(team) == 0 {
		fmt.Fprintln(b.out, "No characters in the team.")
		return OutcomeNone
	}

	for _, c := range team {
		c.ResetHP()
	}

	enemy := CreateEnemy(team)
	fmt.Fprintf(b.out, "\nAn enemy appears! %s (HP: %d, ATK: %d)\n",
		enemyStyle.Render(enemy.Name), enemy.HP, enemy.Attack)

	outcome := OutcomeNone
	for round := 1; outcome == OutcomeNone; round++ {
		if !anyAlive(team) {
			outcome = OutcomeDefeat
			break
		}

		fmt.Fprintf(b.out, "\n-- Round %d --\n%s\n", round, renderBattleStatus(&enemy, team))

		action, err := b.readAction()
		if err != nil {
			fmt.Fprintln(b.out, "\nInput closed, the team withdraws.")
			outcome = OutcomeRetreat
			break
		}

		defending := false
		switch action {
		case ActionAttack:
			b.attack(&enemy, team)
		case ActionDefend:
			defending = true
			fmt.Fprintln(b.out, "The team braces for impact! Incoming damage is halved.")
		case ActionRetreat:
			if b.rng.Float64() < retreatChance {
				fmt.Fprintln(b.out, "Retreat successful!")
				outcome = OutcomeRetreat
				continue
			}
			fmt.Fprintln(b.out, "Retreat failed...")
		}

		if enemy.HP <= 0 {
			outcome = OutcomeVictory
			continue
		}

		b.counterattack(&enemy, team, defending)
	}

	switch outcome {
	case OutcomeVictory:
		fmt.Fprintln(b.out, "\n"+accentStyle.Render("Victory!")+" The enemy has been defeated.")
	case OutcomeDefeat:
		fmt.Fprintln(b.out, "\n"+errorStyle.Render("Defeat...")+" The whole team has fallen.")
	case OutcomeRetreat:
		fmt.Fprintln(b.out, "\nThe team escaped the battle safely.")
	}
	return outcome
}

// attack lets each living member strike once, stopping when the enemy falls
func (b *BattleSystem) attack(enemy *Enemy, team []*Character) {
	for _, c := range team {
		if !c.IsAlive() {
			continue
		}
		enemy.HP = max(0, enemy.HP-c.Attack)
		fmt.Fprintf(b.out, "%s attacks! (%d damage) -> enemy HP: %d\n",
			rarityStyle(c.Rarity).Render(c.Name), c.Attack, enemy.HP)
		b.wait()
		if enemy.HP <= 0 {
			return
		}
	}
}

// counterattack hits one random living member
func (b *BattleSystem) counterattack(enemy *Enemy, team []*Character, defending bool) {
	var alive []*Character
	for _, c := range team {
		if c.IsAlive() {
			alive = append(alive, c)
		}
	}
	if len(alive) == 0 {
		return
	}

	target := alive[b.rng.IntN(len(alive))]
	damage := incomingDamage(enemy.Attack, defending)
	target.CurrentHP = max(0, target.CurrentHP-damage)
	fmt.Fprintf(b.out, "%s strikes back! %s takes %d damage -> HP left: %d\n",
		enemyStyle.Render(enemy.Name), target.Name, damage, target.CurrentHP)
	b.wait()
}

// readAction prompts until a valid action is entered; it fails only when
// input is exhausted
func (b *BattleSystem) readAction() (PlayerAction, error) {
	for {
		fmt.Fprint(b.out, actionPrompt)
		line, err := b.in.ReadString('\n')
		choice := strings.ToLower(strings.TrimSpace(line))
		if choice == "" && err != nil {
			if errors.Is(err, io.EOF) {
				return 0, io.EOF
			}
			return 0, fmt.Errorf("failed to read action: %w", err)
		}

		switch choice {
		case "1", "a", "attack":
			return ActionAttack, nil
		case "2", "d", "defend":
			return ActionDefend, nil
		case "3", "r", "retreat":
			return ActionRetreat, nil
		}
		fmt.Fprintf(b.out, invalidActionF, choice)
	}
}

func (b *BattleSystem) wait() {
	if b.pause > 0 {
		time.Sleep(b.pause)
	}
}

func anyAlive(team []*Character) bool {
	for _, c := range team {
		if c.IsAlive() {
			return true
		}
	}
	return false
}
