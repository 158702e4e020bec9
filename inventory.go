package main

// maxTeamSize is how many characters fight together
const maxTeamSize = 3

// Inventory is the ordered list of owned characters plus the team selection
type Inventory struct {
	characters []Character
	teamIDs    []int
}

// NewInventory returns an empty inventory
func NewInventory() *Inventory {
	return &Inventory{}
}

// Add appends a character
func (inv *Inventory) Add(c Character) {
	inv.characters = append(inv.characters, c)
}

// Characters returns the owned characters in acquisition order
func (inv *Inventory) Characters() []Character {
	return inv.characters
}

// FindByID returns the stored character with id, or nil
func (inv *Inventory) FindByID(id int) *Character {
	for i := range inv.characters {
		if inv.characters[i].ID == id {
			return &inv.characters[i]
		}
	}
	return nil
}

// SetTeam keeps the first three ids and drops those not in the inventory.
// The dropped ids are returned so callers can report them.
func (inv *Inventory) SetTeam(ids []int) []int {
	if len(ids) > maxTeamSize {
		ids = ids[:maxTeamSize]
	}

	var dropped []int
	team := make([]int, 0, len(ids))
	for _, id := range ids {
		if inv.FindByID(id) == nil {
			dropped = append(dropped, id)
			continue
		}
		team = append(team, id)
	}
	inv.teamIDs = team
	return dropped
}

// TeamIDs returns the selected ids in team order
func (inv *Inventory) TeamIDs() []int {
	return inv.teamIDs
}

// TeamMembers resolves the team ids to stored characters, skipping
// ids that no longer exist
func (inv *Inventory) TeamMembers() []*Character {
	var members []*Character
	for _, id := range inv.teamIDs {
		if c := inv.FindByID(id); c != nil {
			members = append(members, c)
		}
	}
	return members
}
