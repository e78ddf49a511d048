package combat

// TurnPlayer marks the player as the acting side.
const TurnPlayer = "player"

// State is the encounter sub-state of a session.
//
// Only one enemy is engaged at a time; Enemies is a slice so the wire shape
// can grow without a breaking change.
type State struct {
	Active  bool    `json:"active"`
	Enemies []Enemy `json:"enemies"`
	Turn    string  `json:"turn"`
	Round   int     `json:"round"`
}

// NewState returns an inactive encounter.
func NewState() State {
	return State{Enemies: []Enemy{}, Turn: TurnPlayer, Round: 1}
}

// Start (re)initializes the encounter with enemies at full health.
func (s *State) Start(enemies []Enemy) {
	engaged := make([]Enemy, 0, len(enemies))
	for _, e := range enemies {
		e = e.Normalize().Clone()
		e.CurrentHP = e.MaxHP
		engaged = append(engaged, e)
	}
	*s = State{Active: len(engaged) > 0, Enemies: engaged, Turn: TurnPlayer, Round: 1}
}

// End resets the encounter to inactive and empty.
func (s *State) End() {
	*s = NewState()
}

// Enemy returns the engaged enemy.
func (s *State) Enemy() (*Enemy, bool) {
	if !s.Active || len(s.Enemies) == 0 {
		return nil, false
	}
	return &s.Enemies[0], true
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	enemies := make([]Enemy, len(s.Enemies))
	for i, e := range s.Enemies {
		enemies[i] = e.Clone()
	}
	s.Enemies = enemies
	return s
}
