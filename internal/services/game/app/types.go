package app

import (
	"github.com/louisbranch/whispering.depths/internal/services/game/domain/combat"
	"github.com/louisbranch/whispering.depths/internal/services/game/domain/session"
)

// StartInput creates a new adventure.
type StartInput struct {
	Name     string
	Lineage  string
	Vocation string
}

// ActInput is a free-form player intent outside combat.
type ActInput struct {
	SessionID string
	Text      string
}

// CombatInput is one combat intent. Item selects the consumable for the
// item action.
type CombatInput struct {
	SessionID string
	Action    string
	Item      string
}

// TurnResult is the client state after a turn plus its narration.
type TurnResult struct {
	session.ClientState
	Narrative string `json:"narrative"`
	Mood      string `json:"mood"`
}

// CombatResult extends TurnResult with the exchange outcome.
type CombatResult struct {
	TurnResult
	CombatLog   []combat.Entry `json:"combatLog"`
	CombatEnded bool           `json:"combatEnded"`
	Victory     bool           `json:"victory"`
	Fled        bool           `json:"fled"`
	PlayerDead  bool           `json:"playerDead"`
}
