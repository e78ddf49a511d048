package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeUnknown             = "UNKNOWN"
	CodeNameEmpty           = "NAME_EMPTY"
	CodeLineageEmpty        = "LINEAGE_EMPTY"
	CodeVocationEmpty       = "VOCATION_EMPTY"
	CodeSessionIDEmpty      = "SESSION_ID_EMPTY"
	CodeActionEmpty         = "ACTION_EMPTY"
	CodeMalformedBody       = "MALFORMED_BODY"
	CodeSessionNotFound     = "SESSION_NOT_FOUND"
	CodeCombatInactive      = "COMBAT_INACTIVE"
	CodeDiceInvalidSpec     = "DICE_INVALID_SPEC"
	CodeNarratorUnavailable = "NARRATOR_UNAVAILABLE"
)

var enUSMessages = map[Code]string{
	CodeUnknown:             "Something went wrong in the depths. Please try again.",
	CodeNameEmpty:           "Name, race, and class are required.",
	CodeLineageEmpty:        "Name, race, and class are required.",
	CodeVocationEmpty:       "Name, race, and class are required.",
	CodeSessionIDEmpty:      "sessionId and action are required.",
	CodeActionEmpty:         "sessionId and action are required.",
	CodeMalformedBody:       "Request body must be valid JSON.",
	CodeSessionNotFound:     "Session not found.",
	CodeCombatInactive:      "No active combat.",
	CodeDiceInvalidSpec:     "Dice must have positive sides and count.",
	CodeNarratorUnavailable: "The Dungeon Master is momentarily silent.",
}
