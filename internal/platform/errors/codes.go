// Package errors provides structured error handling with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Request validation errors
	CodeNameEmpty      Code = "NAME_EMPTY"
	CodeLineageEmpty   Code = "LINEAGE_EMPTY"
	CodeVocationEmpty  Code = "VOCATION_EMPTY"
	CodeSessionIDEmpty Code = "SESSION_ID_EMPTY"
	CodeActionEmpty    Code = "ACTION_EMPTY"
	CodeMalformedBody  Code = "MALFORMED_BODY"

	// Session errors
	CodeSessionNotFound Code = "SESSION_NOT_FOUND"

	// Combat errors
	CodeCombatInactive Code = "COMBAT_INACTIVE"

	// Dice/mechanics errors
	CodeDiceInvalidSpec Code = "DICE_INVALID_SPEC"

	// External dependency errors
	CodeNarratorUnavailable Code = "NARRATOR_UNAVAILABLE"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeNameEmpty,
		CodeLineageEmpty,
		CodeVocationEmpty,
		CodeSessionIDEmpty,
		CodeActionEmpty,
		CodeMalformedBody,
		CodeDiceInvalidSpec:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeCombatInactive:
		return codes.FailedPrecondition

	// NotFound - resource doesn't exist
	case CodeSessionNotFound:
		return codes.NotFound

	// Unavailable - an external collaborator failed
	case CodeNarratorUnavailable:
		return codes.Unavailable

	default:
		return codes.Internal
	}
}
