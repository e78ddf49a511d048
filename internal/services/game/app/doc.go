// Package app orchestrates game turns.
//
// Each turn (start, free-form action, combat action) runs inside one
// exclusive session update: mechanics are resolved first, the narrator is
// consulted next, and the conversation memory records the result last.
// Narrator failures never abort a turn; the deterministic fallbacks from
// package narrator are substituted and the failure is logged and audited.
package app
