// Package session owns the live state of every adventure in progress.
//
// A Session bundles the character, the encounter, the current scene, the
// journal and the conversation memory. Sessions live only in memory. The
// Store serializes all access to one session while letting distinct sessions
// proceed in parallel.
package session
