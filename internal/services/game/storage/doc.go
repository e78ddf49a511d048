// Package storage defines persistence interfaces for the game service.
//
// Sessions are memory-resident and never stored here. The only durable record
// is the operational audit trail; implementations (e.g., SQLite) live in
// subpackages.
package storage
