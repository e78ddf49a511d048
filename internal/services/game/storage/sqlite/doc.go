// Package sqlite implements the audit trail on SQLite.
//
// Schema changes ship as embedded migrations applied on Open, so a fresh file
// and an existing one converge on the same shape.
package sqlite
