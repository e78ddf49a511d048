// Package audit contains durable audit writes for game service operations.
//
// Session starts and encounter outcomes are recorded for incident analysis.
// Gameplay never reads them back, so sessions stay memory-resident.
//
// For distributed tracing, this service uses package `internal/platform/otel`.
package audit
