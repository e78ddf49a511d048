// Package httpapi exposes the game orchestrator over HTTP and WebSocket.
//
// Every route speaks JSON. Errors carry a localized message and the domain
// error code; see platform/httpx for the body shape.
package httpapi
