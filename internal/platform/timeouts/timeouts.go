// Package timeouts defines shared timeout constants used across the process.
// Centralizing these values prevents drift between layers and makes the
// durations discoverable.
package timeouts

import "time"

// NarratorRequest caps a single narrator round trip, retries included.
const NarratorRequest = 20 * time.Second

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// WebSocketWrite bounds a single frame write to a client.
const WebSocketWrite = 10 * time.Second

// WebSocketPong is how long a client may stay silent before the socket is
// considered dead.
const WebSocketPong = 60 * time.Second
