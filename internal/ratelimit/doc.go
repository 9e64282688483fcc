// Package ratelimit implements the rate-limit-aware request orchestrator
// that sits between the API client and the HTTP transport.
//
// It tracks the most recently observed quota snapshot per endpoint
// (reported by the x-mc-rate-limit-* response headers), waits out
// exhausted quota windows before sending, and retries throttled (429) or
// transiently failing requests with exponential backoff. Throttling and
// transient failures each get their own retry budget.
//
// The orchestrator's retry loop is independent of, and stacked on top of,
// any low-level retry the Transport implementation applies for connection
// failures. The stacking mirrors the Mimecast API guidance and is
// deliberate; either layer can be configured down to zero retries.
package ratelimit
