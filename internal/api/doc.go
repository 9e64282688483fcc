// Package api provides HTTP client functionality for communicating with the
// Mimecast API 2.0. It handles authentication headers, request/response
// serialization, response envelope decoding, and two stacked layers of retry
// logic.
//
// # Retry Behavior
//
// Two independent retry mechanisms cooperate:
//
//   - A low-level transport retry for connection failures and a fixed
//     allow-list of status codes (429, 500, 502, 503, 504). Configure it
//     with [RetryConfig].
//   - The quota-aware orchestrator in internal/ratelimit, which tracks
//     per-endpoint rate-limit headers, waits out exhausted quota windows,
//     and applies its own exponential backoff budget on top.
//
// The layers are deliberately independent: the transport layer smooths over
// brief network blips and load-balancer hiccups cheaply, while the
// orchestrator owns the quota bookkeeping and the caller-visible retry
// budget.
//
// # Error Handling
//
// HTTP-level failures surface as [*APIError] with the status code and any
// message parsed from the Mimecast error envelope. Connection failures that
// outlive the transport retry budget surface as [*NetworkError]. Responses
// whose envelope carries entries in the fail array surface as
// [*ResponseError] even when the HTTP status is 200.
//
// # Thread Safety
//
// The [Client] type is safe for concurrent use. Multiple goroutines may call
// methods on a single Client simultaneously.
package api
