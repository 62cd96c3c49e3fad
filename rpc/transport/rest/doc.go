// Package rest implements a REST bridge in front of the RPC handler using gin. It lets
// plain HTTP clients (curl, browsers, form posts) call any registered RPC method
// without speaking an envelope format.
//
// Routes:
//
//   - POST|GET /call/:command: the pairs of the query string followed by the pairs of
//     an application/x-www-form-urlencoded body form the request message, :command is
//     its command. The answer is JSON: the response command, its flat pairs in order
//     and a nested view of the pairs (see Tree). Error responses answer 422.
//
//   - GET /metrics: Prometheus exposition of all VictoriaMetrics counters.
//
// Requests above the configured rate (golang.org/x/time/rate token bucket, RateLimit
// requests per second with RateBurst burst) are rejected with 429.
//
// Example:
//
//	curl -d 'id=...&name=Widget&tags[0]=a' http://localhost:8081/call/catalog.put
package rest
