// Package sdk is the HTTP client used by the mobile app and the authoring
// CLI to talk to the Hangeul Lab API.
//
// Requests are issued by endpoint name and path parameters against a flat
// route catalog. Each request carries the session cookie obtained from a
// CookieSource, runs under a per-attempt timeout and is retried with
// capped exponential backoff:
//
//	delay(n) = min(MinTimeout * Factor^(n-1), MaxTimeout)
//
// Non-2xx responses become *APIError values. A 204 response is a success
// without payload.
package sdk
