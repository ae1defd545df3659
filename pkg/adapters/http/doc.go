// Package http serves carepath sessions over HTTP with a chi router.
// Requests are validated against the embedded OpenAPI document, and every
// session streams snapshot diffs as server-sent events.
package http
