// Package figma provides a connector that searches the frames and components
// of a single Figma file.
//
// The file document is fetched through a shared TTL cache, so repeated
// searches within the TTL walk the cached tree instead of calling the API.
//
// # Rate Limiting
//
// Outgoing calls pass through a token bucket. Responses with status 429 or
// 5xx, and client timeouts, are retried up to three times on an exponential
// 1s, 2s, 4s schedule. A 429 waits at least as long as its Retry-After header.
package figma
