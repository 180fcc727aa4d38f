// Package middleware provides HTTP middleware for the API server:
// request IDs, request-scoped logging, and Prometheus instrumentation.
package middleware

// contextKey is a private type for context keys to avoid collisions
// with keys defined in other packages.
type contextKey string
