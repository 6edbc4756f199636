package ratelimit

import (
	"net/http"
	"time"
)

// Class groups endpoints that share a budget.
type Class string

const (
	// ClassRead covers queries and listings.
	ClassRead Class = "read"
	// ClassWrite covers instructions and order mutations.
	ClassWrite Class = "write"
)

// ClassOf classifies a request by method.
func ClassOf(r *http.Request) Class {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return ClassRead
	}
	return ClassWrite
}

// Limit is the number of requests allowed per window.
type Limit struct {
	Requests int
	Window   time.Duration
}

// Result is the outcome of one admission check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	// RetryAfter is set only when the request was refused.
	RetryAfter time.Duration
}
