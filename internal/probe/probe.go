// Package probe defines the ProbeResult record shared by the Monitor (which
// produces it) and the Health Scorer (which consumes it), kept in its own
// package so neither has to import the other just for the type.
package probe

import "time"

// Result is a single DNS probe outcome against one provider endpoint.
// Created once, handed to the storage sink, and never mutated.
type Result struct {
	ProviderID string
	Endpoint   string
	Domain     string
	ElapsedMS  int64
	Success    bool
	Error      string
	Origin     string
	Timestamp  time.Time
}
