package service

import "time"

// StartParams are the client-supplied session inputs. Zero values fall back
// to the configured lap distance and the athlete's stored age.
type StartParams struct {
	Level       int
	LapDistance float64
	Age         int
}

// LogFilter supports history filtering by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "START", "LAP", "DECELERATE", "COMPLETE", "ERROR"

	SessionID string // empty means all sessions
}
