package models

import "time"

// PacerPhase is the controller's coarse state.
type PacerPhase string

const (
	PhaseIdle         PacerPhase = "IDLE"
	PhaseActive       PacerPhase = "ACTIVE"
	PhaseDecelerating PacerPhase = "DECELERATING"
	PhaseCompleted    PacerPhase = "COMPLETED"
)

// CompletionReason tags why a session ended.
type CompletionReason string

const (
	ReasonCurveExhausted CompletionReason = "curve-exhausted"
	ReasonHeartRateStop  CompletionReason = "heart-rate-stop"
	ReasonManualStop     CompletionReason = "manual-stop"
	ReasonFault          CompletionReason = "fault"
)

// TreadmillState is a consistent snapshot of the simulator.
type TreadmillState struct {
	CurrentSpeed    float64 `json:"current_speed"`    // km/h
	DistanceCovered float64 `json:"distance_covered"` // meters
	Running         bool    `json:"running"`
}

// PacerState is the controller's session bookkeeping.
type PacerState struct {
	SpeedIndex              int     `json:"speed_index"`
	LapsCompleted           int     `json:"laps_completed"`
	LastLapBoundaryDistance float64 `json:"last_lap_boundary_distance"`
	HeartRateExceeded       bool    `json:"heart_rate_exceeded"`
	ReductionCount          int     `json:"reduction_count"`
	Running                 bool    `json:"running"`
}

// HeartRateSnapshot carries the aggregator's averages.
type HeartRateSnapshot struct {
	Latest             int     `json:"latest"`
	Average            float64 `json:"average"`
	LapAverage         float64 `json:"lap_average"`
	PreviousLapAverage float64 `json:"previous_lap_average"`
	Peak               int     `json:"peak"`
	Samples            int     `json:"samples"`
}

// StatusUpdate is published after every controller tick.
type StatusUpdate struct {
	SessionID   string            `json:"session_id,omitempty"`
	Phase       PacerPhase        `json:"phase"`
	Level       int               `json:"level,omitempty"`
	LapDistance float64           `json:"lap_distance,omitempty"`
	Threshold   float64           `json:"threshold,omitempty"`
	Treadmill   TreadmillState    `json:"treadmill"`
	Pacer       PacerState        `json:"pacer"`
	HeartRate   HeartRateSnapshot `json:"heart_rate"`
	At          time.Time         `json:"at"`
}

// Completion is published once per session.
type Completion struct {
	SessionID     string           `json:"session_id"`
	Reason        CompletionReason `json:"reason"`
	Level         int              `json:"level"`
	LapsCompleted int              `json:"laps_completed"`
	TotalDistance float64          `json:"total_distance"`
	DurationSecs  int              `json:"duration_seconds"`
	AverageHR     float64          `json:"average_hr"`
	PeakHR        int              `json:"peak_hr"`
	Error         string           `json:"error,omitempty"`
	SaveError     string           `json:"save_error,omitempty"`
	At            time.Time        `json:"at"`
}

// RecoveryUpdate reports the post-session heart-rate observation window.
type RecoveryUpdate struct {
	SessionID   string  `json:"session_id"`
	SecondsLeft int     `json:"seconds_left"`
	Average     float64 `json:"average"`
	Samples     int     `json:"samples"`
	HasData     bool    `json:"has_data"`
	Done        bool    `json:"done"`
}
