package models

import "time"

// HeartRateSample is one reading relative to the session start.
type HeartRateSample struct {
	RelativeSeconds float64 `json:"t"`   // seconds since session start
	BPM             int     `json:"bpm"` // beats per minute
}

// SessionRecord is the finalized hand-off of one exercise session.
type SessionRecord struct {
	ID              string            `json:"id"`
	AthleteID       int               `json:"athlete_id,omitempty"`
	StartTime       time.Time         `json:"start_time"`
	Level           int               `json:"level"`
	LapDistance     float64           `json:"lap_distance"` // meters
	Age             int               `json:"age"`
	DurationSeconds int               `json:"duration_seconds"`
	LapsCompleted   int               `json:"laps_completed"`
	TotalDistance   float64           `json:"total_distance"` // meters
	Reason          CompletionReason  `json:"reason,omitempty"`
	AverageHR       float64           `json:"average_hr"`
	PeakHR          int               `json:"peak_hr"`
	Feedback        string            `json:"feedback,omitempty"`
	Samples         []HeartRateSample `json:"samples,omitempty"`
}

// SessionPreview is the history list row; samples are not loaded.
type SessionPreview struct {
	ID              string           `json:"id"`
	StartTime       time.Time        `json:"start_time"`
	Level           int              `json:"level"`
	LapDistance     float64          `json:"lap_distance"`
	Age             int              `json:"age"`
	DurationSeconds int              `json:"duration_seconds"`
	LapsCompleted   int              `json:"laps_completed"`
	TotalDistance   float64          `json:"total_distance"`
	Reason          CompletionReason `json:"reason"`
	Feedback        string           `json:"feedback,omitempty"`
}
