package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"treadmill_pacer/internal/models"
	"treadmill_pacer/internal/repository"
)

// Feedback labels an athlete can attach to a finished session.
const (
	FeedbackTooEasy       = "too_easy"
	FeedbackComfortable   = "comfortable"
	FeedbackModerate      = "moderate"
	FeedbackUncomfortable = "uncomfortable"
	FeedbackUnbearable    = "unbearable"
)

var ErrInvalidFeedback = errors.New("invalid feedback: must be one of too_easy, comfortable, moderate, uncomfortable, unbearable")

var validFeedback = map[string]struct{}{
	FeedbackTooEasy:       {},
	FeedbackComfortable:   {},
	FeedbackModerate:      {},
	FeedbackUncomfortable: {},
	FeedbackUnbearable:    {},
}

var csvHeader = []string{"Second", "HeartRate", "Level", "LapDistance", "Age", "Duration(seconds)", "Laps", "Distance(meters)"}

type HistoryService struct {
	repo repository.SessionRepo
}

func NewHistoryService(repo repository.SessionRepo) *HistoryService {
	return &HistoryService{repo: repo}
}

func (s *HistoryService) ListSessions(ctx context.Context, athleteID int) ([]models.SessionPreview, error) {
	return s.repo.List(ctx, athleteID)
}

// GetSession hides sessions the caller does not own behind ErrSessionNotFound,
// including sessions recorded without an athlete. athleteID 0 is unscoped,
// matching ListSessions.
func (s *HistoryService) GetSession(ctx context.Context, athleteID int, id string) (models.SessionRecord, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return models.SessionRecord{}, err
	}
	if athleteID != 0 && rec.AthleteID != athleteID {
		return models.SessionRecord{}, fmt.Errorf("%w: %s", repository.ErrSessionNotFound, id)
	}
	return rec, nil
}

func (s *HistoryService) SetFeedback(ctx context.Context, athleteID int, id, feedback string) error {
	feedback = strings.ToLower(strings.TrimSpace(feedback))
	if _, ok := validFeedback[feedback]; !ok {
		return ErrInvalidFeedback
	}
	if _, err := s.GetSession(ctx, athleteID, id); err != nil {
		return err
	}
	return s.repo.UpdateFeedback(ctx, id, feedback)
}

// ExportCSV writes one row per sample; Second counts 1..n.
func (s *HistoryService) ExportCSV(ctx context.Context, athleteID int, id string, w io.Writer) (models.SessionRecord, error) {
	rec, err := s.GetSession(ctx, athleteID, id)
	if err != nil {
		return models.SessionRecord{}, err
	}
	if err := writeSessionCSV(w, rec); err != nil {
		return rec, fmt.Errorf("write csv for %s: %w", id, err)
	}
	return rec, nil
}

// CSVFilename names an export after the session start time.
func CSVFilename(rec models.SessionRecord) string {
	return "heart_rate_log_" + rec.StartTime.UTC().Format("20060102-150405") + ".csv"
}

func writeSessionCSV(w io.Writer, rec models.SessionRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	level := strconv.Itoa(rec.Level)
	lap := strconv.FormatFloat(rec.LapDistance, 'f', -1, 64)
	age := strconv.Itoa(rec.Age)
	duration := strconv.Itoa(rec.DurationSeconds)
	laps := strconv.Itoa(rec.LapsCompleted)
	distance := strconv.FormatFloat(rec.TotalDistance, 'f', 2, 64)
	for i, sm := range rec.Samples {
		row := []string{strconv.Itoa(i + 1), strconv.Itoa(sm.BPM), level, lap, age, duration, laps, distance}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
