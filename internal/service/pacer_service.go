package service

import (
	"context"
	"fmt"

	"treadmill_pacer/internal/curve"
	"treadmill_pacer/internal/models"
	"treadmill_pacer/internal/pacer"
	"treadmill_pacer/internal/repository"
)

// SessionController is the slice of pacer.Controller the service drives.
type SessionController interface {
	Start(ctx context.Context, p pacer.Params) (string, error)
	Stop(ctx context.Context) (models.Completion, error)
	Status() models.StatusUpdate
}

type PacerService struct {
	ctrl               SessionController
	curves             curve.Table
	athletes           repository.Authorization
	defaultLapDistance float64
}

func NewPacerService(ctrl SessionController, curves curve.Table, athletes repository.Authorization, defaultLapDistance float64) *PacerService {
	if curves == nil {
		curves = curve.Default
	}
	return &PacerService{
		ctrl:               ctrl,
		curves:             curves,
		athletes:           athletes,
		defaultLapDistance: defaultLapDistance,
	}
}

// Start fills defaults from config and the athlete profile, then hands off to
// the controller, which re-validates every input.
func (s *PacerService) Start(ctx context.Context, athleteID int, p StartParams) (models.StatusUpdate, error) {
	if p.LapDistance == 0 {
		p.LapDistance = s.defaultLapDistance
	}
	if p.Age == 0 && athleteID > 0 && s.athletes != nil {
		a, err := s.athletes.GetByID(athleteID)
		if err != nil {
			return models.StatusUpdate{}, fmt.Errorf("load athlete profile: %w", err)
		}
		if a != nil {
			p.Age = a.Age
		}
	}

	if _, err := s.ctrl.Start(ctx, pacer.Params{
		Level:       p.Level,
		LapDistance: p.LapDistance,
		Age:         p.Age,
		AthleteID:   athleteID,
	}); err != nil {
		return models.StatusUpdate{}, err
	}
	return s.ctrl.Status(), nil
}

func (s *PacerService) Stop(ctx context.Context) (models.Completion, error) {
	return s.ctrl.Stop(ctx)
}

func (s *PacerService) State(ctx context.Context) models.StatusUpdate {
	return s.ctrl.Status()
}

// Curves returns a copy of the whole table.
func (s *PacerService) Curves() map[int]curve.Curve {
	out := make(map[int]curve.Curve, len(s.curves))
	for _, level := range s.curves.Levels() {
		c, _ := s.curves.Lookup(level)
		out[level] = c
	}
	return out
}

func (s *PacerService) Curve(level int) (curve.Curve, error) {
	return s.curves.Lookup(level)
}
