package tracker

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/pathakanu/myPlants/internal/model"
	"github.com/pathakanu/myPlants/internal/schedule"
	"github.com/pathakanu/myPlants/internal/store"
	"github.com/sirupsen/logrus"
)

// WateringInput is the payload of a watering event. WateredAt may lie in the
// past or the future.
type WateringInput struct {
	Amount    int    `json:"amount"`
	Notes     string `json:"notes"`
	WateredAt string `json:"watered_at"`
}

// WateringResult holds the stored event and the plant after its schedule was recomputed.
type WateringResult struct {
	Event *model.WateringEvent `json:"event"`
	Plant *PlantView           `json:"plant"`
}

// RecordWatering validates and stores a watering event, then resets the plant's
// schedule to watered_at + water_frequency days.
//
// If the event cannot be stored the plant is left untouched. If the event was
// stored but the schedule update failed, a *ScheduleUpdateError is returned and
// the event is kept.
func (s *Service) RecordWatering(ctx context.Context, userID string, plantID uuid.UUID, in WateringInput) (*WateringResult, error) {
	plant, err := s.ownedPlant(ctx, userID, plantID)
	if err != nil {
		return nil, err
	}

	if in.Amount <= 0 {
		return nil, invalid("amount", "must be a positive number of millilitres")
	}
	wateredAt, err := s.ParseTimestamp("watered_at", in.WateredAt)
	if err != nil {
		return nil, err
	}

	event := &model.WateringEvent{
		PlantID:   plant.ID,
		UserID:    userID,
		Amount:    in.Amount,
		WateredAt: wateredAt,
	}
	if notes := strings.TrimSpace(in.Notes); notes != "" {
		event.Notes = &notes
	}
	return s.record(ctx, plant, event)
}

// QuickWater records a watering of the plant's usual amount at the current time.
func (s *Service) QuickWater(ctx context.Context, userID string, plantID uuid.UUID) (*WateringResult, error) {
	plant, err := s.ownedPlant(ctx, userID, plantID)
	if err != nil {
		return nil, err
	}
	return s.quickWater(ctx, plant)
}

func (s *Service) quickWater(ctx context.Context, plant *model.Plant) (*WateringResult, error) {
	if plant.WaterAmount <= 0 {
		return nil, invalid("amount", "plant has no default water amount")
	}
	event := &model.WateringEvent{
		PlantID:   plant.ID,
		UserID:    plant.UserID,
		Amount:    plant.WaterAmount,
		WateredAt: s.now(),
	}
	return s.record(ctx, plant, event)
}

func (s *Service) record(ctx context.Context, plant *model.Plant, event *model.WateringEvent) (*WateringResult, error) {
	if plant.WaterFrequency <= 0 {
		return nil, invalid("water_frequency", "must be a positive number of days")
	}

	if err := s.store.InsertWateringEvent(ctx, event); err != nil {
		return nil, storeErr("insert watering event", err)
	}

	next := schedule.NextWatering(event.WateredAt, plant.WaterFrequency)
	updated, err := s.store.UpdatePlantSchedule(ctx, plant.UserID, plant.ID, event.WateredAt, next)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"plant_id": plant.ID,
			"event_id": event.ID,
		}).WithError(err).Warn("watering: schedule update failed after event was stored")
		return nil, &ScheduleUpdateError{EventID: event.ID, PlantID: plant.ID, Err: err}
	}

	v := s.view(*updated, s.now())
	return &WateringResult{Event: event, Plant: &v}, nil
}

// RecomputeSchedule re-derives the plant's schedule from the most recently
// recorded watering event. It repairs a plant left stale by a *ScheduleUpdateError.
func (s *Service) RecomputeSchedule(ctx context.Context, userID string, plantID uuid.UUID) (*PlantView, error) {
	plant, err := s.ownedPlant(ctx, userID, plantID)
	if err != nil {
		return nil, err
	}
	if plant.WaterFrequency <= 0 {
		return nil, invalid("water_frequency", "must be a positive number of days")
	}

	latest, err := s.store.LatestWateringEvent(ctx, userID, plantID)
	if errors.Is(err, store.ErrNotFound) {
		v := s.view(*plant, s.now())
		return &v, nil
	}
	if err != nil {
		return nil, storeErr("latest watering event", err)
	}

	wateredAt := latest.WateredAt
	updated, err := s.store.UpdatePlantSchedule(ctx, userID, plantID, wateredAt, schedule.NextWatering(wateredAt, plant.WaterFrequency))
	if err != nil {
		return nil, storeErr("update plant schedule", err)
	}
	v := s.view(*updated, s.now())
	return &v, nil
}

// WateringHistory lists the plant's watering events, most recent first.
func (s *Service) WateringHistory(ctx context.Context, userID string, plantID uuid.UUID, limit int) ([]model.WateringEvent, error) {
	if _, err := s.ownedPlant(ctx, userID, plantID); err != nil {
		return nil, err
	}
	events, err := s.store.ListWateringHistory(ctx, userID, plantID, limit)
	if err != nil {
		return nil, storeErr("list watering history", err)
	}
	return events, nil
}
