package tracker

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pathakanu/myPlants/internal/model"
	"github.com/pathakanu/myPlants/internal/schedule"
	"github.com/pathakanu/myPlants/internal/store"
)

const maxUpdateAttempts = 3

// PlantInput carries the editable fields of a plant.
type PlantInput struct {
	Name           string `json:"name"`
	Species        string `json:"species"`
	Location       string `json:"location"`
	ImageURL       string `json:"image_url"`
	Notes          string `json:"notes"`
	PurchaseDate   string `json:"purchase_date"`
	WaterAmount    int    `json:"water_amount"`
	WaterFrequency int    `json:"water_frequency"`
}

func (s *Service) validatePlant(in PlantInput) (*time.Time, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, invalid("name", "must not be empty")
	}
	if in.WaterAmount <= 0 {
		return nil, invalid("water_amount", "must be a positive number of millilitres")
	}
	if in.WaterFrequency <= 0 {
		return nil, invalid("water_frequency", "must be a positive number of days")
	}
	if strings.TrimSpace(in.PurchaseDate) == "" {
		return nil, nil
	}
	purchased, err := s.ParseTimestamp("purchase_date", in.PurchaseDate)
	if err != nil {
		return nil, err
	}
	return &purchased, nil
}

// CreatePlant registers a plant whose first watering is due water_frequency days from now.
func (s *Service) CreatePlant(ctx context.Context, userID string, in PlantInput) (*PlantView, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	purchased, err := s.validatePlant(in)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	next := schedule.NextWatering(now, in.WaterFrequency)
	plant := &model.Plant{
		UserID:         userID,
		Name:           strings.TrimSpace(in.Name),
		Species:        strings.TrimSpace(in.Species),
		Location:       in.Location,
		ImageURL:       in.ImageURL,
		Notes:          in.Notes,
		PurchaseDate:   purchased,
		WaterAmount:    in.WaterAmount,
		WaterFrequency: in.WaterFrequency,
		NextWatering:   &next,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.CreatePlant(ctx, plant); err != nil {
		return nil, storeErr("create plant", err)
	}

	v := s.view(*plant, now)
	return &v, nil
}

// ListPlants returns the user's plants with their current schedule status.
func (s *Service) ListPlants(ctx context.Context, userID string) ([]PlantView, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	plants, err := s.store.ListPlants(ctx, userID)
	if err != nil {
		return nil, storeErr("list plants", err)
	}

	now := s.now()
	views := make([]PlantView, 0, len(plants))
	for _, p := range plants {
		views = append(views, s.view(p, now))
	}
	return views, nil
}

// GetPlant returns one of the user's plants.
func (s *Service) GetPlant(ctx context.Context, userID string, id uuid.UUID) (*PlantView, error) {
	plant, err := s.ownedPlant(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	v := s.view(*plant, s.now())
	return &v, nil
}

// UpdatePlant replaces the editable fields. A frequency change re-derives
// next_watering from last_watered, or from created_at for a plant never watered.
// If a watering lands between the read and the write, the edit is retried on
// fresh state so next_watering never lags last_watered.
func (s *Service) UpdatePlant(ctx context.Context, userID string, id uuid.UUID, in PlantInput) (*PlantView, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	purchased, err := s.validatePlant(in)
	if err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		plant, err := s.ownedPlant(ctx, userID, id)
		if err != nil {
			return nil, err
		}

		reschedule := in.WaterFrequency != plant.WaterFrequency
		if reschedule {
			reference := plant.CreatedAt
			if plant.LastWatered != nil {
				reference = *plant.LastWatered
			}
			next := schedule.NextWatering(reference, in.WaterFrequency)
			plant.NextWatering = &next
		}

		plant.Name = strings.TrimSpace(in.Name)
		plant.Species = strings.TrimSpace(in.Species)
		plant.Location = in.Location
		plant.ImageURL = in.ImageURL
		plant.Notes = in.Notes
		plant.PurchaseDate = purchased
		plant.WaterAmount = in.WaterAmount
		plant.WaterFrequency = in.WaterFrequency
		plant.UpdatedAt = s.now().UTC()

		err = s.store.UpdatePlant(ctx, plant, reschedule)
		if errors.Is(err, store.ErrStale) && attempt < maxUpdateAttempts {
			s.log.WithField("plant_id", id).Debug("plants: watered during edit, retrying")
			continue
		}
		if err != nil {
			return nil, storeErr("update plant", err)
		}
		return s.GetPlant(ctx, userID, id)
	}
}

// DeletePlant removes the plant together with its history and notifications.
func (s *Service) DeletePlant(ctx context.Context, userID string, id uuid.UUID) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if err := s.store.DeletePlant(ctx, userID, id); err != nil {
		return storeErr("delete plant", err)
	}
	return nil
}

// FindPlantByName resolves a plant by its display name within the user's collection.
func (s *Service) FindPlantByName(ctx context.Context, userID, name string) (*model.Plant, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, invalid("name", "must not be empty")
	}
	plant, err := s.store.FindPlantByName(ctx, userID, name)
	if err != nil {
		return nil, storeErr("find plant", err)
	}
	return plant, nil
}

// Stats summarises the user's collection for the dashboard.
type Stats struct {
	TotalPlants       int   `json:"total_plants"`
	NeedingWater      int   `json:"needing_water"`
	AverageFrequency  int   `json:"average_frequency"`
	WateringsLastWeek int64 `json:"waterings_last_week"`
}

// Stats computes dashboard counters at the current time.
func (s *Service) Stats(ctx context.Context, userID string) (*Stats, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	plants, err := s.store.ListPlants(ctx, userID)
	if err != nil {
		return nil, storeErr("list plants", err)
	}

	now := s.now()
	stats := &Stats{TotalPlants: len(plants)}
	total := 0
	for i := range plants {
		if schedule.IsOverdue(&plants[i], now) {
			stats.NeedingWater++
		}
		total += plants[i].WaterFrequency
	}
	if len(plants) > 0 {
		stats.AverageFrequency = (total + len(plants)/2) / len(plants)
	}

	stats.WateringsLastWeek, err = s.store.CountWateringsSince(ctx, userID, now.Add(-7*schedule.Day))
	if err != nil {
		return nil, storeErr("count waterings", err)
	}
	return stats, nil
}

func (s *Service) ownedPlant(ctx context.Context, userID string, id uuid.UUID) (*model.Plant, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	plant, err := s.store.GetPlant(ctx, userID, id)
	if err != nil {
		return nil, storeErr("get plant", err)
	}
	return plant, nil
}
