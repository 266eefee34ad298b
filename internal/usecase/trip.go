package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/roamplan/roamplan/internal/domain"
)

// CreateTripInput is the validated input for creating a trip.
type CreateTripInput struct {
	Name        string    `json:"tripName"`
	Description string    `json:"tripDescription"`
	Destination string    `json:"destination"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
}

type TripUsecase struct {
	trips TripRepository
}

func NewTripUsecase(trips TripRepository) *TripUsecase {
	return &TripUsecase{trips: trips}
}

func (uc *TripUsecase) Create(ctx context.Context, userID string, input CreateTripInput) (domain.Trip, error) {
	now := time.Now().UTC()
	trip := domain.Trip{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        input.Name,
		Description: input.Description,
		Destination: input.Destination,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		DayIDs:      []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.trips.Create(ctx, trip); err != nil {
		return domain.Trip{}, err
	}
	return trip, nil
}

func (uc *TripUsecase) List(ctx context.Context, userID string) ([]domain.Trip, error) {
	return uc.trips.ListByUser(ctx, userID)
}

// Get fetches a trip, failing with Forbidden when the requester does
// not own it.
func (uc *TripUsecase) Get(ctx context.Context, tripID, userID string) (domain.Trip, error) {
	trip, err := uc.trips.Get(ctx, tripID)
	if err != nil {
		return domain.Trip{}, err
	}
	if trip.UserID != userID {
		return domain.Trip{}, domain.ErrForbidden
	}
	return trip, nil
}

func (uc *TripUsecase) Update(ctx context.Context, tripID, userID string, input CreateTripInput) (domain.Trip, error) {
	trip, err := uc.Get(ctx, tripID, userID)
	if err != nil {
		return domain.Trip{}, err
	}

	trip.Name = input.Name
	trip.Description = input.Description
	trip.Destination = input.Destination
	trip.StartDate = input.StartDate
	trip.EndDate = input.EndDate
	trip.UpdatedAt = time.Now().UTC()

	if err := uc.trips.Update(ctx, trip); err != nil {
		return domain.Trip{}, err
	}
	return trip, nil
}
