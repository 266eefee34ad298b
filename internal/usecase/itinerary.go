package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/roamplan/roamplan/internal/domain"
)

// CreateDayInput is the validated input for adding a day to a trip.
type CreateDayInput struct {
	DayNumber int       `json:"dayNumber"`
	Date      time.Time `json:"date"`
}

// DayWithActivities pairs an itinerary day with its activities for
// list responses.
type DayWithActivities struct {
	Day        domain.ItineraryDay `json:"itineraryDay"`
	Activities []domain.Activity   `json:"activities"`
}

type ItineraryUsecase struct {
	trips      TripRepository
	days       ItineraryRepository
	activities ActivityRepository
}

func NewItineraryUsecase(trips TripRepository, days ItineraryRepository, activities ActivityRepository) *ItineraryUsecase {
	return &ItineraryUsecase{trips: trips, days: days, activities: activities}
}

// ownedTrip fetches the trip and enforces ownership.
func (uc *ItineraryUsecase) ownedTrip(ctx context.Context, tripID, userID string) (domain.Trip, error) {
	trip, err := uc.trips.Get(ctx, tripID)
	if err != nil {
		return domain.Trip{}, err
	}
	if trip.UserID != userID {
		return domain.Trip{}, domain.ErrForbidden
	}
	return trip, nil
}

func (uc *ItineraryUsecase) Create(ctx context.Context, userID, tripID string, input CreateDayInput) (domain.ItineraryDay, error) {
	if _, err := uc.ownedTrip(ctx, tripID, userID); err != nil {
		return domain.ItineraryDay{}, err
	}

	now := time.Now().UTC()
	day := domain.ItineraryDay{
		ID:          uuid.NewString(),
		TripID:      tripID,
		DayNumber:   input.DayNumber,
		Date:        input.Date,
		ActivityIDs: []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.days.Create(ctx, day); err != nil {
		return domain.ItineraryDay{}, err
	}
	if err := uc.trips.AppendDayID(ctx, tripID, day.ID); err != nil {
		return domain.ItineraryDay{}, err
	}
	return day, nil
}

func (uc *ItineraryUsecase) List(ctx context.Context, userID, tripID string) ([]DayWithActivities, error) {
	if _, err := uc.ownedTrip(ctx, tripID, userID); err != nil {
		return nil, err
	}

	days, err := uc.days.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	result := make([]DayWithActivities, 0, len(days))
	for _, day := range days {
		acts, err := uc.activities.ListByDay(ctx, day.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, DayWithActivities{Day: day, Activities: acts})
	}
	return result, nil
}

func (uc *ItineraryUsecase) Get(ctx context.Context, userID, tripID, dayID string) (DayWithActivities, error) {
	if _, err := uc.ownedTrip(ctx, tripID, userID); err != nil {
		return DayWithActivities{}, err
	}

	day, err := uc.days.Get(ctx, dayID)
	if err != nil {
		return DayWithActivities{}, err
	}
	acts, err := uc.activities.ListByDay(ctx, day.ID)
	if err != nil {
		return DayWithActivities{}, err
	}
	return DayWithActivities{Day: day, Activities: acts}, nil
}

func (uc *ItineraryUsecase) Update(ctx context.Context, userID, tripID, dayID string, input CreateDayInput) (domain.ItineraryDay, error) {
	if _, err := uc.ownedTrip(ctx, tripID, userID); err != nil {
		return domain.ItineraryDay{}, err
	}

	day, err := uc.days.Get(ctx, dayID)
	if err != nil {
		return domain.ItineraryDay{}, err
	}

	day.DayNumber = input.DayNumber
	day.Date = input.Date
	day.UpdatedAt = time.Now().UTC()

	if err := uc.days.Update(ctx, day); err != nil {
		return domain.ItineraryDay{}, err
	}
	return day, nil
}
