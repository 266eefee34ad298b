package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/roamplan/roamplan/internal/domain"
)

// CreateActivityInput is the validated input for adding an activity.
type CreateActivityInput struct {
	ActivityType string `json:"activityType"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Location     string `json:"location"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
}

type ActivityUsecase struct {
	trips      TripRepository
	days       ItineraryRepository
	activities ActivityRepository
}

func NewActivityUsecase(trips TripRepository, days ItineraryRepository, activities ActivityRepository) *ActivityUsecase {
	return &ActivityUsecase{trips: trips, days: days, activities: activities}
}

// ownedDay fetches the day and enforces trip ownership.
func (uc *ActivityUsecase) ownedDay(ctx context.Context, userID, tripID, dayID string) (domain.ItineraryDay, error) {
	trip, err := uc.trips.Get(ctx, tripID)
	if err != nil {
		return domain.ItineraryDay{}, err
	}
	if trip.UserID != userID {
		return domain.ItineraryDay{}, domain.ErrForbidden
	}
	return uc.days.Get(ctx, dayID)
}

func (uc *ActivityUsecase) Create(ctx context.Context, userID, tripID, dayID string, input CreateActivityInput) (domain.Activity, error) {
	day, err := uc.ownedDay(ctx, userID, tripID, dayID)
	if err != nil {
		return domain.Activity{}, err
	}

	now := time.Now().UTC()
	activity := domain.Activity{
		ID:           uuid.NewString(),
		ItineraryDay: day.ID,
		ActivityType: input.ActivityType,
		Title:        input.Title,
		Description:  input.Description,
		Location:     input.Location,
		StartTime:    input.StartTime,
		EndTime:      input.EndTime,
		Position:     len(day.ActivityIDs),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := uc.activities.Create(ctx, activity); err != nil {
		return domain.Activity{}, err
	}
	if err := uc.days.AppendActivityID(ctx, day.ID, activity.ID); err != nil {
		return domain.Activity{}, err
	}
	return activity, nil
}

func (uc *ActivityUsecase) Update(ctx context.Context, userID, tripID, dayID, activityID string, input CreateActivityInput) (domain.Activity, error) {
	if _, err := uc.ownedDay(ctx, userID, tripID, dayID); err != nil {
		return domain.Activity{}, err
	}

	activity, err := uc.activities.Get(ctx, activityID)
	if err != nil {
		return domain.Activity{}, err
	}

	activity.ActivityType = input.ActivityType
	activity.Title = input.Title
	activity.Description = input.Description
	activity.Location = input.Location
	activity.StartTime = input.StartTime
	activity.EndTime = input.EndTime
	activity.UpdatedAt = time.Now().UTC()

	if err := uc.activities.Update(ctx, activity); err != nil {
		return domain.Activity{}, err
	}
	return activity, nil
}

// Reorder rewrites the day's activity ordering. The ordered id list
// must be a permutation of the day's current activities.
func (uc *ActivityUsecase) Reorder(ctx context.Context, userID, tripID, dayID string, orderedIDs []string) error {
	day, err := uc.ownedDay(ctx, userID, tripID, dayID)
	if err != nil {
		return err
	}

	if len(orderedIDs) != len(day.ActivityIDs) {
		return errors.New("reorder list does not match day's activities")
	}
	current := make(map[string]bool, len(day.ActivityIDs))
	for _, id := range day.ActivityIDs {
		current[id] = true
	}
	for _, id := range orderedIDs {
		if !current[id] {
			return errors.Errorf("activity %s does not belong to day %s", id, dayID)
		}
	}

	if err := uc.activities.SetPositions(ctx, dayID, orderedIDs); err != nil {
		return err
	}
	return uc.days.SetActivityIDs(ctx, dayID, orderedIDs)
}
