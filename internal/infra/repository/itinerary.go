package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/roamplan/roamplan/internal/domain"
	"github.com/roamplan/roamplan/internal/infra/database"
	"github.com/roamplan/roamplan/internal/infra/database/models"
)

type ItineraryRepository struct {
	db *gorm.DB
}

func NewItineraryRepository(db *gorm.DB) *ItineraryRepository {
	return &ItineraryRepository{db: db}
}

func dayToModel(day domain.ItineraryDay) (models.ItineraryDay, error) {
	activityIDs, err := encodeIDs(day.ActivityIDs)
	if err != nil {
		return models.ItineraryDay{}, err
	}
	return models.ItineraryDay{
		ID:          day.ID,
		TripID:      day.TripID,
		DayNumber:   day.DayNumber,
		Date:        day.Date,
		ActivityIDs: activityIDs,
		CDate:       day.CreatedAt,
		MDate:       day.UpdatedAt,
	}, nil
}

func dayFromModel(m models.ItineraryDay) (domain.ItineraryDay, error) {
	activityIDs, err := decodeIDs(m.ActivityIDs)
	if err != nil {
		return domain.ItineraryDay{}, err
	}
	return domain.ItineraryDay{
		ID:          m.ID,
		TripID:      m.TripID,
		DayNumber:   m.DayNumber,
		Date:        m.Date,
		ActivityIDs: activityIDs,
		CreatedAt:   m.CDate,
		UpdatedAt:   m.MDate,
	}, nil
}

func (r *ItineraryRepository) handle(ctx context.Context) *gorm.DB {
	return database.FromContext(ctx, r.db).WithContext(ctx)
}

func (r *ItineraryRepository) Create(ctx context.Context, day domain.ItineraryDay) error {
	m, err := dayToModel(day)
	if err != nil {
		return err
	}
	return r.handle(ctx).Create(&m).Error
}

func (r *ItineraryRepository) Get(ctx context.Context, id string) (domain.ItineraryDay, error) {
	var m models.ItineraryDay
	err := r.handle(ctx).Where("id = ?", id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ItineraryDay{}, domain.NotFoundError{Resource: "itinerary day"}
	}
	if err != nil {
		return domain.ItineraryDay{}, err
	}
	return dayFromModel(m)
}

// ListByTrip returns days in day-number order, creation order breaking
// ties, so cascade capture and restoration agree on ordering.
func (r *ItineraryRepository) ListByTrip(ctx context.Context, tripID string) ([]domain.ItineraryDay, error) {
	var rows []models.ItineraryDay
	err := r.handle(ctx).
		Where("trip_id = ?", tripID).
		Order("day_number ASC, c_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	days := make([]domain.ItineraryDay, 0, len(rows))
	for _, m := range rows {
		day, err := dayFromModel(m)
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, nil
}

func (r *ItineraryRepository) Update(ctx context.Context, day domain.ItineraryDay) error {
	m, err := dayToModel(day)
	if err != nil {
		return err
	}
	result := r.handle(ctx).Model(&models.ItineraryDay{}).
		Where("id = ?", day.ID).
		Updates(map[string]any{
			"day_number": m.DayNumber,
			"date":       m.Date,
			"m_date":     m.MDate,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "itinerary day"}
	}
	return nil
}

func (r *ItineraryRepository) Delete(ctx context.Context, id string) error {
	result := r.handle(ctx).Delete(&models.ItineraryDay{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "itinerary day"}
	}
	return nil
}

func (r *ItineraryRepository) DeleteByTrip(ctx context.Context, tripID string) error {
	return r.handle(ctx).Delete(&models.ItineraryDay{}, "trip_id = ?", tripID).Error
}

func (r *ItineraryRepository) AppendActivityID(ctx context.Context, dayID, activityID string) error {
	return r.mutateActivityIDs(ctx, dayID, func(ids []string) []string {
		return append(ids, activityID)
	})
}

func (r *ItineraryRepository) RemoveActivityID(ctx context.Context, dayID, activityID string) error {
	return r.mutateActivityIDs(ctx, dayID, func(ids []string) []string {
		return removeID(ids, activityID)
	})
}

func (r *ItineraryRepository) SetActivityIDs(ctx context.Context, dayID string, activityIDs []string) error {
	return r.mutateActivityIDs(ctx, dayID, func([]string) []string {
		return activityIDs
	})
}

func (r *ItineraryRepository) mutateActivityIDs(ctx context.Context, dayID string, mutate func([]string) []string) error {
	var m models.ItineraryDay
	err := r.handle(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", dayID).
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotFoundError{Resource: "itinerary day"}
	}
	if err != nil {
		return err
	}

	ids, err := decodeIDs(m.ActivityIDs)
	if err != nil {
		return err
	}
	encoded, err := encodeIDs(mutate(ids))
	if err != nil {
		return err
	}

	return r.handle(ctx).Model(&models.ItineraryDay{}).
		Where("id = ?", dayID).
		Updates(map[string]any{
			"activity_ids": encoded,
			"m_date":       time.Now().UTC(),
		}).Error
}
