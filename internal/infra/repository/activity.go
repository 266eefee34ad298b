package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/roamplan/roamplan/internal/domain"
	"github.com/roamplan/roamplan/internal/infra/database"
	"github.com/roamplan/roamplan/internal/infra/database/models"
)

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func activityToModel(a domain.Activity) models.Activity {
	return models.Activity{
		ID:             a.ID,
		ItineraryDayID: a.ItineraryDay,
		ActivityType:   a.ActivityType,
		Title:          a.Title,
		Description:    a.Description,
		Location:       a.Location,
		StartTime:      a.StartTime,
		EndTime:        a.EndTime,
		Position:       a.Position,
		CDate:          a.CreatedAt,
		MDate:          a.UpdatedAt,
	}
}

func activityFromModel(m models.Activity) domain.Activity {
	return domain.Activity{
		ID:           m.ID,
		ItineraryDay: m.ItineraryDayID,
		ActivityType: m.ActivityType,
		Title:        m.Title,
		Description:  m.Description,
		Location:     m.Location,
		StartTime:    m.StartTime,
		EndTime:      m.EndTime,
		Position:     m.Position,
		CreatedAt:    m.CDate,
		UpdatedAt:    m.MDate,
	}
}

func (r *ActivityRepository) handle(ctx context.Context) *gorm.DB {
	return database.FromContext(ctx, r.db).WithContext(ctx)
}

func (r *ActivityRepository) Create(ctx context.Context, activity domain.Activity) error {
	m := activityToModel(activity)
	return r.handle(ctx).Create(&m).Error
}

func (r *ActivityRepository) CreateMany(ctx context.Context, activities []domain.Activity) error {
	if len(activities) == 0 {
		return nil
	}
	rows := make([]models.Activity, 0, len(activities))
	for _, a := range activities {
		rows = append(rows, activityToModel(a))
	}
	return r.handle(ctx).Create(&rows).Error
}

func (r *ActivityRepository) Get(ctx context.Context, id string) (domain.Activity, error) {
	var m models.Activity
	err := r.handle(ctx).Where("id = ?", id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Activity{}, domain.NotFoundError{Resource: "activity"}
	}
	if err != nil {
		return domain.Activity{}, err
	}
	return activityFromModel(m), nil
}

// ListByDay returns activities in position order, creation order
// breaking ties.
func (r *ActivityRepository) ListByDay(ctx context.Context, dayID string) ([]domain.Activity, error) {
	var rows []models.Activity
	err := r.handle(ctx).
		Where("itinerary_day_id = ?", dayID).
		Order("position ASC, c_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	activities := make([]domain.Activity, 0, len(rows))
	for _, m := range rows {
		activities = append(activities, activityFromModel(m))
	}
	return activities, nil
}

func (r *ActivityRepository) Update(ctx context.Context, activity domain.Activity) error {
	m := activityToModel(activity)
	result := r.handle(ctx).Model(&models.Activity{}).
		Where("id = ?", activity.ID).
		Updates(map[string]any{
			"activity_type": m.ActivityType,
			"title":         m.Title,
			"description":   m.Description,
			"location":      m.Location,
			"start_time":    m.StartTime,
			"end_time":      m.EndTime,
			"m_date":        m.MDate,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "activity"}
	}
	return nil
}

func (r *ActivityRepository) Delete(ctx context.Context, id string) error {
	result := r.handle(ctx).Delete(&models.Activity{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "activity"}
	}
	return nil
}

func (r *ActivityRepository) DeleteByDay(ctx context.Context, dayID string) error {
	return r.handle(ctx).Delete(&models.Activity{}, "itinerary_day_id = ?", dayID).Error
}

func (r *ActivityRepository) DeleteByDays(ctx context.Context, dayIDs []string) error {
	if len(dayIDs) == 0 {
		return nil
	}
	return r.handle(ctx).Delete(&models.Activity{}, "itinerary_day_id IN ?", dayIDs).Error
}

// SetPositions rewrites activity positions to match the given order.
func (r *ActivityRepository) SetPositions(ctx context.Context, dayID string, orderedIDs []string) error {
	now := time.Now().UTC()
	for pos, id := range orderedIDs {
		result := r.handle(ctx).Model(&models.Activity{}).
			Where("id = ? AND itinerary_day_id = ?", id, dayID).
			Updates(map[string]any{
				"position": pos,
				"m_date":   now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.NotFoundError{Resource: "activity"}
		}
	}
	return nil
}
