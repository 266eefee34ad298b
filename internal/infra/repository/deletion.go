package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/roamplan/roamplan/internal/domain"
	"github.com/roamplan/roamplan/internal/infra/database"
	"github.com/roamplan/roamplan/internal/infra/database/models"
)

// Persisted relatedData shapes, one per entity kind.
type tripRelatedData struct {
	ItineraryDays []domain.ItineraryDay `json:"itineraryDays"`
	Activities    []domain.Activity     `json:"activities"`
}

type dayRelatedData struct {
	TripID     string            `json:"tripId"`
	Activities []domain.Activity `json:"activities"`
}

type activityRelatedData struct {
	DayID string `json:"dayId"`
}

type DeletionRepository struct {
	db *gorm.DB
}

func NewDeletionRepository(db *gorm.DB) *DeletionRepository {
	return &DeletionRepository{db: db}
}

func (r *DeletionRepository) handle(ctx context.Context) *gorm.DB {
	return database.FromContext(ctx, r.db).WithContext(ctx)
}

func recordToModel(record domain.DeletionRecord) (models.DeletionRecord, error) {
	var data, related any

	switch record.Kind {
	case domain.KindTrip:
		data = record.Cascade.Trip.Trip
		related = tripRelatedData{
			ItineraryDays: record.Cascade.Trip.Days,
			Activities:    record.Cascade.Trip.Activities,
		}
	case domain.KindItineraryDay:
		data = record.Cascade.Day.Day
		related = dayRelatedData{
			TripID:     record.Cascade.Day.TripID,
			Activities: record.Cascade.Day.Activities,
		}
	case domain.KindActivity:
		data = record.Cascade.Activity.Activity
		related = activityRelatedData{
			DayID: record.Cascade.Activity.DayID,
		}
	default:
		return models.DeletionRecord{}, domain.NotFoundError{Resource: "entity kind"}
	}

	dataRaw, err := json.Marshal(data)
	if err != nil {
		return models.DeletionRecord{}, err
	}
	relatedRaw, err := json.Marshal(related)
	if err != nil {
		return models.DeletionRecord{}, err
	}

	return models.DeletionRecord{
		ID:          record.ID,
		OwnerID:     record.OwnerID,
		EntityType:  string(record.Kind),
		EntityID:    record.EntityID,
		Data:        string(dataRaw),
		RelatedData: string(relatedRaw),
		DeletedAt:   record.DeletedAt,
		ExpiresAt:   record.ExpiresAt,
	}, nil
}

func recordFromModel(m models.DeletionRecord) (domain.DeletionRecord, error) {
	record := domain.DeletionRecord{
		ID:        m.ID,
		OwnerID:   m.OwnerID,
		Kind:      domain.EntityKind(m.EntityType),
		EntityID:  m.EntityID,
		DeletedAt: m.DeletedAt,
		ExpiresAt: m.ExpiresAt,
	}

	switch record.Kind {
	case domain.KindTrip:
		var trip domain.Trip
		if err := json.Unmarshal([]byte(m.Data), &trip); err != nil {
			return domain.DeletionRecord{}, err
		}
		var related tripRelatedData
		if err := json.Unmarshal([]byte(m.RelatedData), &related); err != nil {
			return domain.DeletionRecord{}, err
		}
		record.Cascade = domain.Cascade{
			Kind: domain.KindTrip,
			Trip: &domain.TripCascade{
				Trip:       trip,
				Days:       related.ItineraryDays,
				Activities: related.Activities,
			},
		}
	case domain.KindItineraryDay:
		var day domain.ItineraryDay
		if err := json.Unmarshal([]byte(m.Data), &day); err != nil {
			return domain.DeletionRecord{}, err
		}
		var related dayRelatedData
		if err := json.Unmarshal([]byte(m.RelatedData), &related); err != nil {
			return domain.DeletionRecord{}, err
		}
		record.Cascade = domain.Cascade{
			Kind: domain.KindItineraryDay,
			Day: &domain.DayCascade{
				Day:        day,
				TripID:     related.TripID,
				Activities: related.Activities,
			},
		}
	case domain.KindActivity:
		var activity domain.Activity
		if err := json.Unmarshal([]byte(m.Data), &activity); err != nil {
			return domain.DeletionRecord{}, err
		}
		var related activityRelatedData
		if err := json.Unmarshal([]byte(m.RelatedData), &related); err != nil {
			return domain.DeletionRecord{}, err
		}
		record.Cascade = domain.Cascade{
			Kind: domain.KindActivity,
			Activity: &domain.ActivityCascade{
				Activity: activity,
				DayID:    related.DayID,
			},
		}
	default:
		return domain.DeletionRecord{}, domain.NotFoundError{Resource: "entity kind"}
	}

	return record, nil
}

func (r *DeletionRepository) Create(ctx context.Context, record domain.DeletionRecord) error {
	m, err := recordToModel(record)
	if err != nil {
		return err
	}
	return r.handle(ctx).Create(&m).Error
}

func (r *DeletionRepository) Get(ctx context.Context, id string) (domain.DeletionRecord, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate fetches the record under a row lock so the record's
// deletion stays the linearization point for concurrent consumers.
func (r *DeletionRepository) GetForUpdate(ctx context.Context, id string) (domain.DeletionRecord, error) {
	return r.get(ctx, id, true)
}

func (r *DeletionRepository) get(ctx context.Context, id string, forUpdate bool) (domain.DeletionRecord, error) {
	tx := r.handle(ctx)
	if forUpdate {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var m models.DeletionRecord
	err := tx.Where("id = ?", id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.DeletionRecord{}, domain.NotFoundError{Resource: "deletion record"}
	}
	if err != nil {
		return domain.DeletionRecord{}, err
	}
	return recordFromModel(m)
}

func (r *DeletionRepository) Delete(ctx context.Context, id string) error {
	result := r.handle(ctx).Delete(&models.DeletionRecord{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "deletion record"}
	}
	return nil
}

func (r *DeletionRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.handle(ctx).Delete(&models.DeletionRecord{}, "expires_at <= ?", now)
	return result.RowsAffected, result.Error
}
