package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/roamplan/roamplan/internal/domain"
	"github.com/roamplan/roamplan/internal/infra/database"
	"github.com/roamplan/roamplan/internal/infra/database/models"
)

const tripCacheExpiration = 30 * time.Second

type TripRepository struct {
	db *gorm.DB
	mc *memcache.Client
}

// NewTripRepository constructs the trip store. mc may be nil; reads are
// then uncached.
func NewTripRepository(db *gorm.DB, mc *memcache.Client) *TripRepository {
	return &TripRepository{db: db, mc: mc}
}

func tripCacheKey(id string) string {
	return "trip:" + id
}

func tripToModel(trip domain.Trip) (models.Trip, error) {
	dayIDs, err := encodeIDs(trip.DayIDs)
	if err != nil {
		return models.Trip{}, err
	}
	return models.Trip{
		ID:          trip.ID,
		UserID:      trip.UserID,
		Name:        trip.Name,
		Description: trip.Description,
		Destination: trip.Destination,
		StartDate:   trip.StartDate,
		EndDate:     trip.EndDate,
		DayIDs:      dayIDs,
		CDate:       trip.CreatedAt,
		MDate:       trip.UpdatedAt,
	}, nil
}

func tripFromModel(m models.Trip) (domain.Trip, error) {
	dayIDs, err := decodeIDs(m.DayIDs)
	if err != nil {
		return domain.Trip{}, err
	}
	return domain.Trip{
		ID:          m.ID,
		UserID:      m.UserID,
		Name:        m.Name,
		Description: m.Description,
		Destination: m.Destination,
		StartDate:   m.StartDate,
		EndDate:     m.EndDate,
		DayIDs:      dayIDs,
		CreatedAt:   m.CDate,
		UpdatedAt:   m.MDate,
	}, nil
}

func (r *TripRepository) handle(ctx context.Context) *gorm.DB {
	return database.FromContext(ctx, r.db).WithContext(ctx)
}

func (r *TripRepository) invalidate(id string) {
	if r.mc != nil {
		r.mc.Delete(tripCacheKey(id))
	}
}

func (r *TripRepository) Create(ctx context.Context, trip domain.Trip) error {
	m, err := tripToModel(trip)
	if err != nil {
		return err
	}
	return r.handle(ctx).Create(&m).Error
}

func (r *TripRepository) Get(ctx context.Context, id string) (domain.Trip, error) {
	if r.mc != nil {
		if item, err := r.mc.Get(tripCacheKey(id)); err == nil {
			var trip domain.Trip
			if err := json.Unmarshal(item.Value, &trip); err == nil {
				return trip, nil
			}
		}
	}

	var m models.Trip
	err := r.handle(ctx).Where("id = ?", id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Trip{}, domain.NotFoundError{Resource: "trip"}
	}
	if err != nil {
		return domain.Trip{}, err
	}

	trip, err := tripFromModel(m)
	if err != nil {
		return domain.Trip{}, err
	}

	if r.mc != nil {
		if raw, err := json.Marshal(trip); err == nil {
			r.mc.Set(&memcache.Item{
				Key:        tripCacheKey(id),
				Value:      raw,
				Expiration: int32(tripCacheExpiration / time.Second),
			})
		}
	}

	return trip, nil
}

func (r *TripRepository) ListByUser(ctx context.Context, userID string) ([]domain.Trip, error) {
	var rows []models.Trip
	err := r.handle(ctx).
		Where("user_id = ?", userID).
		Order("c_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	trips := make([]domain.Trip, 0, len(rows))
	for _, m := range rows {
		trip, err := tripFromModel(m)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}
	return trips, nil
}

func (r *TripRepository) Update(ctx context.Context, trip domain.Trip) error {
	m, err := tripToModel(trip)
	if err != nil {
		return err
	}
	result := r.handle(ctx).Model(&models.Trip{}).
		Where("id = ?", trip.ID).
		Updates(map[string]any{
			"name":        m.Name,
			"description": m.Description,
			"destination": m.Destination,
			"start_date":  m.StartDate,
			"end_date":    m.EndDate,
			"m_date":      m.MDate,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "trip"}
	}
	r.invalidate(trip.ID)
	return nil
}

func (r *TripRepository) Delete(ctx context.Context, id string) error {
	result := r.handle(ctx).Delete(&models.Trip{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "trip"}
	}
	r.invalidate(id)
	return nil
}

func (r *TripRepository) AppendDayID(ctx context.Context, tripID, dayID string) error {
	return r.mutateDayIDs(ctx, tripID, func(ids []string) []string {
		return append(ids, dayID)
	})
}

func (r *TripRepository) RemoveDayID(ctx context.Context, tripID, dayID string) error {
	return r.mutateDayIDs(ctx, tripID, func(ids []string) []string {
		return removeID(ids, dayID)
	})
}

// mutateDayIDs rewrites the ordered day-id list under a row lock.
func (r *TripRepository) mutateDayIDs(ctx context.Context, tripID string, mutate func([]string) []string) error {
	var m models.Trip
	err := r.handle(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", tripID).
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotFoundError{Resource: "trip"}
	}
	if err != nil {
		return err
	}

	ids, err := decodeIDs(m.DayIDs)
	if err != nil {
		return err
	}
	encoded, err := encodeIDs(mutate(ids))
	if err != nil {
		return err
	}

	err = r.handle(ctx).Model(&models.Trip{}).
		Where("id = ?", tripID).
		Updates(map[string]any{
			"day_ids": encoded,
			"m_date":  time.Now().UTC(),
		}).Error
	if err != nil {
		return err
	}
	r.invalidate(tripID)
	return nil
}
