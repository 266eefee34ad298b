package usecase

import (
	"context"
	"time"

	"github.com/roamplan/roamplan/internal/domain"
)

// UserRepository defines persistence/lookup for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	Get(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
}

// TripRepository defines storage operations for trips, including the
// ordered day-id list maintenance used by deletion and restoration.
type TripRepository interface {
	Create(ctx context.Context, trip domain.Trip) error
	Get(ctx context.Context, id string) (domain.Trip, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Trip, error)
	Update(ctx context.Context, trip domain.Trip) error
	Delete(ctx context.Context, id string) error
	AppendDayID(ctx context.Context, tripID, dayID string) error
	RemoveDayID(ctx context.Context, tripID, dayID string) error
}

// ItineraryRepository defines storage operations for itinerary days.
type ItineraryRepository interface {
	Create(ctx context.Context, day domain.ItineraryDay) error
	Get(ctx context.Context, id string) (domain.ItineraryDay, error)
	ListByTrip(ctx context.Context, tripID string) ([]domain.ItineraryDay, error)
	Update(ctx context.Context, day domain.ItineraryDay) error
	Delete(ctx context.Context, id string) error
	DeleteByTrip(ctx context.Context, tripID string) error
	AppendActivityID(ctx context.Context, dayID, activityID string) error
	RemoveActivityID(ctx context.Context, dayID, activityID string) error
	SetActivityIDs(ctx context.Context, dayID string, activityIDs []string) error
}

// ActivityRepository defines storage operations for activities.
type ActivityRepository interface {
	Create(ctx context.Context, activity domain.Activity) error
	CreateMany(ctx context.Context, activities []domain.Activity) error
	Get(ctx context.Context, id string) (domain.Activity, error)
	ListByDay(ctx context.Context, dayID string) ([]domain.Activity, error)
	Update(ctx context.Context, activity domain.Activity) error
	Delete(ctx context.Context, id string) error
	DeleteByDay(ctx context.Context, dayID string) error
	DeleteByDays(ctx context.Context, dayIDs []string) error
	SetPositions(ctx context.Context, dayID string, orderedIDs []string) error
}

// DeletionRepository defines the deletion-record store. Delete must
// report NotFound when the record is already gone; record deletion is
// the linearization point for one-shot consumption.
type DeletionRepository interface {
	Create(ctx context.Context, record domain.DeletionRecord) error
	Get(ctx context.Context, id string) (domain.DeletionRecord, error)
	GetForUpdate(ctx context.Context, id string) (domain.DeletionRecord, error)
	Delete(ctx context.Context, id string) error
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// Transactor runs fn inside a single storage transaction. Repositories
// invoked with the derived context join that transaction.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Signaler publishes undo events for realtime delivery. Publishing is
// best-effort; failures must not fail the surrounding operation.
type Signaler interface {
	PublishUndoEvent(ctx context.Context, userID string, event domain.UndoEvent) error
}
