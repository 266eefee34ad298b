package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/roamplan/roamplan/internal/domain"
)

var tracer = otel.Tracer("deletion")

// DeleteResult is returned to the caller so the UI can surface the undo
// affordance with its countdown.
type DeleteResult struct {
	DeletionLogID     string `json:"deletionLogId"`
	UndoWindowSeconds int    `json:"undoWindowSeconds"`
}

// DeletionUsecase deletes an entity subtree: it collects the cascade
// snapshot, persists a deletion record, and only then destroys the live
// entities. If the record write fails, nothing is destroyed.
type DeletionUsecase struct {
	trips      TripRepository
	days       ItineraryRepository
	activities ActivityRepository
	deletions  DeletionRepository
	tx         Transactor
	signal     Signaler
	undoWindow time.Duration

	nowFunc func() time.Time
}

func NewDeletionUsecase(
	trips TripRepository,
	days ItineraryRepository,
	activities ActivityRepository,
	deletions DeletionRepository,
	tx Transactor,
	signal Signaler,
	undoWindow time.Duration,
) *DeletionUsecase {
	if undoWindow <= 0 {
		undoWindow = 10 * time.Second
	}
	return &DeletionUsecase{
		trips:      trips,
		days:       days,
		activities: activities,
		deletions:  deletions,
		tx:         tx,
		signal:     signal,
		undoWindow: undoWindow,
	}
}

func (uc *DeletionUsecase) now() time.Time {
	if uc.nowFunc != nil {
		return uc.nowFunc()
	}
	return time.Now().UTC()
}

// Delete removes the entity and everything it owns, after logging a
// restorable record of the whole cascade.
func (uc *DeletionUsecase) Delete(ctx context.Context, kind domain.EntityKind, entityID, userID string) (DeleteResult, error) {
	ctx, span := tracer.Start(ctx, "Deletion.Usecase.Delete")
	defer span.End()

	cascade, ownerID, err := uc.collect(ctx, kind, entityID)
	if err != nil {
		span.RecordError(err)
		return DeleteResult{}, err
	}

	if ownerID != userID {
		err := domain.ErrForbidden
		span.RecordError(err)
		return DeleteResult{}, err
	}

	record, err := uc.log(ctx, userID, cascade)
	if err != nil {
		span.RecordError(err)
		return DeleteResult{}, err
	}

	err = uc.tx.RunInTx(ctx, func(ctx context.Context) error {
		return uc.destroy(ctx, cascade)
	})
	if err != nil {
		span.RecordError(err)
		return DeleteResult{}, errors.Wrap(err, "DeletionUsecase.Delete: destroy failed")
	}

	windowSeconds := int(uc.undoWindow / time.Second)

	if uc.signal != nil {
		event := domain.UndoEvent{
			Type:              domain.EventDeleted,
			EntityKind:        kind,
			EntityID:          entityID,
			DeletionLogID:     record.ID,
			UndoWindowSeconds: windowSeconds,
		}
		if err := uc.signal.PublishUndoEvent(ctx, userID, event); err != nil {
			slog.WarnContext(ctx, "failed to publish undo event",
				slog.String("error", err.Error()),
				slog.String("deletionLogId", record.ID),
			)
		}
	}

	return DeleteResult{
		DeletionLogID:     record.ID,
		UndoWindowSeconds: windowSeconds,
	}, nil
}

// collect builds the kind-tagged cascade snapshot before any mutation.
// Reads are ordered by original insertion order (day number, then
// activity position) so restoration reproduces the same ordering.
// Also resolves the owning user by walking up to the trip.
func (uc *DeletionUsecase) collect(ctx context.Context, kind domain.EntityKind, entityID string) (domain.Cascade, string, error) {
	switch kind {
	case domain.KindTrip:
		trip, err := uc.trips.Get(ctx, entityID)
		if err != nil {
			return domain.Cascade{}, "", err
		}
		days, err := uc.days.ListByTrip(ctx, trip.ID)
		if err != nil {
			return domain.Cascade{}, "", err
		}
		var activities []domain.Activity
		for _, day := range days {
			acts, err := uc.activities.ListByDay(ctx, day.ID)
			if err != nil {
				return domain.Cascade{}, "", err
			}
			activities = append(activities, acts...)
		}
		cascade := domain.Cascade{
			Kind: domain.KindTrip,
			Trip: &domain.TripCascade{
				Trip:       trip,
				Days:       days,
				Activities: activities,
			},
		}
		return cascade, trip.UserID, nil

	case domain.KindItineraryDay:
		day, err := uc.days.Get(ctx, entityID)
		if err != nil {
			return domain.Cascade{}, "", err
		}
		trip, err := uc.trips.Get(ctx, day.TripID)
		if err != nil {
			return domain.Cascade{}, "", err
		}
		activities, err := uc.activities.ListByDay(ctx, day.ID)
		if err != nil {
			return domain.Cascade{}, "", err
		}
		cascade := domain.Cascade{
			Kind: domain.KindItineraryDay,
			Day: &domain.DayCascade{
				Day:        day,
				TripID:     day.TripID,
				Activities: activities,
			},
		}
		return cascade, trip.UserID, nil

	case domain.KindActivity:
		activity, err := uc.activities.Get(ctx, entityID)
		if err != nil {
			return domain.Cascade{}, "", err
		}
		day, err := uc.days.Get(ctx, activity.ItineraryDay)
		if err != nil {
			return domain.Cascade{}, "", err
		}
		trip, err := uc.trips.Get(ctx, day.TripID)
		if err != nil {
			return domain.Cascade{}, "", err
		}
		cascade := domain.Cascade{
			Kind: domain.KindActivity,
			Activity: &domain.ActivityCascade{
				Activity: activity,
				DayID:    day.ID,
			},
		}
		return cascade, trip.UserID, nil
	}

	return domain.Cascade{}, "", errors.Errorf("unknown entity kind: %s", kind)
}

// log persists the cascade as a deletion record. Called strictly before
// the destructive delete so a write failure aborts the whole operation.
func (uc *DeletionUsecase) log(ctx context.Context, ownerID string, cascade domain.Cascade) (domain.DeletionRecord, error) {
	deletedAt := uc.now()
	record := domain.DeletionRecord{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Kind:      cascade.Kind,
		EntityID:  cascade.RootID(),
		Cascade:   cascade,
		DeletedAt: deletedAt,
		ExpiresAt: deletedAt.Add(uc.undoWindow),
	}

	if err := uc.deletions.Create(ctx, record); err != nil {
		return domain.DeletionRecord{}, errors.Wrap(err, "DeletionUsecase.log: create record failed")
	}
	return record, nil
}

// destroy removes the live entities captured in the cascade and detaches
// the root from its parent's reference list.
func (uc *DeletionUsecase) destroy(ctx context.Context, cascade domain.Cascade) error {
	switch cascade.Kind {
	case domain.KindTrip:
		c := cascade.Trip
		dayIDs := make([]string, 0, len(c.Days))
		for _, day := range c.Days {
			dayIDs = append(dayIDs, day.ID)
		}
		if len(dayIDs) > 0 {
			if err := uc.activities.DeleteByDays(ctx, dayIDs); err != nil {
				return err
			}
		}
		if err := uc.days.DeleteByTrip(ctx, c.Trip.ID); err != nil {
			return err
		}
		return uc.trips.Delete(ctx, c.Trip.ID)

	case domain.KindItineraryDay:
		c := cascade.Day
		if err := uc.activities.DeleteByDay(ctx, c.Day.ID); err != nil {
			return err
		}
		if err := uc.days.Delete(ctx, c.Day.ID); err != nil {
			return err
		}
		return uc.trips.RemoveDayID(ctx, c.TripID, c.Day.ID)

	case domain.KindActivity:
		c := cascade.Activity
		if err := uc.activities.Delete(ctx, c.Activity.ID); err != nil {
			return err
		}
		return uc.days.RemoveActivityID(ctx, c.DayID, c.Activity.ID)
	}

	return errors.Errorf("unknown entity kind: %s", cascade.Kind)
}
