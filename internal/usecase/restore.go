package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/roamplan/roamplan/internal/domain"
)

// RestoreUsecase reverses a logged deletion. The whole restoration runs
// in one transaction: the record is read under a row lock, entities are
// re-created bottom-up, and the record is deleted last. The record's
// deletion is the linearization point, so of two concurrent undo calls
// exactly one succeeds and the other observes NotFound.
type RestoreUsecase struct {
	trips      TripRepository
	days       ItineraryRepository
	activities ActivityRepository
	deletions  DeletionRepository
	tx         Transactor
	signal     Signaler

	nowFunc func() time.Time
}

func NewRestoreUsecase(
	trips TripRepository,
	days ItineraryRepository,
	activities ActivityRepository,
	deletions DeletionRepository,
	tx Transactor,
	signal Signaler,
) *RestoreUsecase {
	return &RestoreUsecase{
		trips:      trips,
		days:       days,
		activities: activities,
		deletions:  deletions,
		tx:         tx,
		signal:     signal,
	}
}

func (uc *RestoreUsecase) now() time.Time {
	if uc.nowFunc != nil {
		return uc.nowFunc()
	}
	return time.Now().UTC()
}

// Undo restores the entities captured by the deletion record and
// consumes the record. Fails with NotFound when the record is absent,
// Forbidden when the requester is not the owner, and Expired when the
// undo window has passed (purging the record as a side effect).
func (uc *RestoreUsecase) Undo(ctx context.Context, deletionLogID, userID string) error {
	ctx, span := tracer.Start(ctx, "Restore.Usecase.Undo")
	defer span.End()

	var record domain.DeletionRecord
	expired := false

	err := uc.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		record, err = uc.deletions.GetForUpdate(ctx, deletionLogID)
		if err != nil {
			return err
		}

		if record.OwnerID != userID {
			return domain.ErrForbidden
		}

		if record.Expired(uc.now()) {
			// Lazy expiry: purge on access and commit the purge.
			if err := uc.deletions.Delete(ctx, record.ID); err != nil {
				return errors.Wrap(err, "RestoreUsecase.Undo: purge expired record failed")
			}
			expired = true
			return nil
		}

		if err := uc.reconstruct(ctx, record.Cascade); err != nil {
			return errors.Wrap(err, "RestoreUsecase.Undo: reconstruction failed")
		}

		return uc.deletions.Delete(ctx, record.ID)
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	if expired {
		err := domain.ErrExpired
		span.RecordError(err)
		return err
	}

	if uc.signal != nil {
		event := domain.UndoEvent{
			Type:          domain.EventRestored,
			EntityKind:    record.Kind,
			EntityID:      record.EntityID,
			DeletionLogID: record.ID,
		}
		if err := uc.signal.PublishUndoEvent(ctx, userID, event); err != nil {
			slog.WarnContext(ctx, "failed to publish restore event",
				slog.String("error", err.Error()),
				slog.String("deletionLogId", record.ID),
			)
		}
	}

	return nil
}

// reconstruct re-creates the captured entities. Children are fully
// re-created before any parent reference list is updated to point at
// them, so no reference ever dangles.
func (uc *RestoreUsecase) reconstruct(ctx context.Context, cascade domain.Cascade) error {
	switch cascade.Kind {
	case domain.KindActivity:
		c := cascade.Activity
		if err := uc.activities.Create(ctx, c.Activity); err != nil {
			return err
		}
		return uc.days.AppendActivityID(ctx, c.DayID, c.Activity.ID)

	case domain.KindItineraryDay:
		c := cascade.Day
		if len(c.Activities) > 0 {
			if err := uc.activities.CreateMany(ctx, c.Activities); err != nil {
				return err
			}
		}
		if err := uc.days.Create(ctx, c.Day); err != nil {
			return err
		}
		return uc.trips.AppendDayID(ctx, c.TripID, c.Day.ID)

	case domain.KindTrip:
		c := cascade.Trip
		for _, day := range c.Days {
			if err := uc.days.Create(ctx, day); err != nil {
				return err
			}
		}
		if len(c.Activities) > 0 {
			if err := uc.activities.CreateMany(ctx, c.Activities); err != nil {
				return err
			}
		}
		return uc.trips.Create(ctx, c.Trip)
	}

	return errors.Errorf("unknown entity kind: %s", cascade.Kind)
}
