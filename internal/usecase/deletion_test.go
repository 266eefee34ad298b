package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/roamplan/roamplan/internal/domain"
)

func TestDeleteTripCapturesWholeCascade(t *testing.T) {
	f := newFixture()
	tripID, dayIDs, actIDs := f.seedTrip("user-1", 2, 1)
	uc := f.deletionUsecase(10 * time.Second)

	result, err := uc.Delete(context.Background(), domain.KindTrip, tripID, "user-1")
	if err != nil {
		t.Fatalf("delete trip: %v", err)
	}
	if result.DeletionLogID == "" {
		t.Fatal("expected a deletion log id")
	}
	if result.UndoWindowSeconds != 10 {
		t.Errorf("undo window seconds: got %d, want 10", result.UndoWindowSeconds)
	}

	record, ok := f.store.records[result.DeletionLogID]
	if !ok {
		t.Fatal("deletion record was not persisted")
	}
	if record.Kind != domain.KindTrip || record.EntityID != tripID {
		t.Errorf("record identifies %s %s, want trip %s", record.Kind, record.EntityID, tripID)
	}
	if record.OwnerID != "user-1" {
		t.Errorf("record owner: got %s, want user-1", record.OwnerID)
	}

	c := record.Cascade.Trip
	if c == nil {
		t.Fatal("trip cascade variant not set")
	}
	if len(c.Days) != len(dayIDs) {
		t.Fatalf("cascade days: got %d, want %d", len(c.Days), len(dayIDs))
	}
	if len(c.Activities) != len(actIDs) {
		t.Fatalf("cascade activities: got %d, want %d", len(c.Activities), len(actIDs))
	}
	// Days come back in day-number order, activities grouped by day in
	// position order.
	for i, day := range c.Days {
		if day.ID != dayIDs[i] {
			t.Errorf("cascade day %d: got %s, want %s", i, day.ID, dayIDs[i])
		}
	}
	for i, act := range c.Activities {
		if act.ID != actIDs[i] {
			t.Errorf("cascade activity %d: got %s, want %s", i, act.ID, actIDs[i])
		}
	}

	if len(f.store.trips) != 0 || len(f.store.days) != 0 || len(f.store.acts) != 0 {
		t.Errorf("live entities survived the delete: %d trips, %d days, %d activities",
			len(f.store.trips), len(f.store.days), len(f.store.acts))
	}

	if len(f.signal.events) != 1 || f.signal.events[0].Type != domain.EventDeleted {
		t.Errorf("expected one deleted event, got %+v", f.signal.events)
	}
}

func TestDeleteDayDetachesFromTrip(t *testing.T) {
	f := newFixture()
	tripID, dayIDs, _ := f.seedTrip("user-1", 2, 1)
	uc := f.deletionUsecase(10 * time.Second)

	result, err := uc.Delete(context.Background(), domain.KindItineraryDay, dayIDs[0], "user-1")
	if err != nil {
		t.Fatalf("delete day: %v", err)
	}

	record := f.store.records[result.DeletionLogID]
	c := record.Cascade.Day
	if c == nil {
		t.Fatal("day cascade variant not set")
	}
	if c.TripID != tripID {
		t.Errorf("cascade trip id: got %s, want %s", c.TripID, tripID)
	}
	if len(c.Activities) != 2 {
		t.Errorf("cascade activities: got %d, want 2", len(c.Activities))
	}

	trip := f.store.trips[tripID]
	if len(trip.DayIDs) != 1 || trip.DayIDs[0] != dayIDs[1] {
		t.Errorf("trip day list after delete: got %v, want [%s]", trip.DayIDs, dayIDs[1])
	}
	if _, ok := f.store.days[dayIDs[0]]; ok {
		t.Error("deleted day still live")
	}
	if _, ok := f.store.days[dayIDs[1]]; !ok {
		t.Error("sibling day was destroyed")
	}
}

func TestDeleteActivityDetachesFromDay(t *testing.T) {
	f := newFixture()
	_, dayIDs, actIDs := f.seedTrip("user-1", 2)
	uc := f.deletionUsecase(10 * time.Second)

	result, err := uc.Delete(context.Background(), domain.KindActivity, actIDs[0], "user-1")
	if err != nil {
		t.Fatalf("delete activity: %v", err)
	}

	record := f.store.records[result.DeletionLogID]
	c := record.Cascade.Activity
	if c == nil {
		t.Fatal("activity cascade variant not set")
	}
	if c.DayID != dayIDs[0] {
		t.Errorf("cascade day id: got %s, want %s", c.DayID, dayIDs[0])
	}

	day := f.store.days[dayIDs[0]]
	if len(day.ActivityIDs) != 1 || day.ActivityIDs[0] != actIDs[1] {
		t.Errorf("day activity list after delete: got %v, want [%s]", day.ActivityIDs, actIDs[1])
	}
}

func TestDeleteAbortsWhenRecordWriteFails(t *testing.T) {
	f := newFixture()
	tripID, _, _ := f.seedTrip("user-1", 2, 1)
	f.store.failRecordCreate = true
	uc := f.deletionUsecase(10 * time.Second)

	_, err := uc.Delete(context.Background(), domain.KindTrip, tripID, "user-1")
	if err == nil {
		t.Fatal("expected error when record write fails")
	}

	// Nothing may be destroyed if the record was never written.
	if len(f.store.trips) != 1 || len(f.store.days) != 2 || len(f.store.acts) != 3 {
		t.Errorf("live entities mutated despite aborted delete: %d trips, %d days, %d activities",
			len(f.store.trips), len(f.store.days), len(f.store.acts))
	}
	if len(f.signal.events) != 0 {
		t.Errorf("no event should be published, got %+v", f.signal.events)
	}
}

func TestDeleteRejectsNonOwner(t *testing.T) {
	f := newFixture()
	tripID, dayIDs, _ := f.seedTrip("user-1", 1)
	uc := f.deletionUsecase(10 * time.Second)

	for _, tc := range []struct {
		kind domain.EntityKind
		id   string
	}{
		{domain.KindTrip, tripID},
		{domain.KindItineraryDay, dayIDs[0]},
	} {
		_, err := uc.Delete(context.Background(), tc.kind, tc.id, "intruder")
		if !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("delete %s as non-owner: got %v, want ErrForbidden", tc.kind, err)
		}
	}

	if len(f.store.trips) != 1 || len(f.store.records) != 0 {
		t.Error("forbidden delete must leave both live data and the record store untouched")
	}
}

func TestDeleteUnknownEntity(t *testing.T) {
	f := newFixture()
	uc := f.deletionUsecase(10 * time.Second)

	_, err := uc.Delete(context.Background(), domain.KindTrip, "nope", "user-1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestDeleteDefaultsUndoWindow(t *testing.T) {
	f := newFixture()
	tripID, _, _ := f.seedTrip("user-1", 1)
	uc := f.deletionUsecase(0)

	result, err := uc.Delete(context.Background(), domain.KindTrip, tripID, "user-1")
	if err != nil {
		t.Fatalf("delete trip: %v", err)
	}
	if result.UndoWindowSeconds != 10 {
		t.Errorf("default undo window: got %d, want 10", result.UndoWindowSeconds)
	}
}
