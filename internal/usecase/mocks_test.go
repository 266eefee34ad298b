package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/roamplan/roamplan/internal/domain"
)

// memStore is a shared in-memory backing store for the repository
// mocks, so cascade tests observe one consistent world.
type memStore struct {
	mu      sync.Mutex
	trips   map[string]domain.Trip
	days    map[string]domain.ItineraryDay
	acts    map[string]domain.Activity
	records map[string]domain.DeletionRecord

	failRecordCreate bool
}

func newMemStore() *memStore {
	return &memStore{
		trips:   map[string]domain.Trip{},
		days:    map[string]domain.ItineraryDay{},
		acts:    map[string]domain.Activity{},
		records: map[string]domain.DeletionRecord{},
	}
}

// --- TripRepository ---

type memTripRepo struct{ s *memStore }

func (r *memTripRepo) Create(ctx context.Context, trip domain.Trip) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.trips[trip.ID] = trip
	return nil
}

func (r *memTripRepo) Get(ctx context.Context, id string) (domain.Trip, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	trip, ok := r.s.trips[id]
	if !ok {
		return domain.Trip{}, domain.NotFoundError{Resource: "trip"}
	}
	return trip, nil
}

func (r *memTripRepo) ListByUser(ctx context.Context, userID string) ([]domain.Trip, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var trips []domain.Trip
	for _, t := range r.s.trips {
		if t.UserID == userID {
			trips = append(trips, t)
		}
	}
	sort.Slice(trips, func(i, j int) bool { return trips[i].CreatedAt.Before(trips[j].CreatedAt) })
	return trips, nil
}

func (r *memTripRepo) Update(ctx context.Context, trip domain.Trip) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.trips[trip.ID]; !ok {
		return domain.NotFoundError{Resource: "trip"}
	}
	r.s.trips[trip.ID] = trip
	return nil
}

func (r *memTripRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.trips[id]; !ok {
		return domain.NotFoundError{Resource: "trip"}
	}
	delete(r.s.trips, id)
	return nil
}

func (r *memTripRepo) AppendDayID(ctx context.Context, tripID, dayID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	trip, ok := r.s.trips[tripID]
	if !ok {
		return domain.NotFoundError{Resource: "trip"}
	}
	trip.DayIDs = append(trip.DayIDs, dayID)
	r.s.trips[tripID] = trip
	return nil
}

func (r *memTripRepo) RemoveDayID(ctx context.Context, tripID, dayID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	trip, ok := r.s.trips[tripID]
	if !ok {
		return domain.NotFoundError{Resource: "trip"}
	}
	out := trip.DayIDs[:0]
	for _, id := range trip.DayIDs {
		if id != dayID {
			out = append(out, id)
		}
	}
	trip.DayIDs = out
	r.s.trips[tripID] = trip
	return nil
}

// --- ItineraryRepository ---

type memDayRepo struct{ s *memStore }

func (r *memDayRepo) Create(ctx context.Context, day domain.ItineraryDay) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.days[day.ID] = day
	return nil
}

func (r *memDayRepo) Get(ctx context.Context, id string) (domain.ItineraryDay, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	day, ok := r.s.days[id]
	if !ok {
		return domain.ItineraryDay{}, domain.NotFoundError{Resource: "itinerary day"}
	}
	return day, nil
}

func (r *memDayRepo) ListByTrip(ctx context.Context, tripID string) ([]domain.ItineraryDay, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var days []domain.ItineraryDay
	for _, d := range r.s.days {
		if d.TripID == tripID {
			days = append(days, d)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].DayNumber < days[j].DayNumber })
	return days, nil
}

func (r *memDayRepo) Update(ctx context.Context, day domain.ItineraryDay) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.days[day.ID]; !ok {
		return domain.NotFoundError{Resource: "itinerary day"}
	}
	r.s.days[day.ID] = day
	return nil
}

func (r *memDayRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.days[id]; !ok {
		return domain.NotFoundError{Resource: "itinerary day"}
	}
	delete(r.s.days, id)
	return nil
}

func (r *memDayRepo) DeleteByTrip(ctx context.Context, tripID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, d := range r.s.days {
		if d.TripID == tripID {
			delete(r.s.days, id)
		}
	}
	return nil
}

func (r *memDayRepo) AppendActivityID(ctx context.Context, dayID, activityID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	day, ok := r.s.days[dayID]
	if !ok {
		return domain.NotFoundError{Resource: "itinerary day"}
	}
	day.ActivityIDs = append(day.ActivityIDs, activityID)
	r.s.days[dayID] = day
	return nil
}

func (r *memDayRepo) RemoveActivityID(ctx context.Context, dayID, activityID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	day, ok := r.s.days[dayID]
	if !ok {
		return domain.NotFoundError{Resource: "itinerary day"}
	}
	out := day.ActivityIDs[:0]
	for _, id := range day.ActivityIDs {
		if id != activityID {
			out = append(out, id)
		}
	}
	day.ActivityIDs = out
	r.s.days[dayID] = day
	return nil
}

func (r *memDayRepo) SetActivityIDs(ctx context.Context, dayID string, activityIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	day, ok := r.s.days[dayID]
	if !ok {
		return domain.NotFoundError{Resource: "itinerary day"}
	}
	day.ActivityIDs = activityIDs
	r.s.days[dayID] = day
	return nil
}

// --- ActivityRepository ---

type memActivityRepo struct{ s *memStore }

func (r *memActivityRepo) Create(ctx context.Context, activity domain.Activity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.acts[activity.ID] = activity
	return nil
}

func (r *memActivityRepo) CreateMany(ctx context.Context, activities []domain.Activity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range activities {
		r.s.acts[a.ID] = a
	}
	return nil
}

func (r *memActivityRepo) Get(ctx context.Context, id string) (domain.Activity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.acts[id]
	if !ok {
		return domain.Activity{}, domain.NotFoundError{Resource: "activity"}
	}
	return a, nil
}

func (r *memActivityRepo) ListByDay(ctx context.Context, dayID string) ([]domain.Activity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var acts []domain.Activity
	for _, a := range r.s.acts {
		if a.ItineraryDay == dayID {
			acts = append(acts, a)
		}
	}
	sort.Slice(acts, func(i, j int) bool { return acts[i].Position < acts[j].Position })
	return acts, nil
}

func (r *memActivityRepo) Update(ctx context.Context, activity domain.Activity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.acts[activity.ID]; !ok {
		return domain.NotFoundError{Resource: "activity"}
	}
	r.s.acts[activity.ID] = activity
	return nil
}

func (r *memActivityRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.acts[id]; !ok {
		return domain.NotFoundError{Resource: "activity"}
	}
	delete(r.s.acts, id)
	return nil
}

func (r *memActivityRepo) DeleteByDay(ctx context.Context, dayID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, a := range r.s.acts {
		if a.ItineraryDay == dayID {
			delete(r.s.acts, id)
		}
	}
	return nil
}

func (r *memActivityRepo) DeleteByDays(ctx context.Context, dayIDs []string) error {
	for _, dayID := range dayIDs {
		if err := r.DeleteByDay(ctx, dayID); err != nil {
			return err
		}
	}
	return nil
}

func (r *memActivityRepo) SetPositions(ctx context.Context, dayID string, orderedIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for pos, id := range orderedIDs {
		a, ok := r.s.acts[id]
		if !ok || a.ItineraryDay != dayID {
			return domain.NotFoundError{Resource: "activity"}
		}
		a.Position = pos
		r.s.acts[id] = a
	}
	return nil
}

// --- DeletionRepository ---

type memDeletionRepo struct{ s *memStore }

func (r *memDeletionRepo) Create(ctx context.Context, record domain.DeletionRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failRecordCreate {
		return errors.New("record store unavailable")
	}
	r.s.records[record.ID] = record
	return nil
}

func (r *memDeletionRepo) Get(ctx context.Context, id string) (domain.DeletionRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.records[id]
	if !ok {
		return domain.DeletionRecord{}, domain.NotFoundError{Resource: "deletion record"}
	}
	return rec, nil
}

func (r *memDeletionRepo) GetForUpdate(ctx context.Context, id string) (domain.DeletionRecord, error) {
	return r.Get(ctx, id)
}

func (r *memDeletionRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.records[id]; !ok {
		return domain.NotFoundError{Resource: "deletion record"}
	}
	delete(r.s.records, id)
	return nil
}

func (r *memDeletionRepo) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var purged int64
	for id, rec := range r.s.records {
		if !rec.ExpiresAt.After(now) {
			delete(r.s.records, id)
			purged++
		}
	}
	return purged, nil
}

// --- Transactor / Signaler ---

type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type captureSignal struct {
	mu     sync.Mutex
	events []domain.UndoEvent
}

func (s *captureSignal) PublishUndoEvent(ctx context.Context, userID string, event domain.UndoEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// --- fixture ---

type fixture struct {
	store      *memStore
	trips      *memTripRepo
	days       *memDayRepo
	activities *memActivityRepo
	deletions  *memDeletionRepo
	signal     *captureSignal
}

func newFixture() *fixture {
	store := newMemStore()
	return &fixture{
		store:      store,
		trips:      &memTripRepo{s: store},
		days:       &memDayRepo{s: store},
		activities: &memActivityRepo{s: store},
		deletions:  &memDeletionRepo{s: store},
		signal:     &captureSignal{},
	}
}

func (f *fixture) deletionUsecase(window time.Duration) *DeletionUsecase {
	return NewDeletionUsecase(f.trips, f.days, f.activities, f.deletions, passthroughTx{}, f.signal, window)
}

func (f *fixture) restoreUsecase() *RestoreUsecase {
	return NewRestoreUsecase(f.trips, f.days, f.activities, f.deletions, passthroughTx{}, f.signal)
}

// seedTrip creates a trip with the given days and per-day activity
// counts, returning the trip id, day ids, and activity ids in order.
func (f *fixture) seedTrip(userID string, activityCounts ...int) (string, []string, []string) {
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	trip := domain.Trip{
		ID:        "trip-1",
		UserID:    userID,
		Name:      "Kyoto in spring",
		StartDate: base,
		EndDate:   base.AddDate(0, 0, len(activityCounts)),
		DayIDs:    []string{},
		CreatedAt: base,
		UpdatedAt: base,
	}

	var dayIDs, actIDs []string
	for i, count := range activityCounts {
		dayID := trip.ID + "-day-" + string(rune('a'+i))
		day := domain.ItineraryDay{
			ID:          dayID,
			TripID:      trip.ID,
			DayNumber:   i + 1,
			Date:        base.AddDate(0, 0, i),
			ActivityIDs: []string{},
			CreatedAt:   base,
			UpdatedAt:   base,
		}
		for j := 0; j < count; j++ {
			actID := dayID + "-act-" + string(rune('a'+j))
			f.store.acts[actID] = domain.Activity{
				ID:           actID,
				ItineraryDay: dayID,
				ActivityType: "sightseeing",
				Title:        "stop " + actID,
				Position:     j,
				CreatedAt:    base,
				UpdatedAt:    base,
			}
			day.ActivityIDs = append(day.ActivityIDs, actID)
			actIDs = append(actIDs, actID)
		}
		f.store.days[dayID] = day
		trip.DayIDs = append(trip.DayIDs, dayID)
		dayIDs = append(dayIDs, dayID)
	}

	f.store.trips[trip.ID] = trip
	return trip.ID, dayIDs, actIDs
}
