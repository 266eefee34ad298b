package domain

import "time"

// EntityKind tags which entity type was the root of a deletion.
type EntityKind string

const (
	KindTrip         EntityKind = "trip"
	KindItineraryDay EntityKind = "itineraryDay"
	KindActivity     EntityKind = "activity"
)

// Valid reports whether the kind is one of the three known variants.
func (k EntityKind) Valid() bool {
	switch k {
	case KindTrip, KindItineraryDay, KindActivity:
		return true
	}
	return false
}

// TripCascade captures a trip together with everything that becomes
// unreachable when it is deleted. Days are in day-number order and
// Activities is the flat list across all days, each day's activities in
// their original position order.
type TripCascade struct {
	Trip       Trip       `json:"trip"`
	Days       []ItineraryDay `json:"itineraryDays"`
	Activities []Activity `json:"activities"`
}

// DayCascade captures an itinerary day, its activities in position
// order, and the owning trip's id so the day can be re-attached to the
// trip's day list on restoration.
type DayCascade struct {
	Day        ItineraryDay `json:"day"`
	TripID     string       `json:"tripId"`
	Activities []Activity   `json:"activities"`
}

// ActivityCascade captures a single activity and its parent day id.
type ActivityCascade struct {
	Activity Activity `json:"activity"`
	DayID    string   `json:"dayId"`
}

// Cascade is the kind-tagged snapshot produced by cascade collection.
// Exactly one of the three variant pointers is set, matching Kind.
type Cascade struct {
	Kind     EntityKind       `json:"kind"`
	Trip     *TripCascade     `json:"trip,omitempty"`
	Day      *DayCascade      `json:"day,omitempty"`
	Activity *ActivityCascade `json:"activity,omitempty"`
}

// RootID returns the id of the root entity of the cascade.
func (c Cascade) RootID() string {
	switch c.Kind {
	case KindTrip:
		return c.Trip.Trip.ID
	case KindItineraryDay:
		return c.Day.Day.ID
	case KindActivity:
		return c.Activity.Activity.ID
	}
	return ""
}

// DeletionRecord is the persisted, time-bounded snapshot enabling undo.
// It is immutable once created and consumed at most once, either by a
// successful restoration or by expiry-driven purge.
type DeletionRecord struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"ownerId"`
	Kind      EntityKind `json:"entityType"`
	EntityID  string     `json:"entityId"`
	Cascade   Cascade    `json:"-"`
	DeletedAt time.Time  `json:"deletedAt"`
	ExpiresAt time.Time  `json:"expiresAt"`
}

// Expired reports whether the undo window has passed at the given time.
func (r DeletionRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
