package domain

import "time"

// User is an account that owns trips.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"displayName"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Trip is the root of the itinerary tree. DayIDs keeps the ordered list
// of itinerary-day ids so restoration can re-append a day in place.
type Trip struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Name        string    `json:"tripName"`
	Description string    `json:"tripDescription"`
	Destination string    `json:"destination,omitempty"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	DayIDs      []string  `json:"itineraryDays"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ItineraryDay belongs to a trip and carries an ordered list of
// activity ids.
type ItineraryDay struct {
	ID          string    `json:"id"`
	TripID      string    `json:"tripId"`
	DayNumber   int       `json:"dayNumber"`
	Date        time.Time `json:"date"`
	ActivityIDs []string  `json:"activitiesId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Activity belongs to an itinerary day. Position is the slot in the
// day's ordering, maintained by the reorder operation.
type Activity struct {
	ID           string    `json:"id"`
	ItineraryDay string    `json:"itineraryDayId"`
	ActivityType string    `json:"activityType"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Location     string    `json:"location,omitempty"`
	StartTime    string    `json:"startTime,omitempty"`
	EndTime      string    `json:"endTime,omitempty"`
	Position     int       `json:"position"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
