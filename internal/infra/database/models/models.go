package models

import (
	"time"
)

type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:text"`
	Email        string    `json:"email" gorm:"type:text;index:user_email,unique"`
	DisplayName  string    `json:"displayName" gorm:"type:text"`
	PasswordHash string    `json:"-" gorm:"type:text"`
	CDate        time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type Trip struct {
	ID          string    `json:"id" gorm:"primaryKey;type:text"`
	UserID      string    `json:"userId" gorm:"type:text;index"`
	Name        string    `json:"tripName" gorm:"type:text"`
	Description string    `json:"tripDescription" gorm:"type:text"`
	Destination string    `json:"destination" gorm:"type:text"`
	StartDate   time.Time `json:"startDate" gorm:"type:timestamp with time zone"`
	EndDate     time.Time `json:"endDate" gorm:"type:timestamp with time zone"`
	// DayIDs is the ordered day-id list, JSON-encoded.
	DayIDs string    `json:"itineraryDays" gorm:"type:text;not null;default:'[]'"`
	CDate  time.Time `json:"cdate" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
	MDate  time.Time `json:"mdate" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type ItineraryDay struct {
	ID        string    `json:"id" gorm:"primaryKey;type:text"`
	TripID    string    `json:"tripId" gorm:"type:text;index"`
	DayNumber int       `json:"dayNumber" gorm:"not null"`
	Date      time.Time `json:"date" gorm:"type:timestamp with time zone"`
	// ActivityIDs is the ordered activity-id list, JSON-encoded.
	ActivityIDs string    `json:"activitiesId" gorm:"type:text;not null;default:'[]'"`
	CDate       time.Time `json:"cdate" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
	MDate       time.Time `json:"mdate" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type Activity struct {
	ID             string    `json:"id" gorm:"primaryKey;type:text"`
	ItineraryDayID string    `json:"itineraryDayId" gorm:"type:text;index"`
	ActivityType   string    `json:"activityType" gorm:"type:text"`
	Title          string    `json:"title" gorm:"type:text"`
	Description    string    `json:"description" gorm:"type:text"`
	Location       string    `json:"location" gorm:"type:text"`
	StartTime      string    `json:"startTime" gorm:"type:text"`
	EndTime        string    `json:"endTime" gorm:"type:text"`
	Position       int       `json:"position" gorm:"not null;default:0"`
	CDate          time.Time `json:"cdate" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
	MDate          time.Time `json:"mdate" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
}

// DeletionRecord persists one deletion event. Data holds the root
// snapshot and RelatedData the cascade remainder, both JSON-encoded.
// Rows are purged on restoration, on expired access, or by the sweeper.
type DeletionRecord struct {
	ID          string    `json:"id" gorm:"primaryKey;type:text"`
	OwnerID     string    `json:"ownerId" gorm:"type:text;index"`
	EntityType  string    `json:"entityType" gorm:"type:text;not null"`
	EntityID    string    `json:"entityId" gorm:"type:text;not null"`
	Data        string    `json:"data" gorm:"type:text;not null"`
	RelatedData string    `json:"relatedData" gorm:"type:text"`
	DeletedAt   time.Time `json:"deletedAt" gorm:"type:timestamp with time zone;not null"`
	ExpiresAt   time.Time `json:"expiresAt" gorm:"type:timestamp with time zone;not null;index"`
}
