package models

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Event struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title" validate:"required"`
	Description string             `bson:"description" json:"description" validate:"required"`
	Location    string             `bson:"location" json:"location" validate:"required"`
	Date        time.Time          `bson:"date" json:"date" validate:"required"`
	Capacity    int                `bson:"capacity" json:"capacity" validate:"required,gt=0"`
	ImageURL    string             `bson:"image_url,omitempty" json:"image_url,omitempty"`
	CreatedBy   uuid.UUID          `bson:"created_by" json:"created_by"`
	Attendees   []uuid.UUID        `bson:"attendees" json:"attendees"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

func (e *Event) BeforeCreate() error {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if e.Attendees == nil {
		e.Attendees = []uuid.UUID{}
	}
	return nil
}

// SpotsLeft is informational only; admission decisions are made atomically by
// the store, never from this snapshot.
func (e *Event) SpotsLeft() int {
	left := e.Capacity - len(e.Attendees)
	if left < 0 {
		return 0
	}
	return left
}

func (e *Event) IsAttending(userId uuid.UUID) bool {
	for _, a := range e.Attendees {
		if a == userId {
			return true
		}
	}
	return false
}

// EventPatch carries a partial update; nil fields keep their stored value.
type EventPatch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Location    *string    `json:"location,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	Capacity    *int       `json:"capacity,omitempty"`
	ImageURL    *string    `json:"image_url,omitempty"`
}

func (p *EventPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Location == nil &&
		p.Date == nil && p.Capacity == nil && p.ImageURL == nil
}
