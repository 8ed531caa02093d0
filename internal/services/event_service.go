package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gatherly/server/internal/helpers"
	"github.com/gatherly/server/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EventService struct {
	eventRepo models.EventRepo
}

func NewEventService(eventRepo models.EventRepo) *EventService {
	return &EventService{
		eventRepo: eventRepo,
	}
}

// authorizeOwner gates mutation and deletion to the event's creator. It must
// run against the event fetched for this mutation attempt, after the existence
// check, so missing events always surface as not-found rather than forbidden.
func authorizeOwner(event *models.Event, userId uuid.UUID) error {
	if event.CreatedBy != userId {
		return models.ErrNotOwner
	}
	return nil
}

func (es *EventService) Create(ctx context.Context, userId uuid.UUID, event *models.Event) (*models.Event, error) {
	if userId == uuid.Nil {
		return nil, models.ErrUnauthenticated
	}

	event.Title = helpers.StringTrim(event.Title)
	event.Description = helpers.StringTrim(event.Description)
	event.Location = helpers.StringTrim(event.Location)

	if err := models.Validate.Struct(event); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, strings.ToLower(fe.Field()))
			}
			return nil, models.NewValidationError(fields...)
		}
		return nil, err
	}

	now := time.Now()
	event.CreatedBy = userId
	event.Attendees = []uuid.UUID{}
	event.CreatedAt = now
	event.UpdatedAt = now

	return es.eventRepo.CreateEvent(ctx, event)
}

func (es *EventService) Get(ctx context.Context, eventId primitive.ObjectID) (*models.Event, error) {
	return es.eventRepo.GetEventByID(ctx, eventId)
}

func (es *EventService) ListUpcoming(ctx context.Context) ([]*models.Event, error) {
	return es.eventRepo.ListUpcoming(ctx)
}

func (es *EventService) ListCreatedBy(ctx context.Context, userId uuid.UUID) ([]*models.Event, error) {
	if userId == uuid.Nil {
		return nil, models.ErrUnauthenticated
	}
	return es.eventRepo.ListByCreator(ctx, userId)
}

func (es *EventService) ListAttending(ctx context.Context, userId uuid.UUID) ([]*models.Event, error) {
	if userId == uuid.Nil {
		return nil, models.ErrUnauthenticated
	}
	return es.eventRepo.ListByAttendee(ctx, userId)
}

func (es *EventService) Update(ctx context.Context, userId uuid.UUID, eventId primitive.ObjectID, patch *models.EventPatch) (*models.Event, error) {
	if userId == uuid.Nil {
		return nil, models.ErrUnauthenticated
	}

	event, err := es.eventRepo.GetEventByID(ctx, eventId)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner(event, userId); err != nil {
		return nil, err
	}

	fields, err := patchFields(patch)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return event, nil
	}

	return es.eventRepo.UpdateEvent(ctx, eventId, fields)
}

// patchFields validates the provided fields and maps them to their stored
// names. Omitted fields keep their prior value.
func patchFields(patch *models.EventPatch) (map[string]interface{}, error) {
	fields := make(map[string]interface{})
	var bad []string

	if patch == nil {
		return fields, nil
	}

	if patch.Title != nil {
		if title := helpers.StringTrim(*patch.Title); title != "" {
			fields["title"] = title
		} else {
			bad = append(bad, "title")
		}
	}
	if patch.Description != nil {
		if description := helpers.StringTrim(*patch.Description); description != "" {
			fields["description"] = description
		} else {
			bad = append(bad, "description")
		}
	}
	if patch.Location != nil {
		if location := helpers.StringTrim(*patch.Location); location != "" {
			fields["location"] = location
		} else {
			bad = append(bad, "location")
		}
	}
	if patch.Date != nil {
		if !patch.Date.IsZero() {
			fields["date"] = *patch.Date
		} else {
			bad = append(bad, "date")
		}
	}
	if patch.Capacity != nil {
		if *patch.Capacity >= 1 {
			fields["capacity"] = *patch.Capacity
		} else {
			bad = append(bad, "capacity")
		}
	}
	if patch.ImageURL != nil {
		fields["image_url"] = helpers.StringTrim(*patch.ImageURL)
	}

	if len(bad) > 0 {
		return nil, models.NewValidationError(bad...)
	}
	return fields, nil
}

func (es *EventService) Delete(ctx context.Context, userId uuid.UUID, eventId primitive.ObjectID) error {
	if userId == uuid.Nil {
		return models.ErrUnauthenticated
	}

	event, err := es.eventRepo.GetEventByID(ctx, eventId)
	if err != nil {
		return err
	}
	if err := authorizeOwner(event, userId); err != nil {
		return err
	}

	return es.eventRepo.DeleteEvent(ctx, eventId)
}

// Join admits userId into the event's attendee set, subject to capacity. The
// accept/reject decision is made by a single atomic store update; on rejection
// a follow-up read classifies the cause. That read is not atomic with the
// rejection, so under a race (say another attendee left in between) the
// classification can be stale — the capacity invariant itself is unaffected.
func (es *EventService) Join(ctx context.Context, userId uuid.UUID, eventId primitive.ObjectID) (*models.Event, error) {
	if userId == uuid.Nil {
		return nil, models.ErrUnauthenticated
	}

	event, err := es.eventRepo.TryJoin(ctx, eventId, userId)
	if err != nil {
		return nil, err
	}
	if event != nil {
		return event, nil
	}

	current, err := es.eventRepo.GetEventByID(ctx, eventId)
	if err != nil {
		return nil, err
	}
	if current.IsAttending(userId) {
		return nil, models.ErrAlreadyJoined
	}
	return nil, models.ErrEventFull
}

// Leave is idempotent: removing a user who is not attending succeeds.
func (es *EventService) Leave(ctx context.Context, userId uuid.UUID, eventId primitive.ObjectID) (*models.Event, error) {
	if userId == uuid.Nil {
		return nil, models.ErrUnauthenticated
	}
	return es.eventRepo.Leave(ctx, eventId, userId)
}
