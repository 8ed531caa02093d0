package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	EventDbName  = "gatherly"
	EventColName = "events"
)

// EventRepo is the store contract the service layer depends on. TryJoin is the
// one primitive that must be atomic at the store: the membership check, the
// capacity check and the insert happen in a single conditional update, never as
// a read-then-write sequence in the application.
type EventRepo interface {
	CreateEvent(ctx context.Context, event *Event) (*Event, error)
	GetEventByID(ctx context.Context, id primitive.ObjectID) (*Event, error)
	ListUpcoming(ctx context.Context) ([]*Event, error)
	ListByCreator(ctx context.Context, userId uuid.UUID) ([]*Event, error)
	ListByAttendee(ctx context.Context, userId uuid.UUID) ([]*Event, error)
	UpdateEvent(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*Event, error)
	DeleteEvent(ctx context.Context, id primitive.ObjectID) error

	// TryJoin atomically adds userId to the attendee set if the event exists,
	// the user is not already a member, and the current attendee count is below
	// capacity. It returns the updated event, or (nil, nil) when the store
	// rejected the join without saying why.
	TryJoin(ctx context.Context, id primitive.ObjectID, userId uuid.UUID) (*Event, error)

	// Leave removes userId from the attendee set. Removing an absent member is
	// a no-op success; a missing event is ErrEventNotFound.
	Leave(ctx context.Context, id primitive.ObjectID, userId uuid.UUID) (*Event, error)
}

// tryJoinFilter matches only when the event can still admit userId. The $expr
// clause compares the live attendee count against capacity inside the store,
// so two racing joins can never both pass it on the last remaining spot.
func tryJoinFilter(id primitive.ObjectID, userId uuid.UUID) bson.M {
	return bson.M{
		"_id":       id,
		"attendees": bson.M{"$ne": userId},
		"$expr": bson.M{
			"$lt": []interface{}{bson.M{"$size": "$attendees"}, "$capacity"},
		},
	}
}

func tryJoinUpdate(userId uuid.UUID, now time.Time) bson.M {
	return bson.M{
		"$push": bson.M{"attendees": userId},
		"$set":  bson.M{"updated_at": now},
	}
}

func (mdb *MongodbRepo) CreateEvent(ctx context.Context, event *Event) (*Event, error) {
	if err := event.BeforeCreate(); err != nil {
		return nil, fmt.Errorf("failed to prepare event for creation: %w", err)
	}
	col, err := mdb.GetCollection(ctx, EventDbName, EventColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	if _, err := col.InsertOne(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}
	return event, nil
}

func (mdb *MongodbRepo) GetEventByID(ctx context.Context, id primitive.ObjectID) (*Event, error) {
	col, err := mdb.GetCollection(ctx, EventDbName, EventColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var event Event
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&event); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to find event: %w", err)
	}
	return &event, nil
}

func (mdb *MongodbRepo) ListUpcoming(ctx context.Context) ([]*Event, error) {
	return mdb.findEvents(ctx, bson.M{"date": bson.M{"$gte": time.Now()}})
}

func (mdb *MongodbRepo) ListByCreator(ctx context.Context, userId uuid.UUID) ([]*Event, error) {
	return mdb.findEvents(ctx, bson.M{"created_by": userId})
}

func (mdb *MongodbRepo) ListByAttendee(ctx context.Context, userId uuid.UUID) ([]*Event, error) {
	return mdb.findEvents(ctx, bson.M{"attendees": userId})
}

func (mdb *MongodbRepo) findEvents(ctx context.Context, filter bson.M) ([]*Event, error) {
	col, err := mdb.GetCollection(ctx, EventDbName, EventColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding events: %v", err)
	}
	defer cursor.Close(ctx)

	var events []*Event
	for cursor.Next(ctx) {
		var event Event
		if err := cursor.Decode(&event); err != nil {
			return nil, fmt.Errorf("error decoding event: %v", err)
		}
		events = append(events, &event)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}

	return events, nil
}

func (mdb *MongodbRepo) UpdateEvent(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*Event, error) {
	col, err := mdb.GetCollection(ctx, EventDbName, EventColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	set := bson.M{"updated_at": time.Now()}
	for key, value := range fields {
		set[key] = value
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Event
	err = col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return &updated, nil
}

func (mdb *MongodbRepo) DeleteEvent(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, EventDbName, EventColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (mdb *MongodbRepo) TryJoin(ctx context.Context, id primitive.ObjectID, userId uuid.UUID) (*Event, error) {
	col, err := mdb.GetCollection(ctx, EventDbName, EventColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Event
	err = col.FindOneAndUpdate(ctx, tryJoinFilter(id, userId), tryJoinUpdate(userId, time.Now()), opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Missing event, duplicate member or exhausted capacity all land
			// here; the service disambiguates with a follow-up read.
			return nil, nil
		}
		return nil, fmt.Errorf("failed to join event: %w", err)
	}
	return &updated, nil
}

func (mdb *MongodbRepo) Leave(ctx context.Context, id primitive.ObjectID, userId uuid.UUID) (*Event, error) {
	col, err := mdb.GetCollection(ctx, EventDbName, EventColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	update := bson.M{
		"$pull": bson.M{"attendees": userId},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Event
	err = col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to leave event: %w", err)
	}
	return &updated, nil
}
