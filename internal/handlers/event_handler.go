package handlers

import (
	"errors"
	"net/http"

	"github.com/gatherly/server/internal/helpers"
	"github.com/gatherly/server/internal/models"
	"github.com/gatherly/server/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// statusForError maps the service error taxonomy onto HTTP status codes.
func statusForError(err error) int {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrEventNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, models.ErrAlreadyJoined), errors.Is(err, models.ErrEventFull):
		return http.StatusConflict
	case errors.Is(err, models.ErrUnauthenticated):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func currentUser(c *gin.Context) (*helpers.AuthenticatedUser, bool) {
	claims, exists := c.Get("user")
	if !exists {
		return nil, false
	}
	user, ok := claims.(*helpers.AuthenticatedUser)
	return user, ok
}

func eventIDParam(c *gin.Context) (primitive.ObjectID, bool) {
	raw := helpers.StringTrim(c.Param("id"))
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid event ID format"))
		return primitive.NilObjectID, false
	}
	return id, true
}

func ListEvents(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		events, err := es.ListUpcoming(c.Request.Context())
		if err != nil {
			c.JSON(statusForError(err), models.ErrorResponse(err.Error()))
			return
		}
		if events == nil {
			events = []*models.Event{}
		}
		c.JSON(http.StatusOK, models.SuccessResponse(events, ""))
	}
}

func GetEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := eventIDParam(c)
		if !ok {
			return
		}

		event, err := es.Get(c.Request.Context(), id)
		if err != nil {
			c.JSON(statusForError(err), models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(event, ""))
	}
}

func CreateEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		var event models.Event
		if err := c.ShouldBindJSON(&event); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		created, err := es.Create(c.Request.Context(), user.UserID, &event)
		if err != nil {
			c.JSON(statusForError(err), models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(created, "Event created successfully"))
	}
}

func UpdateEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}
		id, ok := eventIDParam(c)
		if !ok {
			return
		}

		var patch models.EventPatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		updated, err := es.Update(c.Request.Context(), user.UserID, id, &patch)
		if err != nil {
			c.JSON(statusForError(err), models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(updated, "Event updated successfully"))
	}
}

func DeleteEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}
		id, ok := eventIDParam(c)
		if !ok {
			return
		}

		if err := es.Delete(c.Request.Context(), user.UserID, id); err != nil {
			c.JSON(statusForError(err), models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Event deleted successfully"))
	}
}

func JoinEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}
		id, ok := eventIDParam(c)
		if !ok {
			return
		}

		event, err := es.Join(c.Request.Context(), user.UserID, id)
		if err != nil {
			c.JSON(statusForError(err), models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(event, "Joined event"))
	}
}

func LeaveEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}
		id, ok := eventIDParam(c)
		if !ok {
			return
		}

		event, err := es.Leave(c.Request.Context(), user.UserID, id)
		if err != nil {
			c.JSON(statusForError(err), models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(event, "Left event"))
	}
}

func ListCreatedEvents(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		events, err := es.ListCreatedBy(c.Request.Context(), user.UserID)
		if err != nil {
			c.JSON(statusForError(err), models.ErrorResponse(err.Error()))
			return
		}
		if events == nil {
			events = []*models.Event{}
		}
		c.JSON(http.StatusOK, models.SuccessResponse(events, ""))
	}
}

func ListAttendingEvents(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		events, err := es.ListAttending(c.Request.Context(), user.UserID)
		if err != nil {
			c.JSON(statusForError(err), models.ErrorResponse(err.Error()))
			return
		}
		if events == nil {
			events = []*models.Event{}
		}
		c.JSON(http.StatusOK, models.SuccessResponse(events, ""))
	}
}
