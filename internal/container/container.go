package container

import (
	"log/slog"

	"github.com/gatherly/server/internal/models"
	"github.com/gatherly/server/internal/services"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container holds all application dependencies
type Container struct {
	Logger         *slog.Logger
	MongoDBClient  *mongo.Client
	AllowedOrigins []string
	EventService   *services.EventService
}

// NewContainer creates a new dependency injection container
func NewContainer(
	logger *slog.Logger,
	mongoDBClient *mongo.Client,
	allowedOrigins []string,
) *Container {
	repo := models.MongodbNewRepo(mongoDBClient)
	eventService := services.NewEventService(repo)

	return &Container{
		Logger:         logger,
		MongoDBClient:  mongoDBClient,
		AllowedOrigins: allowedOrigins,
		EventService:   eventService,
	}
}
