package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository       *UserRepository
	SessionRepository    *SessionRepository
	FileRecordRepository *FileRecordRepository
}

// NewRepositories initializes all repositories
func NewRepositories(pg *pgxpool.Pool, mongoDB *mongo.Database, fileCollection string) *Repositories {
	return &Repositories{
		UserRepository:       NewUserRepository(pg),
		SessionRepository:    NewSessionRepository(pg),
		FileRecordRepository: NewFileRecordRepository(mongoDB, fileCollection),
	}
}
