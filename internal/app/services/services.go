package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/resultsportal/internal/app/models"
	"github.com/yigit/resultsportal/internal/pkg/analysis"
	"github.com/yigit/resultsportal/internal/pkg/objectstore"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// UserStore persists user accounts
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string, excludeID int64) (bool, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, userID int64, hash string, changedAt time.Time) error
	UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error
	Delete(ctx context.Context, userID int64) error
	List(ctx context.Context, offset, limit uint64) ([]*models.User, error)
	Count(ctx context.Context) (int64, error)
}

// SessionStore persists signed-in devices keyed by token digest
type SessionStore interface {
	Create(ctx context.Context, s *models.Session) error
	GetByTokenHash(ctx context.Context, hash string) (*models.Session, error)
	Touch(ctx context.Context, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteForUser(ctx context.Context, userID int64, id uuid.UUID) error
	DeleteAllForUser(ctx context.Context, userID int64) error
	ListForUser(ctx context.Context, userID int64) ([]*models.Session, error)
}

// FileRecordStore persists registry records
type FileRecordStore interface {
	ExistsByTuple(ctx context.Context, t models.Tuple) (bool, error)
	Insert(ctx context.Context, rec *models.FileRecord) error
	UpsertAppend(ctx context.Context, t models.Tuple, paths []string) (*models.FileRecord, error)
	FindAll(ctx context.Context) ([]*models.FileRecord, error)
	PullPaths(ctx context.Context, paths []string) (int64, error)
	PullPathsFromRecord(ctx context.Context, id bson.ObjectID, paths []string) error
	DeleteIfEmpty(ctx context.Context, id bson.ObjectID) (bool, error)
	DeleteEmpty(ctx context.Context) (int64, error)
}

// ObjectStore reads and deletes report objects
type ObjectStore interface {
	Locator() objectstore.Locator
	Get(ctx context.Context, key string) (*objectstore.Object, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}

// Analyzer runs the external spreadsheet analysis
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (*analysis.Result, error)
}
