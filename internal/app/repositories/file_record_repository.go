package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/yigit/resultsportal/internal/app/models"
	"github.com/yigit/resultsportal/internal/pkg/apperrors"
	"github.com/yigit/resultsportal/internal/pkg/dberrors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const tupleIndexName = "tuple_unique"

// FileRecordRepository stores registry records in a MongoDB collection
type FileRecordRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewFileRecordRepository creates a new FileRecordRepository
func NewFileRecordRepository(db *mongo.Database, collection string) *FileRecordRepository {
	return &FileRecordRepository{
		coll: db.Collection(collection),
		now:  time.Now,
	}
}

func tupleFilter(t models.Tuple) bson.D {
	return bson.D{
		{Key: "collegeName", Value: t.CollegeName},
		{Key: "program", Value: t.Program},
		{Key: "batch", Value: t.Batch},
		{Key: "semester", Value: t.Semester},
		{Key: "session", Value: t.Session},
	}
}

// EnsureIndexes creates the listing index and, when unique is set, the tuple
// uniqueness index the append save mode relies on.
func (r *FileRecordRepository) EnsureIndexes(ctx context.Context, unique bool) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "result_path", Value: 1}},
			Options: options.Index().SetName("result_path"),
		},
	}
	if unique {
		keys := bson.D{}
		for _, e := range tupleFilter(models.Tuple{}) {
			keys = append(keys, bson.E{Key: e.Key, Value: 1})
		}
		indexes = append(indexes, mongo.IndexModel{
			Keys:    keys,
			Options: options.Index().SetName(tupleIndexName).SetUnique(true),
		})
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create file record indexes: %w", err)
	}
	return nil
}

// ExistsByTuple reports whether any record is filed under t
func (r *FileRecordRepository) ExistsByTuple(ctx context.Context, t models.Tuple) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, tupleFilter(t), options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("error checking file record: %w", err)
	}
	return n > 0, nil
}

// Insert always creates a new record, even when one exists for the same tuple
func (r *FileRecordRepository) Insert(ctx context.Context, rec *models.FileRecord) error {
	now := r.now().UTC()
	rec.ID = bson.NewObjectID()
	rec.CreatedAt, rec.UpdatedAt = now, now
	if rec.ResultPath == nil {
		rec.ResultPath = []string{}
	}

	if _, err := r.coll.InsertOne(ctx, rec); err != nil {
		if dberrors.IsMongoDuplicateKey(err) {
			return apperrors.ErrAlreadyAnalyzed
		}
		return fmt.Errorf("error inserting file record: %w", err)
	}
	return nil
}

// UpsertAppend adds paths to the record of t, creating it when missing
func (r *FileRecordRepository) UpsertAppend(ctx context.Context, t models.Tuple, paths []string) (*models.FileRecord, error) {
	now := r.now().UTC()
	update := bson.D{
		{Key: "$addToSet", Value: bson.D{{Key: "result_path", Value: bson.D{{Key: "$each", Value: paths}}}}},
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: now}}},
		{Key: "$setOnInsert", Value: bson.D{{Key: "createdAt", Value: now}}},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var rec models.FileRecord
	err := r.coll.FindOneAndUpdate(ctx, tupleFilter(t), update, opts).Decode(&rec)
	if dberrors.IsMongoDuplicateKey(err) {
		// two upserts raced on the unique index; the loser now finds the winner's document
		err = r.coll.FindOneAndUpdate(ctx, tupleFilter(t), update, opts).Decode(&rec)
	}
	if err != nil {
		return nil, fmt.Errorf("error upserting file record: %w", err)
	}
	return &rec, nil
}

// FindAll returns every record in creation order
func (r *FileRecordRepository) FindAll(ctx context.Context) ([]*models.FileRecord, error) {
	cursor, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("error listing file records: %w", err)
	}

	records := make([]*models.FileRecord, 0)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("error decoding file records: %w", err)
	}
	return records, nil
}

// PullPaths removes any of paths from every record and returns how many records changed
func (r *FileRecordRepository) PullPaths(ctx context.Context, paths []string) (int64, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.D{{Key: "result_path", Value: bson.D{{Key: "$in", Value: paths}}}},
		pullUpdate(paths, r.now().UTC()),
	)
	if err != nil {
		return 0, fmt.Errorf("error removing paths from file records: %w", err)
	}
	return res.ModifiedCount, nil
}

// PullPathsFromRecord removes paths from the record with the given id
func (r *FileRecordRepository) PullPathsFromRecord(ctx context.Context, id bson.ObjectID, paths []string) error {
	res, err := r.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, pullUpdate(paths, r.now().UTC()))
	if err != nil {
		return fmt.Errorf("error removing paths from file record %s: %w", id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrFileNotFound
	}
	return nil
}

func pullUpdate(paths []string, now time.Time) bson.D {
	return bson.D{
		{Key: "$pull", Value: bson.D{{Key: "result_path", Value: bson.D{{Key: "$in", Value: paths}}}}},
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: now}}},
	}
}

// DeleteIfEmpty deletes the record with id when it has no paths left
func (r *FileRecordRepository) DeleteIfEmpty(ctx context.Context, id bson.ObjectID) (bool, error) {
	filter := bson.D{
		{Key: "_id", Value: id},
		{Key: "result_path", Value: bson.D{{Key: "$size", Value: 0}}},
	}
	res, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("error deleting empty file record %s: %w", id.Hex(), err)
	}
	return res.DeletedCount > 0, nil
}

// DeleteEmpty deletes every record without paths
func (r *FileRecordRepository) DeleteEmpty(ctx context.Context) (int64, error) {
	filter := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "result_path", Value: bson.D{{Key: "$size", Value: 0}}}},
		bson.D{{Key: "result_path", Value: nil}},
	}}}
	res, err := r.coll.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("error deleting empty file records: %w", err)
	}
	return res.DeletedCount, nil
}
