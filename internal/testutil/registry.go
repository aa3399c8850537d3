package testutil

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/yigit/resultsportal/internal/app/models"
	"github.com/yigit/resultsportal/internal/pkg/analysis"
	"github.com/yigit/resultsportal/internal/pkg/apperrors"
	"github.com/yigit/resultsportal/internal/pkg/objectstore"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// FileRecordStore keeps registry records in insertion order. With Unique set
// it behaves like the collection carrying the tuple index.
type FileRecordStore struct {
	mu      sync.Mutex
	Unique  bool
	records []*models.FileRecord
}

// NewFileRecordStore creates an empty store
func NewFileRecordStore(unique bool) *FileRecordStore {
	return &FileRecordStore{Unique: unique}
}

func clone(r *models.FileRecord) *models.FileRecord {
	cp := *r
	cp.ResultPath = append([]string(nil), r.ResultPath...)
	return &cp
}

func (s *FileRecordStore) ExistsByTuple(_ context.Context, t models.Tuple) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.Tuple == t {
			return true, nil
		}
	}
	return false, nil
}

func (s *FileRecordStore) Insert(_ context.Context, rec *models.FileRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Unique {
		for _, r := range s.records {
			if r.Tuple == rec.Tuple {
				return apperrors.ErrAlreadyAnalyzed
			}
		}
	}
	rec.ID = bson.NewObjectID()
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt
	s.records = append(s.records, clone(rec))
	return nil
}

func (s *FileRecordStore) UpsertAppend(_ context.Context, t models.Tuple, paths []string) (*models.FileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.Tuple != t {
			continue
		}
		for _, p := range paths {
			if !contains(r.ResultPath, p) {
				r.ResultPath = append(r.ResultPath, p)
			}
		}
		r.UpdatedAt = time.Now()
		return clone(r), nil
	}

	rec := &models.FileRecord{ID: bson.NewObjectID(), Tuple: t, CreatedAt: time.Now()}
	for _, p := range paths {
		if !contains(rec.ResultPath, p) {
			rec.ResultPath = append(rec.ResultPath, p)
		}
	}
	rec.UpdatedAt = rec.CreatedAt
	s.records = append(s.records, rec)
	return clone(rec), nil
}

func (s *FileRecordStore) FindAll(_ context.Context) ([]*models.FileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.FileRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, clone(r))
	}
	return out, nil
}

func pull(list, remove []string) ([]string, bool) {
	kept := list[:0:0]
	changed := false
	for _, p := range list {
		if contains(remove, p) {
			changed = true
			continue
		}
		kept = append(kept, p)
	}
	return kept, changed
}

func (s *FileRecordStore) PullPaths(_ context.Context, paths []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var modified int64
	for _, r := range s.records {
		var changed bool
		if r.ResultPath, changed = pull(r.ResultPath, paths); changed {
			modified++
		}
	}
	return modified, nil
}

func (s *FileRecordStore) PullPathsFromRecord(_ context.Context, id bson.ObjectID, paths []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.ID == id {
			r.ResultPath, _ = pull(r.ResultPath, paths)
			return nil
		}
	}
	return apperrors.ErrFileNotFound
}

func (s *FileRecordStore) DeleteIfEmpty(_ context.Context, id bson.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.records {
		if r.ID == id && len(r.ResultPath) == 0 {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *FileRecordStore) DeleteEmpty(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.records[:0]
	var deleted int64
	for _, r := range s.records {
		if len(r.ResultPath) == 0 {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	s.records = kept
	return deleted, nil
}

// Len returns the number of records
func (s *FileRecordStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// ObjectStore is an in-memory bucket
type ObjectStore struct {
	mu      sync.Mutex
	locator objectstore.Locator
	objects map[string][]byte
	// ExistsErr, when set, is returned by Exists for every key
	ExistsErr error
}

// NewObjectStore creates an empty bucket
func NewObjectStore(bucket, region string) *ObjectStore {
	return &ObjectStore{
		locator: objectstore.Locator{Bucket: bucket, Region: region},
		objects: map[string][]byte{},
	}
}

// Put stores content under key
func (s *ObjectStore) Put(key string, content []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[objectstore.NormalizeKey(key)] = content
}

// Has reports whether key is stored
func (s *ObjectStore) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[objectstore.NormalizeKey(key)]
	return ok
}

func (s *ObjectStore) Locator() objectstore.Locator {
	return s.locator
}

func (s *ObjectStore) Get(_ context.Context, key string) (*objectstore.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.objects[objectstore.NormalizeKey(key)]
	if !ok {
		return nil, objectstore.ErrObjectNotFound
	}
	return &objectstore.Object{
		Body:          io.NopCloser(bytes.NewReader(content)),
		ContentType:   "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		ContentLength: int64(len(content)),
	}, nil
}

func (s *ObjectStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ExistsErr != nil {
		return false, s.ExistsErr
	}
	_, ok := s.objects[objectstore.NormalizeKey(key)]
	return ok, nil
}

func (s *ObjectStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, objectstore.NormalizeKey(key))
	return nil
}

// Analyzer returns a canned result and records the requests it saw
type Analyzer struct {
	mu       sync.Mutex
	Result   *analysis.Result
	Err      error
	Requests []analysis.Request
}

func (a *Analyzer) Analyze(_ context.Context, req analysis.Request) (*analysis.Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Requests = append(a.Requests, req)
	if a.Err != nil {
		return nil, a.Err
	}
	if a.Result == nil {
		return &analysis.Result{}, nil
	}
	return a.Result, nil
}
