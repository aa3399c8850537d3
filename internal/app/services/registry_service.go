package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/resultsportal/internal/app/models"
	"github.com/yigit/resultsportal/internal/app/models/dto"
	"github.com/yigit/resultsportal/internal/config"
	"github.com/yigit/resultsportal/internal/pkg/analysis"
	"github.com/yigit/resultsportal/internal/pkg/apperrors"
	"github.com/yigit/resultsportal/internal/pkg/filestorage"
	"github.com/yigit/resultsportal/internal/pkg/objectstore"
	"github.com/yigit/resultsportal/internal/pkg/validation"
)

// RegistryService maps generated reports to their tuples and keeps the
// registry consistent with the bucket.
type RegistryService struct {
	records  FileRecordStore
	objects  ObjectStore
	analyzer Analyzer
	staging  filestorage.FileStorage
	saveMode string
	logger   zerolog.Logger
}

// NewRegistryService creates a new RegistryService. saveMode is
// config.SaveModeInsert (the default when empty) or config.SaveModeAppend.
func NewRegistryService(
	records FileRecordStore,
	objects ObjectStore,
	analyzer Analyzer,
	staging filestorage.FileStorage,
	saveMode string,
	logger zerolog.Logger,
) *RegistryService {
	if saveMode == "" {
		saveMode = config.SaveModeInsert
	}
	return &RegistryService{
		records:  records,
		objects:  objects,
		analyzer: analyzer,
		staging:  staging,
		saveMode: saveMode,
		logger:   logger,
	}
}

func normalizeTuple(t models.Tuple) models.Tuple {
	return models.Tuple{
		CollegeName: strings.TrimSpace(t.CollegeName),
		Program:     strings.TrimSpace(t.Program),
		Batch:       strings.TrimSpace(t.Batch),
		Semester:    strings.TrimSpace(t.Semester),
		Session:     strings.TrimSpace(t.Session),
	}
}

// CheckAvailability fails with a conflict when a record exists for t.
// The check is advisory: two callers can both pass before either saves.
func (s *RegistryService) CheckAvailability(ctx context.Context, t models.Tuple) error {
	t = normalizeTuple(t)
	if err := validation.Struct(t); err != nil {
		return err
	}

	exists, err := s.records.ExistsByTuple(ctx, t)
	if err != nil {
		return err
	}
	if exists {
		return apperrors.ErrAlreadyAnalyzed
	}
	return nil
}

// SaveRecord files paths under the request's tuple
func (s *RegistryService) SaveRecord(ctx context.Context, req dto.SaveFileRequest) (*models.FileRecord, error) {
	req.Tuple = normalizeTuple(req.Tuple)
	paths := make([]string, 0, len(req.ResultPath))
	for _, p := range req.ResultPath {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	req.ResultPath = paths
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	if s.saveMode == config.SaveModeInsert {
		rec := &models.FileRecord{Tuple: req.Tuple, ResultPath: paths}
		if err := s.records.Insert(ctx, rec); err != nil {
			return nil, err
		}
		s.logger.Info().Str("recordID", rec.ID.Hex()).Int("paths", len(paths)).Msg("File record inserted")
		return rec, nil
	}

	rec, err := s.records.UpsertAppend(ctx, req.Tuple, paths)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("recordID", rec.ID.Hex()).Int("paths", len(paths)).Msg("File record saved")
	return rec, nil
}

// ListAll returns the registry as batch -> program -> semester -> groups
func (s *RegistryService) ListAll(ctx context.Context) (dto.FileTree, error) {
	records, err := s.records.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return BuildFileTree(records, s.objects.Locator()), nil
}

// BuildFileTree folds records into the nested listing. Every record becomes
// its own group, so records sharing a leaf are never merged.
func BuildFileTree(records []*models.FileRecord, locator objectstore.Locator) dto.FileTree {
	tree := dto.FileTree{}
	for _, rec := range records {
		programs, ok := tree[rec.Batch]
		if !ok {
			programs = map[string]map[string][]dto.FileGroup{}
			tree[rec.Batch] = programs
		}
		semesters, ok := programs[rec.Program]
		if !ok {
			semesters = map[string][]dto.FileGroup{}
			programs[rec.Program] = semesters
		}

		group := dto.FileGroup{File: make([]dto.FileEntry, 0, len(rec.ResultPath))}
		for _, p := range rec.ResultPath {
			// file_name is the raw last segment, key is decoded
			entry := dto.FileEntry{FilePath: p, FileName: objectstore.FileName(p)}
			if key, err := locator.KeyFromURL(p); err == nil {
				entry.Key = key
			}
			group.File = append(group.File, entry)
		}
		semesters[rec.Semester] = append(semesters[rec.Semester], group)
	}
	return tree
}

// Download opens the object stored under key. A registry entry is not required.
func (s *RegistryService) Download(ctx context.Context, key string) (*objectstore.Object, string, error) {
	key, err := s.resolveKey(key)
	if err != nil {
		return nil, "", err
	}
	obj, err := s.objects.Get(ctx, key)
	if err != nil {
		return nil, "", err
	}
	return obj, objectstore.FileName(key), nil
}

// Delete removes the object and every registry reference to it, then drops
// records left without paths. The two steps are not atomic; Synchronize
// repairs a registry left pointing at a deleted object.
func (s *RegistryService) Delete(ctx context.Context, key string) error {
	key, err := s.resolveKey(key)
	if err != nil {
		return err
	}

	if err := s.objects.Delete(ctx, key); err != nil {
		return err
	}

	modified, err := s.records.PullPaths(ctx, s.objects.Locator().Variants(key))
	if err != nil {
		return err
	}
	if modified == 0 {
		return apperrors.ErrFileNotFound
	}

	if removed, err := s.records.DeleteEmpty(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to remove empty file records")
	} else if removed > 0 {
		s.logger.Info().Int64("count", removed).Msg("Deleted empty file records")
	}
	s.logger.Info().Str("key", key).Int64("records", modified).Msg("File deleted")
	return nil
}

// resolveKey accepts a bare key or any URL spelling of one
func (s *RegistryService) resolveKey(raw string) (string, error) {
	key, err := s.objects.Locator().KeyFromURL(raw)
	if err != nil {
		return "", apperrors.NewValidationError("A valid file key is required")
	}
	return key, nil
}

// Synchronize drops every registry path whose object is gone from the bucket
// and deletes records left empty. Paths that cannot be mapped to a key are
// dropped too. Existence-check failures are reported and leave the path in place.
func (s *RegistryService) Synchronize(ctx context.Context) (*dto.SyncSummary, error) {
	records, err := s.records.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	locator := s.objects.Locator()
	summary := &dto.SyncSummary{TotalDocuments: len(records), Errors: []string{}}

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		var stale []string
		for _, p := range rec.ResultPath {
			summary.TotalPathsChecked++

			key, err := locator.KeyFromURL(p)
			if err != nil {
				stale = append(stale, p)
				continue
			}
			exists, err := s.objects.Exists(ctx, key)
			if err != nil {
				summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", p, err))
				continue
			}
			if !exists {
				stale = append(stale, p)
			}
		}

		if len(stale) > 0 {
			if err := s.records.PullPathsFromRecord(ctx, rec.ID, stale); err != nil {
				if !errors.Is(err, apperrors.ErrResourceNotFound) {
					summary.Errors = append(summary.Errors, fmt.Sprintf("record %s: %v", rec.ID.Hex(), err))
				}
				continue
			}
			summary.PathsRemoved += len(stale)
		}

		if len(stale) == len(rec.ResultPath) {
			deleted, err := s.records.DeleteIfEmpty(ctx, rec.ID)
			if err != nil {
				summary.Errors = append(summary.Errors, fmt.Sprintf("record %s: %v", rec.ID.Hex(), err))
				continue
			}
			if deleted {
				summary.RecordsDeleted++
			}
		}
	}

	s.logger.Info().
		Int("documents", summary.TotalDocuments).
		Int("checked", summary.TotalPathsChecked).
		Int("removed", summary.PathsRemoved).
		Int("recordsDeleted", summary.RecordsDeleted).
		Int("errors", len(summary.Errors)).
		Msg("Registry synchronized")
	return summary, nil
}

// Analyze runs the upload flow: availability check, external analysis,
// registration of the generated reports. The staged file is removed once
// the analysis succeeded.
func (s *RegistryService) Analyze(ctx context.Context, req dto.AnalyzeRequest) (*dto.AnalyzeResponse, error) {
	req.ReportDetails = normalizeTuple(req.ReportDetails)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if err := s.CheckAvailability(ctx, req.ReportDetails); err != nil {
		return nil, err
	}

	fullPath, err := s.staging.GetFullPath(req.FilePath)
	if err != nil {
		return nil, err
	}

	t := req.ReportDetails
	result, err := s.analyzer.Analyze(ctx, analysis.Request{
		FilePath: fullPath,
		ReportDetails: analysis.ReportDetails{
			CollegeName: t.CollegeName,
			Program:     t.Program,
			Batch:       t.Batch,
			Semester:    t.Semester,
			Session:     t.Session,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := s.staging.DeleteFile(req.FilePath); err != nil {
		s.logger.Warn().Err(err).Str("path", req.FilePath).Msg("Failed to remove staged upload")
	}

	resp := &dto.AnalyzeResponse{Result: result.Result, Message: result.Message}
	if resp.Result == nil {
		resp.Result = []map[string]interface{}{}
	}
	if len(result.GeneratedFiles) == 0 {
		return resp, nil
	}

	rec, err := s.SaveRecord(ctx, dto.SaveFileRequest{Tuple: t, ResultPath: result.GeneratedFiles})
	if err != nil {
		return nil, err
	}
	resp.Record = dto.NewFileRecordResponse(rec)
	return resp, nil
}
