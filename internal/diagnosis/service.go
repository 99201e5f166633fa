// Package diagnosis runs the record pipeline: ingest an uploaded image,
// classify it, normalize the result into a CDDM, and persist it for history
// browsing.
package diagnosis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cropcareai/cropcare/internal/cache"
	"github.com/cropcareai/cropcare/internal/ingest"
	"github.com/cropcareai/cropcare/internal/knowledge"
	"github.com/cropcareai/cropcare/internal/store"
	"github.com/cropcareai/cropcare/pkg/models"
)

const historyTTL = time.Minute

// PredictParams holds validated parameters for a prediction request.
type PredictParams struct {
	Username string
	Question string
	Filename string
	File     io.Reader
}

// PredictResult is the output of one prediction.
type PredictResult struct {
	Record     models.CDDM
	Confidence float64
	Backend    string
}

// Service orchestrates the diagnosis pipeline.
type Service struct {
	classifier models.Classifier
	ingest     *ingest.Service
	table      *knowledge.Table
	store      store.Store
	cache      cache.Cache
	timeout    time.Duration
}

// NewService creates a new Service.
func NewService(classifier models.Classifier, ing *ingest.Service, table *knowledge.Table,
	st store.Store, ca cache.Cache, timeout time.Duration) *Service {
	return &Service{
		classifier: classifier,
		ingest:     ing,
		table:      table,
		store:      st,
		cache:      ca,
		timeout:    timeout,
	}
}

// Predict stores the uploaded image, classifies it, and appends the
// normalized diagnosis to the user's history. The classification call is
// bounded by the configured timeout.
func (s *Service) Predict(ctx context.Context, params PredictParams) (*PredictResult, error) {
	img, err := s.ingest.Ingest(params.Filename, params.File)
	if err != nil {
		return nil, err
	}

	classifyCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cls, err := s.classifier.Classify(classifyCtx, img)
	if err != nil {
		return nil, fmt.Errorf("classifying image: %w", err)
	}

	// Clamp confidence to [0, 100]
	if cls.Confidence < 0 {
		cls.Confidence = 0
	}
	if cls.Confidence > 100 {
		cls.Confidence = 100
	}

	cddm, err := Normalize(cls, img.Filename, s.table)
	if err != nil {
		return nil, err
	}

	rec := &models.DiagnosisRecord{
		ID:         uuid.New(),
		Username:   params.Username,
		Filename:   img.Filename,
		Disease:    cddm.DiseaseName,
		Confidence: cls.Confidence,
		Record:     cddm,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.CreateDiagnosis(ctx, rec); err != nil {
		return nil, fmt.Errorf("storing diagnosis: %w", err)
	}

	if err := s.cache.Delete(ctx, cache.HistoryKey(params.Username)); err != nil {
		slog.Warn("failed to invalidate history cache", "user", params.Username, "error", err)
	}

	slog.Info("diagnosis recorded",
		"user", params.Username,
		"filename", img.Filename,
		"crop", cddm.Crop,
		"disease", cddm.DiseaseName,
		"confidence", cls.Confidence,
		"backend", s.classifier.Name(),
	)

	return &PredictResult{
		Record:     cddm,
		Confidence: cls.Confidence,
		Backend:    s.classifier.Name(),
	}, nil
}

// History returns the user's diagnoses, most recent first, optionally capped.
// The full per-user list is cached briefly; the limit is applied after the
// cache so every limit shares one entry.
func (s *Service) History(ctx context.Context, username string, limit int) ([]*models.DiagnosisRecord, error) {
	key := cache.HistoryKey(username)

	if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		var records []*models.DiagnosisRecord
		if err := json.Unmarshal(data, &records); err == nil {
			return capRecords(records, limit), nil
		}
	}

	records, err := s.store.ListDiagnosesByUser(ctx, username, 0)
	if err != nil {
		return nil, fmt.Errorf("listing diagnoses: %w", err)
	}

	if data, err := json.Marshal(records); err == nil {
		if err := s.cache.Set(ctx, key, data, historyTTL); err != nil {
			slog.Warn("failed to cache history", "user", username, "error", err)
		}
	}

	return capRecords(records, limit), nil
}

// ClearHistory purges every record for the user and returns the count.
func (s *Service) ClearHistory(ctx context.Context, username string) (int64, error) {
	deleted, err := s.store.DeleteDiagnosesByUser(ctx, username)
	if err != nil {
		return 0, fmt.Errorf("deleting diagnoses: %w", err)
	}

	if err := s.cache.Delete(ctx, cache.HistoryKey(username)); err != nil {
		slog.Warn("failed to invalidate history cache", "user", username, "error", err)
	}

	return deleted, nil
}

// Counts returns the per-user record counts.
func (s *Service) Counts(ctx context.Context) (map[string]int, error) {
	counts, err := s.store.CountDiagnosesByUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting diagnoses: %w", err)
	}
	return counts, nil
}

func capRecords(records []*models.DiagnosisRecord, limit int) []*models.DiagnosisRecord {
	if limit > 0 && len(records) > limit {
		return records[:limit]
	}
	return records
}
