// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/flotech/flotech/internal/metrics"
	"github.com/flotech/flotech/internal/model"
	"github.com/flotech/flotech/internal/repository"
)

// Service errors surfaced to the webhook handler.
var (
	ErrUserNotFound = errors.New("no user holds the provided API key")
	ErrStoreFailed  = errors.New("failed to store meetings")
)

// IngestStore is the subset of the repository the ingestion pipeline
// needs.
type IngestStore interface {
	GetUserByAPIKey(ctx context.Context, apiKey string) (*model.User, error)
	UpsertMeetings(ctx context.Context, meetings []*model.Meeting) error
	CreateIngestion(ctx context.Context, ing *model.Ingestion) error
}

// KeyLookupCache caches API-key-to-user resolutions. All methods are
// best-effort; errors never fail the request.
type KeyLookupCache interface {
	GetUserIDByAPIKey(ctx context.Context, apiKey string) (string, error)
	SetUserIDByAPIKey(ctx context.Context, apiKey, userID string) error
}

// IngestResult summarizes one processed webhook delivery.
type IngestResult struct {
	UserID   string
	Meetings []*model.Meeting
}

// IngestService turns normalized webhook payloads into persisted
// meeting records.
type IngestService struct {
	store   IngestStore
	cache   KeyLookupCache
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewIngestService creates a new IngestService. cache and recorder may
// be nil.
func NewIngestService(store IngestStore, cache KeyLookupCache, recorder metrics.Recorder, logger *slog.Logger) *IngestService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &IngestService{
		store:   store,
		cache:   cache,
		metrics: recorder,
		logger:  logger.With("component", "service.ingest"),
	}
}

// Ingest resolves the owning user for the delivery, transforms its
// transcripts into meeting records, and upserts them in one batch.
// The user is resolved before the transcript list is validated, so an
// unknown key always reports not-found.
func (s *IngestService) Ingest(ctx context.Context, req *model.IngestRequest) (*IngestResult, error) {
	start := time.Now()

	userID, err := s.resolveUserID(ctx, req.APIKey)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.metrics.IncIngestRejected("user_not_found")
		} else {
			s.metrics.IncIngestRejected("store_failed")
		}
		return nil, err
	}

	transcripts, err := req.TranscriptItems()
	if err != nil {
		s.metrics.IncIngestRejected("invalid_payload")
		return nil, err
	}

	now := time.Now().UTC()
	meetings, err := TransformTranscripts(transcripts, userID, now)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpsertMeetings(ctx, meetings); err != nil {
		s.logger.Error("failed to store meetings",
			"user_id", userID,
			"count", len(meetings),
			"error", err,
		)
		s.metrics.IncIngestRejected("store_failed")
		return nil, ErrStoreFailed
	}

	// Audit row is advisory; the upsert already succeeded.
	ids := make([]string, len(meetings))
	for i, m := range meetings {
		ids[i] = m.ID
	}
	ing := &model.Ingestion{
		ID:         generateULID(),
		UserID:     userID,
		MeetingIDs: ids,
		ReceivedAt: now,
	}
	if err := s.store.CreateIngestion(ctx, ing); err != nil {
		s.logger.Warn("failed to record ingestion audit row",
			"user_id", userID,
			"error", err,
		)
	}

	s.metrics.IncIngestAccepted()
	s.metrics.ObserveIngestBatchSize(len(meetings))
	s.metrics.ObserveIngestDuration(time.Since(start))

	s.logger.Info("webhook delivery ingested",
		"user_id", userID,
		"meetings_count", len(meetings),
	)

	return &IngestResult{
		UserID:   userID,
		Meetings: meetings,
	}, nil
}

// resolveUserID reverse-looks-up the owning user by the stored API key,
// consulting the cache first.
func (s *IngestService) resolveUserID(ctx context.Context, apiKey string) (string, error) {
	if s.cache != nil {
		if userID, err := s.cache.GetUserIDByAPIKey(ctx, apiKey); err == nil {
			s.metrics.IncKeyLookupCacheHit()
			return userID, nil
		}
		s.metrics.IncKeyLookupCacheMiss()
	}

	user, err := s.store.GetUserByAPIKey(ctx, apiKey)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("resolve user by API key: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetUserIDByAPIKey(ctx, apiKey, user.ID); err != nil {
			s.logger.Debug("failed to cache key resolution", "error", err)
		}
	}

	return user.ID, nil
}

// TransformTranscripts converts transcripts into meeting records owned
// by userID. The transcript date-time is truncated to its date portion;
// duration is never supplied by the source and stays the placeholder.
// A transcript delivered without an id gets a generated one, keeping
// the per-user meeting key unique across the batch.
func TransformTranscripts(transcripts []model.Transcript, userID string, now time.Time) ([]*model.Meeting, error) {
	meetings := make([]*model.Meeting, len(transcripts))
	for i, tr := range transcripts {
		date, err := truncateToDate(tr.DateString)
		if err != nil {
			return nil, fmt.Errorf("transcript %q: %w", tr.ID, err)
		}
		id := tr.ID
		if id == "" {
			id = generateULID()
		}
		meetings[i] = &model.Meeting{
			ID:        id,
			UserID:    userID,
			Title:     tr.Title,
			Date:      date,
			Duration:  model.DurationUnknown,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	return meetings, nil
}

// dateLayouts are the accepted transcript date-time formats, tried in
// order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// truncateToDate reduces a date-time string to YYYY-MM-DD.
func truncateToDate(dateString string) (string, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, dateString); err == nil {
			return t.UTC().Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("unparseable date %q", dateString)
}

// generateULID creates a lexicographically sortable unique ID.
func generateULID() string {
	return ulid.Make().String()
}
