// Package audit records security-relevant actions (admin logins, key
// management, resume exports) as append-only JSONL batches in blob storage.
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"folio-api/internal/logging"
	"folio-api/pkg/models"
	"folio-api/pkg/utils"
)

const (
	auditPrefix   = "audit/"
	bufferSize    = 256
	flushInterval = 10 * time.Second
	maxBatchSize  = 100
)

// Recorder buffers events in memory and flushes them to blob storage in
// batches. Recording never blocks the request path: when the buffer is
// full the event is dropped and counted.
type Recorder struct {
	blob   *utils.SpacesClient
	logger logging.Logger

	events  chan models.AuditEvent
	stop    chan struct{}
	done    chan struct{}
	dropped int64
	mu      sync.Mutex
}

// NewRecorder creates an audit recorder and starts its flush loop
func NewRecorder(blob *utils.SpacesClient) *Recorder {
	r := &Recorder{
		blob:   blob,
		logger: logging.GetGlobalLogger().WithField("component", "audit"),
		events: make(chan models.AuditEvent, bufferSize),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}

	go r.flushLoop()

	return r
}

// Record enqueues an event. The ID and timestamp are filled in if missing
// and the actor label is normalized for stable grouping.
func (r *Recorder) Record(event models.AuditEvent) {
	event.Actor = NormalizeActor(event.Actor)
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	select {
	case r.events <- event:
	default:
		r.mu.Lock()
		r.dropped++
		dropped := r.dropped
		r.mu.Unlock()
		r.logger.Warn("Audit buffer full, event dropped", map[string]interface{}{
			"action":        event.Action,
			"total_dropped": dropped,
		})
	}
}

// Shutdown stops the flush loop and writes out any buffered events
func (r *Recorder) Shutdown(ctx context.Context) error {
	close(r.stop)

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// List returns a page of recorded events, newest batch first. The cursor
// is the continuation token of the underlying object listing.
func (r *Recorder) List(ctx context.Context, limit int, cursor string) (*models.AuditListResponse, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	page, err := r.blob.ListObjects(auditPrefix, cursor, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list audit batches: %w", err)
	}

	// Batch object keys start with a date path, so a reverse sort walks
	// newest day first.
	keys := append([]string(nil), page.Keys...)
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	events := make([]models.AuditEvent, 0, limit)
	for _, key := range keys {
		if len(events) >= limit {
			break
		}

		data, err := r.blob.GetObject(key)
		if err != nil {
			r.logger.Warn("Failed to read audit batch", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
			continue
		}

		batch, err := DecodeBatch(data)
		if err != nil {
			r.logger.Warn("Skipping malformed audit batch", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
			continue
		}
		events = append(events, batch...)
	}

	if len(events) > limit {
		events = events[:limit]
	}

	return &models.AuditListResponse{
		Events:     events,
		NextCursor: page.NextCursor,
		Count:      len(events),
	}, nil
}

func (r *Recorder) flushLoop() {
	defer close(r.done)

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	pending := make([]models.AuditEvent, 0, maxBatchSize)

	flush := func() {
		if len(pending) == 0 {
			return
		}
		if err := r.writeBatch(pending); err != nil {
			r.logger.Error("Failed to flush audit batch", map[string]interface{}{
				"events": len(pending),
				"error":  err.Error(),
			})
		}
		pending = pending[:0]
	}

	for {
		select {
		case event := <-r.events:
			pending = append(pending, event)
			if len(pending) >= maxBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-r.stop:
			// Drain whatever is still queued before the final flush.
			for {
				select {
				case event := <-r.events:
					pending = append(pending, event)
					if len(pending) >= maxBatchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

func (r *Recorder) writeBatch(events []models.AuditEvent) error {
	data, err := EncodeBatch(events)
	if err != nil {
		return err
	}

	key := batchKey(time.Now().UTC())
	if _, err := r.blob.PutObject(key, data, "application/x-ndjson"); err != nil {
		return fmt.Errorf("failed to upload audit batch: %w", err)
	}

	r.logger.Debug("Flushed audit batch", map[string]interface{}{
		"key":    key,
		"events": len(events),
	})

	return nil
}

// batchKey builds an object key that sorts by day, then by write time
func batchKey(now time.Time) string {
	return fmt.Sprintf("%s%s/%d-%s.jsonl",
		auditPrefix,
		now.Format("2006-01-02"),
		now.UnixNano(),
		uuid.New().String()[:8],
	)
}

// EncodeBatch renders events as JSON Lines, one event per line
func EncodeBatch(events []models.AuditEvent) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, event := range events {
		if err := enc.Encode(event); err != nil {
			return nil, fmt.Errorf("failed to encode audit event %s: %w", event.ID, err)
		}
	}
	return buf.Bytes(), nil
}

// DecodeBatch parses a JSON Lines batch, skipping blank lines
func DecodeBatch(data []byte) ([]models.AuditEvent, error) {
	var events []models.AuditEvent
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var event models.AuditEvent
		if err := json.Unmarshal(line, &event); err != nil {
			return nil, fmt.Errorf("malformed audit line: %w", err)
		}
		events = append(events, event)
	}
	return events, nil
}

// Common action names recorded across the API surface
const (
	ActionAdminLogin       = "admin.login"
	ActionAdminLoginFailed = "admin.login_failed"
	ActionKeyCreated       = "apikey.created"
	ActionKeyDeleted       = "apikey.deleted"
	ActionResumeExported   = "resume.exported"
)

// NormalizeActor trims and lowercases an actor label for stable grouping
func NormalizeActor(actor string) string {
	actor = strings.TrimSpace(strings.ToLower(actor))
	if actor == "" {
		return "anonymous"
	}
	return actor
}
