package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"folio-api/internal/logging"
	"folio-api/pkg/models"
	"folio-api/pkg/utils"
)

const apiKeyObjectKey = "admin/apikeys.json"

// keyObjectStore is the slice of the blob client the key store needs
type keyObjectStore interface {
	GetObject(key string) ([]byte, error)
	PutObject(key string, data []byte, contentType string) (string, error)
}

// APIKeyStore manages programmatic access keys. Raw keys are shown once at
// creation; only SHA-256 hashes are persisted to blob storage. The full
// record set is small and cached in memory.
type APIKeyStore struct {
	blob   keyObjectStore
	logger logging.Logger

	mu      sync.RWMutex
	records []models.APIKeyRecord
	loaded  bool
}

// NewAPIKeyStore creates an API key store backed by blob storage
func NewAPIKeyStore(blob *utils.SpacesClient) *APIKeyStore {
	return &APIKeyStore{
		blob:   blob,
		logger: logging.GetGlobalLogger(),
	}
}

// HashKey computes the stored digest for a raw key
func HashKey(rawKey string) string {
	sum := sha256.Sum256([]byte(rawKey))
	return hex.EncodeToString(sum[:])
}

// Create mints a new key, persists its record and returns the raw key once
func (s *APIKeyStore) Create(ctx context.Context, label string) (*models.CreateAPIKeyResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoadedLocked(); err != nil {
		return nil, err
	}

	rawKey := "folio_" + strings.ReplaceAll(uuid.New().String()+uuid.New().String(), "-", "")
	record := models.APIKeyRecord{
		ID:        uuid.New().String(),
		Label:     label,
		KeyHash:   HashKey(rawKey),
		CreatedAt: time.Now().UTC(),
	}

	s.records = append(s.records, record)
	if err := s.persistLocked(); err != nil {
		s.records = s.records[:len(s.records)-1]
		return nil, err
	}

	s.logger.Info("API key created", map[string]interface{}{
		"key_id": record.ID,
		"label":  label,
	})

	return &models.CreateAPIKeyResponse{
		ID:        record.ID,
		Label:     record.Label,
		Key:       rawKey,
		CreatedAt: record.CreatedAt,
	}, nil
}

// List returns all key records (hashes only, never raw keys)
func (s *APIKeyStore) List(ctx context.Context) ([]models.APIKeyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoadedLocked(); err != nil {
		return nil, err
	}

	out := make([]models.APIKeyRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

// Delete revokes a key by ID
func (s *APIKeyStore) Delete(ctx context.Context, keyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoadedLocked(); err != nil {
		return err
	}

	for i, record := range s.records {
		if record.ID == keyID {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return s.persistLocked()
		}
	}

	return fmt.Errorf("API key %s not found", keyID)
}

// Authenticate checks a presented raw key against the stored hashes and
// stamps its last-used time on success
func (s *APIKeyStore) Authenticate(ctx context.Context, rawKey string) (*models.APIKeyRecord, error) {
	if rawKey == "" {
		return nil, fmt.Errorf("missing API key")
	}

	presented := HashKey(rawKey)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoadedLocked(); err != nil {
		return nil, err
	}

	for i := range s.records {
		if subtle.ConstantTimeCompare([]byte(s.records[i].KeyHash), []byte(presented)) == 1 {
			now := time.Now().UTC()
			s.records[i].LastUsed = &now
			record := s.records[i]
			// Last-used stamp is best effort; auth already succeeded.
			if err := s.persistLocked(); err != nil {
				s.logger.Warn("Failed to persist API key usage stamp", map[string]interface{}{
					"key_id": record.ID,
					"error":  err.Error(),
				})
			}
			return &record, nil
		}
	}

	return nil, fmt.Errorf("unknown API key")
}

// ensureLoadedLocked lazily loads the record set from blob storage.
// Callers must hold the write lock.
func (s *APIKeyStore) ensureLoadedLocked() error {
	if s.loaded {
		return nil
	}

	data, err := s.blob.GetObject(apiKeyObjectKey)
	if err != nil {
		// A missing object means no keys have been created yet. Any other
		// error must not be cached: a later persist of the empty set would
		// overwrite the real records.
		if utils.IsNotFound(err) {
			s.records = nil
			s.loaded = true
			return nil
		}
		return fmt.Errorf("failed to load API key records: %w", err)
	}

	var records []models.APIKeyRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("failed to decode API key records: %w", err)
	}

	s.records = records
	s.loaded = true
	return nil
}

// persistLocked writes the record set back to blob storage.
// Callers must hold the write lock.
func (s *APIKeyStore) persistLocked() error {
	data, err := json.Marshal(s.records)
	if err != nil {
		return fmt.Errorf("failed to encode API key records: %w", err)
	}

	if _, err := s.blob.PutObject(apiKeyObjectKey, data, "application/json"); err != nil {
		return fmt.Errorf("failed to persist API key records: %w", err)
	}

	return nil
}
