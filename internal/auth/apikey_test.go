package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio-api/internal/logging"
	"folio-api/pkg/models"
)

type fakeKeyBlob struct {
	objects map[string][]byte
	getErr  error
	puts    int
}

func (f *fakeKeyBlob) GetObject(key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.objects[key]
	if !ok {
		return nil, fmt.Errorf("failed to get object %s: %w", key,
			awserr.New(s3.ErrCodeNoSuchKey, "no such key", nil))
	}
	return data, nil
}

func (f *fakeKeyBlob) PutObject(key string, data []byte, contentType string) (string, error) {
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[key] = append([]byte(nil), data...)
	f.puts++
	return "https://blob.test/" + key, nil
}

func newTestKeyStore(blob keyObjectStore) *APIKeyStore {
	return &APIKeyStore{blob: blob, logger: logging.GetGlobalLogger()}
}

func TestAPIKeyStore_MissingObjectMeansEmptySet(t *testing.T) {
	blob := &fakeKeyBlob{}
	store := newTestKeyStore(blob)

	records, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)

	created, err := store.Create(context.Background(), "ci")
	require.NoError(t, err)
	assert.NotEmpty(t, created.Key)
	assert.Equal(t, 1, blob.puts)
}

func TestAPIKeyStore_LoadErrorDoesNotTruncateRecords(t *testing.T) {
	seed := []models.APIKeyRecord{{
		ID:        "key-1",
		Label:     "existing",
		KeyHash:   HashKey("folio_existing"),
		CreatedAt: time.Now().UTC(),
	}}
	seedData, err := json.Marshal(seed)
	require.NoError(t, err)

	blob := &fakeKeyBlob{
		objects: map[string][]byte{apiKeyObjectKey: seedData},
		getErr:  errors.New("connection reset"),
	}
	store := newTestKeyStore(blob)

	// While the blob store is unreachable every operation fails and nothing
	// is written back.
	_, err = store.List(context.Background())
	assert.Error(t, err)
	_, err = store.Create(context.Background(), "new")
	assert.Error(t, err)
	assert.Equal(t, 0, blob.puts)

	// Once it recovers, the stored records are still there and a create
	// appends instead of overwriting.
	blob.getErr = nil
	created, err := store.Create(context.Background(), "new")
	require.NoError(t, err)

	var persisted []models.APIKeyRecord
	require.NoError(t, json.Unmarshal(blob.objects[apiKeyObjectKey], &persisted))
	require.Len(t, persisted, 2)
	assert.Equal(t, "key-1", persisted[0].ID)
	assert.Equal(t, created.ID, persisted[1].ID)
}

func TestAPIKeyStore_Authenticate(t *testing.T) {
	blob := &fakeKeyBlob{}
	store := newTestKeyStore(blob)

	created, err := store.Create(context.Background(), "ci")
	require.NoError(t, err)

	record, err := store.Authenticate(context.Background(), created.Key)
	require.NoError(t, err)
	assert.Equal(t, created.ID, record.ID)
	assert.NotNil(t, record.LastUsed)

	_, err = store.Authenticate(context.Background(), "folio_wrong")
	assert.Error(t, err)
}
