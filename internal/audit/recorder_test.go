package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio-api/internal/logging"
	"folio-api/pkg/models"
)

func TestEncodeDecodeBatch(t *testing.T) {
	events := []models.AuditEvent{
		{
			ID:        "evt-1",
			Actor:     "admin",
			Action:    ActionAdminLogin,
			Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			ID:     "evt-2",
			Actor:  "admin",
			Action: ActionKeyCreated,
			Target: "key-abc",
			Detail: map[string]interface{}{"label": "ci"},
		},
	}

	data, err := EncodeBatch(events)
	require.NoError(t, err)

	decoded, err := DecodeBatch(data)
	require.NoError(t, err)
	require.Len(t, decoded, 2)

	assert.Equal(t, "evt-1", decoded[0].ID)
	assert.Equal(t, ActionAdminLogin, decoded[0].Action)
	assert.Equal(t, "key-abc", decoded[1].Target)
	assert.Equal(t, "ci", decoded[1].Detail["label"])
}

func TestDecodeBatch_SkipsBlankLines(t *testing.T) {
	data := []byte("\n{\"id\":\"evt-3\",\"actor\":\"admin\",\"action\":\"admin.login\"}\n\n")

	decoded, err := DecodeBatch(data)
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, "evt-3", decoded[0].ID)
}

func TestDecodeBatch_MalformedLine(t *testing.T) {
	_, err := DecodeBatch([]byte("{not json}\n"))
	assert.Error(t, err)
}

func TestBatchKey_SortsByDay(t *testing.T) {
	early := batchKey(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	late := batchKey(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))

	assert.Contains(t, early, "audit/2026-03-01/")
	assert.Contains(t, late, "audit/2026-03-02/")
	assert.Less(t, early, late)
}

func TestNormalizeActor(t *testing.T) {
	assert.Equal(t, "admin", NormalizeActor("  Admin "))
	assert.Equal(t, "anonymous", NormalizeActor("   "))
}

func TestRecord_NormalizesActor(t *testing.T) {
	r := &Recorder{
		logger: logging.GetGlobalLogger(),
		events: make(chan models.AuditEvent, 1),
	}

	r.Record(models.AuditEvent{Actor: "  Admin ", Action: ActionKeyDeleted})

	event := <-r.events
	assert.Equal(t, "admin", event.Actor)
	assert.NotEmpty(t, event.ID)
	assert.False(t, event.Timestamp.IsZero())
}
