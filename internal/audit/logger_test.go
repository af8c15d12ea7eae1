package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	original := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = original })
	return &buf
}

func TestLog(t *testing.T) {
	t.Run("writes identifiers and details", func(t *testing.T) {
		buf := captureLog(t)

		Log(context.Background(), Event{
			Type:     EventTagConflict,
			ReaderID: "R1",
			PetID:    "P1",
			TagUID:   "T1",
			Details:  map[string]interface{}{"boundPetId": "P9", "attempt": 2},
		})

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "rfid", entry["audit"])
		assert.Equal(t, "tag_conflict", entry["event_type"])
		assert.Equal(t, "R1", entry["reader_id"])
		assert.Equal(t, "P1", entry["pet_id"])
		assert.Equal(t, "T1", entry["tag_uid"])
		assert.Equal(t, "P9", entry["boundPetId"])
		assert.Equal(t, float64(2), entry["attempt"])
	})

	t.Run("omits empty identifiers", func(t *testing.T) {
		buf := captureLog(t)

		Log(context.Background(), Event{Type: EventPairingCancel, ReaderID: "R1"})

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.NotContains(t, entry, "pet_id")
		assert.NotContains(t, entry, "tag_uid")
	})
}

func TestLogFromRequest(t *testing.T) {
	buf := captureLog(t)

	req := httptest.NewRequest("PATCH", "/api/rfid/tags/T1", nil)
	req.Header.Set("X-Real-IP", "10.0.0.7")
	req.Header.Set("User-Agent", "front-desk")

	LogFromRequest(req, Event{Type: EventTagDeactivated, TagUID: "T1"})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "10.0.0.7", entry["ip"])
	assert.Equal(t, "front-desk", entry["user_agent"])
}
