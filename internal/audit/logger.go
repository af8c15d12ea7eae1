package audit

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type EventType string

const (
	EventPairingStart   EventType = "pairing_start"
	EventPairingCancel  EventType = "pairing_cancel"
	EventTagRegistered  EventType = "tag_registered"
	EventTagConflict    EventType = "tag_conflict"
	EventTagActivated   EventType = "tag_activated"
	EventTagDeactivated EventType = "tag_deactivated"
	EventReadThrottled  EventType = "read_throttled"
)

type Event struct {
	Type      EventType
	ReaderID  string
	PetID     string
	TagUID    string
	IP        string
	UserAgent string
	Details   map[string]interface{}
}

func Log(ctx context.Context, event Event) {
	logger := log.With().
		Str("audit", "rfid").
		Str("event_type", string(event.Type)).
		Time("timestamp", time.Now()).
		Logger()

	if event.ReaderID != "" {
		logger = logger.With().Str("reader_id", event.ReaderID).Logger()
	}
	if event.PetID != "" {
		logger = logger.With().Str("pet_id", event.PetID).Logger()
	}
	if event.TagUID != "" {
		logger = logger.With().Str("tag_uid", event.TagUID).Logger()
	}
	if event.IP != "" {
		logger = logger.With().Str("ip", event.IP).Logger()
	}
	if event.UserAgent != "" {
		logger = logger.With().Str("user_agent", event.UserAgent).Logger()
	}

	logEvent := logger.Info()
	for k, v := range event.Details {
		logEvent = addField(logEvent, k, v)
	}
	logEvent.Msg("rfid audit event")
}

func addField(e *zerolog.Event, key string, value interface{}) *zerolog.Event {
	switch v := value.(type) {
	case string:
		return e.Str(key, v)
	case int:
		return e.Int(key, v)
	case int64:
		return e.Int64(key, v)
	case bool:
		return e.Bool(key, v)
	default:
		return e.Interface(key, v)
	}
}

func LogFromRequest(r *http.Request, event Event) {
	event.IP = getClientIP(r)
	event.UserAgent = r.UserAgent()
	Log(r.Context(), event)
}

func getClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return r.RemoteAddr
}
