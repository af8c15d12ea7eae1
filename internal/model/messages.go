package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ReadTimestamp accepts epoch milliseconds or an RFC3339 string, the two
// formats reader firmware emits.
type ReadTimestamp struct {
	time.Time
}

func (t *ReadTimestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" || len(data) == 0 {
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			return nil
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			t.Time = time.UnixMilli(ms)
			return nil
		}
		parsed, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("parse timestamp %q: %w", s, err)
		}
		t.Time = parsed
		return nil
	}

	var ms int64
	if err := json.Unmarshal(data, &ms); err != nil {
		return fmt.Errorf("parse timestamp: %w", err)
	}
	t.Time = time.UnixMilli(ms)
	return nil
}

func (t ReadTimestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UnixMilli())
}

// Inbound payloads

type TagReadPayload struct {
	TagUID    string        `json:"tagUid"`
	ReaderID  string        `json:"readerId"`
	Timestamp ReadTimestamp `json:"timestamp"`
}

type CheckInPayload struct {
	TagUID   string `json:"tagUid"`
	ReaderID string `json:"readerId"`
}

// Outbound payloads

type StatusResponse struct {
	IsPairing bool   `json:"isPairing"`
	PetID     string `json:"petId,omitempty"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

type CommandPayload struct {
	ID        string        `json:"id"`
	Command   ReaderCommand `json:"command"`
	PetID     string        `json:"petId,omitempty"`
	Timeout   int           `json:"timeout,omitempty"`
	Pet       *Identity     `json:"pet,omitempty"`
	Timestamp int64         `json:"timestamp"`
}

type ErrorPayload struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}
