package model

import "time"

// TagRead is one physical scan reported by a reader.
type TagRead struct {
	TagUID    string
	ReaderID  string
	Timestamp time.Time
}

// LastTagRead is the outcome of the most recent read event.
type LastTagRead struct {
	TagUID    string      `json:"tagUid"`
	ReaderID  string      `json:"readerId"`
	Timestamp time.Time   `json:"timestamp"`
	Found     bool        `json:"found"`
	Outcome   ReadOutcome `json:"outcome"`
	Identity  *Identity   `json:"identity,omitempty"`
}
