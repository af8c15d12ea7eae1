package broker

import (
	"strings"

	"github.com/petcare/rfid-gateway/internal/util"
)

// Kind is the last segment of a reader topic.
type Kind string

const (
	KindRead            Kind = "read"
	KindCheckIn         Kind = "checkin"
	KindStatus          Kind = "status"
	KindResponse        Kind = "response"
	KindCheckInResponse Kind = "checkin-response"
	KindStatusResponse  Kind = "status-response"
	KindCommand         Kind = "command"
	KindPetInfo         Kind = "pet-info"
	KindError           Kind = "error"
	KindUnknown         Kind = ""
)

// UnknownReader is returned by ParseTopic when no reader id can be extracted.
const UnknownReader = "unknown"

const DefaultPrefix = "rfid"

var knownKinds = map[Kind]bool{
	KindRead:            true,
	KindCheckIn:         true,
	KindStatus:          true,
	KindResponse:        true,
	KindCheckInResponse: true,
	KindStatusResponse:  true,
	KindCommand:         true,
	KindPetInfo:         true,
	KindError:           true,
}

// Topics builds and parses topics of the form {prefix}/{readerId}/{kind}.
type Topics struct {
	prefix string
}

func NewTopics(prefix string) Topics {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return Topics{prefix: prefix}
}

func (t Topics) Prefix() string {
	return t.prefix
}

func (t Topics) For(readerID string, kind Kind) string {
	return t.prefix + "/" + readerID + "/" + string(kind)
}

func (t Topics) Read(readerID string) string            { return t.For(readerID, KindRead) }
func (t Topics) CheckIn(readerID string) string         { return t.For(readerID, KindCheckIn) }
func (t Topics) Status(readerID string) string          { return t.For(readerID, KindStatus) }
func (t Topics) Response(readerID string) string        { return t.For(readerID, KindResponse) }
func (t Topics) CheckInResponse(readerID string) string { return t.For(readerID, KindCheckInResponse) }
func (t Topics) StatusResponse(readerID string) string  { return t.For(readerID, KindStatusResponse) }
func (t Topics) Command(readerID string) string         { return t.For(readerID, KindCommand) }
func (t Topics) PetInfo(readerID string) string         { return t.For(readerID, KindPetInfo) }
func (t Topics) Error(readerID string) string           { return t.For(readerID, KindError) }

// InboundPatterns are the subscription patterns for reader-originated traffic.
func (t Topics) InboundPatterns() []string {
	return []string{
		t.For("*", KindRead),
		t.For("*", KindCheckIn),
		t.For("*", KindStatus),
	}
}

// ParseTopic extracts the reader id and kind. It never fails: a topic outside
// the prefix or with the wrong shape yields UnknownReader, and an unrecognised
// last segment yields KindUnknown.
func (t Topics) ParseTopic(topic string) (string, Kind) {
	rest, ok := strings.CutPrefix(topic, t.prefix+"/")
	if !ok {
		return UnknownReader, KindUnknown
	}

	readerID, kind, ok := strings.Cut(rest, "/")
	if !ok || !util.IsValidReaderID(readerID) || strings.Contains(kind, "/") {
		return UnknownReader, KindUnknown
	}

	if !knownKinds[Kind(kind)] {
		return readerID, KindUnknown
	}
	return readerID, Kind(kind)
}
