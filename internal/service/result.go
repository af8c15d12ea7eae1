package service

import (
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/petcare/rfid-gateway/internal/errors"
	"github.com/petcare/rfid-gateway/internal/model"
)

// Short strings shown on the reader's display.
const (
	displayRegistered = "TAG CADASTRADA"
	displayConflict   = "TAG JA USADA"
	displayNotFound   = "TAG NAO CADASTRADA"
	displayInactive   = "TAG INATIVA"
	displayNoPairing  = "SEM PAREAMENTO"
	displayPetMissing = "PET NAO ENCONTRADO"
	displayFailed     = "ERRO - TENTE NOVAMENTE"
	displayGreeting   = "OLA"
)

// ReadResult is the resolution of one tag-read event. Business failures are
// outcomes, not errors; Err converts them for callers that want one. Success
// is derived from the outcome when the result is recorded.
type ReadResult struct {
	Success   bool              `json:"success"`
	Outcome   model.ReadOutcome `json:"outcome"`
	TagUID    string            `json:"tagUid"`
	ReaderID  string            `json:"readerId"`
	PetID     string            `json:"petId,omitempty"`
	Identity  *model.Identity   `json:"pet,omitempty"`
	Message   string            `json:"message"`
	Display   string            `json:"display"`
	Timestamp int64             `json:"timestamp"`

	err *apperrors.AppError
}

// Err returns the typed error behind a non-success outcome, or nil.
func (r *ReadResult) Err() error {
	if r == nil || r.err == nil {
		return nil
	}
	return r.err
}

func registeredResult(read model.TagRead, identity *model.Identity) *ReadResult {
	return &ReadResult{
		Outcome:  model.OutcomeRegistered,
		TagUID:   read.TagUID,
		ReaderID: read.ReaderID,
		PetID:    identity.PetID,
		Identity: identity,
		Message:  fmt.Sprintf("Tag registered for %s", identity.PetName),
		Display:  displayRegistered,
	}
}

func checkedInResult(read model.TagRead, identity *model.Identity) *ReadResult {
	return &ReadResult{
		Outcome:  model.OutcomeCheckedIn,
		TagUID:   read.TagUID,
		ReaderID: read.ReaderID,
		PetID:    identity.PetID,
		Identity: identity,
		Message:  fmt.Sprintf("Welcome, %s!", identity.PetName),
		Display:  greeting(identity.PetName),
	}
}

func conflictResult(read model.TagRead, petID string) *ReadResult {
	return &ReadResult{
		Outcome:  model.OutcomeConflict,
		TagUID:   read.TagUID,
		ReaderID: read.ReaderID,
		PetID:    petID,
		Message:  "Tag already in use",
		Display:  displayConflict,
		err:      apperrors.Conflict("Tag already in use"),
	}
}

func noPairingResult(read model.TagRead) *ReadResult {
	return &ReadResult{
		Outcome:  model.OutcomeNoPairing,
		TagUID:   read.TagUID,
		ReaderID: read.ReaderID,
		Message:  "No active pairing for reader",
		Display:  displayNoPairing,
		err:      apperrors.NoActivePairing(read.ReaderID),
	}
}

// failureResult maps an error from resolution or registration to an outcome.
func failureResult(read model.TagRead, err error) *ReadResult {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.Internal("Tag read could not be processed").WithCause(err)
	}

	result := &ReadResult{
		TagUID:   read.TagUID,
		ReaderID: read.ReaderID,
		Message:  appErr.Message,
		err:      appErr,
	}

	switch appErr.Code {
	case apperrors.ErrCodeNotFound:
		result.Outcome = model.OutcomeNotFound
		result.Display = displayNotFound
		if errors.Is(err, errPetMissing) {
			result.Display = displayPetMissing
		}
	case apperrors.ErrCodeInvalidState:
		result.Outcome = model.OutcomeInactive
		result.Display = displayInactive
	case apperrors.ErrCodeConflict:
		result.Outcome = model.OutcomeConflict
		result.Display = displayConflict
	default:
		result.Outcome = model.OutcomeFailed
		result.Display = displayFailed
	}

	return result
}

func greeting(name string) string {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return displayGreeting
	}
	return displayGreeting + " " + name
}
