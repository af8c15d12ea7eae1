package model

// ReadOutcome is the resolution of a single tag-read event.
type ReadOutcome string

const (
	OutcomeRegistered ReadOutcome = "registered"
	OutcomeConflict   ReadOutcome = "conflict"
	OutcomeCheckedIn  ReadOutcome = "checked_in"
	OutcomeNotFound   ReadOutcome = "not_found"
	OutcomeInactive   ReadOutcome = "inactive"
	OutcomeNoPairing  ReadOutcome = "no_pairing"
	OutcomeFailed     ReadOutcome = "failed"
)

// Success reports whether the outcome identified or enrolled a pet.
func (o ReadOutcome) Success() bool {
	return o == OutcomeRegistered || o == OutcomeCheckedIn
}

type ReaderCommand string

const (
	CommandStartPairing  ReaderCommand = "START_PAIRING"
	CommandCancelPairing ReaderCommand = "CANCEL_PAIRING"
	CommandStatusRequest ReaderCommand = "STATUS_REQUEST"
	CommandPetInfo       ReaderCommand = "PET_INFO"
)
