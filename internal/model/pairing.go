package model

import "time"

// PairingSession records that a reader is awaiting a tag for a pet.
type PairingSession struct {
	ReaderID  string    `json:"readerId"`
	PetID     string    `json:"petId"`
	CreatedAt time.Time `json:"createdAt"`
}

type PairingStatus struct {
	ReaderID  string     `json:"readerId"`
	IsPairing bool       `json:"isPairing"`
	PetID     string     `json:"petId,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Message   string     `json:"message"`
}
