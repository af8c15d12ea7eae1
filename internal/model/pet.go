package model

type Pet struct {
	ID           string  `db:"id" json:"id"`
	OwnerID      string  `db:"owner_id" json:"ownerId"`
	Name         string  `db:"name" json:"name"`
	Species      string  `db:"species" json:"species"`
	Breed        *string `db:"breed" json:"breed,omitempty"`
	HealthStatus *string `db:"health_status" json:"healthStatus,omitempty"`
}

type Owner struct {
	ID    string  `db:"id" json:"id"`
	Name  string  `db:"name" json:"name"`
	Email *string `db:"email" json:"email,omitempty"`
	Phone *string `db:"phone" json:"phone,omitempty"`
}

// Identity is the read-only join of a pet and its owner resolved from a tag.
type Identity struct {
	TagUID       string  `json:"tagUid"`
	PetID        string  `json:"petId"`
	PetName      string  `json:"petName"`
	Species      string  `json:"species"`
	Breed        *string `json:"breed,omitempty"`
	HealthStatus *string `json:"healthStatus,omitempty"`
	OwnerID      string  `json:"ownerId"`
	OwnerName    string  `json:"ownerName"`
	OwnerEmail   *string `json:"ownerEmail,omitempty"`
	OwnerPhone   *string `json:"ownerPhone,omitempty"`
}

func NewIdentity(tagUID string, pet *Pet, owner *Owner) *Identity {
	id := &Identity{
		TagUID:       tagUID,
		PetID:        pet.ID,
		PetName:      pet.Name,
		Species:      pet.Species,
		Breed:        pet.Breed,
		HealthStatus: pet.HealthStatus,
		OwnerID:      pet.OwnerID,
	}
	if owner != nil {
		id.OwnerName = owner.Name
		id.OwnerEmail = owner.Email
		id.OwnerPhone = owner.Phone
	}
	return id
}
