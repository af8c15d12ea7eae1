package model

import "time"

type Tag struct {
	ID        string    `db:"id" json:"id"`
	TagUID    string    `db:"tag_uid" json:"tagUid"`
	PetID     string    `db:"pet_id" json:"petId"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

type CreateTagParams struct {
	ID     string
	TagUID string
	PetID  string
}
