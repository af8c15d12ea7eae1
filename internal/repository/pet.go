package repository

import (
	"context"

	"github.com/petcare/rfid-gateway/internal/database"
	"github.com/petcare/rfid-gateway/internal/model"
)

// PetRepository and OwnerRepository read the clinic's pet and user tables.
// The gateway never writes to them.
type PetRepository interface {
	FindByID(ctx context.Context, id string) (*model.Pet, error)
}

type OwnerRepository interface {
	FindByID(ctx context.Context, id string) (*model.Owner, error)
}

type petRepo struct {
	db database.DBTX
}

func NewPetRepository(db database.DBTX) PetRepository {
	return &petRepo{db: db}
}

func (r *petRepo) FindByID(ctx context.Context, id string) (*model.Pet, error) {
	return getOne[model.Pet](ctx, r.db, `
		SELECT id, owner_id, name, species, breed, health_status
		FROM pets WHERE id = $1
	`, id)
}

type ownerRepo struct {
	db database.DBTX
}

func NewOwnerRepository(db database.DBTX) OwnerRepository {
	return &ownerRepo{db: db}
}

func (r *ownerRepo) FindByID(ctx context.Context, id string) (*model.Owner, error) {
	return getOne[model.Owner](ctx, r.db, `
		SELECT id, name, email, phone
		FROM users WHERE id = $1
	`, id)
}
