package repository

import (
	"context"
	"errors"

	"github.com/petcare/rfid-gateway/internal/database"
	"github.com/petcare/rfid-gateway/internal/model"
)

// ErrDuplicateTag is returned by Create when the tag UID is already bound.
// The unique constraint is the final arbiter when two registrations race.
var ErrDuplicateTag = errors.New("tag uid already registered")

type TagRepository interface {
	FindByTagUID(ctx context.Context, tagUID string) (*model.Tag, error)
	FindByPetID(ctx context.Context, petID string) ([]model.Tag, error)
	ExistsByTagUID(ctx context.Context, tagUID string) (bool, error)
	Create(ctx context.Context, params model.CreateTagParams) (*model.Tag, error)
	SetActive(ctx context.Context, tagUID string, active bool) (*model.Tag, error)
}

type tagRepo struct {
	db database.DBTX
}

func NewTagRepository(db database.DBTX) TagRepository {
	return &tagRepo{db: db}
}

func (r *tagRepo) FindByTagUID(ctx context.Context, tagUID string) (*model.Tag, error) {
	return getOne[model.Tag](ctx, r.db, `
		SELECT * FROM rfid_tags WHERE tag_uid = $1
	`, tagUID)
}

func (r *tagRepo) FindByPetID(ctx context.Context, petID string) ([]model.Tag, error) {
	tags := []model.Tag{}
	err := r.db.SelectContext(ctx, &tags, `
		SELECT * FROM rfid_tags
		WHERE pet_id = $1
		ORDER BY created_at DESC
	`, petID)
	return tags, err
}

func (r *tagRepo) ExistsByTagUID(ctx context.Context, tagUID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS(SELECT 1 FROM rfid_tags WHERE tag_uid = $1)
	`, tagUID)
	return exists, err
}

func (r *tagRepo) Create(ctx context.Context, params model.CreateTagParams) (*model.Tag, error) {
	var tag model.Tag
	err := r.db.GetContext(ctx, &tag, `
		INSERT INTO rfid_tags (id, tag_uid, pet_id, active)
		VALUES ($1, $2, $3, TRUE)
		RETURNING *
	`, params.ID, params.TagUID, params.PetID)
	if isUniqueViolation(err) {
		return nil, ErrDuplicateTag
	}
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepo) SetActive(ctx context.Context, tagUID string, active bool) (*model.Tag, error) {
	return getOne[model.Tag](ctx, r.db, `
		UPDATE rfid_tags SET
			active = $2,
			updated_at = NOW()
		WHERE tag_uid = $1
		RETURNING *
	`, tagUID, active)
}
