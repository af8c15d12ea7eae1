package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petcare/rfid-gateway/internal/model"
)

func TestTagRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewTagRepository(db.DB)
	ctx := context.Background()

	t.Run("creates active tag", func(t *testing.T) {
		tag, err := repo.Create(ctx, model.CreateTagParams{
			ID:     uuid.NewString(),
			TagUID: "04A1B2C3",
			PetID:  "pet-1",
		})

		require.NoError(t, err)
		assert.Equal(t, "04A1B2C3", tag.TagUID)
		assert.Equal(t, "pet-1", tag.PetID)
		assert.True(t, tag.Active)
		assert.False(t, tag.CreatedAt.IsZero())
	})

	t.Run("rejects duplicate tag uid", func(t *testing.T) {
		tag, err := repo.Create(ctx, model.CreateTagParams{
			ID:     uuid.NewString(),
			TagUID: "04A1B2C3",
			PetID:  "pet-2",
		})

		assert.ErrorIs(t, err, ErrDuplicateTag)
		assert.Nil(t, tag)

		existing, err := repo.FindByTagUID(ctx, "04A1B2C3")
		require.NoError(t, err)
		assert.Equal(t, "pet-1", existing.PetID)
	})
}

func TestTagRepository_Find(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewTagRepository(db.DB)
	ctx := context.Background()

	for _, uid := range []string{"TAG-A", "TAG-B"} {
		_, err := repo.Create(ctx, model.CreateTagParams{ID: uuid.NewString(), TagUID: uid, PetID: "pet-1"})
		require.NoError(t, err)
	}

	t.Run("finds by tag uid", func(t *testing.T) {
		tag, err := repo.FindByTagUID(ctx, "TAG-A")
		require.NoError(t, err)
		assert.Equal(t, "pet-1", tag.PetID)
	})

	t.Run("returns nil for unknown tag uid", func(t *testing.T) {
		tag, err := repo.FindByTagUID(ctx, "TAG-Z")
		require.NoError(t, err)
		assert.Nil(t, tag)
	})

	t.Run("reports existence", func(t *testing.T) {
		exists, err := repo.ExistsByTagUID(ctx, "TAG-B")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByTagUID(ctx, "TAG-Z")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("lists tags for pet", func(t *testing.T) {
		tags, err := repo.FindByPetID(ctx, "pet-1")
		require.NoError(t, err)
		assert.Len(t, tags, 2)

		tags, err = repo.FindByPetID(ctx, "pet-404")
		require.NoError(t, err)
		assert.Empty(t, tags)
	})
}

func TestTagRepository_SetActive(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewTagRepository(db.DB)
	ctx := context.Background()

	_, err := repo.Create(ctx, model.CreateTagParams{ID: uuid.NewString(), TagUID: "TAG-A", PetID: "pet-1"})
	require.NoError(t, err)

	tag, err := repo.SetActive(ctx, "TAG-A", false)
	require.NoError(t, err)
	assert.False(t, tag.Active)

	tag, err = repo.SetActive(ctx, "TAG-MISSING", true)
	require.NoError(t, err)
	assert.Nil(t, tag)
}

func TestPetAndOwnerRepository_FindByID(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	seedPet(t, db, "pet-1", "user-1")

	ctx := context.Background()
	pets := NewPetRepository(db.DB)
	owners := NewOwnerRepository(db.DB)

	pet, err := pets.FindByID(ctx, "pet-1")
	require.NoError(t, err)
	require.NotNil(t, pet)
	assert.Equal(t, "Rex", pet.Name)
	assert.Equal(t, "user-1", pet.OwnerID)
	require.NotNil(t, pet.Breed)
	assert.Equal(t, "labrador", *pet.Breed)

	owner, err := owners.FindByID(ctx, pet.OwnerID)
	require.NoError(t, err)
	require.NotNil(t, owner)
	assert.Equal(t, "Ana Souza", owner.Name)

	missing, err := pets.FindByID(ctx, "pet-404")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
