package repository

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/petcare/rfid-gateway/internal/database"
)

const clinicFixtureSchema = `
CREATE TABLE IF NOT EXISTS users (
    id    TEXT PRIMARY KEY,
    name  TEXT NOT NULL,
    email TEXT,
    phone TEXT
);

CREATE TABLE IF NOT EXISTS pets (
    id            TEXT PRIMARY KEY,
    owner_id      TEXT NOT NULL REFERENCES users (id),
    name          TEXT NOT NULL,
    species       TEXT NOT NULL,
    breed         TEXT,
    health_status TEXT
);
`

// setupTestDB connects to TEST_DATABASE_URL and resets the tables used by
// the repositories. Tests are skipped when no database is configured.
func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.Connect(url)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = db.ExecContext(ctx, clinicFixtureSchema)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx))

	_, err = db.ExecContext(ctx, `TRUNCATE rfid_tags, pets, users`)
	require.NoError(t, err)

	return db
}

func seedPet(t *testing.T, db *database.DB, petID, ownerID string) {
	t.Helper()

	ctx := context.Background()
	_, err := db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, phone) VALUES ($1, 'Ana Souza', 'ana@example.com', '+55 11 99999-0000')
		ON CONFLICT (id) DO NOTHING
	`, ownerID)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `
		INSERT INTO pets (id, owner_id, name, species, breed, health_status)
		VALUES ($1, $2, 'Rex', 'dog', 'labrador', 'healthy')
	`, petID, ownerID)
	require.NoError(t, err)
}
