package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/ubl?sslmode=disable", URL("postgres://u:p@db:5432/ubl?sslmode=disable"))
	assert.Equal(t, "pgx5://u:p@db/ubl", URL("postgresql://u:p@db/ubl"))
	assert.Equal(t, "pgx5://u:p@db/ubl", URL("pgx5://u:p@db/ubl"))
}

func TestEmbeddedPairs(t *testing.T) {
	entries, err := FS.ReadDir(".")
	require.NoError(t, err)

	var up, down int
	for _, e := range entries {
		switch {
		case len(e.Name()) > 7 && e.Name()[len(e.Name())-7:] == ".up.sql":
			up++
		case len(e.Name()) > 9 && e.Name()[len(e.Name())-9:] == ".down.sql":
			down++
		}
	}

	assert.Equal(t, 2, up)
	assert.Equal(t, up, down)
}
