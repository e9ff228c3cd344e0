// Package migrations embeds the SQL schema and applies it with golang-migrate.
package migrations

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed *.sql
var FS embed.FS

// Up applies all pending migrations and returns the resulting version.
func Up(pgURL string) (uint, bool, error) {
	source, err := iofs.New(FS, ".")
	if err != nil {
		return 0, false, fmt.Errorf("migrations - Up - iofs.New: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, URL(pgURL))
	if err != nil {
		return 0, false, fmt.Errorf("migrations - Up - migrate.NewWithSourceInstance: %w", err)
	}
	defer m.Close()

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, false, fmt.Errorf("migrations - Up - m.Up: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, false, fmt.Errorf("migrations - Up - m.Version: %w", err)
	}

	return version, dirty, nil
}

// URL swaps the scheme so golang-migrate picks its pgx/v5 driver.
func URL(pgURL string) string {
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(pgURL, scheme) {
			return "pgx5://" + strings.TrimPrefix(pgURL, scheme)
		}
	}

	return pgURL
}
