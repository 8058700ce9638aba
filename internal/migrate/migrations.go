// Package migrate applies the embedded SQL schema at startup. Each supported
// driver has its own migration directory; applied versions are tracked in a
// schema_version table.
package migrate

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
)

//go:embed postgres/*.sql sqlite/*.sql
var migrationsFS embed.FS

// Drivers with embedded migration directories.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type migration struct {
	version int
	name    string
	upSQL   string
}

func loadMigrations(driver string) ([]migration, error) {
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("unknown migration driver %q", driver)
	}

	files, err := fs.ReadDir(migrationsFS, driver)
	if err != nil {
		return nil, err
	}

	var migrations []migration

	for _, f := range files {
		if f.IsDir() {
			continue
		}

		data, err := migrationsFS.ReadFile(driver + "/" + f.Name())
		if err != nil {
			return nil, err
		}

		var v int
		if _, err := fmt.Sscanf(f.Name(), "%d_", &v); err != nil {
			return nil, fmt.Errorf("invalid migration filename %s: %w", f.Name(), err)
		}

		migrations = append(migrations, migration{
			version: v,
			name:    f.Name(),
			upSQL:   string(data),
		})
	}

	sort.Slice(migrations, func(i, j int) bool { return migrations[i].version < migrations[j].version })

	return migrations, nil
}

// Migrate applies the embedded migrations for the driver, in order.
func Migrate(db *sql.DB, driver string) error {
	migrations, err := loadMigrations(driver)
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`CREATE TABLE IF NOT EXISTS schema_version(version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	var currentVersion int

	err = tx.QueryRow(`SELECT version FROM schema_version LIMIT 1`).Scan(&currentVersion)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := tx.Exec(`INSERT INTO schema_version(version) VALUES (0)`); err != nil {
			return fmt.Errorf("init schema_version: %w", err)
		}

		currentVersion = 0
	} else if err != nil {
		return fmt.Errorf("read schema_version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		if _, err := tx.Exec(m.upSQL); err != nil {
			return fmt.Errorf("migration %s: %w", m.name, err)
		}

		// Versions come from the embedded filenames, never user input.
		if _, err := tx.Exec(fmt.Sprintf("UPDATE schema_version SET version = %d", m.version)); err != nil {
			return fmt.Errorf("update schema_version: %w", err)
		}

		currentVersion = m.version
	}

	return tx.Commit()
}

// SeedAdmin creates the initial admin account when no users exist yet.
// passwordHash must already be bcrypt-hashed.
func SeedAdmin(db *sql.DB, passwordHash string) error {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM users WHERE username = 'admin'`).Scan(&count); err != nil {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	if count > 0 {
		return nil
	}

	_, err := db.Exec(`
		INSERT INTO users (username, email, password_hash, full_name, role, department, is_active)
		VALUES ('admin', 'admin@mec-doors.com', $1, 'System Administrator', 'admin', 'management', true)`,
		passwordHash,
	)
	if err != nil {
		return fmt.Errorf("seeding admin user: %w", err)
	}

	return nil
}
