package metrics

import (
	"database/sql"

	"codeberg.org/mutker/r730fanctl/internal/errors"
	"codeberg.org/mutker/r730fanctl/internal/logger"
)

const (
	SchemaVersion = 1

	// Readings are nullable: an absent sensor is stored as NULL, never 0.
	createTablesSQL = `
	   CREATE TABLE IF NOT EXISTS schema_versions (
	       version     INTEGER PRIMARY KEY,
	       applied_at  TEXT NOT NULL
	   );
	   CREATE TABLE IF NOT EXISTS sensors (
	       timestamp    INTEGER NOT NULL,
	       inlet_temp   INTEGER,
	       exhaust_temp INTEGER,
	       cpu1_temp    INTEGER,
	       cpu2_temp    INTEGER,
	       fan1_rpm     INTEGER,
	       fan2_rpm     INTEGER,
	       fan3_rpm     INTEGER,
	       fan4_rpm     INTEGER,
	       fan5_rpm     INTEGER,
	       fan6_rpm     INTEGER
	   );
	   CREATE TABLE IF NOT EXISTS fan_control (
	       timestamp    INTEGER NOT NULL,
	       duty_cycle   INTEGER NOT NULL CHECK (duty_cycle BETWEEN 0 AND 100),
	       auto         INTEGER NOT NULL CHECK (auto IN (0, 1))
	   );`

	insertSensorsSQL = `
    INSERT INTO sensors (
        timestamp,
        inlet_temp, exhaust_temp,
        cpu1_temp, cpu2_temp,
        fan1_rpm, fan2_rpm, fan3_rpm, fan4_rpm, fan5_rpm, fan6_rpm
    ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	insertDecisionSQL = `
    INSERT INTO fan_control (timestamp, duty_cycle, auto) VALUES (?, ?, ?)`
)

var schemaTables = []string{"sensors", "fan_control", "schema_versions"}

// InitSchema creates a new database schema with the current version
func InitSchema(db *sql.DB, log logger.Logger) error {
	errFactory := errors.New()

	log.Debug().Msg("Creating database...")

	tx, err := db.Begin()
	if err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}

	// Track transaction state
	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil {
				if !errors.Is(err, sql.ErrTxDone) {
					log.Debug().Err(err).Msg("Failed to rollback transaction")
				}
			}
		}
	}()

	if _, err := tx.Exec(createTablesSQL); err != nil {
		return errFactory.WithData(ErrSchemaInitFailed, struct {
			Error string
			Phase string
		}{
			Error: err.Error(),
			Phase: "create_tables",
		})
	}

	if _, err := tx.Exec(`
        INSERT INTO schema_versions (version, applied_at)
        VALUES (?, datetime('now'))
    `, SchemaVersion); err != nil {
		return errFactory.WithData(ErrSchemaInitFailed, struct {
			Error string
			Phase string
		}{
			Error: err.Error(),
			Phase: "record_version",
		})
	}

	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}
	committed = true

	log.Info().
		Int("version", SchemaVersion).
		Msg("Schema initialized successfully")

	return nil
}

// GetSchemaVersion returns the current schema version
func GetSchemaVersion(db *sql.DB) (int, error) {
	errFactory := errors.New()

	exists, err := TableExists(db, "schema_versions")
	if err != nil {
		return 0, errFactory.Wrap(ErrSchemaValidationFailed, err)
	}
	if !exists {
		return 0, nil
	}

	var version int
	err = db.QueryRow(`
        SELECT version
        FROM schema_versions
        ORDER BY version DESC
        LIMIT 1
    `).Scan(&version)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, errFactory.WithData(ErrSchemaValidationFailed, struct {
			Phase string
			Error string
		}{
			Phase: "get_version",
			Error: err.Error(),
		})
	}

	return version, nil
}

// TableExists checks if a table exists
func TableExists(db *sql.DB, tableName string) (bool, error) {
	var exists bool
	err := db.QueryRow(`
        SELECT EXISTS (
            SELECT 1 FROM sqlite_master
            WHERE type='table' AND name=?
        )
    `, tableName).Scan(&exists)
	if err != nil {
		return false, errors.New().WithData(ErrSchemaValidationFailed, struct {
			Phase string
			Table string
			Error string
		}{
			Phase: "check_table_exists",
			Table: tableName,
			Error: err.Error(),
		})
	}
	return exists, nil
}
