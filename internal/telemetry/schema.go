package telemetry

import (
	"database/sql"

	"github.com/akatsukimed/dialyctl/internal/errors"
	"github.com/akatsukimed/dialyctl/internal/logger"
)

const (
	SchemaVersion = 1

	createTablesSQL = `
	   CREATE TABLE IF NOT EXISTS schema_versions (
	       version     INTEGER PRIMARY KEY,
	       applied_at  TEXT NOT NULL
	   );
	   CREATE TABLE IF NOT EXISTS snapshots (
	       timestamp        INTEGER PRIMARY KEY,
	       red_val          INTEGER NOT NULL,
	       green_val        INTEGER NOT NULL,
	       blue_val         INTEGER NOT NULL,
	       red_freq         INTEGER NOT NULL,
	       temp_c           REAL NOT NULL,
	       ldr              INTEGER NOT NULL,
	       blood_detected   INTEGER NOT NULL CHECK (blood_detected IN (0, 1)),
	       blood_score      INTEGER NOT NULL,
	       confidence       INTEGER NOT NULL,
	       leak_confirmed   INTEGER NOT NULL CHECK (leak_confirmed IN (0, 1)),
	       persistent_leak  INTEGER NOT NULL CHECK (persistent_leak IN (0, 1)),
	       bubble_state     INTEGER NOT NULL,
	       link_connected   INTEGER NOT NULL CHECK (link_connected IN (0, 1)),
	       link_timed_out   INTEGER NOT NULL CHECK (link_timed_out IN (0, 1)),
	       cv_code          INTEGER NOT NULL,
	       system_state     INTEGER NOT NULL,
	       alarm_cause      INTEGER NOT NULL,
	       pumps_enabled    INTEGER NOT NULL CHECK (pumps_enabled IN (0, 1)),
	       buzzer_on        INTEGER NOT NULL CHECK (buzzer_on IN (0, 1))
	   );`

	insertSnapshotSQL = `
    INSERT OR REPLACE INTO snapshots (
        timestamp,
        red_val, green_val, blue_val, red_freq,
        temp_c, ldr,
        blood_detected, blood_score, confidence, leak_confirmed, persistent_leak,
        bubble_state,
        link_connected, link_timed_out, cv_code,
        system_state, alarm_cause, pumps_enabled, buzzer_on
    ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
)

// InitSchema creates the database schema at the current version.
func InitSchema(db *sql.DB) error {
	errFactory := errors.New()

	version, err := getSchemaVersion(db)
	if err != nil {
		return err
	}
	if version == SchemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}

	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
				logger.Debug().Err(err).Msg("Failed to rollback transaction")
			}
		}
	}()

	if _, err := tx.Exec(createTablesSQL); err != nil {
		return errFactory.WithData(ErrSchemaInitFailed, err.Error())
	}

	if _, err := tx.Exec(`
        INSERT INTO schema_versions (version, applied_at)
        VALUES (?, datetime('now'))
    `, SchemaVersion); err != nil {
		return errFactory.WithData(ErrSchemaInitFailed, err.Error())
	}

	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}
	committed = true

	logger.Info().
		Int("version", SchemaVersion).
		Msg("Telemetry schema initialized")

	return nil
}

func getSchemaVersion(db *sql.DB) (int, error) {
	errFactory := errors.New()

	var exists bool
	err := db.QueryRow(`
        SELECT EXISTS (
            SELECT 1 FROM sqlite_master
            WHERE type='table' AND name='schema_versions'
        )
    `).Scan(&exists)
	if err != nil {
		return 0, errFactory.Wrap(ErrSchemaInitFailed, err)
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
		return 0, errFactory.Wrap(ErrSchemaInitFailed, err)
	}

	return version, nil
}
