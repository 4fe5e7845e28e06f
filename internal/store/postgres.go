// FilePath: internal/store/postgres.go
package store

import (
	"context"
	"encoding/json"
	"fmt"

	nuts "github.com/vaudience/go-nuts"

	"github.com/kriss2012/Real-Time-IoT-Dashboard/internal/database"
	"github.com/kriss2012/Real-Time-IoT-Dashboard/internal/models"
)

// PostgresStore is the optional database-backed snapshot store. It
// keeps the same overwrite semantics as the file backend: each Save
// replaces the whole snapshot inside one transaction.
type PostgresStore struct {
	db database.DB
}

type definitionRow struct {
	ID         string `db:"id"`
	DeviceType string `db:"device_type"`
	Metrics    []byte `db:"metrics"`
	Config     []byte `db:"config"`
}

// NewPostgresStore creates the store and ensures its schema exists.
func NewPostgresStore(db database.DB) (*PostgresStore, error) {
	s := &PostgresStore{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) ensureSchema() error {
	query := `
		CREATE TABLE IF NOT EXISTS device_definitions (
			id          TEXT PRIMARY KEY,
			device_type TEXT NOT NULL,
			metrics     JSONB NOT NULL,
			config      JSONB NOT NULL
		)`
	if _, err := s.db.GetDB().Exec(query); err != nil {
		return fmt.Errorf("failed to create device_definitions table: %w", err)
	}
	return nil
}

// Save replaces the stored snapshot with the given definitions.
func (s *PostgresStore) Save(ctx context.Context, definitions map[string]models.DeviceDefinition) error {
	tx, err := s.db.GetDB().BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Ignored once committed

	if _, err := tx.ExecContext(ctx, `DELETE FROM device_definitions`); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}

	query := `
		INSERT INTO device_definitions (id, device_type, metrics, config)
		VALUES ($1, $2, $3, $4)`
	for id, def := range definitions {
		metrics, err := json.Marshal(def.Metrics)
		if err != nil {
			return fmt.Errorf("failed to encode metrics for %s: %w", id, err)
		}
		cfg, err := json.Marshal(def.Config)
		if err != nil {
			return fmt.Errorf("failed to encode config for %s: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, query, id, string(def.DeviceType), metrics, cfg); err != nil {
			return fmt.Errorf("failed to insert definition for %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// Load reads all stored definitions. Rows with undecodable payloads are
// skipped with a warning so one corrupt row cannot block startup.
func (s *PostgresStore) Load(ctx context.Context) (map[string]models.DeviceDefinition, error) {
	var rows []definitionRow
	query := `SELECT id, device_type, metrics, config FROM device_definitions`
	if err := s.db.GetDB().SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to load definitions: %w", err)
	}

	definitions := make(map[string]models.DeviceDefinition, len(rows))
	for _, row := range rows {
		var def models.DeviceDefinition
		def.DeviceType = models.DeviceType(row.DeviceType)
		if err := json.Unmarshal(row.Metrics, &def.Metrics); err != nil {
			nuts.L.Warnf("[PostgresStore] skipping %s, corrupt metrics: %v", row.ID, err)
			continue
		}
		if err := json.Unmarshal(row.Config, &def.Config); err != nil {
			nuts.L.Warnf("[PostgresStore] skipping %s, corrupt config: %v", row.ID, err)
			continue
		}
		definitions[row.ID] = def
	}
	return definitions, nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
