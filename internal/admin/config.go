package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/polyspin/backend/internal/config"
	"github.com/polyspin/backend/internal/models"
)

var ErrConfigKeyNotFound = errors.New("config key not found")

// GetAllRuntimeConfig returns all runtime config entries
func GetAllRuntimeConfig(ctx context.Context, db *sqlx.DB) ([]models.RuntimeConfig, error) {
	configs := []models.RuntimeConfig{}
	err := db.SelectContext(ctx, &configs, `
		SELECT key, value, value_type, description, updated_by, updated_at
		FROM runtime_config
		ORDER BY key
	`)
	return configs, err
}

// UpdateRuntimeConfigValue stores a new value for an existing key. The
// value is checked against the key's type first.
func UpdateRuntimeConfigValue(ctx context.Context, db *sqlx.DB, key, value, operator string) error {
	var probe config.Config
	if err := probe.SetRuntimeValue(key, value); err != nil {
		return err
	}

	res, err := db.ExecContext(ctx, `
		UPDATE runtime_config SET value=$1, updated_by=$2, updated_at=NOW() WHERE key=$3
	`, value, operator, key)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrConfigKeyNotFound, key)
	}
	return nil
}

// ApplyRuntimeConfigToConfig loads runtime config from DB and applies overrides to the Config struct
func ApplyRuntimeConfigToConfig(ctx context.Context, db *sqlx.DB, cfg *config.Config) error {
	configs, err := GetAllRuntimeConfig(ctx, db)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	applied := 0
	for _, c := range configs {
		if err := cfg.SetRuntimeValue(c.Key, c.Value); err != nil {
			log.Printf("[CONFIG] Skipping runtime config %s: %v", c.Key, err)
			continue
		}
		applied++
	}

	log.Printf("[CONFIG] Applied %d runtime config overrides from database", applied)
	return nil
}
