package scenes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/polyspin/backend/internal/models"
	"github.com/polyspin/backend/internal/sim"
)

var ErrPresetNotFound = errors.New("preset not found")

// Store persists scene presets in Postgres.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Save writes the scene's current shapes, seed and physics settings under
// name and returns the new preset id.
func (s *Store) Save(ctx context.Context, name, operator string, scene *sim.Scene) (int, error) {
	shapes := scene.Shapes()
	shapesJSON, err := json.Marshal(shapes)
	if err != nil {
		return 0, fmt.Errorf("marshal shapes: %w", err)
	}
	cfgJSON, err := json.Marshal(scene.Config)
	if err != nil {
		return 0, fmt.Errorf("marshal config: %w", err)
	}

	var id int
	err = s.db.QueryRowxContext(ctx, `
		INSERT INTO scene_presets (name, kind, seed, config, shapes, shape_count, source_scene, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id
	`, name, string(scene.Kind), int64(scene.Seed), cfgJSON, shapesJSON, len(shapes), scene.Token, operator).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert preset: %w", err)
	}
	return id, nil
}

// List returns preset metadata, newest first, without the shape payload.
func (s *Store) List(ctx context.Context, limit, offset int) ([]models.ScenePreset, error) {
	presets := []models.ScenePreset{}
	err := s.db.SelectContext(ctx, &presets, `
		SELECT id, name, kind, seed, config, '[]'::jsonb AS shapes, shape_count, source_scene, created_by, created_at
		FROM scene_presets
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	return presets, err
}

func (s *Store) Get(ctx context.Context, id int) (*models.ScenePreset, error) {
	var p models.ScenePreset
	err := s.db.GetContext(ctx, &p, `
		SELECT id, name, kind, seed, config, shapes, shape_count, source_scene, created_by, created_at
		FROM scene_presets WHERE id=$1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPresetNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) Delete(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM scene_presets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPresetNotFound
	}
	return nil
}

// Decode turns a stored preset back into scene options and shapes.
func Decode(p *models.ScenePreset) (sim.CreateOptions, []sim.ShapeSpec, error) {
	kind, err := sim.ParseKind(p.Kind)
	if err != nil {
		return sim.CreateOptions{}, nil, err
	}
	var overrides sim.Overrides
	if err := p.Config.Unmarshal(&overrides); err != nil {
		return sim.CreateOptions{}, nil, fmt.Errorf("decode preset config: %w", err)
	}
	var shapes []sim.ShapeSpec
	if err := p.Shapes.Unmarshal(&shapes); err != nil {
		return sim.CreateOptions{}, nil, fmt.Errorf("decode preset shapes: %w", err)
	}

	opts := sim.CreateOptions{
		Kind:      kind,
		Seed:      uint64(p.Seed),
		Overrides: &overrides,
	}
	return opts, shapes, nil
}
