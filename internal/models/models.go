package models

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
)

// ScenePreset is a saved arrangement of shapes that can be loaded into a
// new scene.
type ScenePreset struct {
	ID          int            `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	Kind        string         `db:"kind" json:"kind"`
	Seed        int64          `db:"seed" json:"seed"`
	Config      types.JSONText `db:"config" json:"config"`
	Shapes      types.JSONText `db:"shapes" json:"shapes"`
	ShapeCount  int            `db:"shape_count" json:"shape_count"`
	SourceScene sql.NullString `db:"source_scene" json:"source_scene,omitempty"`
	CreatedBy   string         `db:"created_by" json:"created_by"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}

// Operator can pause, delete and persist scenes.
type Operator struct {
	Username    string         `db:"username" json:"username"`
	DisplayName string         `db:"display_name" json:"display_name"`
	SecretHash  string         `db:"secret_hash" json:"-"`
	Roles       pq.StringArray `db:"roles" json:"roles"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// OperatorAudit records one operator action.
type OperatorAudit struct {
	ID        int            `db:"id" json:"id"`
	Operator  string         `db:"operator" json:"operator"`
	IP        sql.NullString `db:"ip" json:"ip,omitempty"`
	Route     string         `db:"route" json:"route"`
	Action    string         `db:"action" json:"action"`
	Details   types.JSONText `db:"details" json:"details"`
	Success   bool           `db:"success" json:"success"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// RuntimeConfig is an operator-editable setting stored in the database.
type RuntimeConfig struct {
	Key         string         `db:"key" json:"key"`
	Value       string         `db:"value" json:"value"`
	ValueType   string         `db:"value_type" json:"value_type"`
	Description sql.NullString `db:"description" json:"description,omitempty"`
	UpdatedBy   sql.NullString `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}
