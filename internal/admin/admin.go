package admin

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/polyspin/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrOperatorNotFound = errors.New("operator not found")
	ErrInvalidSecret    = errors.New("invalid secret")
)

// GetOperator retrieves an operator account by username
func GetOperator(ctx context.Context, db *sqlx.DB, username string) (*models.Operator, error) {
	var op models.Operator
	err := db.GetContext(ctx, &op, `SELECT username, display_name, secret_hash, roles, created_at, updated_at FROM operators WHERE username=$1`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOperatorNotFound
	}
	if err != nil {
		return nil, err
	}
	return &op, nil
}

// VerifySecret checks a plain secret against its bcrypt hash.
func VerifySecret(hashed, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

// HashSecret bcrypt-hashes a plain secret.
func HashSecret(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(hashed), nil
}

// UpsertOperator creates or replaces an operator account (used for seeding)
func UpsertOperator(ctx context.Context, db *sqlx.DB, username, displayName, plainSecret string, roles []string) error {
	hashed, err := HashSecret(plainSecret)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO operators (username, display_name, secret_hash, roles, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (username) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			secret_hash = EXCLUDED.secret_hash,
			roles = EXCLUDED.roles,
			updated_at = NOW()
	`, username, displayName, hashed, pq.Array(roles))
	return err
}

// Authenticate validates username + secret and returns the operator.
func Authenticate(ctx context.Context, db *sqlx.DB, username, secret string) (*models.Operator, error) {
	op, err := GetOperator(ctx, db, username)
	if err != nil {
		if !errors.Is(err, ErrOperatorNotFound) {
			log.Printf("[ADMIN] Database error looking up %s: %v", username, err)
		}
		return nil, err
	}
	if !VerifySecret(op.SecretHash, secret) {
		log.Printf("[ADMIN] Secret verification failed for %s", username)
		return nil, ErrInvalidSecret
	}
	return op, nil
}

// LogAction records an operator action in the audit log
func LogAction(ctx context.Context, db *sqlx.DB, operator, ip, route, action string, details map[string]interface{}, success bool) error {
	if db == nil {
		return nil
	}
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		log.Printf("[ADMIN] Failed to marshal audit details: %v", err)
		detailsJSON = []byte("{}")
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO operator_audit (operator, ip, route, action, details, success, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`, operator, ip, route, action, detailsJSON, success)
	if err != nil {
		log.Printf("[ADMIN] Failed to log action %s: %v", action, err)
	}
	return err
}

// AuditLogs returns recent audit rows, newest first. An empty operator
// returns rows for everyone.
func AuditLogs(ctx context.Context, db *sqlx.DB, operator string, limit, offset int) ([]models.OperatorAudit, error) {
	logs := []models.OperatorAudit{}
	if operator == "" {
		err := db.SelectContext(ctx, &logs, `
			SELECT id, operator, ip, route, action, details, success, created_at
			FROM operator_audit
			ORDER BY created_at DESC
			LIMIT $1 OFFSET $2
		`, limit, offset)
		return logs, err
	}
	err := db.SelectContext(ctx, &logs, `
		SELECT id, operator, ip, route, action, details, success, created_at
		FROM operator_audit
		WHERE operator = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, operator, limit, offset)
	return logs, err
}
