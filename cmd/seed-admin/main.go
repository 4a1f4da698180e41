package main

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/polyspin/backend/internal/admin"
	"github.com/polyspin/backend/internal/config"
	"github.com/polyspin/backend/internal/database"
)

func main() {
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required to seed an operator")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	username := os.Getenv("OPERATOR_USERNAME")
	if username == "" {
		username = "operator"
		log.Printf("Using default operator username: %s", username)
	}

	secret := os.Getenv("OPERATOR_SECRET")
	if secret == "" {
		secret = "change-me-in-production"
		log.Printf("WARNING: Using default operator secret. Set OPERATOR_SECRET in production!")
	}

	displayName := os.Getenv("OPERATOR_DISPLAY_NAME")
	if displayName == "" {
		displayName = "Operator"
	}

	roles := []string{"admin"}
	if r := os.Getenv("OPERATOR_ROLES"); r != "" {
		roles = strings.Split(r, ",")
	}

	if err := admin.UpsertOperator(ctx, db, username, displayName, secret, roles); err != nil {
		log.Fatalf("Failed to create operator: %v", err)
	}

	log.Printf("Operator account created/updated")
	log.Printf("  Username: %s", username)
	log.Printf("  Display Name: %s", displayName)
	log.Printf("  Roles: %v", roles)
	log.Println("Log in with POST /api/v1/admin/login {\"username\", \"secret\"}")
}
