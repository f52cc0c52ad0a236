// FILE: cmd/migrate/main.go
package main

import (
	"log"
	"os"

	"pagecraft-be/internal/model"
	"pagecraft-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting Authoritative GORM Migration...")

	// 3. Pre-Migration: Extensions & Enums (Things GORM AutoMigrate doesn't do perfectly)
	log.Println("Step 1: Setting up Extensions and Enums...")

	setupSQL := []string{
		// Extensions
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,

		// Enums (Idempotent creation)
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'point_source') THEN CREATE TYPE point_source AS ENUM ('register_bonus', 'referral_inviter_register', 'referral_invitee_register', 'referral_inviter_upgrade', 'recharge_code', 'admin_grant', 'migration'); END IF; END $$;`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'point_transaction_type') THEN CREATE TYPE point_transaction_type AS ENUM ('income', 'expense'); END IF; END $$;`,
	}

	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	// 4. AutoMigrate All Models (The Core Task)
	log.Println("Step 2: Running AutoMigrate for 8 Tables...")

	models := []interface{}{
		&model.User{},
		&model.PointBatch{},
		&model.PointTransaction{},
		&model.RechargeCode{},
		&model.ReferralRecord{},
		&model.UsageRecord{},
		&model.GenerationJob{},
		&model.UpgradeOrder{},
	}

	// Migrate strictly
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Post-Migration: Views & Constraints
	log.Println("Step 3: Creating Views and Constraints...")

	postMigrationSQL := []string{
		// Batches can never be overdrawn or refilled past their grant.
		`ALTER TABLE point_batches DROP CONSTRAINT IF EXISTS chk_point_batches_remaining;`,
		`ALTER TABLE point_batches ADD CONSTRAINT chk_point_batches_remaining CHECK (remaining >= 0 AND remaining <= amount);`,
		`ALTER TABLE point_batches DROP CONSTRAINT IF EXISTS chk_point_batches_amount;`,
		`ALTER TABLE point_batches ADD CONSTRAINT chk_point_batches_amount CHECK (amount > 0);`,

		// View: user_valid_points (spendable balance per user, expiry applied)
		`CREATE OR REPLACE VIEW user_valid_points AS
		 SELECT u.id AS user_id, COALESCE(SUM(pb.remaining), 0) AS valid_points
		 FROM users u
		 LEFT JOIN point_batches pb
		   ON pb.user_id = u.id
		  AND pb.remaining > 0
		  AND (pb.expires_at IS NULL OR pb.expires_at > now())
		 WHERE u.deleted_at IS NULL
		 GROUP BY u.id;`,

		// Drain order scan: valid batches by expiry then age
		`CREATE INDEX IF NOT EXISTS idx_point_batches_drain ON point_batches (user_id, expires_at ASC NULLS LAST, created_at ASC) WHERE remaining > 0;`,
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("✅ Success: Database migration completed successfully via GORM.")
}
