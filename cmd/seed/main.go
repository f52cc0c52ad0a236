// FILE: cmd/seed/main.go
package main

import (
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"os"
	"time"

	"pagecraft-be/internal/model"
	"pagecraft-be/pkg/database"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const codeAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

func randomCode(groups int) string {
	code := "PC"
	for g := 0; g < groups; g++ {
		code += "-"
		for i := 0; i < 4; i++ {
			n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
			code += string(codeAlphabet[n.Int64()])
		}
	}
	return code
}

func main() {
	// Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	color.Cyan("🚀 Seeding PageCraft base data\n")

	// 1. Admin Account
	color.Yellow("\n[1] Admin account")
	adminEmail := os.Getenv("SEED_ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@pagecraft.io"
	}

	var admin model.User
	if err := db.Where("email = ?", adminEmail).First(&admin).Error; err == nil {
		color.Green("Admin '%s' already exists, skipping...", adminEmail)
	} else {
		password := os.Getenv("SEED_ADMIN_PASSWORD")
		if password == "" {
			password = "admin12345"
			color.Red("SEED_ADMIN_PASSWORD not set, using the default. Change it.")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("Error hashing admin password: %v", err)
		}
		hashedStr := string(hashed)

		admin = model.User{
			Email:        adminEmail,
			PasswordHash: &hashedStr,
			DisplayName:  "PageCraft Admin",
			Role:         "admin",
			Tier:         "premium",
			ReferralCode: randomCode(2),
		}
		if err := db.Create(&admin).Error; err != nil {
			log.Fatalf("Error creating admin: %v", err)
		}
		color.Green("Created admin: %s", adminEmail)
	}

	// 2. Demo Recharge Codes
	color.Yellow("\n[2] Demo recharge codes")
	batchNo := fmt.Sprintf("DEMO-%s", time.Now().Format("20060102"))

	var existing int64
	db.Model(&model.RechargeCode{}).Where("batch_no = ?", batchNo).Count(&existing)
	if existing > 0 {
		color.Green("Batch '%s' already seeded (%d codes), skipping...", batchNo, existing)
	} else {
		for i := 0; i < 5; i++ {
			rc := model.RechargeCode{
				Code:             randomCode(3),
				Points:           500,
				BatchNo:          batchNo,
				PointsExpireDays: 30,
				CreatedBy:        admin.Id,
			}
			if err := db.Create(&rc).Error; err != nil {
				color.Red("Error creating code: %v", err)
				continue
			}
			color.Green("Created code: %s (500 points)", rc.Code)
		}
	}

	color.Cyan("\n✅ Seeding completed")
}
