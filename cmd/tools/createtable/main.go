package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/penababayev/zakaz-zenan-zahmeti/internal/session"
)

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN environment variable is required")
	}
	db, err := session.OpenMySQL(dsn)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get DB: %v", err)
	}

	sql := `
	CREATE TABLE IF NOT EXISTS seller_sessions (
	  id CHAR(36) NOT NULL,
	  username VARCHAR(150) NOT NULL,
	  token TEXT NOT NULL,
	  expires_at DATETIME(3) NOT NULL,
	  created_at DATETIME(3) NOT NULL,
	  PRIMARY KEY (id),
	  KEY ix_seller_sessions_username (username),
	  KEY ix_seller_sessions_expires_at (expires_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`

	if _, err := sqlDB.Exec(sql); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	log.Println("✓ seller_sessions table created successfully")
}
