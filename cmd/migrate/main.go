package main

import (
	"log"
	"os"
	"strconv"

	"docstream-be/internal/model"
	"docstream-be/pkg/database"

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

	// 3. Pre-Migration: Extensions (Things GORM AutoMigrate doesn't do)
	log.Println("Step 1: Setting up Extensions...")

	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS vector;`,
	}

	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	// 4. AutoMigrate All Models
	log.Println("Step 2: Running AutoMigrate...")

	models := []interface{}{
		&model.Document{},
		&model.Chunk{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		log.Fatal("Error: AutoMigrate failed:", err)
	}

	// 5. Post-Migration: vector index for similarity search. HNSW over
	// cosine distance matches the default query operator.
	log.Println("Step 3: Creating vector index...")

	indexSQL := []string{
		`CREATE INDEX IF NOT EXISTS idx_chunks_embedding_hnsw
			ON chunks USING hnsw (embedding vector_cosine_ops);`,
	}

	for _, sql := range indexSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to create index: %v. Continuing...", err)
		}
	}

	// 6. Sanity check: the embedding column dimension comes from the model
	// tag, not from EMBEDDING_DIM. A mismatch would migrate a column the
	// embedder can never write, so fail loudly here instead of at runtime.
	if dimStr := os.Getenv("EMBEDDING_DIM"); dimStr != "" {
		want, err := strconv.Atoi(dimStr)
		if err == nil {
			var colDim int
			row := db.Raw(`SELECT atttypmod FROM pg_attribute
				WHERE attrelid = 'chunks'::regclass AND attname = 'embedding'`).Scan(&colDim)
			if row.Error == nil && colDim > 0 && colDim != want {
				log.Fatalf("Error: chunks.embedding is vector(%d) but EMBEDDING_DIM=%d; update the model tag and re-migrate", colDim, want)
			}
		}
	}

	log.Println("✅ Migration completed successfully")
}
