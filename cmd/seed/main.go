package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// Seeds a demo company with a depot, a technician and a client so the API
// can be exercised right after migrate.
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	companyID := getenvDefault("SEED_COMPANY_ID", "demo-company")

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("failed to connect db: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("failed to ping db: %v", err)
	}

	holders := []struct {
		kind string
		name string
	}{
		{"depot", "Depósito Central"},
		{"technician", "Carlos Pereira"},
		{"client", "Padaria São João"},
	}

	query := `
	INSERT INTO holders (id, company_id, kind, name, active)
	VALUES ($1, $2, $3, $4, TRUE)
	ON CONFLICT (id) DO NOTHING
	`

	for _, h := range holders {
		id := uuid.NewString()
		if _, err := db.Exec(query, id, companyID, h.kind, h.name); err != nil {
			log.Fatalf("failed to seed holder %s: %v", h.name, err)
		}
		fmt.Printf("Seeded holder: kind=%s name=%q id=%s\n", h.kind, h.name, id)
	}

	fmt.Printf("Seed complete for company %s\n", companyID)
}

func getenvDefault(k, d string) string {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	return v
}
