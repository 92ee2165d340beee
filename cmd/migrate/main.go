package main

import (
	"database/sql"
	"flag"
	"log"

	"fintrack/internal/config"
	"fintrack/internal/database"

	_ "github.com/joho/godotenv/autoload"
	_ "github.com/lib/pq"
)

func main() {
	status := flag.Bool("status", false, "print the current migration version and exit")
	flag.Parse()

	cfg := config.Load()

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	runner := database.NewMigrationRunner(db)

	if err := runner.WaitForDatabase(); err != nil {
		log.Fatalf("database never became ready: %v", err)
	}

	if *status {
		version, dirty, err := runner.GetMigrationStatus()
		if err != nil {
			log.Fatalf("failed to read migration status: %v", err)
		}
		log.Printf("migration version: %d (dirty: %v)", version, dirty)
		return
	}

	if err := runner.RunMigrations(); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}
}
