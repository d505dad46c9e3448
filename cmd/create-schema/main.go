package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"simregistry-backend/config"
	"simregistry-backend/repository"
)

func main() {
	reset := flag.Bool("reset", false, "drop the licenses and owners tables before creating them (development only)")
	flag.Parse()

	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	stores, err := repository.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer stores.Close()

	if *reset {
		if err := stores.DropSchema(ctx); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✓ Dropped existing licenses and owners tables (if any)")
	}

	if err := stores.ApplySchema(ctx); err != nil {
		log.Fatalf("Failed to create schema: %v", err)
	}
	log.Printf("✓ Applied %s schema", cfg.DatabaseDriver)

	fmt.Println("\n✅ Database schema created successfully!")
	fmt.Println("   Tables: owners, licenses")
	fmt.Println("   Constraints: UNIQUE owners.nik, UNIQUE licenses.license_number, licenses.owner_id -> owners.id")
}
