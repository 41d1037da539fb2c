package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"libraryapi/internal/platform/database"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, redo, status, version, create")
		name    = flag.String("name", "", "Name for 'create' command")
	)
	flag.Parse()

	loadEnvFiles()
	dir := migrationsDir()

	if *command == "create" {
		if *name == "" {
			log.Fatal("Name is required for 'create' command")
		}
		if err := goose.Create(nil, dir, *name, "sql"); err != nil {
			log.Fatalf("Failed to create migration: %v", err)
		}
		fmt.Printf("Migration created: %s\n", *name)
		return
	}

	ctx := context.Background()
	pool, err := database.Connect(ctx, databaseDSN(), database.PoolOptions{MaxConns: 2})
	if err != nil {
		log.Fatalf("Failed to connect to database (%s): %v", database.RedactDSN(databaseDSN()), err)
	}
	defer pool.Close()

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := run(db, *command, dir); err != nil {
		log.Fatal(err)
	}
}

func run(db *sql.DB, command, dir string) error {
	goose.SetBaseFS(nil)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	switch command {
	case "up":
		if err := goose.Up(db, dir); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		fmt.Println("Migrations applied successfully")
	case "down":
		if err := goose.Down(db, dir); err != nil {
			return fmt.Errorf("rollback migrations: %w", err)
		}
		fmt.Println("Migrations rolled back successfully")
	case "redo":
		if err := goose.Redo(db, dir); err != nil {
			return fmt.Errorf("redo migration: %w", err)
		}
	case "status":
		if err := goose.Status(db, dir); err != nil {
			return fmt.Errorf("check migration status: %w", err)
		}
	case "version":
		if err := goose.Version(db, dir); err != nil {
			return fmt.Errorf("read version: %w", err)
		}
	default:
		return fmt.Errorf("unknown command: %s. Use: up, down, redo, status, version, create", command)
	}
	return nil
}
