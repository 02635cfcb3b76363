package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"time"
	"trashperson-route-service/internal/adapters/repositories"
	"trashperson-route-service/internal/config"
	"trashperson-route-service/internal/platform/db"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	date := flag.String("date", time.Now().Format("2006-01-02"), "service date for the seeded route (YYYY-MM-DD)")
	skipSeed := flag.Bool("schema-only", false, "create tables without seeding demo data")
	flag.Parse()

	cfg := config.Load()

	var (
		conn    *sql.DB
		dialect repositories.Dialect
		err     error
	)
	if cfg.UsePostgres() {
		conn, err = db.Open(cfg.DatabaseURL)
		dialect = repositories.Postgres
	} else {
		conn, err = db.OpenSQLite(cfg.DBPath)
		dialect = repositories.SQLite
	}
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	if err := initAndSeed(conn, dialect, cfg.SeedPath, *date, !*skipSeed); err != nil {
		log.Fatal(err)
	}
}

func initAndSeed(conn *sql.DB, dialect repositories.Dialect, seedPath, date string, seed bool) error {
	ctx := context.Background()

	log.Printf("Initializing database schema store=%s...", dialect)
	if err := repositories.InitSchema(ctx, conn, dialect); err != nil {
		return err
	}
	log.Println("Schema ready.")

	if !seed {
		return nil
	}

	log.Printf("Seeding route from %s for %s...", seedPath, date)
	routeID, err := repositories.SeedFromJSON(ctx, conn, dialect, seedPath, date)
	if err != nil {
		return err
	}
	log.Printf("Seeding complete route_id=%d.", routeID)

	return nil
}
