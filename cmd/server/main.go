package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"
	"trashperson-route-service/internal/adapters/cache"
	"trashperson-route-service/internal/adapters/geocoding"
	"trashperson-route-service/internal/adapters/locks"
	"trashperson-route-service/internal/adapters/repositories"
	"trashperson-route-service/internal/api"
	"trashperson-route-service/internal/config"
	"trashperson-route-service/internal/platform/db"
	"trashperson-route-service/internal/ports"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

// main is the application composition root.
// It wires concrete adapters (SQL store, route locker, ORS) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg := config.Load()
	ctx := context.Background()

	conn, dialect, err := openStore(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	if err := repositories.InitSchema(ctx, conn, dialect); err != nil {
		log.Fatal(err)
	}

	if cfg.SeedOnStart {
		date := time.Now().Format("2006-01-02")
		routeID, err := repositories.SeedFromJSON(ctx, conn, dialect, cfg.SeedPath, date)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("Seeded demo route route_id=%d date=%s", routeID, date)
	}

	locker, closeLocker, err := newLocker(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer closeLocker()

	// Geocoding is optional; without a key the endpoint reports 501.
	var geocoder ports.Geocoder
	if cfg.ORSAPIKey != "" {
		g, err := geocoding.NewORSGeocoder(cfg.ORSAPIKey, cache.NewSQLGeocodeCache(conn, dialect))
		if err != nil {
			log.Fatal(err)
		}
		geocoder = g
	} else {
		log.Println("ORS_API_KEY not set, geocoding disabled")
	}

	repo := repositories.NewSQLRouteRepository(conn, dialect)
	router := api.NewRouter(repo, locker, geocoder)

	log.Printf("Server listening addr=:%s store=%s", cfg.Port, dialect)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

func openStore(cfg *config.Config) (*sql.DB, repositories.Dialect, error) {
	if cfg.UsePostgres() {
		conn, err := db.Open(cfg.DatabaseURL)
		return conn, repositories.Postgres, err
	}

	conn, err := db.OpenSQLite(cfg.DBPath)
	return conn, repositories.SQLite, err
}

// newLocker picks a Redis-backed lock when REDIS_URL is set so several
// instances can share routes; otherwise locks are process local.
func newLocker(cfg *config.Config) (ports.RouteLocker, func(), error) {
	if cfg.RedisURL == "" {
		return locks.NewMemoryLocker(), func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("new locker: parse REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("new locker: ping redis: %w", err)
	}

	return locks.NewRedisLocker(client, cfg.RouteLockTTL), func() { _ = client.Close() }, nil
}
