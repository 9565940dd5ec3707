package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"authz/internal/config"
	"authz/internal/storage/mongodb"
	"authz/internal/storage/postgres"
	"authz/internal/storage/sqlite"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	var configPath string
	var migrationsPath string
	var seedUsers bool
	flag.StringVar(&configPath, "config", "", "path to config file (or use CONFIG_PATH env)")
	flag.StringVar(&migrationsPath, "migrations-path", "migrations", "path to migration files")
	flag.BoolVar(&seedUsers, "seed", false, "seed a demo user into the database")
	flag.Parse()

	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}

	cfg := config.LoadConfig(configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cfg.Storage.Type {
	case "sqlite", "postgres":
		runMigrations(cfg, migrationsPath)
	case "mongo":
		ensureMongoIndexes(ctx, cfg, seedUsers)
		return
	default:
		log.Fatalf("unknown storage type: %s", cfg.Storage.Type)
	}

	if seedUsers {
		seedDemoUser(ctx, cfg)
	}

	fmt.Println("Database initialization completed successfully")
}

func runMigrations(cfg *config.Config, migrationsPath string) {
	var databaseURL string
	switch cfg.Storage.Type {
	case "sqlite":
		databaseURL = fmt.Sprintf("sqlite3://%s", cfg.Storage.Path)
	case "postgres":
		databaseURL = cfg.Storage.PostgresDSN
	}

	m, err := migrate.New("file://"+migrationsPath+"/"+cfg.Storage.Type, databaseURL)
	if err != nil {
		log.Fatalf("failed to create migrator: %v", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Println("no migrations to apply")
			return
		}
		log.Fatalf("failed to apply migrations: %v", err)
	}

	log.Println("migrations applied")
}

func ensureMongoIndexes(ctx context.Context, cfg *config.Config, seedUsers bool) {
	log.Println("Connecting to MongoDB...")

	storage, err := mongodb.New(ctx, cfg.Storage.Mongo.URI, cfg.Storage.Mongo.Database)
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	defer storage.Close(ctx)

	log.Println("MongoDB connected, indexes created successfully")

	if seedUsers {
		id, err := storage.SaveUser(ctx, "demo@localhost", "ADMIN", "USER")
		if err != nil {
			log.Fatalf("failed to seed demo user: %v", err)
		}
		log.Printf("demo user seeded (id=%s)", id)
	}

	fmt.Println("Database initialization completed successfully")
}

func seedDemoUser(ctx context.Context, cfg *config.Config) {
	var (
		id  string
		err error
	)

	switch cfg.Storage.Type {
	case "sqlite":
		var s *sqlite.Storage
		s, err = sqlite.New(cfg.Storage.Path)
		if err != nil {
			log.Fatalf("failed to open sqlite storage: %v", err)
		}
		defer s.Close()
		id, err = s.SaveUser(ctx, "demo@localhost", "ADMIN", "USER")
	case "postgres":
		var s *postgres.Storage
		s, err = postgres.New(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			log.Fatalf("failed to open postgres storage: %v", err)
		}
		defer s.Close()
		id, err = s.SaveUser(ctx, "demo@localhost", "ADMIN", "USER")
	}
	if err != nil {
		log.Fatalf("failed to seed demo user: %v", err)
	}
	log.Printf("demo user seeded (id=%s)", id)
}
