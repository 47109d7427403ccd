package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"gatehouse/internal/config"
	"gatehouse/internal/db"
	"gatehouse/internal/model"
	"gatehouse/internal/repository"
	"gatehouse/internal/store"
)

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()
	users := repository.SeedUsers()
	log.Printf("Loaded %d bundled user records", len(users))

	ctx := context.Background()

	var created, updated int
	var err error
	if cfg.StorageBackend == "mysql" {
		created, updated, err = seedRelational(ctx, cfg, users)
	} else {
		created, err = seedDocument(ctx, cfg, users)
	}
	if err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - New users created: %d", created)
	if cfg.StorageBackend == "mysql" {
		log.Printf("  - Existing users updated: %d", updated)
	}
}

// seedDocument overwrites the whole "users" document with the bundled
// dataset.
func seedDocument(ctx context.Context, cfg *config.Config, users []model.User) (int, error) {
	var docs store.DocumentStore
	switch cfg.StorageBackend {
	case "memory":
		log.Println("Warning: memory backend does not outlive this process")
		docs = store.NewMemory()
	case "redis":
		docs = store.NewRedis(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	default:
		docs = store.NewFile(cfg.StorageFile)
	}

	data, err := json.Marshal(users)
	if err != nil {
		return 0, err
	}
	if err := docs.Set(ctx, store.KeyUsers, data); err != nil {
		return 0, err
	}
	return len(users), nil
}

// seedRelational upserts each bundled record into MySQL.
func seedRelational(ctx context.Context, cfg *config.Config, users []model.User) (created, updated int, err error) {
	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		return 0, 0, err
	}
	if err := gormDB.AutoMigrate(&model.User{}); err != nil {
		return 0, 0, err
	}

	repo := repository.NewGormUserRepository(gormDB)
	for i := range users {
		existing, err := repo.FindByUsername(ctx, users[i].Username)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return created, updated, err
		}
		if existing != nil {
			if err := repo.Update(ctx, &users[i]); err != nil {
				return created, updated, err
			}
			updated++
			continue
		}
		if err := repo.Create(ctx, &users[i]); err != nil {
			return created, updated, err
		}
		created++
	}
	return created, updated, nil
}
