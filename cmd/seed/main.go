// Команда seed заводит тестового пользователя test@example.com / password123.
package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"mip/config"
	"mip/internal/accounts"
	"mip/internal/auth"
	"mip/internal/db"
	"mip/internal/logs"
	"mip/internal/repo"
)

func main() {
	_ = godotenv.Load()
	cfg := config.MustLoad()
	logs.Init(logs.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	if cfg.Database.Driver == "" {
		logs.Logger.Fatal("seed: database.driver is empty, nothing to seed")
	}

	gdb, err := db.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		logs.Logger.Fatalf("seed: db open: %v", err)
	}
	defer func() { _ = db.Close(gdb) }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := db.Migrate(ctx, gdb, cfg.Database.Driver); err != nil {
		logs.Logger.Fatalf("seed: migrate: %v", err)
	}

	u, created, err := accounts.EnsureUser(ctx, repo.NewUserStore(gdb), auth.NewBcryptHasher(),
		accounts.SeedEmail, accounts.SeedPassword)
	if err != nil {
		logs.Logger.Fatalf("seed: %v", err)
	}

	entry := logs.Logger.WithFields(logrus.Fields{"id": u.ID, "email": u.Email})
	if !created {
		entry.Info("seed: user already exists")
		return
	}
	entry.WithField("password", accounts.SeedPassword).Info("seed: user created")
}
