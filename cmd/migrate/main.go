package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/Just-andreew/aquagen-farm/pkg/config"
	"github.com/Just-andreew/aquagen-farm/pkg/db"
	"github.com/Just-andreew/aquagen-farm/pkg/db/models"
	"github.com/Just-andreew/aquagen-farm/pkg/enums"
	"github.com/Just-andreew/aquagen-farm/pkg/logger"
	"github.com/Just-andreew/aquagen-farm/pkg/migrate"
	"github.com/Just-andreew/aquagen-farm/pkg/security"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "migrate"})

	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "migration command: up|down|status|version|create|validate|seed-admin")
	dir := flag.String("dir", migrate.DefaultDir, "goose migrations directory")

	name := flag.String("name", "", "migration name (for create)")
	version := flag.String("version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")

	flag.Parse()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx = logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
		"cmd": *cmd,
		"dir": *dir,
	})

	// Commands that do NOT require DB
	switch *cmd {
	case "create":
		if *name == "" {
			fmt.Fprintln(os.Stderr, "missing -name for create")
			os.Exit(1)
		}
		logg.Info(ctx, "migrate ready")
		path, err := migrate.CreateSQLMigration(*dir, *name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create migration: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("created migration:", path)
		return

	case "validate":
		logg.Info(ctx, "migrate ready")
		if err := migrate.ValidateDir(*dir); err != nil {
			fmt.Fprintf(os.Stderr, "migration validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("migration validation passed")
		return
	}

	// Everything else needs DB
	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	requireResource(ctx, logg, "sql database", err)

	logg.Info(ctx, "migrate ready")

	switch *cmd {
	case "up":
		if err := migrate.Run(ctx, sqlDB, *dir, "up"); err != nil {
			fmt.Fprintf(os.Stderr, "goose up failed: %v\n", err)
			os.Exit(1)
		}

	case "down":
		if err := migrate.Run(ctx, sqlDB, *dir, "down"); err != nil {
			fmt.Fprintf(os.Stderr, "goose down failed: %v\n", err)
			os.Exit(1)
		}

	case "status":
		if err := migrate.Run(ctx, sqlDB, *dir, "status"); err != nil {
			fmt.Fprintf(os.Stderr, "goose status failed: %v\n", err)
			os.Exit(1)
		}

	case "version":
		if *version == "" {
			fmt.Fprintln(os.Stderr, "missing -version for version command")
			os.Exit(1)
		}
		if err := migrate.MigrateToVersion(ctx, sqlDB, *dir, *version); err != nil {
			fmt.Fprintf(os.Stderr, "goose version migrate failed: %v\n", err)
			os.Exit(1)
		}

	case "seed-admin":
		if err := seedAdmin(ctx, logg, cfg, dbClient); err != nil {
			fmt.Fprintf(os.Stderr, "seed admin failed: %v\n", err)
			os.Exit(1)
		}

	default:
		fmt.Fprintln(os.Stderr, "unknown -cmd value:", *cmd)
		os.Exit(1)
	}
}

// seedAdmin provisions the first admin account from environment credentials.
// Admin accounts cannot be self-registered through the API, so this is the
// only way one comes into existence. Re-running against an existing email is
// a no-op.
func seedAdmin(ctx context.Context, logg *logger.Logger, cfg *config.Config, dbClient *db.Client) error {
	name := strings.TrimSpace(os.Getenv("AQUAGEN_ADMIN_NAME"))
	email := strings.ToLower(strings.TrimSpace(os.Getenv("AQUAGEN_ADMIN_EMAIL")))
	password := os.Getenv("AQUAGEN_ADMIN_PASSWORD")
	if name == "" || email == "" || password == "" {
		return fmt.Errorf("AQUAGEN_ADMIN_NAME, AQUAGEN_ADMIN_EMAIL and AQUAGEN_ADMIN_PASSWORD are required")
	}
	if len(password) < 8 {
		return fmt.Errorf("admin password must be at least 8 characters")
	}

	var existing int64
	if err := dbClient.DB().WithContext(ctx).Model(&models.User{}).Where("lower(email) = ?", email).Count(&existing).Error; err != nil {
		return fmt.Errorf("checking existing admin: %w", err)
	}
	if existing > 0 {
		logg.Info(logg.WithFields(ctx, map[string]any{"email": email}), "admin already exists, nothing to do")
		return nil
	}

	hash, err := security.HashPassword(password, cfg.Password)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}

	admin := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         enums.UserRoleAdmin,
		IsActive:     true,
	}
	if err := dbClient.DB().WithContext(ctx).Create(&admin).Error; err != nil {
		return fmt.Errorf("creating admin: %w", err)
	}

	logg.Info(logg.WithFields(ctx, map[string]any{"email": email, "user_id": admin.ID.String()}), "admin account seeded")
	return nil
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
