// Command catalogctl holds operator tasks that do not belong on the API
// surface: inspecting migrations and minting admin tokens for back-office
// tooling.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"storefront-catalog/internal/config"
	"storefront-catalog/internal/database"
	"storefront-catalog/internal/logger"
	"storefront-catalog/internal/middleware"
	"storefront-catalog/migrations"

	"go.uber.org/zap"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: catalogctl <migrate|status|token> [flags]\n")
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cfg := config.Load()
	log, err := logger.New(cfg.Server.Env, cfg.Server.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	switch os.Args[1] {
	case "migrate", "status":
		ctx := context.Background()
		db, err := database.New(ctx, cfg.Database)
		if err != nil {
			log.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		if os.Args[1] == "migrate" {
			err = database.RunMigrations(db.Pool(), migrations.FS, log)
		} else {
			err = database.GetMigrationStatus(db.Pool(), migrations.FS)
		}
		if err != nil {
			log.Fatal("Migration command failed", zap.Error(err))
		}

	case "token":
		fs := flag.NewFlagSet("token", flag.ExitOnError)
		subject := fs.String("sub", "catalog-admin", "user id carried in the token")
		role := fs.String("role", middleware.RoleAdmin, "role claim")
		ttl := fs.Duration("ttl", time.Hour, "token lifetime")
		_ = fs.Parse(os.Args[2:])

		token, err := middleware.SignToken(cfg.JWT.Secret, *subject, *role, *ttl)
		if err != nil {
			log.Fatal("Failed to sign token", zap.Error(err))
		}
		fmt.Println(token)

	default:
		usage()
	}
}
