// Command seeduser creates or refreshes a user row, typically the first admin.
//
//	go run ./cmd/seeduser -username admin -password secret -role admin
//	go run ./cmd/seeduser -username admin -delete
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nretrorsum/work-test/internal/auth"
	"github.com/nretrorsum/work-test/internal/config"
	"github.com/nretrorsum/work-test/internal/infra"
	"github.com/nretrorsum/work-test/internal/model"
	"github.com/nretrorsum/work-test/internal/repository"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	username := flag.String("username", "admin", "username to create, refresh or delete")
	password := flag.String("password", "", "password (required unless -delete)")
	role := flag.String("role", model.RoleAdmin, "admin or cashier")
	del := flag.Bool("delete", false, "delete the user instead of creating it")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL, infra.DatabaseOptions{MaxOpenConns: 2, MaxIdleConns: 1})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if *del {
		deleted, err := repository.NewUserRepository(db).Delete(ctx, *username)
		if err != nil {
			log.Fatal().Err(err).Msg("delete failed")
		}
		if !deleted {
			log.Fatal().Str("username", *username).Msg("user not found")
		}
		fmt.Printf("user %q deleted\n", *username)
		return
	}

	if *password == "" {
		log.Fatal().Msg("-password is required")
	}
	if !model.ValidRole(*role) {
		log.Fatal().Str("role", *role).Msg("role must be admin or cashier")
	}
	hash, err := auth.HashPassword(*password, cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt error")
	}

	result := db.WithContext(ctx).Exec(`
		INSERT INTO users (username, password_hash, role)
		VALUES (?, ?, ?)
		ON CONFLICT (username) DO UPDATE
		SET password_hash = EXCLUDED.password_hash,
		    role = EXCLUDED.role
	`, *username, hash, *role)
	if result.Error != nil {
		log.Fatal().Err(result.Error).Msg("insert error")
	}
	fmt.Printf("user %q created/updated with role %s\n", *username, *role)
}
