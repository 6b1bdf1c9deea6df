// Command promote sets a user's role by email address.
// It is used to bootstrap the first admin and to appoint managers.
//
// Usage:
//
//	promote --email=user@example.com [--role=admin]
//
// Requires DATABASE_DSN (or a config file) to be set.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/heartmarshall/expense-ledger/internal/adapter/postgres"
	userrepo "github.com/heartmarshall/expense-ledger/internal/adapter/postgres/user"
	"github.com/heartmarshall/expense-ledger/internal/config"
	"github.com/heartmarshall/expense-ledger/internal/domain"
)

func main() {
	email := flag.String("email", "", "email of the user to promote")
	role := flag.String("role", string(domain.UserRoleAdmin), "role to grant: member, manager or admin")
	flag.Parse()

	if *email == "" {
		fmt.Fprintln(os.Stderr, "Usage: promote --email=user@example.com [--role=admin]")
		os.Exit(1)
	}
	target := domain.UserRole(*role)
	if !target.IsValid() {
		log.Fatalf("invalid role %q", *role)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("connect to database: %v", err)
	}
	defer pool.Close()

	users := userrepo.New(pool)

	current, err := users.GetByEmail(ctx, *email)
	if errors.Is(err, domain.ErrNotFound) {
		fmt.Printf("No user found with email %q.\n", *email)
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("look up user: %v", err)
	}
	if current.Role == target {
		fmt.Printf("User %q (id %d) is already %s.\n", current.Email, current.ID, target)
		return
	}

	u, err := users.SetRole(ctx, *email, target)
	if err != nil {
		log.Fatalf("update role: %v", err)
	}

	fmt.Printf("User %q (id %d) changed from %s to %s.\n", u.Email, u.ID, current.Role, u.Role)
}
