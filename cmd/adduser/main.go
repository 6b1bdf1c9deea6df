// Command adduser creates an account in the users table. Accounts are
// normally provisioned by the identity provider; this tool covers local
// setups and can print an access token for the new user.
//
// Usage:
//
//	adduser --name="Ann Lee" --email=ann@example.com --password=secret [--role=member] [--token]
//
// Requires DATABASE_DSN and AUTH_JWT_SECRET (or a config file) to be set.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/heartmarshall/expense-ledger/internal/adapter/postgres"
	userrepo "github.com/heartmarshall/expense-ledger/internal/adapter/postgres/user"
	"github.com/heartmarshall/expense-ledger/internal/auth"
	"github.com/heartmarshall/expense-ledger/internal/config"
	"github.com/heartmarshall/expense-ledger/internal/domain"
)

func main() {
	name := flag.String("name", "", "display name")
	email := flag.String("email", "", "login email")
	password := flag.String("password", "", "initial password")
	role := flag.String("role", string(domain.UserRoleMember), "member, manager or admin")
	printToken := flag.Bool("token", false, "print an access token for the new user")
	flag.Parse()

	if strings.TrimSpace(*name) == "" || strings.TrimSpace(*email) == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "Usage: adduser --name=NAME --email=EMAIL --password=PASSWORD [--role=member] [--token]")
		os.Exit(1)
	}
	userRole := domain.UserRole(*role)
	if !userRole.IsValid() {
		log.Fatalf("invalid role %q", *role)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("connect to database: %v", err)
	}
	defer pool.Close()

	u, err := userrepo.New(pool).Create(ctx, &domain.User{
		Name:         strings.TrimSpace(*name),
		Email:        strings.ToLower(strings.TrimSpace(*email)),
		PasswordHash: string(hash),
		Role:         userRole,
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		fmt.Printf("A user with email %q already exists.\n", *email)
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("create user: %v", err)
	}

	fmt.Printf("Created %s %q with id %d.\n", u.Role, u.Email, u.ID)

	if *printToken {
		token, err := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTTL).
			GenerateAccessToken(u.ID, u.Role)
		if err != nil {
			log.Fatalf("generate token: %v", err)
		}
		fmt.Println(token)
	}
}
