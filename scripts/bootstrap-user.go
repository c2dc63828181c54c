// Command bootstrap-user seeds a user account and prints a ready-to-use
// session token. Intended for local development and smoke tests.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/smartbill/smartbill/internal/auth"
	"github.com/smartbill/smartbill/internal/model"
	"github.com/smartbill/smartbill/internal/repository"
)

type output struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		email       = flag.String("email", "dev@smartbill.local", "User email")
		password    = flag.String("password", "", "User password (required)")
		secret      = flag.String("jwt-secret", os.Getenv("JWT_SECRET"), "Token signing secret")
		lifetime    = flag.Duration("lifetime", auth.DefaultTokenLifetime, "Token lifetime")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	if *password == "" {
		fmt.Fprintln(os.Stderr, "-password is required")
		os.Exit(1)
	}
	if *secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	user, err := ensureUser(ctx, repo, *email, *password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ensure user:", err)
		os.Exit(1)
	}

	tokens := auth.NewTokenService([]byte(*secret), *lifetime)
	token, err := tokens.Issue(user.ID, user.Email, 0)
	if err != nil {
		fmt.Fprintln(os.Stderr, "issue token:", err)
		os.Exit(1)
	}

	out := output{
		UserID:      user.ID,
		Email:       user.Email,
		AccessToken: token,
		ExpiresIn:   lifetime.String(),
	}

	if *format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			fmt.Fprintln(os.Stderr, "encode output:", err)
			os.Exit(1)
		}
		return
	}

	fmt.Println("user_id:     ", out.UserID)
	fmt.Println("email:       ", out.Email)
	fmt.Println("access_token:", out.AccessToken)
	fmt.Println("expires_in:  ", out.ExpiresIn)
}

// ensureUser returns the existing user for the email or creates one.
func ensureUser(ctx context.Context, repo *repository.Repository, email, password string) (*model.User, error) {
	existing, err := repo.GetUserByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           ulid.Make().String(),
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}

	if err := repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}
