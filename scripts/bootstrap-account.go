package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/leadgate/leadgate/internal/auth"
	"github.com/leadgate/leadgate/internal/model"
	"github.com/leadgate/leadgate/internal/repository"
)

type output struct {
	AccountID  string `json:"account_id"`
	Email      string `json:"email"`
	PrivateKey string `json:"private_key"`
	KeyPrefix  string `json:"key_prefix"`
	Token      string `json:"token,omitempty"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		accountID   = flag.String("account-id", "", "Account ID (identity provider subject)")
		email       = flag.String("email", "", "Account email")
		name        = flag.String("name", "", "Account display name")
		hmacSecret  = flag.String("token-secret", os.Getenv("TOKEN_HMAC_SECRET"), "HMAC secret; when set, also prints a signed identity token")
		rotate      = flag.Bool("rotate", false, "Rotate the private key of an existing account")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	if *accountID == "" {
		fmt.Fprintln(os.Stderr, "account-id is required")
		os.Exit(1)
	}
	if !*rotate && *email == "" {
		fmt.Fprintln(os.Stderr, "email is required when creating an account")
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

	generated, err := auth.GeneratePrivateKey()
	if err != nil {
		fmt.Fprintln(os.Stderr, "generate private key:", err)
		os.Exit(1)
	}

	if *rotate {
		err = rotateKey(ctx, repo, *accountID, generated)
	} else {
		err = createAccount(ctx, repo, *accountID, *email, *name, generated)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	out := output{
		AccountID:  *accountID,
		Email:      *email,
		PrivateKey: generated.Plaintext,
		KeyPrefix:  generated.Prefix,
	}
	if *hmacSecret != "" {
		out.Token = auth.NewHMACVerifier(*hmacSecret).SignSubject(*accountID)
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.PrivateKey)
		if out.Token != "" {
			fmt.Println(out.Token)
		}
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

func createAccount(ctx context.Context, repo *repository.Repository, id, email, name string, key *auth.GeneratedPrivateKey) error {
	existing, err := repo.GetAccount(ctx, id)
	if err != nil {
		return fmt.Errorf("look up account: %w", err)
	}
	if existing != nil {
		return fmt.Errorf("account %s already exists; use -rotate to issue a new key", id)
	}

	now := time.Now().UTC()
	account := &model.Account{
		ID:               id,
		Email:            email,
		Name:             name,
		PrivateKeyHash:   key.Hash,
		PrivateKeyPrefix: key.Prefix,
		CreatedAt:        now,
		LastModified:     now,
	}
	if err := repo.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, repository.ErrAccountExists) {
			return fmt.Errorf("account %s already exists", id)
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func rotateKey(ctx context.Context, repo *repository.Repository, id string, key *auth.GeneratedPrivateKey) error {
	existing, err := repo.GetAccount(ctx, id)
	if err != nil {
		return fmt.Errorf("look up account: %w", err)
	}
	if existing == nil {
		return fmt.Errorf("account %s not found", id)
	}
	if err := repo.UpdateAccountKey(ctx, id, key.Prefix, key.Hash); err != nil {
		return fmt.Errorf("rotate key: %w", err)
	}
	return nil
}
