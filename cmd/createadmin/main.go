// Command createadmin provisions an administrator account from a terminal.
// The password is read interactively so it never lands in shell history.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/term"

	"github.com/evgsol/vipgate/internal/server/auth"
	"github.com/evgsol/vipgate/internal/server/config"
	"github.com/evgsol/vipgate/internal/server/models"
	"github.com/evgsol/vipgate/internal/server/repositories/repomanager"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	password, err := readPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(password), nil
}

func run(ctx context.Context, dsn, username, email string) error {

	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}
	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	policy := auth.PasswordPolicy{MinLength: 8, RequireLetterAndDigit: true}
	if err := policy.Check(password); err != nil {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	now := time.Now()
	user, err := repos.Users(db).Create(ctx, &models.User{
		UserName:      username,
		PasswordHash:  hash,
		Email:         email,
		EmailVerified: true,
		Status:        models.UserEnabled,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return fmt.Errorf("error creating admin: %w", err)
	}

	fmt.Printf("admin %q created with id %d\n", user.UserName, user.ID)
	return nil
}

func main() {

	defaults := &config.Config{}
	defaults.LoadDefaults()

	dsn := flag.String("d", defaults.DatabaseDSN, "database DSN")
	username := flag.String("u", "admin", "admin username")
	email := flag.String("e", "", "admin email")
	flag.Parse()

	if *email == "" {
		log.Fatal("email is required (-e)")
	}

	if err := run(context.Background(), *dsn, *username, *email); err != nil {
		log.Fatalf("%v", err)
	}
}
