package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/leftoverhq/leftover/internal/auth"
	"github.com/leftoverhq/leftover/internal/clock"
	"github.com/leftoverhq/leftover/internal/db"
	"github.com/leftoverhq/leftover/internal/model"
	"github.com/leftoverhq/leftover/internal/store"
	"github.com/leftoverhq/leftover/internal/sweeper"
)

const usage = `Usage: leftoverctl <command> [flags]

Commands:
  init    create a database and its first operator
  sweep   run the expiry sweep once
  token   print a bearer token for a subject (for testing)
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "init":
		err = cmdInit(os.Args[2:])
	case "sweep":
		err = cmdSweep(os.Args[2:])
	case "token":
		err = cmdToken(os.Args[2:])
	case "-h", "-help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n%s", os.Args[1], usage)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func cmdInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	dbPath := fs.String("db", "leftover.sqlite3", "path to SQLite database file")
	username := fs.String("user", "admin", "operator username")
	fs.Parse(args)

	if _, err := os.Stat(*dbPath); err == nil {
		return fmt.Errorf("database file %s already exists", *dbPath)
	}

	database, err := db.Open(*dbPath)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		os.Remove(*dbPath)
		return fmt.Errorf("running migrations: %w", err)
	}

	password, err := auth.GeneratePassword(16)
	if err != nil {
		return fmt.Errorf("generating password: %w", err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if _, err := store.CreateOperator(context.Background(), database, *username, hash); err != nil {
		return err
	}

	fmt.Printf("Database created: %s\n", *dbPath)
	fmt.Println("Schema initialized.")
	fmt.Println()
	fmt.Println("Operator account created:")
	fmt.Printf("  Username: %s\n", *username)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password, it cannot be recovered.")
	return nil
}

func cmdSweep(args []string) error {
	fs := flag.NewFlagSet("sweep", flag.ExitOnError)
	dbPath := fs.String("db", "leftover.sqlite3", "path to SQLite database file")
	at := fs.String("at", "", "sweep as of this RFC 3339 time instead of now")
	fs.Parse(args)

	var clk clock.Clock = clock.Real{}
	if *at != "" {
		t, err := time.Parse(time.RFC3339, *at)
		if err != nil {
			return fmt.Errorf("parsing -at: %w", err)
		}
		clk = clock.NewFixed(t)
	}

	database, err := db.Open(*dbPath)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		return err
	}

	res, err := sweeper.New(database, clk, nil).RunOnce(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("Donations expired: %d\n", res.DonationsExpired)
	fmt.Printf("Claims timed out:  %d\n", res.ClaimsTimedOut)
	return nil
}

func cmdToken(args []string) error {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	dbPath := fs.String("db", "leftover.sqlite3", "path to SQLite database file")
	subject := fs.String("subject", "", "token subject (identity provider user ID)")
	operator := fs.Bool("operator", false, "issue an operator token for -subject as username")
	fs.Parse(args)

	if *subject == "" {
		return fmt.Errorf("-subject is required")
	}

	database, err := db.Open(*dbPath)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		return err
	}

	secret, err := store.GetJWTSecret(context.Background(), database)
	if err != nil {
		return err
	}

	sub, role := *subject, ""
	if *operator {
		sub, role = auth.OperatorSubject(*subject), model.OperatorRole
	}
	token, err := auth.GenerateToken(secret, sub, role, time.Now())
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
