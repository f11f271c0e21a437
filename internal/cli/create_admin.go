// Package cli implements the management subcommands that run outside
// the HTTP server.
package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/libroapp/libro/internal/auth"
	"github.com/libroapp/libro/internal/config"
	"github.com/libroapp/libro/internal/database"
	"github.com/libroapp/libro/internal/database/users"
	"github.com/libroapp/libro/internal/entities"
)

// CreateAdminCommand creates an administrator account directly in the
// database. Admin accounts are pre-verified, so no email is sent.
type CreateAdminCommand struct {
	Name         string
	Email        string
	Password     string
	DatabasePath string
	BcryptCost   int
}

func NewCreateAdminCommand() *CreateAdminCommand {
	return &CreateAdminCommand{}
}

func (cmd *CreateAdminCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ExitOnError)

	fs.StringVar(&cmd.Name, "name", "", "Display name for the administrator (required)")
	fs.StringVar(&cmd.Email, "email", "", "Email address for the administrator (required)")
	fs.StringVar(&cmd.Password, "password", "", "Password for the administrator (required, min 8 characters)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.IntVar(&cmd.BcryptCost, "bcrypt-cost", 12, "Bcrypt cost for password hashing")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-admin -name <name> -email <email> -password <password> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create an administrator account. The account is marked verified\n")
		fmt.Fprintf(os.Stderr, "immediately and can log in without email confirmation.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s create-admin -name \"Jo Admin\" -email jo@example.com -password s3cretpass\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Name == "" {
		return fmt.Errorf("required flag -name not provided")
	}
	if cmd.Email == "" {
		return fmt.Errorf("required flag -email not provided")
	}
	if cmd.Password == "" {
		return fmt.Errorf("required flag -password not provided")
	}
	return nil
}

func (cmd *CreateAdminCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	repo := users.NewRepository(db.DB)

	if _, err := repo.GetUserByEmail(cmd.Email); err == nil {
		return fmt.Errorf("a user with email %s already exists", cmd.Email)
	}

	hash, err := auth.HashPassword(cmd.Password, cmd.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &entities.User{
		Name:          cmd.Name,
		Email:         cmd.Email,
		PasswordHash:  hash,
		Role:          entities.RoleAdmin,
		EmailVerified: true,
	}
	if err := repo.CreateUser(admin); err != nil {
		return fmt.Errorf("failed to create administrator: %w", err)
	}

	fmt.Printf("Administrator account created:\n")
	fmt.Printf("  ID:    %d\n", admin.ID)
	fmt.Printf("  Name:  %s\n", admin.Name)
	fmt.Printf("  Email: %s\n", admin.Email)
	return nil
}
