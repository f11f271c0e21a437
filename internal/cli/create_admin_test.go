package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libroapp/libro/internal/auth"
	"github.com/libroapp/libro/internal/database"
	"github.com/libroapp/libro/internal/database/users"
	"github.com/libroapp/libro/internal/entities"
)

func TestCreateAdminCommand_ParseFlags(t *testing.T) {
	cmd := NewCreateAdminCommand()
	err := cmd.ParseFlags([]string{"-name", "Jo", "-email", "jo@example.com", "-password", "s3cretpass"})
	require.NoError(t, err)
	assert.Equal(t, "Jo", cmd.Name)
	assert.Equal(t, 12, cmd.BcryptCost)

	cmd = NewCreateAdminCommand()
	err = cmd.ParseFlags([]string{"-email", "jo@example.com", "-password", "s3cretpass"})
	assert.Error(t, err)

	cmd = NewCreateAdminCommand()
	err = cmd.ParseFlags([]string{"-name", "Jo", "-password", "s3cretpass"})
	assert.Error(t, err)

	cmd = NewCreateAdminCommand()
	err = cmd.ParseFlags([]string{"-name", "Jo", "-email", "jo@example.com"})
	assert.Error(t, err)
}

func TestCreateAdminCommand_Run(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "libro.db")

	cmd := NewCreateAdminCommand()
	require.NoError(t, cmd.ParseFlags([]string{
		"-name", "Jo Admin",
		"-email", "jo@example.com",
		"-password", "s3cretpass",
		"-db", dbPath,
		"-bcrypt-cost", "4",
	}))
	require.NoError(t, cmd.Run())

	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)
	defer db.Close()

	admin, err := users.NewRepository(db.DB).GetUserByEmail("jo@example.com")
	require.NoError(t, err)
	assert.Equal(t, entities.RoleAdmin, admin.Role)
	assert.True(t, admin.EmailVerified)
	assert.NoError(t, auth.CheckPassword("s3cretpass", admin.PasswordHash))

	// Running again against the same database fails on the duplicate
	err = cmd.Run()
	assert.Error(t, err)
}
