package dashboard

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/libroapp/libro/internal/database/books"
	"github.com/libroapp/libro/internal/database/loans"
	"github.com/libroapp/libro/internal/database/users"
	"github.com/libroapp/libro/internal/entities"
)

func setupService(t *testing.T) (*Service, *gorm.DB, func()) {
	dbPath := "./test_dashboard_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&entities.User{},
		&entities.Book{},
		&entities.BorrowedBook{},
		&entities.ReturnedBook{},
	))

	svc := NewService(users.NewRepository(db), books.NewRepository(db), loans.NewRepository(db))

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}
	return svc, db, cleanup
}

func TestService_GetStats(t *testing.T) {
	svc, db, cleanup := setupService(t)
	defer cleanup()

	user := &entities.User{Email: "reader@example.com", Name: "Reader", Role: entities.RoleUser}
	require.NoError(t, db.Create(user).Error)
	book := &entities.Book{Title: "Dune", Author: "Frank Herbert", NumberOfCopies: 3, Available: true}
	require.NoError(t, db.Create(book).Error)

	now := time.Now()
	// Due tomorrow: counts as pending; due in ten days: does not
	require.NoError(t, db.Create(&entities.BorrowedBook{
		UserID: user.ID, BookID: book.ID, DueDate: now.Add(24 * time.Hour),
	}).Error)
	require.NoError(t, db.Create(&entities.BorrowedBook{
		UserID: user.ID, BookID: book.ID, DueDate: now.Add(10 * 24 * time.Hour),
	}).Error)

	stats, err := svc.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.TotalBooks)
	assert.Equal(t, int64(2), stats.ActiveLoans)
	assert.Equal(t, int64(1), stats.PendingReturns)
}

func TestService_GetRecentActivity(t *testing.T) {
	svc, db, cleanup := setupService(t)
	defer cleanup()

	user := &entities.User{Email: "reader@example.com", Name: "Reader", Role: entities.RoleUser}
	require.NoError(t, db.Create(user).Error)
	book := &entities.Book{Title: "Dune", Author: "Frank Herbert", NumberOfCopies: 3, Available: true}
	require.NoError(t, db.Create(book).Error)
	require.NoError(t, db.Create(&entities.BorrowedBook{
		UserID: user.ID, BookID: book.ID, DueDate: time.Now().Add(7 * 24 * time.Hour),
	}).Error)

	activities, err := svc.GetRecentActivity()
	require.NoError(t, err)
	require.Len(t, activities, 3)

	types := make(map[string]int)
	for _, a := range activities {
		types[a.Type]++
		assert.NotEmpty(t, a.TimeAgo)
	}
	assert.Equal(t, 1, types[ActivityBorrow])
	assert.Equal(t, 1, types[ActivityRegister])
	assert.Equal(t, 1, types[ActivityAddBook])

	// Sorted newest first
	for i := 1; i < len(activities); i++ {
		assert.False(t, activities[i].Timestamp.After(activities[i-1].Timestamp))
	}
}

func TestService_GetRecentActivity_BorrowCarriesNames(t *testing.T) {
	svc, db, cleanup := setupService(t)
	defer cleanup()

	user := &entities.User{Email: "reader@example.com", Name: "Reader", Role: entities.RoleUser}
	require.NoError(t, db.Create(user).Error)
	book := &entities.Book{Title: "Dune", Author: "Frank Herbert", NumberOfCopies: 3, Available: true}
	require.NoError(t, db.Create(book).Error)
	require.NoError(t, db.Create(&entities.BorrowedBook{
		UserID: user.ID, BookID: book.ID, DueDate: time.Now().Add(7 * 24 * time.Hour),
	}).Error)

	activities, err := svc.GetRecentActivity()
	require.NoError(t, err)

	var borrow *Activity
	for i := range activities {
		if activities[i].Type == ActivityBorrow {
			borrow = &activities[i]
		}
	}
	require.NotNil(t, borrow)
	assert.Equal(t, "Reader", borrow.UserName)
	assert.Equal(t, "Dune", borrow.BookTitle)
}

func TestRelativeTime(t *testing.T) {
	now := time.Now()

	cases := []struct {
		name string
		at   time.Time
		want string
	}{
		{"just now", now.Add(-20 * time.Second), "Just now"},
		{"one minute", now.Add(-90 * time.Second), "1 minute ago"},
		{"minutes", now.Add(-10 * time.Minute), "10 minutes ago"},
		{"one hour", now.Add(-90 * time.Minute), "1 hour ago"},
		{"hours", now.Add(-5 * time.Hour), "5 hours ago"},
		{"one day", now.Add(-30 * time.Hour), "1 day ago"},
		{"days", now.Add(-4 * 24 * time.Hour), "4 days ago"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, relativeTime(tc.at, now))
		})
	}
}
