package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libroapp/libro/internal/entities"
)

func TestAdmin_RequiresAdminRole(t *testing.T) {
	env := setupTestEnv(t)
	_, userToken := env.seedVerifiedUser(t, "reader@example.com", entities.RoleUser)

	paths := []string{
		"/api/admin/users",
		"/api/admin/borrows",
		"/api/admin/dashboard/stats",
		"/api/admin/dashboard/recent-activity",
	}
	for _, path := range paths {
		w := env.doJSON(t, http.MethodGet, path, userToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code, path)

		w = env.doJSON(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestAdmin_Users(t *testing.T) {
	env := setupTestEnv(t)
	admin, adminToken := env.seedVerifiedUser(t, "admin@example.com", entities.RoleAdmin)
	user, _ := env.seedVerifiedUser(t, "reader@example.com", entities.RoleUser)

	w := env.doJSON(t, http.MethodGet, "/api/admin/users", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decodeBody(t, w)["count"])

	// Admins cannot delete themselves
	w = env.doJSON(t, http.MethodDelete, "/api/admin/users/1", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	_ = admin

	w = env.doJSON(t, http.MethodDelete, "/api/admin/users/2", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, env.db.Model(&entities.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	_ = user

	w = env.doJSON(t, http.MethodDelete, "/api/admin/users/999", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdmin_CreateUser(t *testing.T) {
	env := setupTestEnv(t)
	_, adminToken := env.seedVerifiedUser(t, "admin@example.com", entities.RoleAdmin)

	w := env.doJSON(t, http.MethodPost, "/api/admin/users", adminToken, map[string]string{
		"name":     "Librarian",
		"email":    "librarian@example.com",
		"password": "password123",
		"role":     "admin",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created entities.User
	require.NoError(t, env.db.Where("email = ?", "librarian@example.com").First(&created).Error)
	assert.Equal(t, entities.RoleAdmin, created.Role)
	assert.True(t, created.EmailVerified)
	assert.NotEqual(t, "password123", created.PasswordHash)

	// Duplicate email
	w = env.doJSON(t, http.MethodPost, "/api/admin/users", adminToken, map[string]string{
		"name": "Again", "email": "librarian@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Unknown role
	w = env.doJSON(t, http.MethodPost, "/api/admin/users", adminToken, map[string]string{
		"name": "Typo", "email": "typo@example.com", "password": "password123", "role": "superadmin",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Missing fields
	w = env.doJSON(t, http.MethodPost, "/api/admin/users", adminToken, map[string]string{
		"name": "No Email", "password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdmin_UpdateUser_PartialRules(t *testing.T) {
	env := setupTestEnv(t)
	_, adminToken := env.seedVerifiedUser(t, "admin@example.com", entities.RoleAdmin)
	user, _ := env.seedVerifiedUser(t, "reader@example.com", entities.RoleUser)
	originalHash := user.PasswordHash

	// Empty strings leave fields alone; the pointer bool applies
	w := env.doJSON(t, http.MethodPut, "/api/admin/users/2", adminToken, map[string]any{
		"name":           "",
		"email":          "",
		"role":           "admin",
		"email_verified": false,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var updated entities.User
	require.NoError(t, env.db.First(&updated, user.ID).Error)
	assert.Equal(t, user.Name, updated.Name)
	assert.Equal(t, "reader@example.com", updated.Email)
	assert.Equal(t, entities.RoleAdmin, updated.Role)
	assert.False(t, updated.EmailVerified)
	assert.Equal(t, originalHash, updated.PasswordHash)

	// A new password is re-hashed
	w = env.doJSON(t, http.MethodPut, "/api/admin/users/2", adminToken, map[string]any{
		"password": "newpassword456",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, env.db.First(&updated, user.ID).Error)
	assert.NotEqual(t, originalHash, updated.PasswordHash)
	assert.NotEqual(t, "newpassword456", updated.PasswordHash)

	// Taking another account's email is a conflict
	w = env.doJSON(t, http.MethodPut, "/api/admin/users/2", adminToken, map[string]any{
		"email": "admin@example.com",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.doJSON(t, http.MethodPut, "/api/admin/users/999", adminToken, map[string]any{
		"name": "Ghost",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func (env *testEnv) doCreateBook(t *testing.T, token string, fields map[string]string, withCover bool) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if withCover {
		part, err := writer.CreateFormFile("cover", "cover.jpg")
		require.NoError(t, err)
		_, err = part.Write([]byte("jpeg-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/books", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func TestAdmin_ListBooks(t *testing.T) {
	env := setupTestEnv(t)
	_, adminToken := env.seedVerifiedUser(t, "admin@example.com", entities.RoleAdmin)
	_, userToken := env.seedVerifiedUser(t, "reader@example.com", entities.RoleUser)
	env.seedBook(t, "Dune", 1)
	book := env.seedBook(t, "Emma", 1)
	require.NoError(t, env.db.Model(book).Update("available", false).Error)

	w := env.doJSON(t, http.MethodGet, "/api/admin/books", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listed []entities.Book
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed, 2)
	assert.Equal(t, "Dune", listed[0].Title)
	assert.Equal(t, "Emma", listed[1].Title)

	w = env.doJSON(t, http.MethodGet, "/api/admin/books", userToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdmin_CreateBook(t *testing.T) {
	env := setupTestEnv(t)
	_, adminToken := env.seedVerifiedUser(t, "admin@example.com", entities.RoleAdmin)

	w := env.doCreateBook(t, adminToken, map[string]string{
		"title":            "Dune",
		"author":           "Frank Herbert",
		"description":      "Desert planet epic",
		"published_year":   "1965",
		"category":         "Science Fiction",
		"number_of_copies": "3",
	}, true)
	require.Equal(t, http.StatusCreated, w.Code)

	var book entities.Book
	require.NoError(t, env.db.First(&book).Error)
	assert.Equal(t, "Dune", book.Title)
	assert.Equal(t, 3, book.NumberOfCopies)
	assert.NotEmpty(t, book.CoverImage)
	assert.True(t, book.Available)

	// Cover object was stored
	assert.Len(t, env.storage.objects, 1)
}

func TestAdmin_CreateBook_Validation(t *testing.T) {
	env := setupTestEnv(t)
	_, adminToken := env.seedVerifiedUser(t, "admin@example.com", entities.RoleAdmin)

	w := env.doCreateBook(t, adminToken, map[string]string{"title": "No Author"}, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.doCreateBook(t, adminToken, map[string]string{
		"title": "Dune", "author": "Frank Herbert", "number_of_copies": "0",
	}, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdmin_UpdateBook_PartialRules(t *testing.T) {
	env := setupTestEnv(t)
	_, adminToken := env.seedVerifiedUser(t, "admin@example.com", entities.RoleAdmin)
	book := env.seedBook(t, "Dune", 2)
	require.NoError(t, env.db.Model(book).Updates(map[string]any{
		"description": "original description",
	}).Error)

	// Empty strings leave string fields alone; pointers apply even for
	// zero values
	w := env.doJSON(t, http.MethodPut, "/api/admin/books/1", adminToken, map[string]any{
		"title":       "",
		"description": "",
		"available":   false,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var updated entities.Book
	require.NoError(t, env.db.First(&updated, book.ID).Error)
	assert.Equal(t, "Dune", updated.Title)
	assert.Equal(t, "", updated.Description)
	assert.False(t, updated.Available)
	assert.Equal(t, 2, updated.NumberOfCopies)

	w = env.doJSON(t, http.MethodPut, "/api/admin/books/999", adminToken, map[string]any{
		"title": "Ghost",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdmin_DeleteBook(t *testing.T) {
	env := setupTestEnv(t)
	_, adminToken := env.seedVerifiedUser(t, "admin@example.com", entities.RoleAdmin)
	env.seedBook(t, "Dune", 1)

	w := env.doJSON(t, http.MethodDelete, "/api/admin/books/1", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, env.db.Model(&entities.Book{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	w = env.doJSON(t, http.MethodDelete, "/api/admin/books/1", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdmin_BorrowsAndForceReturn(t *testing.T) {
	env := setupTestEnv(t)
	_, adminToken := env.seedVerifiedUser(t, "admin@example.com", entities.RoleAdmin)
	_, userToken := env.seedVerifiedUser(t, "reader@example.com", entities.RoleUser)
	env.seedBook(t, "Dune", 1)

	w := env.doBorrow(t, "/api/books/1/borrow", userToken, borrowDates(), false)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.doJSON(t, http.MethodGet, "/api/admin/borrows", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(1), body["count"])
	assert.Contains(t, w.Body.String(), "reader@example.com")

	w = env.doJSON(t, http.MethodPost, "/api/admin/borrows/1/return", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var loanCount int64
	require.NoError(t, env.db.Model(&entities.BorrowedBook{}).Count(&loanCount).Error)
	assert.Equal(t, int64(0), loanCount)

	w = env.doJSON(t, http.MethodPost, "/api/admin/borrows/1/return", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdmin_Dashboard(t *testing.T) {
	env := setupTestEnv(t)
	_, adminToken := env.seedVerifiedUser(t, "admin@example.com", entities.RoleAdmin)
	_, userToken := env.seedVerifiedUser(t, "reader@example.com", entities.RoleUser)
	env.seedBook(t, "Dune", 2)

	w := env.doBorrow(t, "/api/books/1/borrow", userToken, borrowDates(), false)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.doJSON(t, http.MethodGet, "/api/admin/dashboard/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decodeBody(t, w)
	assert.Equal(t, float64(2), stats["total_users"])
	assert.Equal(t, float64(1), stats["total_books"])
	assert.Equal(t, float64(1), stats["active_loans"])

	w = env.doJSON(t, http.MethodGet, "/api/admin/dashboard/recent-activity", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	// Borrow + two registrations + book addition
	assert.Equal(t, float64(4), body["count"])
}
