// Package users provides database operations for user management.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetUserByEmail("reader@example.com")
package users

import (
	"gorm.io/gorm"

	"github.com/libroapp/libro/internal/entities"
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser persists a new user.
func (r *Repository) CreateUser(user *entities.User) error {
	return r.db.Create(user).Error
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email address.
func (r *Repository) GetUserByEmail(email string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetAllUsers retrieves every user, newest registration first.
func (r *Repository) GetAllUsers() ([]entities.User, error) {
	var users []entities.User
	err := r.db.Order("created_at DESC").Find(&users).Error
	return users, err
}

// UpdateUser saves the full user record.
func (r *Repository) UpdateUser(user *entities.User) error {
	return r.db.Save(user).Error
}

// SetEmailVerified flips the verified flag for a user.
func (r *Repository) SetEmailVerified(userID uint) error {
	return r.db.Model(&entities.User{}).Where("id = ?", userID).
		Update("email_verified", true).Error
}

// DeleteUser removes a user and their dependent loan, history and
// verification rows.
func (r *Repository) DeleteUser(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&entities.BorrowedBook{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&entities.ReturnedBook{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&entities.EmailVerification{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.User{}, id).Error
	})
}

// CountUsers returns the total number of registered users.
func (r *Repository) CountUsers() (int64, error) {
	var count int64
	err := r.db.Model(&entities.User{}).Count(&count).Error
	return count, err
}

// GetRecentUsers returns the most recently registered users.
func (r *Repository) GetRecentUsers(limit int) ([]entities.User, error) {
	var users []entities.User
	err := r.db.Order("created_at DESC").Limit(limit).Find(&users).Error
	return users, err
}
