// Package verifications provides database operations for email
// verification codes: issuing codes, looking them up for the verify
// flow and retiring stale or superseded ones.
package verifications

import (
	"time"

	"gorm.io/gorm"

	"github.com/libroapp/libro/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateCode stores a fresh verification code for the user and marks
// any previously issued unused codes as used, so only the newest code
// can complete verification.
func (r *Repository) CreateCode(verification *entities.EmailVerification) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&entities.EmailVerification{}).
			Where("user_id = ? AND used = ?", verification.UserID, false).
			Update("used", true).Error
		if err != nil {
			return err
		}
		return tx.Create(verification).Error
	})
}

// GetCode returns the newest verification row with this code value,
// whatever its state. The caller inspects Used and ExpiresAt to tell a
// consumed or stale code apart from an unknown one.
func (r *Repository) GetCode(code string) (*entities.EmailVerification, error) {
	var verification entities.EmailVerification
	err := r.db.
		Where("code = ?", code).
		Order("created_at DESC").
		First(&verification).Error
	if err != nil {
		return nil, err
	}
	return &verification, nil
}

func (r *Repository) MarkUsed(id uint) error {
	return r.db.Model(&entities.EmailVerification{}).
		Where("id = ?", id).
		Update("used", true).Error
}

// DeleteExpired removes verification rows whose expiry has passed.
// Returns the number of rows deleted.
func (r *Repository) DeleteExpired() (int64, error) {
	result := r.db.
		Where("expires_at < ?", time.Now()).
		Delete(&entities.EmailVerification{})
	return result.RowsAffected, result.Error
}
