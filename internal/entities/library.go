package entities

import (
	"encoding/json"
	"time"
)

// UserRole is a closed set; anything outside RoleUser/RoleAdmin is rejected
// at assignment time.
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// Valid reports whether the role is one of the known variants.
func (r UserRole) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type User struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Email         string    `gorm:"uniqueIndex;size:255" json:"email"`
	Name          string    `gorm:"size:255" json:"name"`
	PasswordHash  string    `gorm:"size:255" json:"-"`
	Role          UserRole  `gorm:"size:20;default:'user'" json:"role"`
	EmailVerified bool      `gorm:"default:false" json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Book struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Title          string    `gorm:"index;size:512" json:"title"`
	Author         string    `gorm:"index;size:256" json:"author"`
	Description    string    `gorm:"type:text" json:"description"`
	PublishedYear  int       `json:"published_year"`
	Category       string    `gorm:"index;size:100;default:'General'" json:"category"`
	NumberOfCopies int       `gorm:"default:1" json:"number_of_copies"`
	Available      bool      `gorm:"default:true" json:"available"`
	CoverImage     string    `gorm:"size:1024" json:"cover_image,omitempty"` // storage object key
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// EffectivelyAvailable is the availability shown to clients: the flag alone
// is not enough, there must also be at least one copy on the shelf.
func (b *Book) EffectivelyAvailable() bool {
	return b.Available && b.NumberOfCopies > 0
}

// MarshalJSON emits the effective availability instead of the stored
// flag, so a book whose copies are all out reads as unavailable.
func (b Book) MarshalJSON() ([]byte, error) {
	type plain Book
	return json.Marshal(struct {
		plain
		Available bool `json:"available"`
	}{
		plain:     plain(b),
		Available: b.EffectivelyAvailable(),
	})
}

// BorrowedBook is an open loan. There is at most one per (UserID, BookID);
// the row is deleted once the book comes back.
type BorrowedBook struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index" json:"user_id"`
	BookID      uint      `gorm:"index" json:"book_id"`
	BorrowedAt  time.Time `json:"borrowed_at"`
	DueDate     time.Time `json:"due_date"`
	Price       float64   `json:"price"`
	IDCardImage string    `gorm:"size:1024" json:"id_card_image,omitempty"` // storage object key
	User        User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Book        Book      `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ReturnedBook is the append-only history record written when a loan closes.
type ReturnedBook struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index" json:"user_id"`
	BookID      uint      `gorm:"index" json:"book_id"`
	BorrowedAt  time.Time `json:"borrowed_at"`
	DueDate     time.Time `json:"due_date"`
	ReturnedAt  time.Time `json:"returned_at"`
	Price       float64   `json:"price"`
	IDCardImage string    `gorm:"size:1024" json:"id_card_image,omitempty"`
	User        User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Book        Book      `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EmailVerification is one issued 6-digit code. Reissuing marks older
// unused codes as used, so at most one code per user is live.
type EmailVerification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index" json:"user_id"`
	Code      string    `gorm:"index;size:6" json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `gorm:"default:false" json:"used"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

func (Book) TableName() string {
	return "books"
}

func (BorrowedBook) TableName() string {
	return "borrowed_books"
}

func (ReturnedBook) TableName() string {
	return "returned_books"
}

func (EmailVerification) TableName() string {
	return "email_verifications"
}
