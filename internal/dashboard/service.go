// Package dashboard aggregates library activity into the counters and
// recent-events feed shown on the admin dashboard.
package dashboard

import (
	"fmt"
	"sort"
	"time"

	"github.com/libroapp/libro/internal/database/books"
	"github.com/libroapp/libro/internal/database/loans"
	"github.com/libroapp/libro/internal/database/users"
)

// PendingReturnWindow is how far ahead a due date may be for the loan
// to count as a pending return.
const PendingReturnWindow = 3 * 24 * time.Hour

// Activity event types
const (
	ActivityBorrow   = "borrow"
	ActivityRegister = "register"
	ActivityAddBook  = "add_book"
)

// Stats holds the dashboard counters.
type Stats struct {
	TotalUsers     int64 `json:"total_users"`
	TotalBooks     int64 `json:"total_books"`
	ActiveLoans    int64 `json:"active_loans"`
	PendingReturns int64 `json:"pending_returns"`
}

// Activity is one entry in the recent-activity feed. The fields set
// depend on the event type.
type Activity struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	TimeAgo   string    `json:"time_ago"`
	UserName  string    `json:"user_name,omitempty"`
	BookTitle string    `json:"book_title,omitempty"`
}

// Service computes dashboard aggregates.
type Service struct {
	users *users.Repository
	books *books.Repository
	loans *loans.Repository
}

// NewService creates a dashboard service.
func NewService(userRepo *users.Repository, bookRepo *books.Repository, loanRepo *loans.Repository) *Service {
	return &Service{
		users: userRepo,
		books: bookRepo,
		loans: loanRepo,
	}
}

// GetStats returns the dashboard counters.
func (s *Service) GetStats() (*Stats, error) {
	totalUsers, err := s.users.CountUsers()
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	totalBooks, err := s.books.CountBooks()
	if err != nil {
		return nil, fmt.Errorf("failed to count books: %w", err)
	}
	activeLoans, err := s.loans.CountActiveLoans()
	if err != nil {
		return nil, fmt.Errorf("failed to count loans: %w", err)
	}
	pendingReturns, err := s.loans.CountDueBefore(time.Now().Add(PendingReturnWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to count pending returns: %w", err)
	}

	return &Stats{
		TotalUsers:     totalUsers,
		TotalBooks:     totalBooks,
		ActiveLoans:    activeLoans,
		PendingReturns: pendingReturns,
	}, nil
}

// GetRecentActivity merges the latest borrows, registrations and
// catalog additions into a single feed sorted newest first.
func (s *Service) GetRecentActivity() ([]Activity, error) {
	var activities []Activity
	now := time.Now()

	recentLoans, err := s.loans.GetRecentLoans(5)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent loans: %w", err)
	}
	for _, loan := range recentLoans {
		activities = append(activities, Activity{
			Type:      ActivityBorrow,
			Timestamp: loan.CreatedAt,
			TimeAgo:   relativeTime(loan.CreatedAt, now),
			UserName:  loan.User.Name,
			BookTitle: loan.Book.Title,
		})
	}

	recentUsers, err := s.users.GetRecentUsers(3)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent users: %w", err)
	}
	for _, user := range recentUsers {
		activities = append(activities, Activity{
			Type:      ActivityRegister,
			Timestamp: user.CreatedAt,
			TimeAgo:   relativeTime(user.CreatedAt, now),
			UserName:  user.Name,
		})
	}

	recentBooks, err := s.books.GetRecentBooks(2)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent books: %w", err)
	}
	for _, book := range recentBooks {
		activities = append(activities, Activity{
			Type:      ActivityAddBook,
			Timestamp: book.CreatedAt,
			TimeAgo:   relativeTime(book.CreatedAt, now),
			BookTitle: book.Title,
		})
	}

	sort.Slice(activities, func(i, j int) bool {
		return activities[i].Timestamp.After(activities[j].Timestamp)
	})
	return activities, nil
}

// relativeTime renders a timestamp as a coarse human-readable age.
func relativeTime(t, now time.Time) string {
	elapsed := now.Sub(t)
	switch {
	case elapsed < time.Minute:
		return "Just now"
	case elapsed < time.Hour:
		minutes := int(elapsed.Minutes())
		if minutes == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", minutes)
	case elapsed < 24*time.Hour:
		hours := int(elapsed.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	default:
		days := int(elapsed.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}
}
