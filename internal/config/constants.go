package config

// Default paths and bucket names
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./libro.db"

	// DefaultCoversBucket is the storage bucket holding book cover images
	DefaultCoversBucket = "book-covers"

	// DefaultIDCardsBucket is the storage bucket holding borrower ID-card images
	DefaultIDCardsBucket = "id-cards"
)
