package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Database
		Auth
		Email
		Storage
		Verification
		Tasks
		Cleanup
		CORS
		Global
	}

	HTTP struct {
		Port int32
		Host string
	}
	Database struct {
		Path string
	}
	Auth struct {
		JWTSecret   string
		JWTIssuer   string
		JWTAudience string
		TokenExpiry time.Duration
		BcryptCost  int
	}
	Email struct {
		SMTPHost     string
		SMTPPort     int
		SMTPUsername string
		SMTPPassword string
		FromAddress  string
		FromName     string
	}
	Storage struct {
		SupabaseURL        string
		SupabaseServiceKey string
		CoversBucket       string
		IDCardsBucket      string
	}
	Verification struct {
		CodeExpiry time.Duration
	}
	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	Cleanup struct {
		Enabled  bool
		Schedule string // Cron format: "0 * * * *" = hourly
	}
	CORS struct {
		AllowedOrigins []string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8080)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Auth defaults
	v.SetDefault("jwt_secret", "")
	v.SetDefault("jwt_issuer", "libro-api")
	v.SetDefault("jwt_audience", "libro-client")
	v.SetDefault("jwt_token_expiry", "168h") // 7 days
	v.SetDefault("auth_bcrypt_cost", 12)

	// Email defaults
	v.SetDefault("smtp_host", "")
	v.SetDefault("smtp_port", 587)
	v.SetDefault("smtp_username", "")
	v.SetDefault("smtp_password", "")
	v.SetDefault("from_email", "")
	v.SetDefault("from_name", "Libro Library")

	// Storage defaults
	v.SetDefault("supabase_url", "")
	v.SetDefault("supabase_service_role_key", "")
	v.SetDefault("covers_bucket", DefaultCoversBucket)
	v.SetDefault("id_cards_bucket", DefaultIDCardsBucket)

	// Verification defaults
	v.SetDefault("email_verification_expiry", "24h")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	// Verification cleanup defaults
	v.SetDefault("cleanup_enabled", true)
	v.SetDefault("cleanup_schedule", "0 * * * *") // Hourly at :00

	// CORS defaults
	v.SetDefault("frontend_urls", "http://localhost:3000,http://localhost:5173")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Auth: Auth{
			JWTSecret:   v.GetString("JWT_SECRET"),
			JWTIssuer:   v.GetString("JWT_ISSUER"),
			JWTAudience: v.GetString("JWT_AUDIENCE"),
			TokenExpiry: v.GetDuration("JWT_TOKEN_EXPIRY"),
			BcryptCost:  v.GetInt("AUTH_BCRYPT_COST"),
		},
		Email: Email{
			SMTPHost:     v.GetString("SMTP_HOST"),
			SMTPPort:     v.GetInt("SMTP_PORT"),
			SMTPUsername: v.GetString("SMTP_USERNAME"),
			SMTPPassword: v.GetString("SMTP_PASSWORD"),
			FromAddress:  v.GetString("FROM_EMAIL"),
			FromName:     v.GetString("FROM_NAME"),
		},
		Storage: Storage{
			SupabaseURL:        strings.TrimRight(v.GetString("SUPABASE_URL"), "/"),
			SupabaseServiceKey: v.GetString("SUPABASE_SERVICE_ROLE_KEY"),
			CoversBucket:       v.GetString("COVERS_BUCKET"),
			IDCardsBucket:      v.GetString("ID_CARDS_BUCKET"),
		},
		Verification: Verification{
			CodeExpiry: v.GetDuration("EMAIL_VERIFICATION_EXPIRY"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Cleanup: Cleanup{
			Enabled:  v.GetBool("CLEANUP_ENABLED"),
			Schedule: v.GetString("CLEANUP_SCHEDULE"),
		},
		CORS: CORS{
			AllowedOrigins: splitOrigins(v.GetString("FRONTEND_URLS")),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
	}
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
