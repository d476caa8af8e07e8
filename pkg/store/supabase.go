package store

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	supabase "github.com/supabase-community/supabase-go"
)

// SupabaseConfig holds configuration required to connect to Supabase.
type SupabaseConfig struct {
	// ConnectionString is the Supabase Postgres connection string.
	// If not provided, it is constructed from SupabaseURL and Password.
	ConnectionString string

	// SupabaseURL is the project URL, e.g. "https://[project-ref].supabase.co".
	SupabaseURL string

	// SupabaseKey is the Supabase API key (service_role for server-side use).
	SupabaseKey string

	// Password is the database password (not the API key).
	Password string

	// Table is the key-value table name. Defaults to "app_state".
	Table string

	// Optional tuning knobs forwarded to the Postgres pool.
	MaxOpenConns int
	MaxIdleConns int
	ConnMaxIdle  time.Duration
	ConnMaxLife  time.Duration
}

// SupabaseStore is a Postgres-backed store reached through Supabase, keeping
// the SDK client around for projects that expose only the REST surface.
type SupabaseStore struct {
	*PostgresStore
	supabaseSDK *supabase.Client
	cfg         SupabaseConfig
}

// NewSupabaseStore constructs an unconnected Supabase store.
func NewSupabaseStore(cfg SupabaseConfig) *SupabaseStore {
	return &SupabaseStore{cfg: cfg}
}

// Connect initializes the SDK client and the direct database connection.
func (s *SupabaseStore) Connect(ctx context.Context) error {
	if s.cfg.SupabaseURL != "" && s.cfg.SupabaseKey != "" {
		sdkClient, err := supabase.NewClient(s.cfg.SupabaseURL, s.cfg.SupabaseKey, nil)
		if err != nil {
			return fmt.Errorf("initialize supabase SDK: %w", err)
		}
		s.supabaseSDK = sdkClient
	}

	connStr := s.cfg.ConnectionString
	if connStr == "" {
		built, err := s.buildConnectionString()
		if err != nil {
			return fmt.Errorf("build connection string: %w", err)
		}
		connStr = built
	}

	// Disable the prepared statement cache to avoid conflicts when connecting
	// through Supabase's pooler.
	connStr = addConnectionParam(connStr, "statement_cache_capacity", "0")
	connStr = addConnectionParam(connStr, "default_query_exec_mode", "simple_protocol")

	s.PostgresStore = NewPostgresStore(PostgresConfig{
		DSN:          connStr,
		Table:        s.cfg.Table,
		MaxOpenConns: s.cfg.MaxOpenConns,
		MaxIdleConns: s.cfg.MaxIdleConns,
		ConnMaxIdle:  s.cfg.ConnMaxIdle,
		ConnMaxLife:  s.cfg.ConnMaxLife,
	})
	return s.PostgresStore.Connect(ctx)
}

// SDK returns the Supabase SDK client for Supabase-specific features.
// Returns nil if the SDK was not initialized.
func (s *SupabaseStore) SDK() *supabase.Client {
	return s.supabaseSDK
}

// buildConnectionString constructs a Postgres connection string from the
// project URL and database password.
func (s *SupabaseStore) buildConnectionString() (string, error) {
	if s.cfg.SupabaseURL == "" {
		return "", fmt.Errorf("supabase URL is required when connection string is not provided")
	}
	if s.cfg.Password == "" {
		return "", fmt.Errorf("supabase password is required when connection string is not provided")
	}

	parsedURL, err := url.Parse(s.cfg.SupabaseURL)
	if err != nil {
		return "", fmt.Errorf("parse supabase URL: %w", err)
	}

	// Host format: [project-ref].supabase.co
	parts := strings.Split(parsedURL.Host, ".")
	if len(parts) < 2 {
		return "", fmt.Errorf("invalid supabase URL format: expected [project-ref].supabase.co")
	}
	projectRef := parts[0]

	encodedPassword := url.QueryEscape(s.cfg.Password)
	return fmt.Sprintf(
		"postgresql://postgres:%s@db.%s.supabase.co:5432/postgres?sslmode=require",
		encodedPassword, projectRef,
	), nil
}

// addConnectionParam appends a query parameter unless it is already present.
func addConnectionParam(connStr, key, value string) string {
	if strings.Contains(connStr, key+"=") {
		return connStr
	}
	separator := "?"
	if strings.Contains(connStr, "?") {
		separator = "&"
	}
	return connStr + separator + key + "=" + value
}
