package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Backend variant names accepted in backend.variant.
const (
	VariantLocal     = "local"
	VariantFirestore = "firestore"
	VariantSupabase  = "supabase"
)

type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Cache   CacheConfig   `yaml:"cache"`
	OAuth   OAuthConfig   `yaml:"oauth"`
}

// BackendConfig selects and configures the remote backend variant.
type BackendConfig struct {
	Variant   string          `yaml:"variant"`
	Firestore FirestoreConfig `yaml:"firestore"`
	Supabase  SupabaseConfig  `yaml:"supabase"`
}

// FirestoreConfig holds Firebase project credentials for the document-store
// variant.
type FirestoreConfig struct {
	ProjectID string `yaml:"project_id"`
	APIKey    string `yaml:"api_key"`
}

// SupabaseConfig holds the Supabase project endpoint plus the direct Postgres
// connection used by the relational data adapter.
type SupabaseConfig struct {
	ProjectURL     string         `yaml:"project_url"`
	AnonKey        string         `yaml:"anon_key"`
	Database       DatabaseConfig `yaml:"database"`
	MigrationsPath string         `yaml:"migrations_path"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

// CacheConfig locates on-device storage: the cache database and, for the
// local variant, the blob directory.
type CacheConfig struct {
	Dir     string `yaml:"dir"`
	BlobDir string `yaml:"blob_dir"`
}

// OAuthConfig configures the loopback redirect listener.
type OAuthConfig struct {
	RedirectPort int `yaml:"redirect_port"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, then applies environment variable
// overrides. Env vars use the prefix GYMTRACK_ and underscore-separated
// paths:
//
//	GYMTRACK_BACKEND_VARIANT, GYMTRACK_CACHE_DIR, GYMTRACK_OAUTH_PORT,
//	GYMTRACK_FIRESTORE_PROJECT_ID, GYMTRACK_FIRESTORE_API_KEY,
//	GYMTRACK_SUPABASE_URL, GYMTRACK_SUPABASE_ANON_KEY,
//	GYMTRACK_DB_HOST, GYMTRACK_DB_PORT, GYMTRACK_DB_NAME,
//	GYMTRACK_DB_USER, GYMTRACK_DB_PASSWORD, GYMTRACK_DB_SSLMODE
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GYMTRACK_BACKEND_VARIANT"); v != "" {
		cfg.Backend.Variant = v
	}
	if v := os.Getenv("GYMTRACK_CACHE_DIR"); v != "" {
		cfg.Cache.Dir = v
	}
	if v := os.Getenv("GYMTRACK_OAUTH_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.OAuth.RedirectPort = port
		}
	}
	if v := os.Getenv("GYMTRACK_FIRESTORE_PROJECT_ID"); v != "" {
		cfg.Backend.Firestore.ProjectID = v
	}
	if v := os.Getenv("GYMTRACK_FIRESTORE_API_KEY"); v != "" {
		cfg.Backend.Firestore.APIKey = v
	}
	if v := os.Getenv("GYMTRACK_SUPABASE_URL"); v != "" {
		cfg.Backend.Supabase.ProjectURL = v
	}
	if v := os.Getenv("GYMTRACK_SUPABASE_ANON_KEY"); v != "" {
		cfg.Backend.Supabase.AnonKey = v
	}
	if v := os.Getenv("GYMTRACK_DB_HOST"); v != "" {
		cfg.Backend.Supabase.Database.Host = v
	}
	if v := os.Getenv("GYMTRACK_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Backend.Supabase.Database.Port = port
		}
	}
	if v := os.Getenv("GYMTRACK_DB_NAME"); v != "" {
		cfg.Backend.Supabase.Database.Name = v
	}
	if v := os.Getenv("GYMTRACK_DB_USER"); v != "" {
		cfg.Backend.Supabase.Database.User = v
	}
	if v := os.Getenv("GYMTRACK_DB_PASSWORD"); v != "" {
		cfg.Backend.Supabase.Database.Password = v
	}
	if v := os.Getenv("GYMTRACK_DB_SSLMODE"); v != "" {
		cfg.Backend.Supabase.Database.SSLMode = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Backend.Variant == "" {
		cfg.Backend.Variant = VariantLocal
	}
	if cfg.Cache.Dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.Cache.Dir = filepath.Join(home, ".gymtrack")
		}
	}
	if cfg.Cache.BlobDir == "" {
		cfg.Cache.BlobDir = filepath.Join(cfg.Cache.Dir, "photos")
	}
	if cfg.OAuth.RedirectPort == 0 {
		cfg.OAuth.RedirectPort = 8613
	}
	if cfg.Backend.Supabase.MigrationsPath == "" {
		cfg.Backend.Supabase.MigrationsPath = "migrations"
	}
}

func (c *Config) validate() error {
	switch c.Backend.Variant {
	case VariantLocal:
	case VariantFirestore:
		if c.Backend.Firestore.ProjectID == "" {
			return fmt.Errorf("firestore.project_id is required")
		}
		if c.Backend.Firestore.APIKey == "" {
			return fmt.Errorf("firestore.api_key is required")
		}
	case VariantSupabase:
		if c.Backend.Supabase.ProjectURL == "" {
			return fmt.Errorf("supabase.project_url is required")
		}
		if c.Backend.Supabase.AnonKey == "" {
			return fmt.Errorf("supabase.anon_key is required")
		}
		db := c.Backend.Supabase.Database
		if db.Host == "" || db.Port == 0 || db.Name == "" || db.User == "" {
			return fmt.Errorf("supabase.database host, port, name and user are required")
		}
	default:
		return fmt.Errorf("backend.variant must be %q, %q or %q", VariantLocal, VariantFirestore, VariantSupabase)
	}
	if c.Cache.Dir == "" {
		return fmt.Errorf("cache.dir is required")
	}
	return nil
}
