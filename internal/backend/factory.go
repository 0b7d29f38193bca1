package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/meltforce/gymtrack/internal/config"
)

// New builds the backend variant named by the configuration. The supabase
// variant runs its migrations before connecting.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (Backend, error) {
	redirectURI := fmt.Sprintf("http://127.0.0.1:%d/callback", cfg.OAuth.RedirectPort)

	switch cfg.Backend.Variant {
	case config.VariantLocal:
		return NewLocal(cfg.Cache.BlobDir, log), nil

	case config.VariantFirestore:
		return NewFirestore(cfg.Backend.Firestore.ProjectID, cfg.Backend.Firestore.APIKey, redirectURI, log), nil

	case config.VariantSupabase:
		dsn := cfg.Backend.Supabase.Database.DSN()
		if err := RunMigrations(dsn, cfg.Backend.Supabase.MigrationsPath); err != nil {
			return nil, fmt.Errorf("migrating supabase database: %w", err)
		}
		return NewSupabase(ctx, cfg.Backend.Supabase.ProjectURL, cfg.Backend.Supabase.AnonKey, dsn, redirectURI, log)

	default:
		return nil, fmt.Errorf("unknown backend variant %q", cfg.Backend.Variant)
	}
}
