package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/meltforce/gymtrack/internal/analysis"
	"github.com/meltforce/gymtrack/internal/backend"
	"github.com/meltforce/gymtrack/internal/cache"
	"github.com/meltforce/gymtrack/internal/config"
	"github.com/meltforce/gymtrack/internal/store"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// syncSettle is how long to give the background remote sync before printing
// the summary.
const syncSettle = 5 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run supabase migrations and exit")
	email := flag.String("email", os.Getenv("GYMTRACK_EMAIL"), "account email")
	password := flag.String("password", os.Getenv("GYMTRACK_PASSWORD"), "account password")
	provider := flag.String("oauth", "", "sign in via OAuth provider (e.g. google) instead of a password")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("gymtrack starting", "version", Version)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if *migrateOnly {
		if cfg.Backend.Variant != config.VariantSupabase {
			log.Error("migrate-only requires the supabase backend")
			os.Exit(1)
		}
		if err := backend.RunMigrations(cfg.Backend.Supabase.Database.DSN(), cfg.Backend.Supabase.MigrationsPath); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrations applied")
		return
	}

	c, err := cache.Open(cfg.Cache.Dir)
	if err != nil {
		log.Error("failed to open cache", "error", err)
		os.Exit(1)
	}
	defer c.Close()

	ctx := context.Background()
	b, err := backend.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to build backend", "error", err)
		os.Exit(1)
	}
	log.Info("backend ready", "variant", b.Name())

	st := store.New(c, b, log)

	if *provider != "" {
		err = signInOAuth(ctx, st, *provider, cfg.OAuth.RedirectPort, log)
	} else {
		err = st.SignIn(ctx, *email, *password)
	}
	if err != nil {
		var authErr *backend.AuthError
		if errors.As(err, &authErr) {
			log.Error("sign-in failed", "reason", authErr.Reason, "message", authErr.Message())
		} else {
			log.Error("sign-in failed", "error", err)
		}
		os.Exit(1)
	}

	account := st.Account()
	log.Info("signed in", "account", account.Email, "backend", b.Name())

	// Give the concurrent category pulls a moment to land before reading.
	time.Sleep(syncSettle)

	printSummary(st)
}

func signInOAuth(ctx context.Context, st *store.Store, provider string, port int, log *slog.Logger) error {
	authURL, err := st.BeginOAuth(provider)
	if err != nil {
		return err
	}

	srv := backend.NewCallbackServer(port)
	fmt.Println()
	fmt.Println("To sign in, open this URL in your browser:")
	fmt.Println()
	fmt.Printf("  %s\n", authURL)
	fmt.Println()
	fmt.Println("Waiting for sign-in...")

	access, refresh, err := srv.Wait(ctx)
	if err != nil {
		return err
	}
	return st.CompleteOAuth(ctx, fmt.Sprintf("%s?access_token=%s&refresh_token=%s", srv.RedirectURI(), access, refresh))
}

func printSummary(st *store.Store) {
	now := time.Now()
	workouts := st.Workouts()
	weekly := analysis.Weekly(workouts, now)
	totals := analysis.Totals(workouts)
	streak := analysis.Streak(workouts, now)

	fmt.Println()
	fmt.Printf("Workouts logged:   %d\n", totals.TotalWorkouts)
	fmt.Printf("This week:         %d workouts, %s, %s volume\n",
		weekly.TotalWorkouts,
		analysis.FormatDuration(weekly.TotalDurationSeconds),
		analysis.FormatWeight(weekly.TotalVolumeKg, st.Account().Profile.Units))
	fmt.Printf("Streak:            %s\n", analysis.StreakMessage(streak))
	fmt.Printf("Personal records:  %d\n", len(st.PersonalRecords()))
}

