package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/studyhub/studyhub/internal/config"
	"github.com/studyhub/studyhub/internal/domain/account"
	"github.com/studyhub/studyhub/internal/domain/activity"
	"github.com/studyhub/studyhub/internal/domain/assistant"
	"github.com/studyhub/studyhub/internal/domain/export"
	"github.com/studyhub/studyhub/internal/domain/form"
	"github.com/studyhub/studyhub/internal/domain/matching"
	"github.com/studyhub/studyhub/internal/domain/patient"
	"github.com/studyhub/studyhub/internal/domain/study"
	"github.com/studyhub/studyhub/internal/platform/auth"
	"github.com/studyhub/studyhub/internal/platform/db"
	"github.com/studyhub/studyhub/internal/platform/httpx"
	"github.com/studyhub/studyhub/internal/platform/middleware"
	"github.com/studyhub/studyhub/internal/platform/seed"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "studyhub-server",
		Short:        "Clinical research study management API",
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd(), migrateCmd(), usersCmd(), versionCmd())
	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the server version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "studyhub-server %s\n", version)
		},
	}
}

func usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List the accounts in the seed data",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("seed-file")
			if file == "" {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				file = cfg.SeedFile
			}
			doc, err := seed.Load(file)
			if err != nil {
				return err
			}
			printUsers(cmd.OutOrStdout(), doc)
			return nil
		},
	}
	cmd.Flags().String("seed-file", "", "Seed document to read (defaults to SEED_FILE or the built-in data)")
	return cmd
}

func printUsers(w io.Writer, doc *seed.Document) {
	fmt.Fprintf(w, "%-6s %-32s %-12s %s\n", "ID", "EMAIL", "ROLE", "PERMISSIONS")
	for _, u := range doc.Users {
		fmt.Fprintf(w, "%-6s %-32s %-12s %s\n", u.ID, u.Email, u.Role, strings.Join(u.Permissions, ","))
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(cmd.Context(), func(ctx context.Context, pool *pgxpool.Pool) error {
				n, err := db.NewMigrator(pool, db.Migrations()).Up(ctx)
				if err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s).\n", n)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(cmd.Context(), func(ctx context.Context, pool *pgxpool.Pool) error {
				statuses, err := db.NewMigrator(pool, db.Migrations()).Status(ctx)
				if err != nil {
					return fmt.Errorf("migration status: %w", err)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%-8s %-40s %-8s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
				for _, s := range statuses {
					state, at := "pending", ""
					if s.Applied {
						state = "applied"
					}
					if s.AppliedAt != nil {
						at = s.AppliedAt.Format(time.DateTime)
					}
					fmt.Fprintf(out, "%-8d %-40s %-8s %s\n", s.Version, s.Name, state, at)
				}
				return nil
			})
		},
	})
	return cmd
}

func withPool(ctx context.Context, fn func(context.Context, *pgxpool.Pool) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is not set")
	}
	pool, err := db.NewPool(ctx, db.PoolOptions{URL: cfg.DatabaseURL, MaxConns: cfg.DBMaxConns, MinConns: cfg.DBMinConns})
	if err != nil {
		return err
	}
	defer pool.Close()
	return fn(ctx, pool)
}

func newLogger(cfg *config.Config, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	if cfg.IsDev() {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func runServer(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	logger := newLogger(cfg, os.Stdout)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Str("version", version).Msg("starting server")
		if err := a.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

type app struct {
	echo *echo.Echo
	pool *pgxpool.Pool
}

func (a *app) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}

// buildApp wires services, seed data, middleware and routes.
func buildApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*app, error) {
	a := &app{}

	issuer, err := auth.NewIssuer(auth.IssuerConfig{
		AccessSecret:  []byte(cfg.JWTSecret),
		RefreshSecret: []byte(cfg.JWTRefreshSecret),
		AccessTTL:     cfg.AccessTTL(),
		RefreshTTL:    cfg.RefreshTTL(),
	})
	if err != nil {
		return nil, fmt.Errorf("token issuer: %w", err)
	}

	var refresh auth.RefreshStore = auth.NewMemoryRefreshStore()
	if cfg.DatabaseURL != "" {
		a.pool, err = db.NewPool(ctx, db.PoolOptions{URL: cfg.DatabaseURL, MaxConns: cfg.DBMaxConns, MinConns: cfg.DBMinConns})
		if err != nil {
			return nil, err
		}
		refresh = auth.NewPGRefreshStoreFromPool(a.pool)
		logger.Info().Msg("connected to database")
	}

	var responder assistant.Responder = assistant.NewCanned(cfg.AIDelayDuration())
	if cfg.GeminiAPIKey != "" {
		g, err := assistant.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			a.Close()
			return nil, err
		}
		responder = g
		logger.Info().Str("model", g.Model()).Msg("using gemini responder")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	feed := activity.NewFeed(100)
	studies := study.NewService(study.NewMemoryRepo(), feed)
	patients := patient.NewService(patient.NewMemoryRepo())
	forms := form.NewService(form.NewMemoryRepo(), form.NewMemoryResponseRepo(), studies, feed)
	studies.SetFormCounter(forms)
	matches := matching.NewService(matching.NewMemoryRepo(), studies, patients,
		matching.WithFeed(feed),
		matching.WithMetrics(matching.NewMetrics(reg)),
		matching.WithLogger(logger),
	)
	accounts := account.NewService(account.NewMemoryRepo(), issuer, refresh, logger)

	doc, err := seed.Load(cfg.SeedFile)
	if err != nil {
		a.Close()
		return nil, err
	}
	err = seed.Apply(ctx, doc, seed.Targets{Accounts: accounts, Studies: studies, Patients: patients, Feed: feed})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("apply seed: %w", err)
	}
	logger.Info().
		Int("users", len(doc.Users)).
		Int("studies", len(doc.Studies)).
		Int("patients", len(doc.Patients)).
		Msg("seed data loaded")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = httpx.NewValidator()
	e.HTTPErrorHandler = httpx.ErrorHandler(logger, cfg.IsDev())

	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderXRequestID},
		AllowCredentials: true,
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.Timeout()))
	e.Use(middleware.NewHTTPMetrics(reg).Middleware())
	if cfg.IsProduction() {
		e.Use(middleware.RateLimit(rateLimitConfig(cfg)))
	}

	started := time.Now()
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"status":      "healthy",
			"timestamp":   time.Now().UTC(),
			"environment": cfg.Env,
			"version":     version,
			"uptime":      time.Since(started).Round(time.Second).String(),
		})
	})
	if a.pool != nil {
		e.GET("/health/db", db.HealthHandler(db.ProbePool(a.pool), 5*time.Second))
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	api := e.Group(cfg.APIPrefix)
	gate := auth.Authenticate(auth.GateConfig{
		Verifier:    issuer,
		Permissions: accounts.PermissionsFor,
		Logger:      logger,
	})
	account.NewHandler(accounts).RegisterRoutes(api, gate)

	protected := api.Group("", gate)
	study.NewHandler(studies).RegisterRoutes(protected)
	patient.NewHandler(patients).RegisterRoutes(protected)
	form.NewHandler(forms).RegisterRoutes(protected)
	matching.NewHandler(matches).RegisterRoutes(protected)
	export.NewHandler(export.NewService(studies, patients, matches, forms)).RegisterRoutes(protected)
	assistant.NewHandler(assistant.NewService(responder, logger)).RegisterRoutes(protected)

	a.echo = e
	return a, nil
}

// rateLimitConfig overlays configured limits on the middleware defaults.
// Probes and scrapes are never limited.
func rateLimitConfig(cfg *config.Config) middleware.RateLimitConfig {
	rl := middleware.DefaultRateLimitConfig()
	if cfg.RateLimitRPS > 0 {
		rl.RequestsPerSecond = cfg.RateLimitRPS
	}
	if cfg.RateLimitBurst > 0 {
		rl.BurstSize = cfg.RateLimitBurst
	}
	rl.Skipper = func(c echo.Context) bool {
		p := c.Request().URL.Path
		return strings.HasPrefix(p, "/health") || p == "/metrics"
	}
	return rl
}
