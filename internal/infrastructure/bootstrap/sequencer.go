package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "github.com/lib/pq"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/migration"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// Opener opens a short-lived database connection owned by the caller
type Opener func(ctx context.Context) (*persistence.Database, error)

// MigrationRunner applies pending migrations
type MigrationRunner interface {
	Pending() ([]uint, error)
	Up(ctx context.Context) error
	Close() error
}

// MigratorFactory opens a MigrationRunner owned by the caller
type MigratorFactory func(ctx context.Context) (MigrationRunner, error)

// Sequencer runs the bootstrap sequence for the server and worker roles
type Sequencer struct {
	cfg          config.BootstrapConfig
	auth         config.AuthConfig
	liveAuth     *AuthOptions
	open         Opener
	migrator     MigratorFactory
	passwordCost int
	logger       *zap.Logger
}

// Option configures a Sequencer
type Option func(*Sequencer)

// WithOpener replaces the postgres connection opener
func WithOpener(open Opener) Option {
	return func(s *Sequencer) { s.open = open }
}

// WithMigratorFactory replaces the golang-migrate runner
func WithMigratorFactory(f MigratorFactory) Option {
	return func(s *Sequencer) { s.migrator = f }
}

// WithAuthOptions shares live auth options with the sequencer
func WithAuthOptions(o *AuthOptions) Option {
	return func(s *Sequencer) { s.liveAuth = o }
}

// WithPasswordCost sets the bcrypt cost used for the superadmin password
func WithPasswordCost(cost int) Option {
	return func(s *Sequencer) { s.passwordCost = cost }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Sequencer) { s.logger = l }
}

// NewSequencer creates a Sequencer for the loaded configuration
func NewSequencer(cfg *config.Config, opts ...Option) *Sequencer {
	s := &Sequencer{
		cfg:    cfg.Bootstrap,
		auth:   cfg.Auth,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.liveAuth == nil {
		s.liveAuth = NewAuthOptions(cfg.Auth.RequireVerification)
	}
	if s.open == nil {
		s.open = postgresOpener(cfg.Database, s.logger)
	}
	if s.migrator == nil {
		s.migrator = postgresMigrator(cfg.Database, s.migrationsPath(), s.logger)
	}
	s.logger = s.logger.Named("bootstrap")
	return s
}

// AuthOptions returns the live auth options
func (s *Sequencer) AuthOptions() *AuthOptions {
	return s.liveAuth
}

// RunWorker prepares the worker role: only the asset layout is ensured
func (s *Sequencer) RunWorker(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := newReport()

	_, span := telemetry.StartSpan(ctx, "bootstrap.run_worker")
	defer span.End()

	if err := s.ensureAssets(report); err != nil {
		telemetry.RecordError(span, err)
		return report, err
	}

	report.advance(StateReady)
	report.Duration = time.Since(start)
	telemetry.SetOK(span)
	return report, nil
}

// RunServer prepares the server role: assets, first-run seeding and pending
// migrations. Seed and migration failures are reported but do not fail the run.
func (s *Sequencer) RunServer(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := newReport()

	ctx, span := telemetry.StartSpan(ctx, "bootstrap.run_server")
	defer span.End()

	if err := s.ensureAssets(report); err != nil {
		telemetry.RecordError(span, err)
		return report, err
	}

	report.Fresh, report.ProbeErr = s.probe(ctx)
	report.advance(StateProbed)
	telemetry.SetAttributes(span, "bootstrap.fresh", report.Fresh)
	s.logger.Info("Probed database", zap.Bool("fresh", report.Fresh))

	if report.Fresh {
		if err := s.seed(ctx); err != nil {
			report.SeedErr = fmt.Errorf("failed to seed database: %w", err)
			s.logger.Error("Failed to seed database", zap.Error(err))
			telemetry.SetAttributes(span, "bootstrap.seed_error", err.Error())
		} else {
			report.Seeded = true
			report.advance(StateSeeded)
		}
	}

	report.PendingMigrations, report.MigrationErr = s.runMigrations(ctx)
	report.advance(StateMigrationsChecked)
	if report.MigrationErr != nil {
		s.logger.Error("Failed to run migrations", zap.Error(report.MigrationErr))
		telemetry.SetAttributes(span, "bootstrap.migration_error", report.MigrationErr.Error())
	}

	report.advance(StateReady)
	report.Duration = time.Since(start)
	telemetry.SetOK(span)
	return report, nil
}

func (s *Sequencer) ensureAssets(report *Report) error {
	res, err := EnsureAssets(s.cfg.RootDir, s.cfg.EmailTemplateSource)
	if err != nil {
		return err
	}
	report.AssetsCreated = true
	report.TemplatesCopied = res.TemplatesCopied
	if res.SourceMissing {
		s.logger.Warn("Email template source not found, templates not copied",
			zap.String("source", s.cfg.EmailTemplateSource),
		)
	}
	return nil
}

// probe reports whether the database is fresh. A failed connection counts as fresh.
func (s *Sequencer) probe(ctx context.Context) (bool, error) {
	ctx, cancel := s.withProbeTimeout(ctx)
	defer cancel()

	db, err := s.open(ctx)
	if err != nil {
		s.logger.Warn("Database probe failed, treating as initial run", zap.Error(err))
		return true, err
	}
	defer s.closeDB(db)

	return !db.HasTable(ctx, s.cfg.CoreTable), nil
}

func (s *Sequencer) seed(ctx context.Context) error {
	data, builtin, err := LoadSeed(s.seedPath())
	if err != nil {
		return err
	}
	if builtin {
		s.logger.Info("Seed file not found, using built-in initial data", zap.String("path", s.seedPath()))
	}

	populate := PopulateOptions{
		SuperadminIdentifier: s.auth.SuperadminIdentifier,
		SuperadminPassword:   s.auth.SuperadminPassword,
		RequireVerification:  false,
		AutoMigrate:          true,
		PasswordCost:         s.passwordCost,
	}

	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer s.closeDB(db)

	s.logger.Info("Initial run, creating core schema and seeding minimal data")
	if err := Populate(db.DB.WithContext(ctx), data, populate); err != nil {
		return err
	}

	s.liveAuth.SetRequireVerification(true)
	s.logger.Info("Core schema created")
	return nil
}

func (s *Sequencer) runMigrations(ctx context.Context) ([]uint, error) {
	s.logger.Info("Checking and running migrations if needed")

	m, err := s.migrator(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := m.Close(); err != nil {
			s.logger.Warn("Failed to close migrator", zap.Error(err))
		}
	}()

	pending, err := m.Pending()
	if err != nil {
		return nil, err
	}
	s.logger.Info("Pending migrations", zap.Int("count", len(pending)), zap.Uints("versions", pending))

	if err := m.Up(ctx); err != nil {
		return pending, err
	}
	s.logger.Info("Migrations applied")
	return pending, nil
}

func (s *Sequencer) withProbeTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.ProbeTimeout > 0 {
		return context.WithTimeout(ctx, s.cfg.ProbeTimeout)
	}
	return context.WithCancel(ctx)
}

func (s *Sequencer) closeDB(db *persistence.Database) {
	if err := db.Close(); err != nil {
		s.logger.Warn("Failed to close bootstrap connection", zap.Error(err))
	}
}

func (s *Sequencer) seedPath() string {
	return s.resolve(s.cfg.SeedFile)
}

func (s *Sequencer) migrationsPath() string {
	return s.resolve(s.cfg.MigrationsPath)
}

func (s *Sequencer) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.cfg.RootDir, path)
}

func postgresOpener(cfg config.DatabaseConfig, logger *zap.Logger) Opener {
	return func(ctx context.Context) (*persistence.Database, error) {
		return persistence.Open(ctx, cfg, persistence.WithLogger(logger, gormlogger.Warn))
	}
}

func postgresMigrator(cfg config.DatabaseConfig, path string, logger *zap.Logger) MigratorFactory {
	return func(ctx context.Context) (MigrationRunner, error) {
		db, err := sql.Open("postgres", cfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to open migration connection: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		m, err := migration.New(db, path, logger)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return m, nil
	}
}
