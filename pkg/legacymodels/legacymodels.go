package legacymodels

import (
	"database/sql"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/skipperbent/pecee-legacy-models/internal/auth"
	"github.com/skipperbent/pecee-legacy-models/internal/config"
	"github.com/skipperbent/pecee-legacy-models/internal/engine"
	"github.com/skipperbent/pecee-legacy-models/internal/migrations"
	"github.com/skipperbent/pecee-legacy-models/internal/repository"
	"github.com/skipperbent/pecee-legacy-models/pkg/legacymodels/core"
	"github.com/skipperbent/pecee-legacy-models/pkg/legacymodels/models"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/lmittmann/tint"

	_ "github.com/go-sql-driver/mysql"
	migrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Registry bundles the opened database with the wired-up managers. It is the
// process-wide entry point; sessions are created per request from it.
type Registry struct {
	DB    *sql.DB
	Users *engine.UserManager
	Files *engine.FileManager

	tracker *auth.LoginTracker
	clock   core.Clock
	secret  string
}

// Open connects to the configured database, runs migrations and wires the
// repositories. It refuses to start without PLM_APP_SECRET: the ticket
// encryption key must never fall back to a built-in default.
func Open() (*Registry, error) {
	secret := config.GetSystemSettingString(config.APP_SECRET)
	if secret == "" {
		return nil, models.ErrMissingAppSecret
	}

	databaseType := config.GetSystemSettingString(config.DATABASE_TYPE)
	if databaseType == "" || (databaseType != config.DATABASE_TYPE_POSTGRES && databaseType != config.DATABASE_TYPE_MYSQL && databaseType != config.DATABASE_TYPE_SQLLITE) {
		panic("PLM_DATABASE_TYPE must be set to one of the following values: POSTGRES, MYSQL, SQLLITE")
	}

	var db *sql.DB
	if databaseType == config.DATABASE_TYPE_POSTGRES {
		db = setupPostgresDatabase()
	}
	if databaseType == config.DATABASE_TYPE_SQLLITE {
		db = setupSqlLiteDatabase()
	}
	if databaseType == config.DATABASE_TYPE_MYSQL {
		db = setupMysqlDatabase()
	}

	clock := core.NewRealClock()
	userRepo := repository.NewUserRepository(db, clock)
	userDataRepo := repository.NewUserDataRepository(db)
	resetRepo := repository.NewUserResetRepository(db, clock)
	badLoginRepo := repository.NewBadLoginRepository(db)
	fileRepo := repository.NewFileRepository(db, clock)
	fileDataRepo := repository.NewFileDataRepository(db)

	return &Registry{
		DB:      db,
		Users:   engine.NewUserManager(userRepo, userDataRepo, resetRepo, clock),
		Files:   engine.NewFileManager(fileRepo, fileDataRepo),
		tracker: auth.NewLoginTracker(badLoginRepo, clock),
		clock:   clock,
		secret:  secret,
	}, nil
}

// NewSession builds the request-scoped authentication context over the given
// cookie jar. Use web.NewCookies to adapt an http request/response pair.
func (r *Registry) NewSession(jar auth.CookieJar) (*engine.Session, error) {
	tickets, err := auth.NewTicketManager(jar, r.clock, r.secret)
	if err != nil {
		return nil, err
	}
	return engine.NewSession(r.Users, r.tracker, tickets), nil
}

func setupPostgresDatabase() *sql.DB {
	dbURL := config.GetSystemSettingString(config.DATABASE_URL)
	if dbURL == "" {
		panic("PLM_DATABASE_URL must be set when using the POSTGRES database type")
	}
	slog.Info("Using Postgres database", "url", dbURL)
	slog.Info("Running migrations")
	if err := runMigrationsFromEmbed("postgres", dbURL); err != nil {
		slog.Error("DB migration failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Opening Postgres database")
	dbPostgres, err := sql.Open("postgres", dbURL)
	if err != nil {
		slog.Error("DB connection failed", "error", err)
		os.Exit(1)
	}
	return dbPostgres
}

func setupSqlLiteDatabase() *sql.DB {
	fileName := config.GetSystemSettingString(config.DATABASE_SQLLITE_FILE_NAME)
	if fileName == "" {
		panic("PLM_DATABASE_SQLLITE_FILE_NAME must be set")
	}
	dbURL := "sqlite3://" + fileName
	slog.Info("Using SQLite database", "file", fileName)
	slog.Info("Running migrations")
	if err := runMigrationsFromEmbed("sqllite3", dbURL); err != nil {
		slog.Error("DB migration failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Opening SQLite database")
	dbSqlLite, err := sql.Open("sqlite3", fileName)
	if err != nil {
		log.Fatalf("Failed to open SQLite DB: %v", err)
	}
	if err := dbSqlLite.Ping(); err != nil {
		log.Fatalf("Failed to ping SQLite DB: %v", err)
	}
	return dbSqlLite
}

func setupMysqlDatabase() *sql.DB {
	dbURL := config.GetSystemSettingString(config.DATABASE_URL)
	if dbURL == "" {
		panic("PLM_DATABASE_URL must be set when using the MYSQL database type")
	}
	if !strings.Contains(dbURL, "parseTime=true") {
		panic("PLM_DATABASE_URL must contain 'parseTime=true' for MySQL")
	}
	if !strings.HasPrefix(dbURL, "mysql://") {
		panic("PLM_DATABASE_URL must start with 'mysql://' for MySQL")
	}

	slog.Info("Using MySQL database", "url", dbURL)
	slog.Info("Running migrations")
	if err := runMigrationsFromEmbed("mysql", dbURL); err != nil {
		slog.Error("DB migration failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Opening MySQL database")
	dbMysql, err := sql.Open("mysql", strings.Replace(dbURL, "mysql://", "", 1))
	if err != nil {
		slog.Error("DB connection failed", "error", err)
		os.Exit(1)
	}
	return dbMysql
}

func runMigrationsFromEmbed(migrationsPath string, dbURL string) error {
	sub, err := fs.Sub(migrations.FS, migrationsPath)
	if err != nil {
		return err
	}
	source, err := iofs.New(sub, ".")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, dbURL)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

func SetupLogger() {
	w := os.Stderr
	slog.SetDefault(slog.New(
		tint.NewHandler(w, &tint.Options{
			Level:      slog.LevelInfo,
			TimeFormat: time.RFC3339Nano,
		}),
	))
}
