package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/meeting-manager/internal"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const driver = "pgx"

// Postgres SQLSTATE codes.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// Handles bundles the two views of the same connection pool: sqlx for
// hand-written queries and gorm for repositories.
type Handles struct {
	SQL  *sqlx.DB
	Gorm *gorm.DB
}

func (h *Handles) Close() error {
	if h == nil || h.SQL == nil {
		return nil
	}
	return h.SQL.Close()
}

// Open connects to postgres and wraps the pool for gorm.
func Open(ctx context.Context, cfg internal.DatabaseConfig, logger *slog.Logger) (*Handles, error) {
	dbConn, err := sqlx.ConnectContext(ctx, driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.PingContext(ctx); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: dbConn.DB}), GormConfig())
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to wrap connection with gorm: %w", err)
	}

	logger.Info("database connected",
		"max_open_conns", cfg.MaxOpenConns,
		"max_idle_conns", cfg.MaxIdleConns)

	return &Handles{SQL: dbConn, Gorm: gdb}, nil
}

// GormConfig is shared by production and test connections.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// IsUniqueViolation reports whether err is a unique constraint failure from
// either gorm's translated errors or the raw pgx error.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeUniqueViolation
	}
	return false
}

// IsForeignKeyViolation reports whether err is a foreign key failure.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeForeignKeyViolation
	}
	return false
}

// Connect opens the backend selected by cfg.Source: sqlite:// sources use the
// embedded database, anything else is handed to the postgres driver.
func Connect(ctx context.Context, cfg internal.DatabaseConfig, logger *slog.Logger) (*Handles, error) {
	if IsSQLiteSource(cfg.Source) {
		logger.Info("using embedded sqlite database", "path", SQLitePath(cfg.Source))
		return OpenSQLite(SQLitePath(cfg.Source))
	}
	return Open(ctx, cfg, logger)
}
