package database

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/frahmantamala/meeting-manager/internal/core/datamodel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	sqliteScheme = "sqlite://"
	// sqliteDriverName is go-sqlite3 with lower() folding all of Unicode.
	sqliteDriverName = "sqlite3_unicode"
)

var registerSQLiteDriver sync.Once

// unicodeLower replaces the builtin lower(), which only folds ASCII, so
// LOWER(...) LIKE searches match "Đ" against "đ" on both backends.
func unicodeLower(v interface{}) interface{} {
	switch s := v.(type) {
	case string:
		return strings.ToLower(s)
	case []byte:
		if s == nil {
			return nil
		}
		return strings.ToLower(string(s))
	default:
		return v
	}
}

func sqliteDriver() string {
	registerSQLiteDriver.Do(func() {
		sql.Register(sqliteDriverName, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				return conn.RegisterFunc("lower", unicodeLower, true)
			},
		})
	})
	return sqliteDriverName
}

// IsSQLiteSource reports whether a DSN selects the embedded sqlite backend.
func IsSQLiteSource(source string) bool {
	return strings.HasPrefix(source, sqliteScheme)
}

// OpenSQLite opens a sqlite database and creates the schema with AutoMigrate.
// An empty path gives a private in-memory database. The pool is limited to a
// single connection, so callers must not query outside an open transaction.
func OpenSQLite(path string) (*Handles, error) {
	if path == "" {
		path = fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	}
	dsn := path
	if strings.Contains(dsn, "?") {
		dsn += "&_foreign_keys=on"
	} else {
		dsn += "?_foreign_keys=on"
	}

	gdb, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: sqliteDriver(), DSN: dsn}), GormConfig())
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := gdb.AutoMigrate(datamodel.Models()...); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &Handles{SQL: sqlx.NewDb(sqlDB, "sqlite3"), Gorm: gdb}, nil
}

// SQLitePath strips the sqlite:// scheme from a DSN.
func SQLitePath(source string) string {
	return strings.TrimPrefix(source, sqliteScheme)
}
