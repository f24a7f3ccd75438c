package db

import (
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"coachdesk-backend/internal/platform/config"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know about.
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// DSN builds the driver specific connection string.
func DSN(c config.DatabaseConfig) string {
	if c.DSN != "" {
		return c.DSN
	}
	switch c.Driver {
	case DriverPostgres:
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable connect_timeout=3",
			c.Host, c.Port, c.Username, c.Password, c.DBName)
	case DriverSQLite:
		return "file:coachdesk.db?_pragma=foreign_keys(1)"
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&tls=false&timeout=3s&readTimeout=5s&writeTimeout=5s&loc=UTC",
			c.Username, c.Password, c.Host, c.Port, c.DBName)
	}
}

func Connect(c config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open(c.Driver, DSN(c))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", c.Driver, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w", c.Driver, err)
	}
	configurePool(db)
	return db, nil
}

func configurePool(db *sqlx.DB) {
	if db.DriverName() == DriverSQLite {
		// one writer; also keeps ":memory:" databases on a single connection
		db.SetMaxOpenConns(1)
		return
	}
	db.SetMaxOpenConns(80)
	db.SetMaxIdleConns(20)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
}

// OpenMemory returns a migrated in-memory sqlite database. Used by tests and
// the "sqlite" dev mode.
func OpenMemory() (*sqlx.DB, error) {
	db, err := Connect(config.DatabaseConfig{Driver: DriverSQLite, DSN: ":memory:"})
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
