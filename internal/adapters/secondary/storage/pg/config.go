package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

const (
	maxOpenConnections = 10
	maxIdleConnections = 2
	connMaxLifetime    = 5 * time.Minute
	connMaxIdleTime    = 1 * time.Minute
)

type Config struct {
	// Host пустой - журнал генераций выключен
	Host             string `envconfig:"HOST"`
	Port             string `envconfig:"PORT" default:"5432"`
	Username         string `envconfig:"USERNAME"`
	Password         string `envconfig:"PASSWORD"`
	Database         string `envconfig:"DATABASE" default:"figurine"`
	SSLMode          string `envconfig:"SSL_MODE" default:"disable"`
	StatementTimeout int    `envconfig:"STATEMENT_TIMEOUT" default:"30000"` // в миллисекундах
}

func (c *Config) Enabled() bool {
	return c != nil && c.Host != ""
}

func (c *Config) dsn() string {
	return fmt.Sprintf("host=%s port=%s user=%s dbname=%s password=%s sslmode=%s",
		c.Host,
		c.Port,
		c.Username,
		c.Database,
		c.Password,
		c.SSLMode,
	)
}

// NewConnection подключается через pgx stdlib с настройками пула.
// statement_timeout передаётся как runtime-параметр, чтобы действовать на все соединения пула.
func (c *Config) NewConnection(ctx context.Context) (*sqlx.DB, error) {
	connConfig, err := pgx.ParseConfig(c.dsn())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}
	if c.StatementTimeout > 0 {
		connConfig.RuntimeParams["statement_timeout"] = fmt.Sprintf("%d", c.StatementTimeout)
	}

	db, err := sqlx.Open("pgx", stdlib.RegisterConnConfig(connConfig))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConnections)
	db.SetMaxIdleConns(maxIdleConnections)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return db, nil
}
