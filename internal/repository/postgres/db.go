package postgres

import (
	"context"

	"mediaflow/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

const applicationName = "mediaflow"

// DB owns the connection pool every repository shares.
type DB struct {
	Pool *pgxpool.Pool
}

func poolConfig(cfg *config.DatabaseConfig) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, errFailedParseDatabaseConfig(err)
	}

	if cfg.MaxConns > 0 {
		pc.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		pc.MinConns = int32(cfg.MinConns)
	}
	pc.HealthCheckPeriod = poolHealthCheckPeriod
	pc.MaxConnLifetime = poolMaxConnLifetime
	pc.MaxConnIdleTime = poolMaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = applicationName

	return pc, nil
}

// New opens the pool and fails fast when the database is unreachable.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	pc, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), pc)
	if err != nil {
		return nil, errFailedCreateConnectionPool(err)
	}

	db := &DB{Pool: pool}

	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	defer cancel()

	if err := db.Ping(ctx); err != nil {
		pool.Close()
		return nil, errFailedPingDatabase(err)
	}

	return db, nil
}

func (db *DB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}
