package config

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/logger"
)

func NewDB(dsn string, debug bool) (*sql.DB, error) {

	if dsn == "" {
		return nil, fmt.Errorf("empty DB DSN")
	}
	// ---------------- actual connection ----------------
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, domain.ErrDBUnavailable(fmt.Errorf("open %s: %w", redactDSN(dsn), err))
	}

	// pool sizing for a small stateless service
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(60 * time.Minute)

	// verify connectivity early (fail fast)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, domain.ErrDBUnavailable(fmt.Errorf("ping %s: %w", redactDSN(dsn), err))
	}

	if debug {
		// prove we're connected to expected server/user/db (no secrets)
		var who, dbname, addr, ver string
		_ = db.QueryRowContext(ctx, "SELECT current_user").Scan(&who)
		_ = db.QueryRowContext(ctx, "SELECT current_database()").Scan(&dbname)
		_ = db.QueryRowContext(ctx, "SELECT inet_server_addr()::text").Scan(&addr)
		_ = db.QueryRowContext(ctx, "SHOW server_version").Scan(&ver)

		logger.Logger.Info().
			Str("user", who).
			Str("db", dbname).
			Str("server_addr", addr).
			Str("version", ver).
			Msg("db connected")
	}

	return db, nil
}

// redactDSN masks the password so the DSN can go into errors and logs.
func redactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "<unparseable dsn>"
	}
	return u.Redacted()
}
