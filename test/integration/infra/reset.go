//go:build integration

package infra

import (
	"context"
	"database/sql"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

func ResetAll(ctx context.Context, db *sql.DB, rdb *goredis.Client) error {
	if err := ResetPostgres(ctx, db); err != nil {
		return err
	}
	if err := ResetRedis(ctx, rdb); err != nil {
		return err
	}
	return nil
}

func ResetPostgres(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `TRUNCATE TABLE accounts;`); err != nil {
		return fmt.Errorf("reset postgres: %w", err)
	}
	return nil
}

func ResetRedis(ctx context.Context, rdb *goredis.Client) error {
	// verification codes and cooldown windows only
	return rdb.FlushDB(ctx).Err()
}
