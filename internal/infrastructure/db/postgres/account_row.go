package postgres

import "time"

type accountRow struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         string
	RegisteredAt time.Time
}
