package domain

import (
	"strings"
	"time"
)

type Account struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         string
	RegisteredAt time.Time
}

// NormalizeEmail lower-cases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
