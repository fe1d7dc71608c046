package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

const pgUniqueViolation = "23505"

type AccountRepo struct {
	db *sql.DB
}

func NewAccountRepo(db *sql.DB) *AccountRepo {
	return &AccountRepo{db: db}
}

// ---------- helpers ----------

func toDomainAccount(ar accountRow) domain.Account {
	return domain.Account{
		ID:           ar.ID,
		Username:     ar.Username,
		Email:        ar.Email,
		PasswordHash: ar.PasswordHash,
		Role:         ar.Role,
		RegisteredAt: ar.RegisteredAt.UTC(),
	}
}

// duplicateError maps a unique violation to the matching domain rejection.
func duplicateError(err error) (*domain.Error, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		if strings.Contains(pgErr.ConstraintName, "username") {
			return domain.ErrUsernameAlreadyExists(), true
		}
		return domain.ErrEmailAlreadyExists(), true
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "duplicate") {
		if strings.Contains(msg, "username") {
			return domain.ErrUsernameAlreadyExists(), true
		}
		return domain.ErrEmailAlreadyExists(), true
	}
	return nil, false
}

// ---------- account.AccountRepo ----------

func (r *AccountRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return false, domain.ErrMissingField("email")
	}

	const q = `SELECT EXISTS (SELECT 1 FROM accounts WHERE email = $1);`

	var ok bool
	if err := r.db.QueryRowContext(ctx, q, email).Scan(&ok); err != nil {
		return false, domain.ErrDBUnavailable(err)
	}
	return ok, nil
}

func (r *AccountRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return false, domain.ErrMissingField("username")
	}

	const q = `SELECT EXISTS (SELECT 1 FROM accounts WHERE username = $1);`

	var ok bool
	if err := r.db.QueryRowContext(ctx, q, username).Scan(&ok); err != nil {
		return false, domain.ErrDBUnavailable(err)
	}
	return ok, nil
}

func (r *AccountRepo) Create(ctx context.Context, a domain.Account) (domain.Account, error) {
	a.Email = domain.NormalizeEmail(a.Email)
	a.Username = strings.TrimSpace(a.Username)
	if a.ID == "" {
		return domain.Account{}, domain.ErrMissingField("id")
	}
	if a.Email == "" {
		return domain.Account{}, domain.ErrMissingField("email")
	}
	if a.Username == "" {
		return domain.Account{}, domain.ErrMissingField("username")
	}
	if a.PasswordHash == "" {
		return domain.Account{}, domain.ErrMissingField("password_hash")
	}
	if a.Role == "" {
		a.Role = string(domain.RoleUser)
	}

	const q = `
INSERT INTO accounts (id, username, email, password_hash, role, registered_at)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING id, username, email, password_hash, role, registered_at;
`

	var ar accountRow
	err := r.db.QueryRowContext(ctx, q,
		a.ID, a.Username, a.Email, a.PasswordHash, a.Role, a.RegisteredAt,
	).Scan(
		&ar.ID,
		&ar.Username,
		&ar.Email,
		&ar.PasswordHash,
		&ar.Role,
		&ar.RegisteredAt,
	)
	if err != nil {
		if de, ok := duplicateError(err); ok {
			return domain.Account{}, de
		}
		return domain.Account{}, domain.ErrDBUnavailable(err)
	}
	return toDomainAccount(ar), nil
}

func (r *AccountRepo) UpdatePasswordByEmail(ctx context.Context, email string, newHash string) error {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return domain.ErrMissingField("email")
	}
	if newHash == "" {
		return domain.ErrMissingField("password_hash")
	}

	const q = `
UPDATE accounts
SET password_hash = $2
WHERE email = $1;
`
	res, err := r.db.ExecContext(ctx, q, email, newHash)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrAccountNotFound()
	}
	return nil
}

func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return domain.Account{}, domain.ErrMissingField("email")
	}

	const q = `
SELECT id, username, email, password_hash, role, registered_at
FROM accounts
WHERE email = $1
LIMIT 1;
`
	var ar accountRow
	err := r.db.QueryRowContext(ctx, q, email).Scan(
		&ar.ID,
		&ar.Username,
		&ar.Email,
		&ar.PasswordHash,
		&ar.Role,
		&ar.RegisteredAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrAccountNotFound()
		}
		return domain.Account{}, domain.ErrDBUnavailable(err)
	}
	return toDomainAccount(ar), nil
}
