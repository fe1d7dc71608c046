package memory

import (
	"context"
	"sync"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

type AccountRepo struct {
	mu         sync.RWMutex
	byID       map[string]domain.Account
	byEmail    map[string]string // email -> accountID
	byUsername map[string]string // username -> accountID
}

func NewAccountRepo() *AccountRepo {
	return &AccountRepo{
		byID:       make(map[string]domain.Account),
		byEmail:    make(map[string]string),
		byUsername: make(map[string]string),
	}
}

func (r *AccountRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byEmail[domain.NormalizeEmail(email)]
	return ok, nil
}

func (r *AccountRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byUsername[username]
	return ok, nil
}

func (r *AccountRepo) Create(ctx context.Context, a domain.Account) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a.Email = domain.NormalizeEmail(a.Email)
	if _, exists := r.byEmail[a.Email]; exists {
		return domain.Account{}, domain.ErrEmailAlreadyExists()
	}
	if _, exists := r.byUsername[a.Username]; exists {
		return domain.Account{}, domain.ErrUsernameAlreadyExists()
	}

	// ID is assigned by the service.
	if a.ID == "" {
		return domain.Account{}, domain.ErrInternal(nil)
	}

	r.byID[a.ID] = a
	r.byEmail[a.Email] = a.ID
	r.byUsername[a.Username] = a.ID
	return a, nil
}

func (r *AccountRepo) UpdatePasswordByEmail(ctx context.Context, email string, newHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byEmail[domain.NormalizeEmail(email)]
	if !ok {
		return domain.ErrAccountNotFound()
	}
	a := r.byID[id]
	a.PasswordHash = newHash
	r.byID[id] = a
	return nil
}

// GetByEmail is used by tests and the dev seed.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[domain.NormalizeEmail(email)]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound()
	}
	return r.byID[id], nil
}
