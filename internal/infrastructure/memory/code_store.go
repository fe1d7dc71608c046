package memory

import (
	"context"
	"sync"
	"time"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

type codeEntry struct {
	code      string
	expiresAt time.Time
}

// CodeStore is the in-process fallback used when redis is unreachable.
type CodeStore struct {
	mu sync.Mutex
	// purpose|email -> code
	data      map[string]codeEntry
	now       func() time.Time
	nextSweep time.Time
}

func NewCodeStore() *CodeStore {
	return &CodeStore{data: make(map[string]codeEntry), now: time.Now}
}

func codeKey(purpose domain.VerifyPurpose, email string) string {
	return string(purpose) + "|" + email
}

func (s *CodeStore) Save(ctx context.Context, purpose domain.VerifyPurpose, email, code string, ttl time.Duration) error {
	if ttl <= 0 {
		return domain.ErrMissingField("ttl")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)
	s.data[codeKey(purpose, email)] = codeEntry{code: code, expiresAt: now.Add(ttl)}
	return nil
}

// sweep drops expired codes nobody came back for. Caller holds mu.
func (s *CodeStore) sweep(now time.Time) {
	if now.Before(s.nextSweep) {
		return
	}
	for k, e := range s.data {
		if !now.Before(e.expiresAt) {
			delete(s.data, k)
		}
	}
	s.nextSweep = now.Add(sweepInterval)
}

func (s *CodeStore) Get(ctx context.Context, purpose domain.VerifyPurpose, email string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := codeKey(purpose, email)
	e, ok := s.data[k]
	if !ok {
		return "", nil
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.data, k)
		return "", nil
	}
	return e.code, nil
}

func (s *CodeStore) Delete(ctx context.Context, purpose domain.VerifyPurpose, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, codeKey(purpose, email))
	return nil
}
