package account

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

/*
Fakes for ports
*/

type fakeAccountRepo struct {
	mu sync.Mutex

	byEmail    map[string]domain.Account
	byUsername map[string]domain.Account

	// injected errors (if set, method returns error)
	existsEmailErr    error
	existsUsernameErr error
	createErr         error
	updateErr         error

	created    []domain.Account
	updatedPwd []struct{ email, hash string }
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{
		byEmail:    map[string]domain.Account{},
		byUsername: map[string]domain.Account{},
	}
}

func (f *fakeAccountRepo) seed(a domain.Account) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byEmail[a.Email] = a
	f.byUsername[a.Username] = a
}

func (f *fakeAccountRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existsEmailErr != nil {
		return false, f.existsEmailErr
	}
	_, ok := f.byEmail[email]
	return ok, nil
}

func (f *fakeAccountRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existsUsernameErr != nil {
		return false, f.existsUsernameErr
	}
	_, ok := f.byUsername[username]
	return ok, nil
}

func (f *fakeAccountRepo) Create(ctx context.Context, a domain.Account) (domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return domain.Account{}, f.createErr
	}
	f.byEmail[a.Email] = a
	f.byUsername[a.Username] = a
	f.created = append(f.created, a)
	return a, nil
}

func (f *fakeAccountRepo) UpdatePasswordByEmail(ctx context.Context, email string, newHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	a, ok := f.byEmail[email]
	if !ok {
		return domain.ErrAccountNotFound()
	}
	a.PasswordHash = newHash
	f.byEmail[email] = a
	f.updatedPwd = append(f.updatedPwd, struct{ email, hash string }{email, newHash})
	return nil
}

type fakeHasher struct {
	hashFn func(pw string) (string, error)
}

func (h *fakeHasher) Hash(pw string) (string, error) {
	if h.hashFn != nil {
		return h.hashFn(pw)
	}
	return "hash:" + pw, nil
}

type fakeCodeStore struct {
	mu sync.Mutex

	data map[string]string
	ttls map[string]time.Duration

	saveErr error
	getErr  error

	deleted []string
}

func newFakeCodeStore() *fakeCodeStore {
	return &fakeCodeStore{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func codeKey(p domain.VerifyPurpose, email string) string { return string(p) + "|" + email }

func (s *fakeCodeStore) Save(ctx context.Context, p domain.VerifyPurpose, email, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.data[codeKey(p, email)] = code
	s.ttls[codeKey(p, email)] = ttl
	return nil
}

func (s *fakeCodeStore) Get(ctx context.Context, p domain.VerifyPurpose, email string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", s.getErr
	}
	return s.data[codeKey(p, email)], nil
}

func (s *fakeCodeStore) Delete(ctx context.Context, p domain.VerifyPurpose, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, codeKey(p, email))
	s.deleted = append(s.deleted, codeKey(p, email))
	return nil
}

type fakeCooldown struct {
	mu sync.Mutex

	held map[string]bool
	err  error

	keys []string
}

func newFakeCooldown() *fakeCooldown { return &fakeCooldown{held: map[string]bool{}} }

func (c *fakeCooldown) Acquire(ctx context.Context, key string, window time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys = append(c.keys, key)
	if c.err != nil {
		return false, c.err
	}
	if c.held[key] {
		return false, nil
	}
	c.held[key] = true
	return true, nil
}

type fakeAttempts struct {
	mu sync.Mutex

	hits    map[string]int
	hitErr  error
	windows []time.Duration
	resets  []string
}

func newFakeAttempts() *fakeAttempts { return &fakeAttempts{hits: map[string]int{}} }

func (a *fakeAttempts) Hit(ctx context.Context, key string, window time.Duration) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.hitErr != nil {
		return 0, a.hitErr
	}
	a.windows = append(a.windows, window)
	a.hits[key]++
	return a.hits[key], nil
}

func (a *fakeAttempts) Reset(ctx context.Context, key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.hits, key)
	a.resets = append(a.resets, key)
	return nil
}

type fakeMail struct {
	mu sync.Mutex

	err  error
	sent []MailRequest
}

func (m *fakeMail) PublishVerifyCode(ctx context.Context, req MailRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, req)
	return nil
}

type auditEntry struct {
	action string
	fields []string
}

type fakeAuditor struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (a *fakeAuditor) record(action string, fields ...string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, auditEntry{action: action, fields: fields})
}

func (a *fakeAuditor) VerifyCodeRequested(ctx context.Context, purpose, email, addr string) {
	a.record("verify_code_requested", purpose, email, addr)
}
func (a *fakeAuditor) AccountRegistered(ctx context.Context, accountID, email string) {
	a.record("account_registered", accountID, email)
}
func (a *fakeAuditor) PasswordReset(ctx context.Context, email string) {
	a.record("password_reset", email)
}

/*
Wiring
*/

type testDeps struct {
	accounts *fakeAccountRepo
	hasher   *fakeHasher
	codes    *fakeCodeStore
	cooldown *fakeCooldown
	attempts *fakeAttempts
	mail     *fakeMail
	audit    *fakeAuditor
}

func newSvcForTest(t *testing.T) (*Service, *testDeps) {
	t.Helper()

	d := &testDeps{
		accounts: newFakeAccountRepo(),
		hasher:   &fakeHasher{},
		codes:    newFakeCodeStore(),
		cooldown: newFakeCooldown(),
		attempts: newFakeAttempts(),
		mail:     &fakeMail{},
		audit:    &fakeAuditor{},
	}
	svc := NewService(d.accounts, d.hasher, d.codes, d.cooldown, d.mail, Config{
		CodeTTL:  3 * time.Minute,
		Cooldown: time.Minute,
	}).WithAudit(d.audit).WithAttemptLimit(d.attempts, 0)
	svc.newCode = func() (string, error) { return "123456", nil }
	svc.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return svc, d
}

func requireErrCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error code=%q, got nil", code)
	}
	if !domain.Is(err, code) {
		t.Fatalf("expected code=%q, got err=%v", code, err)
	}
}

var errBoom = errors.New("boom")
