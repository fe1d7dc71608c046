package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

var errNotConfigured = errors.New("redis verification code store not configured")

// CodeStore keeps verification codes under verify:email:data:<purpose>:<email>.
type CodeStore struct {
	rdb    *goredis.Client
	prefix string
}

func NewCodeStore(c *Client) *CodeStore {
	var rdb *goredis.Client
	if c != nil {
		rdb = c.rdb
	}
	return &CodeStore{
		rdb:    rdb,
		prefix: "verify:email:data:",
	}
}

func (s *CodeStore) Save(ctx context.Context, purpose domain.VerifyPurpose, email, code string, ttl time.Duration) error {
	email = strings.TrimSpace(email)
	code = strings.TrimSpace(code)
	if email == "" {
		return domain.ErrMissingField("email")
	}
	if code == "" {
		return domain.ErrMissingField("code")
	}
	if ttl <= 0 {
		return domain.ErrMissingField("ttl")
	}
	if s.rdb == nil {
		return domain.ErrRedisUnavailable(errNotConfigured)
	}

	// a newer code replaces the previous one and restarts its TTL
	if err := s.rdb.Set(ctx, s.key(purpose, email), code, ttl).Err(); err != nil {
		return domain.ErrRedisUnavailable(err)
	}
	return nil
}

// Get returns ("", nil) when no code is stored or it already expired.
func (s *CodeStore) Get(ctx context.Context, purpose domain.VerifyPurpose, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", domain.ErrMissingField("email")
	}
	if s.rdb == nil {
		return "", domain.ErrRedisUnavailable(errNotConfigured)
	}

	v, err := s.rdb.Get(ctx, s.key(purpose, email)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", nil
		}
		return "", domain.ErrRedisUnavailable(err)
	}
	return strings.TrimSpace(v), nil
}

func (s *CodeStore) Delete(ctx context.Context, purpose domain.VerifyPurpose, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.ErrMissingField("email")
	}
	if s.rdb == nil {
		return domain.ErrRedisUnavailable(errNotConfigured)
	}
	if err := s.rdb.Del(ctx, s.key(purpose, email)).Err(); err != nil {
		return domain.ErrRedisUnavailable(err)
	}
	return nil
}

func (s *CodeStore) key(purpose domain.VerifyPurpose, email string) string {
	// purpose is a validated constant ("register"/"reset")
	return s.prefix + string(purpose) + ":" + email
}
