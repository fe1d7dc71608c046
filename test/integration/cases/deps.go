//go:build integration

package cases

import (
	"context"
	"database/sql"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/account"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	pg "github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/db/postgres"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/redis"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/security"
	itinfra "github.com/baechuer/real-time-ressys/services/account-service/test/integration/infra"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type Deps struct {
	Env itinfra.Env

	DB   *sql.DB
	RDB  *goredis.Client
	AMQP *amqp.Connection

	Accounts *pg.AccountRepo
	Hasher   *security.BcryptHasher
	Pub      *rabbitmq.Publisher
	Redis    *redis.Client

	Svc *account.Service
}

func MustNewDeps(t *testing.T, env itinfra.Env) *Deps {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	require.NoError(t, itinfra.WaitPostgres(ctx, env.PostgresDSN))
	require.NoError(t, itinfra.WaitRedis(ctx, env.RedisAddr))
	require.NoError(t, itinfra.WaitRabbit(ctx, env.RabbitURL))

	// --- Postgres ---
	db, err := sql.Open("pgx", env.PostgresDSN)
	require.NoError(t, err)
	require.NoError(t, db.PingContext(ctx))
	require.NoError(t, pg.EnsureSchema(ctx, db))

	// --- Redis ---
	rdb := goredis.NewClient(&goredis.Options{Addr: env.RedisAddr})
	require.NoError(t, rdb.Ping(ctx).Err())
	rc := redis.New(env.RedisAddr, "", 0)

	// --- RabbitMQ ---
	conn, err := amqp.Dial(env.RabbitURL)
	require.NoError(t, err)
	require.NoError(t, itinfra.EnsureMailQueue(conn, env.MailQueue))
	require.NoError(t, itinfra.PurgeMailQueue(conn, env.MailQueue))

	pub, err := rabbitmq.NewPublisher(env.RabbitURL, env.MailQueue)
	require.NoError(t, err)

	accounts := pg.NewAccountRepo(db)
	hasher := security.NewBcryptHasher(4)

	limiter := redis.NewFixedWindowLimiter(rc)
	svc := account.NewService(
		accounts,
		hasher,
		redis.NewCodeStore(rc),
		limiter,
		pub,
		account.Config{CodeTTL: 3 * time.Minute, Cooldown: time.Minute},
	).WithAttemptLimit(limiter, account.DefaultMaxCodeAttempts)

	return &Deps{
		Env: env,
		DB:  db, RDB: rdb, AMQP: conn,
		Accounts: accounts,
		Hasher:   hasher,
		Pub:      pub,
		Redis:    rc,
		Svc:      svc,
	}
}

// AskCode requests a code and returns it as delivered on the mail queue.
func (d *Deps) AskCode(t *testing.T, ctx context.Context, purpose, email, addr string) string {
	t.Helper()

	p, err := domain.ParseVerifyPurpose(purpose)
	require.NoError(t, err)
	require.NoError(t, d.Svc.RequestVerificationCode(ctx, p, email, addr))

	mail, ok, err := itinfra.NextMail(ctx, d.AMQP, d.Env.MailQueue, 3*time.Second)
	require.NoError(t, err)
	require.True(t, ok, "no mail request on %s", d.Env.MailQueue)
	require.Equal(t, email, mail.Email)
	require.Equal(t, purpose, string(mail.Purpose))
	require.Len(t, mail.Code, 6)
	return mail.Code
}

func (d *Deps) Close(t *testing.T) {
	t.Helper()
	if d.Pub != nil {
		_ = d.Pub.Close()
	}
	if d.AMQP != nil {
		_ = d.AMQP.Close()
	}
	if d.Redis != nil {
		_ = d.Redis.Close()
	}
	if d.RDB != nil {
		_ = d.RDB.Close()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
}
