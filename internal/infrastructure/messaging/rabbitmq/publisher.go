package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/account"
)

const (
	DefaultMailQueue = "mail"

	// Upper bound to wait for Return / Confirm when ctx carries no deadline.
	publishWait = 2 * time.Second

	// A mandatory Return may be dispatched right after the Ack.
	returnGrace = 50 * time.Millisecond
)

// Publisher sends mail requests straight to a durable queue through the
// default exchange, with publisher confirms and mandatory routing.
type Publisher struct {
	url   string
	queue string

	mu sync.Mutex

	conn *amqp.Connection
	ch   *amqp.Channel

	confirmCh <-chan amqp.Confirmation
	returnCh  <-chan amqp.Return
}

func NewPublisher(url, queue string) (*Publisher, error) {
	if queue == "" {
		queue = DefaultMailQueue
	}
	p := &Publisher{
		url:   url,
		queue: queue,
	}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.resetConn()
	return nil
}

// ---- account.MailPublisher ----

func (p *Publisher) PublishVerifyCode(ctx context.Context, req account.MailRequest) error {
	return p.publishJSON(ctx, req)
}

// ---- internal ----

func (p *Publisher) connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("rabbitmq channel: %w", err)
	}

	// Declare the mail queue (idempotent).
	if _, err := ch.QueueDeclare(
		p.queue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("queue declare: %w", err)
	}

	// Enable confirm mode.
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("confirm mode: %w", err)
	}

	p.confirmCh = ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	p.returnCh = ch.NotifyReturn(make(chan amqp.Return, 1))

	p.conn = conn
	p.ch = ch
	return nil
}

func (p *Publisher) ensureConnected() error {
	if p.conn != nil && !p.conn.IsClosed() && p.ch != nil && !p.ch.IsClosed() {
		return nil
	}
	p.resetConn()
	return p.connect()
}

func (p *Publisher) publishJSON(ctx context.Context, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	// Ensure there is a deadline to avoid blocking forever.
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, publishWait)
		defer cancel()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureConnected(); err != nil {
		return err
	}

	// Drain any stale confirm / return messages to avoid mixing results.
drain:
	for {
		select {
		case <-p.confirmCh:
		case <-p.returnCh:
		default:
			break drain
		}
	}

	// default exchange routes by queue name; mandatory = true
	if err := p.ch.PublishWithContext(
		ctx,
		"",
		p.queue,
		true,  // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	); err != nil {
		// Publish call itself failed (channel/connection level error).
		p.resetConn()
		return fmt.Errorf("publish failed: %w", err)
	}

	// Wait for Return / Confirm / Timeout.
	select {
	case ret := <-p.returnCh:
		return unroutable(p.queue, ret)

	case conf := <-p.confirmCh:
		select {
		case ret := <-p.returnCh:
			return unroutable(p.queue, ret)
		case <-time.After(returnGrace):
		}

		if !conf.Ack {
			return fmt.Errorf("rabbitmq nack: queue=%s deliveryTag=%d", p.queue, conf.DeliveryTag)
		}
		// Ack means the broker has accepted the message (and persisted it for durable queues).
		return nil

	case <-ctx.Done():
		// confirm state of this channel is unknown now
		p.resetConn()
		return fmt.Errorf("rabbitmq publish timeout: queue=%s: %w", p.queue, ctx.Err())
	}
}

func unroutable(queue string, ret amqp.Return) error {
	return fmt.Errorf(
		"rabbitmq unroutable: queue=%s code=%d text=%s",
		queue, ret.ReplyCode, ret.ReplyText,
	)
}

func (p *Publisher) resetConn() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}
