//go:build integration

package infra

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/account"
)

// EnsureMailQueue declares the queue with the same arguments the publisher uses,
// otherwise RabbitMQ answers 406 PRECONDITION_FAILED.
func EnsureMailQueue(conn *amqp.Connection, queue string) error {
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false,
		nil,
	)
	return err
}

// PurgeMailQueue drops leftovers from earlier runs.
func PurgeMailQueue(conn *amqp.Connection, queue string) error {
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	_, err = ch.QueuePurge(queue, false)
	return err
}

// NextMail polls the queue until a mail request arrives or wait elapses.
func NextMail(ctx context.Context, conn *amqp.Connection, queue string, wait time.Duration) (account.MailRequest, bool, error) {
	ch, err := conn.Channel()
	if err != nil {
		return account.MailRequest{}, false, err
	}
	defer ch.Close()

	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	t := time.NewTicker(100 * time.Millisecond)
	defer t.Stop()

	for {
		msg, ok, err := ch.Get(queue, true)
		if err != nil {
			return account.MailRequest{}, false, err
		}
		if ok {
			var req account.MailRequest
			if err := json.Unmarshal(msg.Body, &req); err != nil {
				return account.MailRequest{}, false, err
			}
			return req, true, nil
		}

		select {
		case <-ctx.Done():
			return account.MailRequest{}, false, nil
		case <-t.C:
		}
	}
}
