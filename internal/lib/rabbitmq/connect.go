package rabbitmq

import (
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// Connect подключается к брокеру, повторяя попытку retries раз с паузой delay.
func Connect(connection string, retries int, delay time.Duration) (*amqp.Connection, error) {
	const op = "rabbitmq.Connect"
	var conn *amqp.Connection
	var err error

	if retries < 1 {
		retries = 1
	}
	for range retries {
		conn, err = amqp.Dial(connection)
		if err == nil {
			return conn, nil
		}
		time.Sleep(delay)
	}

	return nil, fmt.Errorf("%s: %w", op, err)
}

// SetupChannel открывает канал и объявляет обменники с очередями.
func SetupChannel(conn *amqp.Connection, exchanges []ExchangeConfig) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, ex := range exchanges {
		err = ch.ExchangeDeclare(
			ex.Name,
			ex.Kind,
			true,
			false,
			false,
			false,
			nil,
		)
		if err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("%s: failed to declare exchange %s: %w", op, ex.Name, err)
		}

		for _, q := range ex.Queues {
			_, err := ch.QueueDeclare(
				q.QueueName,
				true,
				false,
				false,
				false,
				nil,
			)
			if err != nil {
				_ = ch.Close()
				return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, q.QueueName, err)
			}

			err = ch.QueueBind(
				q.QueueName,
				q.RoutingKey,
				ex.Name,
				false,
				nil,
			)
			if err != nil {
				_ = ch.Close()
				return nil, fmt.Errorf("%s: failed to bind queue %s with routing key %s: %w", op, q.QueueName, q.RoutingKey, err)
			}
		}
	}

	return ch, nil
}
