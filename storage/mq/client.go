package mq

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"DueBell/config"
)

// 队列拓扑
const (
	ExchangeReminders  = "reminders"
	QueueDispatch      = "reminders.dispatch"
	RoutingKeyDispatch = "reminders.dispatch"
)

var (
	conn     *amqp.Connection
	connOnce sync.Once
	connErr  error
)

func Init() error {
	connOnce.Do(func() {
		url := config.Cfg.GetRabbitMQURL()

		conn, connErr = amqp.Dial(url)
		if connErr != nil {
			return
		}

		connErr = declareTopology()
	})

	return connErr
}

func Connection() *amqp.Connection {
	return conn
}

// declareTopology 声明 exchange / queue / binding，幂等
func declareTopology() error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel for topology: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(
		ExchangeReminders,
		"direct",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(
		QueueDispatch,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := ch.QueueBind(QueueDispatch, RoutingKeyDispatch, ExchangeReminders, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	return nil
}

func Close(ctx context.Context) error {
	if conn == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- conn.Close()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}
