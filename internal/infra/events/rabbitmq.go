package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"orderdesk/internal/usecase"

	amqp "github.com/rabbitmq/amqp091-go"
)

// amqpChannel は使う分だけ切り出した amqp.Channel
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher は注文イベントを topic exchange に流す（publisher confirms あり）。
type Publisher struct {
	conn     *amqp.Connection
	ch       amqpChannel
	acks     <-chan amqp.Confirmation
	exchange string

	mu sync.Mutex
}

func Dial(url string, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("enable confirms: %w", err)
	}
	acks := ch.NotifyPublish(make(chan amqp.Confirmation, 1))

	return &Publisher{conn: conn, ch: ch, acks: acks, exchange: exchange}, nil
}

// routing key はイベント種別そのまま（order.created など）
func (p *Publisher) Publish(ctx context.Context, ev usecase.OrderEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.PublishWithContext(ctx, p.exchange, ev.Type, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Timestamp:    time.Now().UTC(),
		Type:         ev.Type,
		Body:         body,
	}); err != nil {
		return err
	}

	select {
	case conf, ok := <-p.acks:
		if !ok {
			return errors.New("rabbitmq channel closed")
		}
		if !conf.Ack {
			return errors.New("publish NACK from broker")
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Publisher) Close() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// Nop はイベント送信を無効にしたとき用
type Nop struct{}

func (Nop) Publish(context.Context, usecase.OrderEvent) error { return nil }
