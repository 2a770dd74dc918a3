package usecase

import (
	"context"
	"time"
)

const (
	EventOrderCreated       = "order.created"
	EventOrderAmended       = "order.amended"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderEvent はコミット後に外へ流す注文の変化。
type OrderEvent struct {
	Type       string    `json:"type"`
	OrderID    int64     `json:"order_id"`
	Status     string    `json:"status"`
	DineType   string    `json:"dine_type"`
	TableNo    *string   `json:"table_no"`
	Total      int64     `json:"total"`
	OccurredAt time.Time `json:"occurred_at"`
}

type EventPublisher interface {
	Publish(ctx context.Context, ev OrderEvent) error
}

type Clock interface {
	Now() time.Time
}
