package repository

import (
	"context"

	"orderdesk/internal/domain/model"
)

const (
	DefaultOrderListLimit = 200
	MaxOrderListLimit     = 1000
)

type OrderListFilter struct {
	Status string
	Limit  int
}

// 未指定(0以下)は200、上限は1000。
func (f OrderListFilter) EffectiveLimit() int {
	if f.Limit <= 0 {
		return DefaultOrderListLimit
	}
	if f.Limit > MaxOrderListLimit {
		return MaxOrderListLimit
	}
	return f.Limit
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)

	//そのテーブルで open の内用注文を探す
	FindOpenByTable(ctx context.Context, tableNo string) (model.Order, bool, error)

	//注文と明細をまとめて保存し、採番済みの注文を返す
	Create(ctx context.Context, order model.Order) (model.Order, error)

	//ステータス・金額・paid_at を保存（明細は触らない）
	Update(ctx context.Context, order model.Order) error

	//id の降順
	List(ctx context.Context, f OrderListFilter) ([]model.Order, error)
}
