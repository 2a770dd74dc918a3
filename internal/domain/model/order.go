package model

import (
	"errors"
	"strings"
	"time"

	"orderdesk/internal/domain/pricing"
)

type OrderStatus string

const (
	OrderStatusOpen   OrderStatus = "open"
	OrderStatusServed OrderStatus = "served"
	OrderStatusPaid   OrderStatus = "paid"
)

// ParseTargetStatus はステータス更新で指定できる値（served / paid）だけを受け付ける。
func ParseTargetStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(strings.ToLower(strings.TrimSpace(s))) {
	case OrderStatusServed:
		return OrderStatusServed, true
	case OrderStatusPaid:
		return OrderStatusPaid, true
	}
	return "", false
}

type DineType string

const (
	DineTypeDineIn  DineType = "dine-in"
	DineTypeTakeout DineType = "takeout"
)

// 旧フロントのラベル（內用 / 外帶）も受け付ける。空は外帶扱い。
func ParseDineType(s string) (DineType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "takeout", "take-out", "take_out", "外帶":
		return DineTypeTakeout, true
	case "dine-in", "dine_in", "dinein", "內用":
		return DineTypeDineIn, true
	}
	return "", false
}

var (
	ErrNoItems     = errors.New("items required")
	ErrInvalidItem = errors.New("invalid item")
)

type Order struct {
	ID        int64       `gorm:"primaryKey;autoIncrement"`
	Status    OrderStatus `gorm:"type:varchar(20);not null;index"`
	Note      string      `gorm:"type:text;not null;default:''"`
	TableNo   *string     `gorm:"type:varchar(32)"`
	DineType  DineType    `gorm:"type:varchar(20);not null"`
	Subtotal  int64       `gorm:"not null"`
	Discount  int64       `gorm:"not null"`
	Allowance int64       `gorm:"not null"`
	Total     int64       `gorm:"not null"`
	Count     int64       `gorm:"not null"`
	CreatedAt time.Time   `gorm:"not null"`
	StartedAt *time.Time
	PaidAt    *time.Time
	Items     []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// 注文作成の入力。金額のポインタはクライアント指定があるときだけ入る。
type NewOrderParams struct {
	DineType      DineType
	TableNo       *string
	Note          string
	Items         []OrderItem
	Subtotal      *int64
	Discount      *int64
	Allowance     *int64
	Total         *int64
	ApplyDiscount bool
	Now           time.Time
}

// NewOrder は open 状態の注文を組み立てる。
// クライアント指定の金額は検算せずにそのまま採用する。
func NewOrder(p NewOrderParams) (Order, error) {
	if len(p.Items) == 0 {
		return Order{}, ErrNoItems
	}

	items := make([]OrderItem, 0, len(p.Items))
	lines := make([]pricing.Line, 0, len(p.Items))
	for _, it := range p.Items {
		if it.UnitPrice < 0 || it.Quantity < 0 {
			return Order{}, ErrInvalidItem
		}
		it.ID = 0
		it.OrderID = 0
		items = append(items, it)
		lines = append(lines, pricing.Line{UnitPrice: it.UnitPrice, Quantity: it.Quantity})
	}

	subtotal := pricing.SumSubtotal(lines)
	if p.Subtotal != nil {
		subtotal = *p.Subtotal
	}
	discount := pricing.PercentDiscount(subtotal, p.ApplyDiscount)
	if p.Discount != nil {
		discount = *p.Discount
	}
	var allowance int64
	if p.Allowance != nil {
		allowance = *p.Allowance
	}
	total := pricing.ComputeTotal(subtotal, discount, allowance)
	if p.Total != nil {
		total = *p.Total
	}

	dine := p.DineType
	if dine == "" {
		dine = DineTypeTakeout
	}

	started := p.Now
	return Order{
		Status:    OrderStatusOpen,
		Note:      p.Note,
		TableNo:   normalizeTableNo(p.TableNo),
		DineType:  dine,
		Subtotal:  subtotal,
		Discount:  discount,
		Allowance: allowance,
		Total:     total,
		Count:     pricing.SumQuantity(lines),
		CreatedAt: p.Now,
		StartedAt: &started,
		Items:     items,
	}, nil
}

// OccupiedTable は内用でテーブル番号がある場合にその番号を返す。
func (o Order) OccupiedTable() (string, bool) {
	if o.DineType != DineTypeDineIn || o.TableNo == nil {
		return "", false
	}
	return *o.TableNo, true
}

// 金額修正。nil のフィールドは変更しない。
type AmountPatch struct {
	Subtotal  *int64
	Discount  *int64
	Allowance *int64
	Total     *int64

	// Total が nil でも再計算せずに現在値を残す
	KeepTotal bool
}

func (o *Order) Amend(p AmountPatch) {
	if p.Subtotal != nil {
		o.Subtotal = *p.Subtotal
	}
	if p.Discount != nil {
		o.Discount = *p.Discount
	}
	if p.Allowance != nil {
		o.Allowance = *p.Allowance
	}

	switch {
	case p.Total != nil:
		o.Total = *p.Total
	case p.KeepTotal:
	default:
		o.Total = pricing.ComputeTotal(o.Subtotal, o.Discount, o.Allowance)
	}
}

// Advance は現在の状態を見ずに遷移させる。paid は毎回 paid_at を打ち直す。
// TODO: paid -> served や paid の打ち直しを弾くかどうか運用側と決める（今は素通し）。
func (o *Order) Advance(status OrderStatus, now time.Time) {
	o.Status = status
	if status == OrderStatusPaid {
		paid := now
		o.PaidAt = &paid
	}
}

func normalizeTableNo(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	return &s
}
