package usecase

import (
	"context"
	"errors"
	"time"

	"orderdesk/internal/domain/model"
	"orderdesk/internal/domain/pricing"
	repo "orderdesk/internal/repository"

	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

type OrderUsecase struct {
	tx     repo.TransactionManager
	events EventPublisher
	clock  Clock
	log    *zap.Logger
}

func NewOrderUsecase(tx repo.TransactionManager, events EventPublisher, clock Clock, log *zap.Logger) *OrderUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderUsecase{tx: tx, events: events, clock: clock, log: log}
}

type CreateOrderItemInput struct {
	Name      string
	UnitPrice int64
	Quantity  int64
	Details   string
}

type CreateOrderInput struct {
	DineType string
	TableNo  *string
	Note     string
	Items    []CreateOrderItemInput

	//クライアント指定があればそのまま使う
	Subtotal  *int64
	Discount  *int64
	Allowance *int64
	Total     *int64

	ApplyDiscount bool
}

// JSONから来た生の値。nil は未指定。
type AmendAmountsInput struct {
	Subtotal  any
	Discount  any
	Allowance any
	Total     any
}

type UpdateStatusInput struct {
	Status string
}

type ListOrdersInput struct {
	Status string
	Limit  int
}

type OrderItemOutput struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int64  `json:"quantity"`
	Details   string `json:"details"`
}

type OrderOutput struct {
	ID        int64             `json:"id"`
	CreatedAt *time.Time        `json:"created_at"`
	Status    string            `json:"status"`
	Note      string            `json:"note"`
	Subtotal  int64             `json:"subtotal"`
	Discount  int64             `json:"discount"`
	Allowance int64             `json:"allowance"`
	Total     int64             `json:"total"`
	Count     int64             `json:"count"`
	TableNo   *string           `json:"table_no"`
	DineType  string            `json:"dine_type"`
	StartedAt *time.Time        `json:"started_at"`
	PaidAt    *time.Time        `json:"paid_at"`
	Items     []OrderItemOutput `json:"items"`
}

func (u *OrderUsecase) CreateOrder(ctx context.Context, in CreateOrderInput) (OrderOutput, error) {
	if len(in.Items) == 0 {
		return OrderOutput{}, NewValidationError("items required")
	}
	dine, ok := model.ParseDineType(in.DineType)
	if !ok {
		return OrderOutput{}, NewValidationError("invalid dine_type")
	}

	items := make([]model.OrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, model.OrderItem{
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Details:   it.Details,
		})
	}

	order, err := model.NewOrder(model.NewOrderParams{
		DineType:      dine,
		TableNo:       in.TableNo,
		Note:          in.Note,
		Items:         items,
		Subtotal:      in.Subtotal,
		Discount:      in.Discount,
		Allowance:     in.Allowance,
		Total:         in.Total,
		ApplyDiscount: in.ApplyDiscount,
		Now:           u.clock.Now(),
	})
	switch {
	case errors.Is(err, model.ErrNoItems):
		return OrderOutput{}, NewValidationError("items required")
	case errors.Is(err, model.ErrInvalidItem):
		return OrderOutput{}, NewValidationError("invalid item")
	case err != nil:
		return OrderOutput{}, NewInternalError("internal error")
	}

	var created model.Order

	//空席チェックとINSERTは同じトランザクション。同時作成は一意インデックスで弾く
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if table, ok := order.OccupiedTable(); ok {
			_, found, err := r.Orders().FindOpenByTable(ctx, table)
			if err != nil {
				return u.dbError("find open order by table", err)
			}
			if found {
				return NewConflictError("table occupied")
			}
		}

		created, err = r.Orders().Create(ctx, order)
		if errors.Is(err, repo.ErrTableOccupied) {
			return NewConflictError("table occupied")
		}
		if err != nil {
			return u.dbError("create order", err)
		}
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	u.publish(ctx, EventOrderCreated, created)
	return toOrderOutput(created), nil
}

func (u *OrderUsecase) AmendAmounts(ctx context.Context, orderID int64, in AmendAmountsInput) (OrderOutput, error) {
	var updated model.Order

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFoundError("not found")
		}
		if err != nil {
			return u.dbError("find order", err)
		}

		o.Amend(toAmountPatch(in))

		if err := r.Orders().Update(ctx, o); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewNotFoundError("not found")
			}
			return u.dbError("update order amounts", err)
		}
		updated = o
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	u.publish(ctx, EventOrderAmended, updated)
	return toOrderOutput(updated), nil
}

// TODO: 変換できない金額は今は黙って無視している。400 で返すかはフロントと相談。
func toAmountPatch(in AmendAmountsInput) model.AmountPatch {
	var p model.AmountPatch
	p.Subtotal = parseAmountPtr(in.Subtotal)
	p.Discount = parseAmountPtr(in.Discount)
	p.Allowance = parseAmountPtr(in.Allowance)

	//total 指定ありで変換失敗なら、再計算もせず現在値のまま
	if in.Total != nil {
		p.Total = parseAmountPtr(in.Total)
		p.KeepTotal = p.Total == nil
	}
	return p
}

func parseAmountPtr(v any) *int64 {
	n, ok := pricing.ParseAmount(v)
	if !ok {
		return nil
	}
	return &n
}

func (u *OrderUsecase) AdvanceStatus(ctx context.Context, orderID int64, in UpdateStatusInput) (OrderOutput, error) {
	status, ok := model.ParseTargetStatus(in.Status)
	if !ok {
		return OrderOutput{}, NewValidationError("invalid status")
	}

	var updated model.Order

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFoundError("not found")
		}
		if err != nil {
			return u.dbError("find order", err)
		}

		//現在のステータスは見ない（paid -> served も通る）
		o.Advance(status, u.clock.Now())

		if err := r.Orders().Update(ctx, o); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewNotFoundError("not found")
			}
			return u.dbError("update order status", err)
		}
		updated = o
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	u.publish(ctx, EventOrderStatusChanged, updated)
	return toOrderOutput(updated), nil
}

func (u *OrderUsecase) ListOrders(ctx context.Context, in ListOrdersInput) ([]OrderOutput, error) {
	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().List(ctx, repo.OrderListFilter{Status: in.Status, Limit: in.Limit})
		if err != nil {
			return u.dbError("list orders", err)
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			outs = append(outs, toOrderOutput(o))
		}
		return nil
	})
	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

func (u *OrderUsecase) GetOrder(ctx context.Context, orderID int64) (OrderOutput, error) {
	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFoundError("not found")
		}
		if err != nil {
			return u.dbError("find order", err)
		}
		out = toOrderOutput(o)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func (u *OrderUsecase) dbError(op string, err error) error {
	u.log.Error("db error", zap.String("op", op), zap.Error(err))
	return NewInternalError("db error")
}

// コミット済みなので送信失敗はログだけ残す
func (u *OrderUsecase) publish(ctx context.Context, eventType string, o model.Order) {
	if u.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	ev := OrderEvent{
		Type:       eventType,
		OrderID:    o.ID,
		Status:     string(o.Status),
		DineType:   string(o.DineType),
		TableNo:    o.TableNo,
		Total:      o.Total,
		OccurredAt: u.clock.Now(),
	}
	if err := u.events.Publish(ctx, ev); err != nil {
		u.log.Warn("publish order event failed",
			zap.String("type", eventType),
			zap.Int64("order_id", o.ID),
			zap.Error(err),
		)
	}
}

func toOrderOutput(o model.Order) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(o.Items))
	for _, it := range o.Items {
		outItems = append(outItems, OrderItemOutput{
			ID:        it.ID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Details:   it.Details,
		})
	}

	var createdAt *time.Time
	if !o.CreatedAt.IsZero() {
		t := o.CreatedAt
		createdAt = &t
	}

	return OrderOutput{
		ID:        o.ID,
		CreatedAt: createdAt,
		Status:    string(o.Status),
		Note:      o.Note,
		Subtotal:  o.Subtotal,
		Discount:  o.Discount,
		Allowance: o.Allowance,
		Total:     o.Total,
		Count:     o.Count,
		TableNo:   o.TableNo,
		DineType:  string(o.DineType),
		StartedAt: o.StartedAt,
		PaidAt:    o.PaidAt,
		Items:     outItems,
	}
}
