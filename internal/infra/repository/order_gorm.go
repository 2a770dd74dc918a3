package repository

import (
	"context"
	"errors"

	"orderdesk/internal/domain/model"
	repo "orderdesk/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

// 明細は id 順（作成順）で読む
func withItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("id asc")
	})
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	err := withItems(r.db.WithContext(ctx)).Where("id = ?", orderID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) FindOpenByTable(ctx context.Context, tableNo string) (model.Order, bool, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Where("status = ? AND dine_type = ? AND table_no = ?", model.OrderStatusOpen, model.DineTypeDineIn, tableNo).
		Order("id asc").
		First(&o).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, false, nil
	}
	if err != nil {
		return model.Order{}, false, err
	}
	return o, true, nil
}

func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (model.Order, error) {
	//明細も一緒に INSERT される
	if err := r.db.WithContext(ctx).Create(&order).Error; err != nil {
		if isUniqueViolation(err) {
			return model.Order{}, repo.ErrTableOccupied
		}
		return model.Order{}, err
	}
	return order, nil
}

func (r *OrderGormRepository) Update(ctx context.Context, order model.Order) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{
			"status":    order.Status,
			"subtotal":  order.Subtotal,
			"discount":  order.Discount,
			"allowance": order.Allowance,
			"total":     order.Total,
			"paid_at":   order.PaidAt,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *OrderGormRepository) List(ctx context.Context, f repo.OrderListFilter) ([]model.Order, error) {
	q := withItems(r.db.WithContext(ctx).Model(&model.Order{}))

	//status 絞り込み
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	orders := []model.Order{}
	if err := q.Order("id desc").Limit(f.EffectiveLimit()).Find(&orders).Error; err != nil {
		return []model.Order{}, err
	}
	return orders, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
