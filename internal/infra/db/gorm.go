package db

import (
	"time"

	"orderdesk/internal/config"
	"orderdesk/internal/domain/model"
	"orderdesk/internal/observability"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// 同じテーブルに open の内用注文は1件まで
const openTableIndexSQL = `CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_open_dine_in_table
ON orders (table_no) WHERE status = 'open' AND dine_type = 'dine-in'`

// Connect はDBに接続して *gorm.DB を返す。
func Connect(cfg config.Config, logger *zap.Logger) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(cfg.DSN()), GormConfig(logger))
}

// 一意制約違反を gorm.ErrDuplicatedKey に変換させる
func GormConfig(logger *zap.Logger) *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(observability.NewPrintfAdapter(logger), gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.Order{}, &model.OrderItem{}); err != nil {
		return err
	}
	return db.Exec(openTableIndexSQL).Error
}
