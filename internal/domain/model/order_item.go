package model

type OrderItem struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	OrderID   int64  `gorm:"not null;index"`
	Name      string `gorm:"type:varchar(255);not null"`
	UnitPrice int64  `gorm:"not null"`
	Quantity  int64  `gorm:"not null"`
	Details   string `gorm:"type:text;not null;default:''"`
}
