package models

import (
	"time"

	"gorm.io/gorm"
)

// 交易类型（kind）：决定该笔记录归属的类别类型
const (
	KindExpense = "expense"
	KindIncome  = "income"
)

// Transaction 交易记录模型（支出/收入统一为一张表，由所属类别的 type 区分）
type Transaction struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	UserID      uint           `json:"user_id" gorm:"index;not null"`
	Amount      float64        `json:"amount" gorm:"type:decimal(10,2);not null"`
	Description string         `json:"description" gorm:"size:255;not null"`
	Date        time.Time      `json:"date" gorm:"not null;index"`
	CategoryID  uint           `json:"category_id" gorm:"index;not null"`
	Notes       *string        `json:"notes" gorm:"size:1000"`
	ReceiptURL  *string        `json:"receipt_url" gorm:"size:255"` // 仅支出记录使用
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
	Category    Category       `json:"category" gorm:"foreignKey:CategoryID"`
	User        User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (Transaction) TableName() string {
	return "transactions"
}
