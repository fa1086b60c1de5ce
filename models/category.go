package models

import (
	"time"

	"gorm.io/gorm"
)

// Category 类别模型（每个用户独立一套，type 区分支出/收入）
type Category struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"index;not null"`
	Name      string         `json:"name" gorm:"size:50;not null"`
	Type      string         `json:"type" gorm:"size:20;not null;index"`   // expense/income
	Color     string         `json:"color" gorm:"size:20;default:#64748b"` // 颜色代码，如 #ef4444
	Icon      string         `json:"icon" gorm:"size:10"`
	IsDefault bool           `json:"is_default" gorm:"default:false"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
	User      User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (Category) TableName() string {
	return "categories"
}

// DefaultCategory 新用户注册时初始化的默认类别
type DefaultCategory struct {
	Name  string
	Type  string
	Color string
	Icon  string
}

// GetDefaultCategories 获取默认类别集合（注册时为每个新用户创建一次）
func GetDefaultCategories() []DefaultCategory {
	return []DefaultCategory{
		{Name: "餐饮", Type: KindExpense, Color: "#22c55e", Icon: "🍔"},
		{Name: "交通", Type: KindExpense, Color: "#3b82f6", Icon: "🚗"},
		{Name: "住房", Type: KindExpense, Color: "#8b5cf6", Icon: "🏠"},
		{Name: "娱乐", Type: KindExpense, Color: "#f59e0b", Icon: "🎬"},
		{Name: "教育", Type: KindExpense, Color: "#06b6d4", Icon: "📚"},
		{Name: "医疗", Type: KindExpense, Color: "#ef4444", Icon: "💊"},
		{Name: "服饰", Type: KindExpense, Color: "#f97316", Icon: "👗"},
		{Name: "其他", Type: KindExpense, Color: "#9ca3af", Icon: "🛍️"},
		{Name: "工资", Type: KindIncome, Color: "#10b981", Icon: "💰"},
		{Name: "奖金", Type: KindIncome, Color: "#3b82f6", Icon: "🎁"},
		{Name: "理财", Type: KindIncome, Color: "#a855f7", Icon: "📈"},
		{Name: "兼职", Type: KindIncome, Color: "#f59e0b", Icon: "💼"},
		{Name: "其他", Type: KindIncome, Color: "#64748b", Icon: "🧾"},
	}
}
