package service

import (
	"math"
	"strconv"
	"strings"
	"time"

	"moneybook/errs"
	"moneybook/models"

	"gorm.io/gorm"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// TransactionQuery 交易列表查询参数
type TransactionQuery struct {
	StartDate  string `form:"start_date" example:"2024-01-01"`
	EndDate    string `form:"end_date" example:"2024-12-31"`
	CategoryID string `form:"category_id" example:"3"`
	MinAmount  string `form:"min_amount" example:"10"`
	MaxAmount  string `form:"max_amount" example:"50"`
	Search     string `form:"search" example:"咖啡"`
	Page       int    `form:"page" example:"1"`
	Limit      int    `form:"limit" example:"50"`
}

// Pagination 分页信息
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// transactionFilter 规范化后的查询条件
// user_id 与 categories.type 恒由服务端注入，客户端不可控制，
// 防止跨用户、跨类型的数据泄露
type transactionFilter struct {
	UserID     uint
	Kind       string
	StartDate  *time.Time
	EndDate    *time.Time
	CategoryID *uint
	MinAmount  *float64
	MaxAmount  *float64
	Search     string
	Page       int
	Limit      int
}

// buildFilter 把松散的查询参数规范化为查询条件
// 日期与金额格式错误直接报 400；起止顺序颠倒不报错，只会查出空结果
func buildFilter(q *TransactionQuery, userID uint, kind string) (*transactionFilter, error) {
	f := &transactionFilter{UserID: userID, Kind: kind, Page: q.Page, Limit: q.Limit}
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = defaultPageSize
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}

	if q.StartDate != "" {
		t, err := time.ParseInLocation("2006-01-02", q.StartDate, time.Local)
		if err != nil {
			return nil, errs.Validation("开始时间格式错误，应为: 2006-01-02")
		}
		f.StartDate = &t
	}
	if q.EndDate != "" {
		t, err := time.ParseInLocation("2006-01-02", q.EndDate, time.Local)
		if err != nil {
			return nil, errs.Validation("结束时间格式错误，应为: 2006-01-02")
		}
		// 包含结束日期当天
		t = t.Add(24*time.Hour - time.Second)
		f.EndDate = &t
	}

	if q.CategoryID != "" {
		id, err := strconv.ParseUint(q.CategoryID, 10, 32)
		if err != nil {
			return nil, errs.Validation("无效的类别ID")
		}
		v := uint(id)
		f.CategoryID = &v
	}

	if q.MinAmount != "" {
		v, err := strconv.ParseFloat(q.MinAmount, 64)
		if err != nil {
			return nil, errs.Validation("最小金额必须是有效数字")
		}
		f.MinAmount = &v
	}
	if q.MaxAmount != "" {
		v, err := strconv.ParseFloat(q.MaxAmount, 64)
		if err != nil {
			return nil, errs.Validation("最大金额必须是有效数字")
		}
		f.MaxAmount = &v
	}

	f.Search = strings.TrimSpace(q.Search)
	return f, nil
}

// scope 生成查询条件，所有条件取 AND
func (f *transactionFilter) scope(db *gorm.DB) *gorm.DB {
	query := db.Model(&models.Transaction{}).
		Joins("JOIN categories ON categories.id = transactions.category_id").
		Where("transactions.user_id = ? AND categories.type = ?", f.UserID, f.Kind)

	if f.StartDate != nil {
		query = query.Where("transactions.date >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		query = query.Where("transactions.date <= ?", *f.EndDate)
	}
	if f.CategoryID != nil {
		query = query.Where("transactions.category_id = ?", *f.CategoryID)
	}
	if f.MinAmount != nil {
		query = query.Where("transactions.amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		query = query.Where("transactions.amount <= ?", *f.MaxAmount)
	}
	if f.Search != "" {
		// 大小写不敏感的子串匹配
		query = query.Where("LOWER(transactions.description) LIKE ?",
			"%"+strings.ToLower(f.Search)+"%")
	}
	return query
}

// Offset 计算偏移量（page 从 1 开始）
func (f *transactionFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// Pagination 根据总数生成分页信息
func (f *transactionFilter) Pagination(total int64) *Pagination {
	return &Pagination{
		Page:  f.Page,
		Limit: f.Limit,
		Total: total,
		Pages: int(math.Ceil(float64(total) / float64(f.Limit))),
	}
}
