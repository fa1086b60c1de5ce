package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"moneybook/errs"
	"moneybook/models"
	"moneybook/validation"

	"gorm.io/gorm"
)

// TransactionRequest 创建/更新交易的请求体
// 字段用 Optional 包装以区分「未提供」与「显式 null」，部分更新只落库显式提供的字段
type TransactionRequest struct {
	Amount      validation.Optional[json.Number] `json:"amount" swaggertype:"number"`
	Description validation.Optional[string]      `json:"description" swaggertype:"string"`
	Date        validation.Optional[string]      `json:"date" swaggertype:"string"`
	CategoryID  validation.Optional[uint]        `json:"category_id" swaggertype:"integer"`
	Notes       validation.Optional[string]      `json:"notes" swaggertype:"string"`
	ReceiptURL  validation.Optional[string]      `json:"receipt_url" swaggertype:"string"` // 仅支出有效
}

// TransactionService 交易服务
// 支出与收入共用同一实现，由 kind（expense/income）区分：
// 所有操作以调用方的 userID 为准做归属隔离，类别类型必须与 kind 一致
type TransactionService struct {
	db   *gorm.DB
	kind string
}

// NewTransactionService 创建交易服务，kind 取 models.KindExpense / models.KindIncome
func NewTransactionService(db *gorm.DB, kind string) *TransactionService {
	return &TransactionService{db: db, kind: kind}
}

// Kind 返回服务处理的交易类型
func (s *TransactionService) Kind() string {
	return s.kind
}

// kindLabel 错误信息里使用的类型名称
func (s *TransactionService) kindLabel() string {
	if s.kind == models.KindIncome {
		return "收入"
	}
	return "支出"
}

// 时间解析支持的格式
var dateLayouts = []string{"2006-01-02 15:04:05", "2006-01-02"}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errs.Validation("时间格式错误，应为: 2006-01-02 15:04:05")
}

// resolveCategory 校验类别归属与类型，返回规范化的类别ID
// 只读，恰好访问一次数据库
func (s *TransactionService) resolveCategory(raw validation.Optional[uint], userID uint, required bool) (validation.Optional[uint], error) {
	if required && (!raw.Present() || raw.Value == 0) {
		return validation.None[uint](), errs.Validation("请选择类别")
	}

	if !raw.Present() {
		return validation.None[uint](), nil
	}

	var cat models.Category
	err := s.db.Where("id = ? AND user_id = ? AND type = ?", raw.Value, userID, s.kind).
		First(&cat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return validation.None[uint](), errs.Validation(
				fmt.Sprintf("类别必须是%s类型且属于当前用户", s.kindLabel()))
		}
		return validation.None[uint](), err
	}
	return validation.Some(cat.ID), nil
}

// List 查询当前用户的交易列表
func (s *TransactionService) List(userID uint, q *TransactionQuery) ([]models.Transaction, *Pagination, error) {
	f, err := buildFilter(q, userID, s.kind)
	if err != nil {
		return nil, nil, err
	}

	query := f.scope(s.db)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	items := make([]models.Transaction, 0, f.Limit)
	if err := query.Preload("Category").
		Order("transactions.date DESC, transactions.id DESC").
		Offset(f.Offset()).Limit(f.Limit).
		Find(&items).Error; err != nil {
		return nil, nil, err
	}

	return items, f.Pagination(total), nil
}

// Get 获取单条交易，按 {id, userID, 类别类型} 三重过滤
// 其他用户的记录与类型不符的记录一律按不存在处理
func (s *TransactionService) Get(userID, id uint) (*models.Transaction, error) {
	var tx models.Transaction
	err := s.db.Preload("Category").
		Joins("JOIN categories ON categories.id = transactions.category_id").
		Where("transactions.id = ? AND transactions.user_id = ? AND categories.type = ?",
			id, userID, s.kind).
		First(&tx).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("记录不存在")
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// Create 创建交易记录，date 省略时默认当前时间
func (s *TransactionService) Create(userID uint, req *TransactionRequest) (*models.Transaction, error) {
	amount, err := validation.ValidateAmount(req.Amount, true)
	if err != nil {
		return nil, err
	}
	description, err := validation.ValidateDescription(req.Description, true)
	if err != nil {
		return nil, err
	}
	notes, err := validation.ValidateNotes(req.Notes)
	if err != nil {
		return nil, err
	}
	categoryID, err := s.resolveCategory(req.CategoryID, userID, true)
	if err != nil {
		return nil, err
	}

	date := time.Now()
	if req.Date.Present() && req.Date.Value != "" {
		if date, err = parseDate(req.Date.Value); err != nil {
			return nil, err
		}
	}

	tx := models.Transaction{
		UserID:      userID,
		Amount:      amount.Value,
		Description: description.Value,
		Date:        date,
		CategoryID:  categoryID.Value,
	}
	if notes.Present() {
		v := notes.Value
		tx.Notes = &v
	}
	if s.kind == models.KindExpense && req.ReceiptURL.Present() {
		if v := strings.TrimSpace(req.ReceiptURL.Value); v != "" {
			tx.ReceiptURL = &v
		}
	}

	if err := s.db.Create(&tx).Error; err != nil {
		return nil, err
	}

	// 返回带类别的完整记录
	if err := s.db.Preload("Category").First(&tx, tx.ID).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

// Update 部分更新：只落库请求中显式出现的字段
// 未出现的字段保持不变；notes 传空字符串表示清空；空请求体是合法的 no-op
func (s *TransactionService) Update(userID, id uint, req *TransactionRequest) (*models.Transaction, error) {
	existing, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	if req.Amount.Set {
		amount, err := validation.ValidateAmount(req.Amount, false)
		if err != nil {
			return nil, err
		}
		if amount.Present() {
			updates["amount"] = amount.Value
		}
	}

	if req.Description.Set {
		description, err := validation.ValidateDescription(req.Description, false)
		if err != nil {
			return nil, err
		}
		if description.Present() {
			updates["description"] = description.Value
		}
	}

	if req.Date.Present() && req.Date.Value != "" {
		t, err := parseDate(req.Date.Value)
		if err != nil {
			return nil, err
		}
		updates["date"] = t
	}

	if req.CategoryID.Set {
		categoryID, err := s.resolveCategory(req.CategoryID, userID, false)
		if err != nil {
			return nil, err
		}
		if categoryID.Present() {
			updates["category_id"] = categoryID.Value
		}
	}

	if req.Notes.Set {
		notes, err := validation.ValidateNotes(req.Notes)
		if err != nil {
			return nil, err
		}
		if notes.Set {
			if notes.Null {
				updates["notes"] = nil
			} else {
				updates["notes"] = notes.Value
			}
		}
	}

	if s.kind == models.KindExpense && req.ReceiptURL.Set {
		if v := strings.TrimSpace(req.ReceiptURL.Value); !req.ReceiptURL.Null && v != "" {
			updates["receipt_url"] = v
		} else {
			updates["receipt_url"] = nil
		}
	}

	if len(updates) > 0 {
		if err := s.db.Model(existing).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	// 重新读取更新后的记录
	return s.Get(userID, id)
}

// Delete 删除交易记录（软删除）
func (s *TransactionService) Delete(userID, id uint) error {
	existing, err := s.Get(userID, id)
	if err != nil {
		return err
	}
	return s.db.Delete(existing).Error
}
