package service

import (
	"strings"

	"moneybook/errs"
	"moneybook/models"

	"gorm.io/gorm"
)

// CategoryService 类别服务（类别只在请求时查库，不做缓存）
type CategoryService struct {
	db *gorm.DB
}

// NewCategoryService 创建类别服务
func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

// CreateDefaultCategories 为新用户创建默认类别
// 注册时在同一事务内调用一次
func CreateDefaultCategories(tx *gorm.DB, userID uint) error {
	defaults := models.GetDefaultCategories()
	cats := make([]models.Category, 0, len(defaults))
	for _, d := range defaults {
		cats = append(cats, models.Category{
			UserID:    userID,
			Name:      d.Name,
			Type:      d.Type,
			Color:     d.Color,
			Icon:      d.Icon,
			IsDefault: true,
		})
	}
	return tx.Create(&cats).Error
}

// List 按类型列出用户类别，名称升序
func (s *CategoryService) List(userID uint, kind string) ([]models.Category, error) {
	if kind != models.KindExpense && kind != models.KindIncome {
		return nil, errs.Validation("类别类型必须是 expense 或 income")
	}
	var list []models.Category
	if err := s.db.Where("user_id = ? AND type = ?", userID, kind).
		Order("name ASC, id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Create 新增自定义类别，同一用户同一类型下名称唯一
func (s *CategoryService) Create(userID uint, name, kind, color, icon string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.Validation("类别名称不能为空")
	}
	if len([]rune(name)) > 50 {
		return nil, errs.Validation("类别名称不能超过50个字符")
	}
	if kind != models.KindExpense && kind != models.KindIncome {
		return nil, errs.Validation("类别类型必须是 expense 或 income")
	}

	// 唯一性
	var existing models.Category
	if err := s.db.Where("user_id = ? AND type = ? AND name = ?", userID, kind, name).
		First(&existing).Error; err == nil {
		return nil, errs.Conflict("类别名称已存在")
	}

	if color == "" {
		color = "#64748b" // 默认灰色
	}
	cat := models.Category{UserID: userID, Name: name, Type: kind, Color: color, Icon: icon}
	if err := s.db.Create(&cat).Error; err != nil {
		return nil, err
	}
	return &cat, nil
}
