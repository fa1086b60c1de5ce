package api

import (
	"moneybook/middleware"
	"moneybook/models"
	"moneybook/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CategoryHandler 类别处理器
type CategoryHandler struct {
	svc *service.CategoryService
}

// NewCategoryHandler 创建类别处理器
func NewCategoryHandler(db *gorm.DB) *CategoryHandler {
	return &CategoryHandler{svc: service.NewCategoryService(db)}
}

// CreateCategoryRequest 新增类别请求
type CreateCategoryRequest struct {
	Name  string `json:"name" binding:"required" example:"宠物"`
	Type  string `json:"type" binding:"required" example:"expense"` // expense 或 income
	Color string `json:"color" example:"#f59e0b"`
	Icon  string `json:"icon" example:"🐱"`
}

// List 查询类别列表
// @Summary 查询类别列表
// @Description 按类型返回当前用户的类别（含注册时初始化的默认类别）
// @Tags 类别
// @Produce json
// @Security BearerAuth
// @Param type query string true "类别类型" Enums(expense, income)
// @Success 200 {object} Response{data=[]models.Category} "查询成功"
// @Failure 400 {object} Response "类别类型错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	kind := c.Query("type")
	if kind == "" {
		kind = models.KindExpense
	}

	list, err := h.svc.List(userID, kind)
	if err != nil {
		HandleError(c, err, "查询失败")
		return
	}
	Success(c, list)
}

// Create 新增自定义类别
// @Summary 新增自定义类别
// @Description 同一用户同一类型下类别名称不可重复
// @Tags 类别
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateCategoryRequest true "类别信息"
// @Success 200 {object} Response{data=models.Category} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 409 {object} Response "类别名称已存在"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	cat, err := h.svc.Create(userID, req.Name, req.Type, req.Color, req.Icon)
	if err != nil {
		HandleError(c, err, "创建失败")
		return
	}
	SuccessWithMessage(c, "创建成功", cat)
}
