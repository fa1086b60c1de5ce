package api

import (
	"strings"

	"moneybook/middleware"
	"moneybook/models"
	"moneybook/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AdminHandler 后台管理处理器，所有接口需管理员权限
type AdminHandler struct {
	db *gorm.DB
}

// NewAdminHandler 创建后台管理处理器
func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

// AdminUserQuery 用户列表查询参数
type AdminUserQuery struct {
	Search string `form:"search" example:"test"`
	Page   int    `form:"page" example:"1"`
	Limit  int    `form:"limit" example:"20"`
}

// AdminUserDetail 用户详情（含记录统计）
type AdminUserDetail struct {
	models.User
	TransactionCount int64 `json:"transaction_count"`
	CategoryCount    int64 `json:"category_count"`
}

// AdminStatsResponse 全局统计
type AdminStatsResponse struct {
	UserCount        int64   `json:"user_count"`
	TransactionCount int64   `json:"transaction_count"`
	TotalExpense     float64 `json:"total_expense"`
	TotalIncome      float64 `json:"total_income"`
}

// SetAdminRequest 设置管理员请求
type SetAdminRequest struct {
	IsAdmin bool `json:"is_admin"`
}

// ListUsers 用户列表
// @Summary 用户列表
// @Description 分页查询用户，支持按用户名或邮箱模糊搜索
// @Tags 后台管理
// @Produce json
// @Security BearerAuth
// @Param search query string false "用户名或邮箱关键字"
// @Param page query int false "页码，默认 1"
// @Param limit query int false "每页数量，默认 20"
// @Success 200 {object} Response{data=PageResponse} "查询成功"
// @Failure 401 {object} Response "未授权"
// @Failure 403 {object} Response "权限不足"
// @Router /api/v1/admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var q AdminUserQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}

	query := h.db.Model(&models.User{})
	if s := strings.TrimSpace(q.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	var users []models.User
	if err := query.Order("id ASC").
		Offset((q.Page - 1) * q.Limit).Limit(q.Limit).
		Find(&users).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, PageResponse{
		List: users,
		Pagination: service.Pagination{
			Page:  q.Page,
			Limit: q.Limit,
			Total: total,
			Pages: int((total + int64(q.Limit) - 1) / int64(q.Limit)),
		},
	})
}

// GetUser 用户详情
// @Summary 用户详情
// @Description 获取用户信息及其交易、类别数量
// @Tags 后台管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Success 200 {object} Response{data=AdminUserDetail} "获取成功"
// @Failure 404 {object} Response "用户不存在"
// @Failure 403 {object} Response "权限不足"
// @Router /api/v1/admin/users/{id} [get]
func (h *AdminHandler) GetUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var user models.User
	if err := h.db.First(&user, id).Error; err != nil {
		NotFound(c, "用户不存在")
		return
	}

	detail := AdminUserDetail{User: user}
	h.db.Model(&models.Transaction{}).Where("user_id = ?", id).Count(&detail.TransactionCount)
	h.db.Model(&models.Category{}).Where("user_id = ?", id).Count(&detail.CategoryCount)

	Success(c, detail)
}

// SetAdmin 设置/取消管理员
// @Summary 设置/取消管理员
// @Description 修改用户的管理员标记，不允许修改自己
// @Tags 后台管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Param request body SetAdminRequest true "是否为管理员"
// @Success 200 {object} Response "设置成功"
// @Failure 400 {object} Response "不能修改自己的管理员权限"
// @Failure 404 {object} Response "用户不存在"
// @Failure 403 {object} Response "权限不足"
// @Router /api/v1/admin/users/{id}/admin [put]
func (h *AdminHandler) SetAdmin(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if id == middleware.GetCurrentUserID(c) {
		BadRequest(c, "不能修改自己的管理员权限")
		return
	}

	var req SetAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	var user models.User
	if err := h.db.First(&user, id).Error; err != nil {
		NotFound(c, "用户不存在")
		return
	}

	if err := h.db.Model(&user).Update("is_admin", req.IsAdmin).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "设置失败"))
		return
	}
	SuccessWithMessage(c, "设置成功", nil)
}

// DeleteUser 删除用户
// @Summary 删除用户
// @Description 软删除用户及其全部交易与类别，不允许删除自己
// @Tags 后台管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Success 200 {object} Response "删除成功"
// @Failure 400 {object} Response "不能删除自己"
// @Failure 404 {object} Response "用户不存在"
// @Failure 403 {object} Response "权限不足"
// @Router /api/v1/admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if id == middleware.GetCurrentUserID(c) {
		BadRequest(c, "不能删除自己")
		return
	}

	var user models.User
	if err := h.db.First(&user, id).Error; err != nil {
		NotFound(c, "用户不存在")
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.Transaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Category{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}

// GetStats 全局统计
// @Summary 全局统计
// @Description 返回用户数、交易笔数及全站收支总额
// @Tags 后台管理
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=AdminStatsResponse} "获取成功"
// @Failure 403 {object} Response "权限不足"
// @Router /api/v1/admin/stats [get]
func (h *AdminHandler) GetStats(c *gin.Context) {
	var stats AdminStatsResponse

	h.db.Model(&models.User{}).Count(&stats.UserCount)
	h.db.Model(&models.Transaction{}).Count(&stats.TransactionCount)

	h.db.Model(&models.Transaction{}).
		Joins("JOIN categories ON categories.id = transactions.category_id").
		Where("categories.type = ?", models.KindExpense).
		Select("COALESCE(SUM(transactions.amount), 0)").Scan(&stats.TotalExpense)
	h.db.Model(&models.Transaction{}).
		Joins("JOIN categories ON categories.id = transactions.category_id").
		Where("categories.type = ?", models.KindIncome).
		Select("COALESCE(SUM(transactions.amount), 0)").Scan(&stats.TotalIncome)

	Success(c, stats)
}
