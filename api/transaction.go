package api

import (
	"strconv"

	"moneybook/middleware"
	"moneybook/models"
	"moneybook/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TransactionHandler 交易记录处理器
// 支出与收入共用同一套处理逻辑，由内部服务的 kind 区分
type TransactionHandler struct {
	svc *service.TransactionService
}

// NewExpenseHandler 创建支出记录处理器
func NewExpenseHandler(db *gorm.DB) *TransactionHandler {
	return &TransactionHandler{svc: service.NewTransactionService(db, models.KindExpense)}
}

// NewIncomeHandler 创建收入记录处理器
func NewIncomeHandler(db *gorm.DB) *TransactionHandler {
	return &TransactionHandler{svc: service.NewTransactionService(db, models.KindIncome)}
}

// TransactionListResponse 交易列表响应
type TransactionListResponse struct {
	List       []models.Transaction `json:"list"`
	Pagination *service.Pagination  `json:"pagination"`
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		BadRequest(c, "无效的ID")
		return 0, false
	}
	return uint(id), true
}

// List 查询交易记录列表
// @Summary 查询交易记录列表
// @Description 分页查询当前用户的交易记录，支持按时间、类别、金额范围和描述关键字过滤
// @Tags 交易记录
// @Produce json
// @Security BearerAuth
// @Param start_date query string false "开始日期" example("2024-01-01")
// @Param end_date query string false "结束日期（含当天）" example("2024-12-31")
// @Param category_id query string false "类别ID"
// @Param min_amount query string false "最小金额（含）"
// @Param max_amount query string false "最大金额（含）"
// @Param search query string false "描述关键字（不区分大小写）"
// @Param page query int false "页码，默认 1"
// @Param limit query int false "每页数量，默认 50"
// @Success 200 {object} Response{data=TransactionListResponse} "查询成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/expenses [get]
// @Router /api/v1/incomes [get]
func (h *TransactionHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var q service.TransactionQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	items, pagination, err := h.svc.List(userID, &q)
	if err != nil {
		HandleError(c, err, "查询失败")
		return
	}

	Success(c, TransactionListResponse{List: items, Pagination: pagination})
}

// Get 获取单条交易记录
// @Summary 获取单条交易记录
// @Description 按ID获取当前用户的交易记录，他人记录按不存在处理
// @Tags 交易记录
// @Produce json
// @Security BearerAuth
// @Param id path int true "记录ID"
// @Success 200 {object} Response{data=models.Transaction} "获取成功"
// @Failure 404 {object} Response "记录不存在"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/expenses/{id} [get]
// @Router /api/v1/incomes/{id} [get]
func (h *TransactionHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	tx, err := h.svc.Get(userID, id)
	if err != nil {
		HandleError(c, err, "查询失败")
		return
	}
	Success(c, tx)
}

// Create 创建交易记录
// @Summary 创建交易记录
// @Description 创建一条交易记录，date 省略时默认当前时间
// @Tags 交易记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.TransactionRequest true "交易信息"
// @Success 200 {object} Response{data=models.Transaction} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/expenses [post]
// @Router /api/v1/incomes [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req service.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	tx, err := h.svc.Create(userID, &req)
	if err != nil {
		HandleError(c, err, "创建失败")
		return
	}
	SuccessWithMessage(c, "创建成功", tx)
}

// Update 更新交易记录
// @Summary 更新交易记录
// @Description 部分更新，只修改请求体中显式出现的字段；notes 传空字符串表示清空备注
// @Tags 交易记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "记录ID"
// @Param request body service.TransactionRequest true "要更新的字段"
// @Success 200 {object} Response{data=models.Transaction} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 404 {object} Response "记录不存在"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/expenses/{id} [put]
// @Router /api/v1/incomes/{id} [put]
func (h *TransactionHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req service.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	tx, err := h.svc.Update(userID, id, &req)
	if err != nil {
		HandleError(c, err, "更新失败")
		return
	}
	SuccessWithMessage(c, "更新成功", tx)
}

// Delete 删除交易记录
// @Summary 删除交易记录
// @Description 删除当前用户的交易记录（软删除）
// @Tags 交易记录
// @Produce json
// @Security BearerAuth
// @Param id path int true "记录ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "记录不存在"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/expenses/{id} [delete]
// @Router /api/v1/incomes/{id} [delete]
func (h *TransactionHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(userID, id); err != nil {
		HandleError(c, err, "删除失败")
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}
