package api

import (
	"time"

	"moneybook/middleware"
	"moneybook/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SummaryHandler 统计处理器
type SummaryHandler struct {
	db *gorm.DB
}

// NewSummaryHandler 创建统计处理器
func NewSummaryHandler(db *gorm.DB) *SummaryHandler {
	return &SummaryHandler{db: db}
}

// SummaryResponse 收支汇总返回
type SummaryResponse struct {
	TotalExpense float64 `json:"total_expense" example:"123.45"` // 支出总和
	TotalIncome  float64 `json:"total_income" example:"5000.00"` // 收入总和
	Balance      float64 `json:"balance" example:"4876.55"`      // 结余 = 收入 - 支出
}

// CategoryStat 单个类别的统计
type CategoryStat struct {
	CategoryID   uint    `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Color        string  `json:"color"`
	Icon         string  `json:"icon"`
	Total        float64 `json:"total"`
	Count        int64   `json:"count"`
	Percentage   float64 `json:"percentage"` // 占该类型总额的百分比
}

// scopeByRange 按用户、类型和可选时间范围构造统计查询
// 时间格式非法时忽略该条件，与列表接口的严格校验不同，统计口径宽松
func (h *SummaryHandler) scopeByRange(userID uint, kind, startStr, endStr string) *gorm.DB {
	q := h.db.Model(&models.Transaction{}).
		Joins("JOIN categories ON categories.id = transactions.category_id").
		Where("transactions.user_id = ? AND categories.type = ?", userID, kind)

	if startStr != "" {
		if t, err := time.ParseInLocation("2006-01-02", startStr, time.Local); err == nil {
			q = q.Where("transactions.date >= ?", t)
		}
	}
	if endStr != "" {
		if t, err := time.ParseInLocation("2006-01-02", endStr, time.Local); err == nil {
			t = t.Add(24*time.Hour - time.Second)
			q = q.Where("transactions.date <= ?", t)
		}
	}
	return q
}

// GetSummary 获取收支汇总
// @Summary 获取收支汇总
// @Description 按时间范围统计当前用户的支出总和、收入总和与结余。不传 start_date/end_date 则统计全部时间
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Param start_date query string false "开始日期 (YYYY-MM-DD)"
// @Param end_date query string false "结束日期 (YYYY-MM-DD)，含当天"
// @Success 200 {object} Response{data=SummaryResponse} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/statistics/summary [get]
func (h *SummaryHandler) GetSummary(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	startStr := c.Query("start_date")
	endStr := c.Query("end_date")

	var totalExpense, totalIncome float64
	h.scopeByRange(userID, models.KindExpense, startStr, endStr).
		Select("COALESCE(SUM(transactions.amount), 0)").Scan(&totalExpense)
	h.scopeByRange(userID, models.KindIncome, startStr, endStr).
		Select("COALESCE(SUM(transactions.amount), 0)").Scan(&totalIncome)

	Success(c, SummaryResponse{
		TotalExpense: totalExpense,
		TotalIncome:  totalIncome,
		Balance:      totalIncome - totalExpense,
	})
}

// GetCategoryStats 按类别统计
// @Summary 按类别统计
// @Description 按时间范围统计当前用户各类别的金额合计、笔数及占比，按金额降序排列
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Param type query string false "交易类型，默认 expense" Enums(expense, income)
// @Param start_date query string false "开始日期 (YYYY-MM-DD)"
// @Param end_date query string false "结束日期 (YYYY-MM-DD)，含当天"
// @Success 200 {object} Response{data=[]CategoryStat} "获取成功"
// @Failure 400 {object} Response "类型错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/statistics/categories [get]
func (h *SummaryHandler) GetCategoryStats(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	kind := c.Query("type")
	if kind == "" {
		kind = models.KindExpense
	}
	if kind != models.KindExpense && kind != models.KindIncome {
		BadRequest(c, "类别类型必须是 expense 或 income")
		return
	}

	startStr := c.Query("start_date")
	endStr := c.Query("end_date")

	var stats []CategoryStat
	err := h.scopeByRange(userID, kind, startStr, endStr).
		Select(`transactions.category_id AS category_id,
			categories.name AS category_name,
			categories.color AS color,
			categories.icon AS icon,
			COALESCE(SUM(transactions.amount), 0) AS total,
			COUNT(transactions.id) AS count`).
		Group("transactions.category_id, categories.name, categories.color, categories.icon").
		Order("total DESC").
		Scan(&stats).Error
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "统计失败"))
		return
	}

	var grand float64
	for _, s := range stats {
		grand += s.Total
	}
	if grand > 0 {
		for i := range stats {
			stats[i].Percentage = stats[i].Total / grand * 100
		}
	}

	Success(c, stats)
}
