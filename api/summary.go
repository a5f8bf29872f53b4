package api

import (
	"time"

	"ledger/database"
	"ledger/middleware"
	"ledger/models"

	"github.com/gin-gonic/gin"
)

// IncomeExpenseSummaryResponse 支出/收入汇总返回
type IncomeExpenseSummaryResponse struct {
	TotalExpense float64 `json:"total_expense" example:"123.45"` // 支出总和
	TotalIncome  float64 `json:"total_income" example:"5000.00"` // 收入总和
	Balance      float64 `json:"balance" example:"4876.55"`      // 结余（收入-支出）
}

// GetIncomeExpenseSummary 获取支出和收入汇总
// @Summary 获取支出/收入汇总
// @Description 按时间范围统计当前用户的支出总和、收入总和与结余。不传 start_time/end_time 则统计全部时间。
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Param start_time query string false "开始时间 (YYYY-MM-DD)，例如 2024-01-01"
// @Param end_time query string false "结束时间 (YYYY-MM-DD)，例如 2024-12-31"
// @Success 200 {object} Response{data=IncomeExpenseSummaryResponse} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/statistics/summary [get]
func (h *ExpenseHandler) GetIncomeExpenseSummary(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	startTimeStr := c.Query("start_time")
	endTimeStr := c.Query("end_time")

	expenseQ := database.DB.Model(&models.Expense{}).Where("user_id = ?", userID)
	incomeQ := database.DB.Model(&models.Income{}).Where("user_id = ?", userID)

	if startTimeStr != "" {
		if t, err := time.ParseInLocation("2006-01-02", startTimeStr, time.Local); err == nil {
			expenseQ = expenseQ.Where("expense_time >= ?", t)
			incomeQ = incomeQ.Where("income_time >= ?", t)
		}
	}
	if endTimeStr != "" {
		if t, err := time.ParseInLocation("2006-01-02", endTimeStr, time.Local); err == nil {
			t = t.Add(24*time.Hour - time.Second)
			expenseQ = expenseQ.Where("expense_time <= ?", t)
			incomeQ = incomeQ.Where("income_time <= ?", t)
		}
	}

	var totalExpense float64
	var totalIncome float64
	expenseQ.Select("COALESCE(SUM(amount), 0)").Scan(&totalExpense)
	incomeQ.Select("COALESCE(SUM(amount), 0)").Scan(&totalIncome)

	Success(c, IncomeExpenseSummaryResponse{
		TotalExpense: totalExpense,
		TotalIncome:  totalIncome,
		Balance:      totalIncome - totalExpense,
	})
}

// GetStatistics 获取消费统计
// @Summary 获取消费统计
// @Description 获取指定时间范围内的消费统计，按类别分组，适合绘制饼图
// @Tags 统计
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param start_time query string false "开始时间 (2024-01-01)"
// @Param end_time query string false "结束时间 (2024-12-31)"
// @Success 200 {object} Response "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/expenses/statistics [get]
func (h *ExpenseHandler) GetStatistics(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	startTimeStr := c.Query("start_time")
	endTimeStr := c.Query("end_time")

	query := database.DB.Model(&models.Expense{}).Where("user_id = ?", userID)
	statQuery := database.DB.Model(&models.Expense{}).Where("user_id = ?", userID)

	if startTimeStr != "" {
		if t, err := time.ParseInLocation("2006-01-02", startTimeStr, time.Local); err == nil {
			query = query.Where("expense_time >= ?", t)
			statQuery = statQuery.Where("expense_time >= ?", t)
		}
	}
	if endTimeStr != "" {
		if t, err := time.ParseInLocation("2006-01-02", endTimeStr, time.Local); err == nil {
			t = t.Add(24*time.Hour - time.Second)
			query = query.Where("expense_time <= ?", t)
			statQuery = statQuery.Where("expense_time <= ?", t)
		}
	}

	// 总金额
	var totalAmount float64
	query.Select("COALESCE(SUM(amount), 0)").Scan(&totalAmount)

	// 按类别统计
	type CategoryStat struct {
		Category   string  `json:"category"`
		Total      float64 `json:"total"`
		Count      int64   `json:"count"`
		Percentage float64 `json:"percentage"`
	}
	var categoryStats []CategoryStat

	statQuery.
		Select("category, SUM(amount) as total, COUNT(*) as count").
		Group("category").
		Order("total DESC").
		Scan(&categoryStats)

	for i := range categoryStats {
		if totalAmount > 0 {
			categoryStats[i].Percentage = (categoryStats[i].Total / totalAmount) * 100
		}
	}

	Success(c, gin.H{
		"total_amount":   totalAmount,
		"category_stats": categoryStats,
	})
}

// GetIncomeStatistics 获取收入统计
// @Summary 获取收入统计
// @Description 获取指定时间范围内的收入统计，按类型分组
// @Tags 统计
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param start_time query string false "开始时间 (2024-01-01)"
// @Param end_time query string false "结束时间 (2024-12-31)"
// @Success 200 {object} Response "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/incomes/statistics [get]
func (h *IncomeHandler) GetIncomeStatistics(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	startTimeStr := c.Query("start_time")
	endTimeStr := c.Query("end_time")

	query := database.DB.Model(&models.Income{}).Where("user_id = ?", userID)
	statQuery := database.DB.Model(&models.Income{}).Where("user_id = ?", userID)

	if startTimeStr != "" {
		if t, err := time.ParseInLocation("2006-01-02", startTimeStr, time.Local); err == nil {
			query = query.Where("income_time >= ?", t)
			statQuery = statQuery.Where("income_time >= ?", t)
		}
	}
	if endTimeStr != "" {
		if t, err := time.ParseInLocation("2006-01-02", endTimeStr, time.Local); err == nil {
			t = t.Add(24*time.Hour - time.Second)
			query = query.Where("income_time <= ?", t)
			statQuery = statQuery.Where("income_time <= ?", t)
		}
	}

	var totalAmount float64
	query.Select("COALESCE(SUM(amount), 0)").Scan(&totalAmount)

	type TypeStat struct {
		Type  string  `json:"type"`
		Total float64 `json:"total"`
		Count int64   `json:"count"`
	}
	var typeStats []TypeStat

	statQuery.
		Select("type, SUM(amount) as total, COUNT(*) as count").
		Group("type").
		Order("total DESC").
		Scan(&typeStats)

	Success(c, gin.H{
		"total_amount": totalAmount,
		"type_stats":   typeStats,
	})
}

// MonthlyTrendItem 月度收支趋势项
type MonthlyTrendItem struct {
	Month        string  `json:"month" example:"2024-01"`
	TotalExpense float64 `json:"total_expense"`
	TotalIncome  float64 `json:"total_income"`
}

// GetMonthlyTrend 获取月度收支趋势
// @Summary 获取月度收支趋势
// @Description 按月统计当前用户的支出与收入总和，适合绘制折线图。默认统计最近12个月。
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Param year query string false "年份（如 2024），不传则统计最近12个月"
// @Success 200 {object} Response{data=[]MonthlyTrendItem} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/statistics/monthly [get]
func (h *ExpenseHandler) GetMonthlyTrend(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var startTime, endTime time.Time
	if year := c.Query("year"); year != "" {
		if t, err := time.ParseInLocation("2006", year, time.Local); err == nil {
			startTime = t
			endTime = t.AddDate(1, 0, 0).Add(-time.Second)
		}
	}
	if startTime.IsZero() {
		now := time.Now()
		endTime = now
		startTime = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local).AddDate(0, -11, 0)
	}

	type monthTotal struct {
		Month string
		Total float64
	}

	var expenseTotals []monthTotal
	database.DB.Model(&models.Expense{}).
		Select("DATE_FORMAT(expense_time, '%Y-%m') as month, SUM(amount) as total").
		Where("user_id = ? AND expense_time >= ? AND expense_time <= ?", userID, startTime, endTime).
		Group("month").
		Scan(&expenseTotals)

	var incomeTotals []monthTotal
	database.DB.Model(&models.Income{}).
		Select("DATE_FORMAT(income_time, '%Y-%m') as month, SUM(amount) as total").
		Where("user_id = ? AND income_time >= ? AND income_time <= ?", userID, startTime, endTime).
		Group("month").
		Scan(&incomeTotals)

	// 合并两侧结果，按月份对齐
	merged := make(map[string]*MonthlyTrendItem)
	for _, e := range expenseTotals {
		merged[e.Month] = &MonthlyTrendItem{Month: e.Month, TotalExpense: e.Total}
	}
	for _, i := range incomeTotals {
		if item, ok := merged[i.Month]; ok {
			item.TotalIncome = i.Total
		} else {
			merged[i.Month] = &MonthlyTrendItem{Month: i.Month, TotalIncome: i.Total}
		}
	}

	// 按时间顺序输出完整月份序列，没有数据的月份补零
	items := make([]MonthlyTrendItem, 0, 12)
	for cur := time.Date(startTime.Year(), startTime.Month(), 1, 0, 0, 0, 0, time.Local); !cur.After(endTime); cur = cur.AddDate(0, 1, 0) {
		month := cur.Format("2006-01")
		if item, ok := merged[month]; ok {
			items = append(items, *item)
		} else {
			items = append(items, MonthlyTrendItem{Month: month})
		}
	}

	Success(c, items)
}
