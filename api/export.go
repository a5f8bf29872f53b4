package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"ledger/database"
	"ledger/middleware"
	"ledger/models"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportHandler 导出处理器
type ExportHandler struct{}

// NewExportHandler 创建导出处理器
func NewExportHandler() *ExportHandler {
	return &ExportHandler{}
}

// parseExportRange 解析导出的时间范围参数，非法时直接写入 400 响应
func parseExportRange(c *gin.Context) (start, end time.Time, startStr, endStr string, ok bool) {
	startStr = c.Query("start_time")
	endStr = c.Query("end_time")

	if startStr == "" || endStr == "" {
		BadRequest(c, "请提供开始时间和结束时间")
		return
	}

	start, err := time.ParseInLocation("2006-01-02", startStr, time.Local)
	if err != nil {
		BadRequest(c, "开始时间格式错误，应为: 2006-01-02")
		return
	}

	end, err = time.ParseInLocation("2006-01-02", endStr, time.Local)
	if err != nil {
		BadRequest(c, "结束时间格式错误，应为: 2006-01-02")
		return
	}
	end = end.Add(24*time.Hour - time.Second)
	ok = true
	return
}

// ExportCSV 导出消费记录为 CSV
// @Summary 导出消费记录
// @Description 根据时间范围导出消费记录为 CSV 文件
// @Tags 导出
// @Accept json
// @Produce text/csv
// @Security BearerAuth
// @Param start_time query string true "开始时间 (2024-01-01)"
// @Param end_time query string true "结束时间 (2024-12-31)"
// @Success 200 {file} file "CSV 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	startTime, endTime, startStr, endStr, ok := parseExportRange(c)
	if !ok {
		return
	}

	var expenses []models.Expense
	if err := database.DB.Where("user_id = ? AND expense_time >= ? AND expense_time <= ?", userID, startTime, endTime).
		Order("expense_time DESC").
		Find(&expenses).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询数据失败"))
		return
	}

	// 生成 CSV
	buf := new(bytes.Buffer)
	// 添加 BOM 以支持 Excel 中文显示
	buf.WriteString("\xEF\xBB\xBF")

	writer := csv.NewWriter(buf)

	headers := []string{"ID", "金额", "类别", "描述", "消费时间", "创建时间"}
	if err := writer.Write(headers); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}

	for _, expense := range expenses {
		row := []string{
			fmt.Sprintf("%d", expense.ID),
			fmt.Sprintf("%.2f", expense.Amount),
			expense.Category,
			expense.Description,
			expense.ExpenseTime.Format("2006-01-02 15:04:05"),
			expense.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := writer.Write(row); err != nil {
			InternalError(c, "生成 CSV 失败")
			return
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}

	filename := fmt.Sprintf("expenses_%s_%s.csv", startStr, endStr)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Length", fmt.Sprintf("%d", buf.Len()))

	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportJSON 导出消费和收入记录为 JSON
// @Summary 导出记录为 JSON
// @Description 根据时间范围导出消费和收入记录为 JSON 格式，附带汇总信息
// @Tags 导出
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param start_time query string true "开始时间 (2024-01-01)"
// @Param end_time query string true "结束时间 (2024-12-31)"
// @Success 200 {object} Response "导出成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/json [get]
func (h *ExportHandler) ExportJSON(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	startTime, endTime, startStr, endStr, ok := parseExportRange(c)
	if !ok {
		return
	}

	var expenses []models.Expense
	if err := database.DB.Where("user_id = ? AND expense_time >= ? AND expense_time <= ?", userID, startTime, endTime).
		Order("expense_time DESC").
		Find(&expenses).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询数据失败"))
		return
	}

	var incomes []models.Income
	if err := database.DB.Where("user_id = ? AND income_time >= ? AND income_time <= ?", userID, startTime, endTime).
		Order("income_time DESC").
		Find(&incomes).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询数据失败"))
		return
	}

	var totalExpense float64
	for _, expense := range expenses {
		totalExpense += expense.Amount
	}
	var totalIncome float64
	for _, income := range incomes {
		totalIncome += income.Amount
	}

	Success(c, gin.H{
		"start_time":    startStr,
		"end_time":      endStr,
		"total_expense": totalExpense,
		"total_income":  totalIncome,
		"expenses":      expenses,
		"incomes":       incomes,
	})
}

// ExportExcel 导出消费和收入记录为 Excel
// @Summary 导出记录为 Excel
// @Description 根据时间范围导出消费和收入记录为 xlsx 文件，消费和收入各占一个工作表
// @Tags 导出
// @Accept json
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param start_time query string true "开始时间 (2024-01-01)"
// @Param end_time query string true "结束时间 (2024-12-31)"
// @Success 200 {file} file "Excel 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/excel [get]
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	startTime, endTime, startStr, endStr, ok := parseExportRange(c)
	if !ok {
		return
	}

	var expenses []models.Expense
	if err := database.DB.Where("user_id = ? AND expense_time >= ? AND expense_time <= ?", userID, startTime, endTime).
		Order("expense_time DESC").
		Find(&expenses).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询数据失败"))
		return
	}

	var incomes []models.Income
	if err := database.DB.Where("user_id = ? AND income_time >= ? AND income_time <= ?", userID, startTime, endTime).
		Order("income_time DESC").
		Find(&incomes).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询数据失败"))
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	expenseSheet := "消费记录"
	incomeSheet := "收入记录"
	f.SetSheetName("Sheet1", expenseSheet)
	f.NewSheet(incomeSheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})

	dataStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})

	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})

	// 消费记录工作表
	f.SetColWidth(expenseSheet, "A", "A", 10)
	f.SetColWidth(expenseSheet, "B", "B", 15)
	f.SetColWidth(expenseSheet, "C", "C", 12)
	f.SetColWidth(expenseSheet, "D", "D", 30)
	f.SetColWidth(expenseSheet, "E", "F", 20)

	expenseHeaders := []string{"ID", "金额", "类别", "描述", "消费时间", "创建时间"}
	for i, header := range expenseHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(expenseSheet, cell, header)
		f.SetCellStyle(expenseSheet, cell, cell, headerStyle)
	}

	var totalExpense float64
	for i, expense := range expenses {
		row := i + 2
		f.SetCellValue(expenseSheet, fmt.Sprintf("A%d", row), expense.ID)
		f.SetCellValue(expenseSheet, fmt.Sprintf("B%d", row), expense.Amount)
		f.SetCellValue(expenseSheet, fmt.Sprintf("C%d", row), expense.Category)
		f.SetCellValue(expenseSheet, fmt.Sprintf("D%d", row), expense.Description)
		f.SetCellValue(expenseSheet, fmt.Sprintf("E%d", row), expense.ExpenseTime.Format("2006-01-02 15:04:05"))
		f.SetCellValue(expenseSheet, fmt.Sprintf("F%d", row), expense.CreatedAt.Format("2006-01-02 15:04:05"))
		f.SetCellStyle(expenseSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("F%d", row), dataStyle)
		totalExpense += expense.Amount
	}

	expenseSummaryRow := len(expenses) + 2
	f.SetCellValue(expenseSheet, fmt.Sprintf("A%d", expenseSummaryRow), "合计")
	f.SetCellValue(expenseSheet, fmt.Sprintf("B%d", expenseSummaryRow), totalExpense)
	f.SetCellValue(expenseSheet, fmt.Sprintf("C%d", expenseSummaryRow), fmt.Sprintf("共 %d 条记录", len(expenses)))
	f.MergeCell(expenseSheet, fmt.Sprintf("C%d", expenseSummaryRow), fmt.Sprintf("F%d", expenseSummaryRow))
	f.SetCellStyle(expenseSheet, fmt.Sprintf("A%d", expenseSummaryRow), fmt.Sprintf("F%d", expenseSummaryRow), summaryStyle)

	// 收入记录工作表
	f.SetColWidth(incomeSheet, "A", "A", 10)
	f.SetColWidth(incomeSheet, "B", "B", 20)
	f.SetColWidth(incomeSheet, "C", "C", 15)
	f.SetColWidth(incomeSheet, "D", "D", 12)
	f.SetColWidth(incomeSheet, "E", "E", 30)
	f.SetColWidth(incomeSheet, "F", "G", 20)

	incomeHeaders := []string{"ID", "来源", "金额", "类型", "描述", "收入时间", "创建时间"}
	for i, header := range incomeHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(incomeSheet, cell, header)
		f.SetCellStyle(incomeSheet, cell, cell, headerStyle)
	}

	var totalIncome float64
	for i, income := range incomes {
		row := i + 2
		f.SetCellValue(incomeSheet, fmt.Sprintf("A%d", row), income.ID)
		f.SetCellValue(incomeSheet, fmt.Sprintf("B%d", row), income.Source)
		f.SetCellValue(incomeSheet, fmt.Sprintf("C%d", row), income.Amount)
		f.SetCellValue(incomeSheet, fmt.Sprintf("D%d", row), income.Type)
		f.SetCellValue(incomeSheet, fmt.Sprintf("E%d", row), income.Description)
		f.SetCellValue(incomeSheet, fmt.Sprintf("F%d", row), income.IncomeTime.Format("2006-01-02 15:04:05"))
		f.SetCellValue(incomeSheet, fmt.Sprintf("G%d", row), income.CreatedAt.Format("2006-01-02 15:04:05"))
		f.SetCellStyle(incomeSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("G%d", row), dataStyle)
		totalIncome += income.Amount
	}

	incomeSummaryRow := len(incomes) + 2
	f.SetCellValue(incomeSheet, fmt.Sprintf("A%d", incomeSummaryRow), "合计")
	f.MergeCell(incomeSheet, fmt.Sprintf("A%d", incomeSummaryRow), fmt.Sprintf("B%d", incomeSummaryRow))
	f.SetCellValue(incomeSheet, fmt.Sprintf("C%d", incomeSummaryRow), totalIncome)
	f.SetCellValue(incomeSheet, fmt.Sprintf("D%d", incomeSummaryRow), fmt.Sprintf("共 %d 条记录", len(incomes)))
	f.MergeCell(incomeSheet, fmt.Sprintf("D%d", incomeSummaryRow), fmt.Sprintf("G%d", incomeSummaryRow))
	f.SetCellStyle(incomeSheet, fmt.Sprintf("A%d", incomeSummaryRow), fmt.Sprintf("G%d", incomeSummaryRow), summaryStyle)

	filename := fmt.Sprintf("记账数据_%s_%s.xlsx", startStr, endStr)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", filename))

	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "生成 Excel 失败")
		return
	}
}
