package api

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"ledger/database"
	"ledger/middleware"
	"ledger/models"
	"ledger/service"

	"github.com/gin-gonic/gin"
)

// IncomeHandler 收入记录处理器
type IncomeHandler struct {
	lifecycle *service.LifecycleService
}

// NewIncomeHandler 创建收入记录处理器
func NewIncomeHandler() *IncomeHandler {
	return &IncomeHandler{lifecycle: service.NewLifecycleService()}
}

// CreateIncomeRequest 创建收入记录请求
type CreateIncomeRequest struct {
	Source      string  `json:"source" binding:"required,max=100" example:"公司工资"`
	Amount      float64 `json:"amount" binding:"required,gt=0" example:"8000"`
	Type        string  `json:"type" example:"工资"`
	Description string  `json:"description" example:"1月份工资"`
	IncomeTime  string  `json:"income_time" binding:"required" example:"2024-01-10 09:00:00"`
}

// UpdateIncomeRequest 更新收入记录请求
type UpdateIncomeRequest struct {
	Source      string  `json:"source" binding:"omitempty,max=100" example:"公司工资"`
	Amount      float64 `json:"amount" binding:"omitempty,gt=0" example:"8000"`
	Type        string  `json:"type" example:"工资"`
	Description string  `json:"description" example:"1月份工资"`
	IncomeTime  string  `json:"income_time" example:"2024-01-10 09:00:00"`
}

// IncomeListRequest 收入记录列表请求
type IncomeListRequest struct {
	Page      int    `form:"page" example:"1"`
	PageSize  int    `form:"page_size" example:"10"`
	Type      string `form:"type" example:"工资"`
	StartTime string `form:"start_time" example:"2024-01-01"`
	EndTime   string `form:"end_time" example:"2024-12-31"`
}

// Create 创建收入记录
// @Summary 创建收入记录
// @Description 创建一条新的收入记录
// @Tags 收入记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateIncomeRequest true "收入记录信息"
// @Success 200 {object} Response{data=models.Income} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/incomes [post]
func (h *IncomeHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateIncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	// 未指定类型时落到默认值
	req.Type = strings.TrimSpace(req.Type)
	if req.Type == "" {
		req.Type = models.IncomeTypeOther
	}
	var cat models.IncomeCategory
	if err := database.DB.Where("name = ?", req.Type).First(&cat).Error; err != nil {
		BadRequest(c, "无效的收入类型")
		return
	}

	incomeTime, err := time.ParseInLocation("2006-01-02 15:04:05", req.IncomeTime, time.Local)
	if err != nil {
		BadRequest(c, "时间格式错误，应为: 2006-01-02 15:04:05")
		return
	}

	income := models.Income{
		UserID:      userID,
		Source:      req.Source,
		Amount:      req.Amount,
		Type:        req.Type,
		Description: req.Description,
		IncomeTime:  incomeTime,
	}

	if err := database.DB.Create(&income).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建收入记录失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", income)
}

// List 获取收入记录列表
// @Summary 获取收入记录列表
// @Description 获取当前用户的收入记录列表，支持分页和筛选
// @Tags 收入记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Param type query string false "类型筛选"
// @Param start_time query string false "开始时间 (2024-01-01)"
// @Param end_time query string false "结束时间 (2024-12-31)"
// @Success 200 {object} Response{data=PageResponse{list=[]models.Income}} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/incomes [get]
func (h *IncomeHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req IncomeListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 10
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	query := database.DB.Model(&models.Income{}).Where("user_id = ?", userID)

	if req.Type != "" {
		query = query.Where("type = ?", req.Type)
	}

	if req.StartTime != "" {
		startTime, err := time.ParseInLocation("2006-01-02", req.StartTime, time.Local)
		if err == nil {
			query = query.Where("income_time >= ?", startTime)
		}
	}
	if req.EndTime != "" {
		endTime, err := time.ParseInLocation("2006-01-02", req.EndTime, time.Local)
		if err == nil {
			// 包含结束日期当天
			endTime = endTime.Add(24*time.Hour - time.Second)
			query = query.Where("income_time <= ?", endTime)
		}
	}

	var total int64
	query.Count(&total)

	var incomes []models.Income
	offset := (req.Page - 1) * req.PageSize
	if err := query.Order("income_time DESC").Offset(offset).Limit(req.PageSize).Find(&incomes).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, PageResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		List:     incomes,
	})
}

// Get 获取单条收入记录
// @Summary 获取单条收入记录
// @Description 根据ID获取收入记录详情
// @Tags 收入记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "收入记录ID"
// @Success 200 {object} Response{data=models.Income} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/incomes/{id} [get]
func (h *IncomeHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var income models.Income
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&income).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	Success(c, income)
}

// Update 更新收入记录
// @Summary 更新收入记录
// @Description 更新指定的收入记录
// @Tags 收入记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "收入记录ID"
// @Param request body UpdateIncomeRequest true "收入记录信息"
// @Success 200 {object} Response{data=models.Income} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/incomes/{id} [put]
func (h *IncomeHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var income models.Income
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&income).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	var req UpdateIncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	updates := make(map[string]interface{})
	if req.Source != "" {
		updates["source"] = req.Source
	}
	if req.Amount > 0 {
		updates["amount"] = req.Amount
	}
	if req.Type != "" {
		req.Type = strings.TrimSpace(req.Type)
		var cat models.IncomeCategory
		if err := database.DB.Where("name = ?", req.Type).First(&cat).Error; err != nil {
			BadRequest(c, "无效的收入类型")
			return
		}
		updates["type"] = req.Type
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.IncomeTime != "" {
		incomeTime, err := time.ParseInLocation("2006-01-02 15:04:05", req.IncomeTime, time.Local)
		if err != nil {
			BadRequest(c, "时间格式错误，应为: 2006-01-02 15:04:05")
			return
		}
		updates["income_time"] = incomeTime
	}

	if err := database.DB.Model(&income).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	database.DB.First(&income, income.ID)
	SuccessWithMessage(c, "更新成功", income)
}

// Delete 删除收入记录（移入归档）
// @Summary 删除收入记录
// @Description 删除指定的收入记录。记录不会被直接销毁，而是移入归档，可在归档页恢复或永久删除。
// @Tags 收入记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "收入记录ID"
// @Success 200 {object} Response{data=models.ArchivedIncome} "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/incomes/{id} [delete]
func (h *IncomeHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	entry, err := h.lifecycle.ArchiveIncome(userID, uint(id))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			NotFound(c, "记录不存在")
			return
		}
		InternalError(c, SafeErrorMessage(err, "归档失败"))
		return
	}

	SuccessWithMessage(c, "已移入归档", entry)
}

// GetIncomeCategories 获取收入类型列表
// @Summary 获取收入类型列表
// @Description 获取所有可用的收入类型列表，按排序字段升序排列
// @Tags 收入记录
// @Accept json
// @Produce json
// @Success 200 {object} Response{data=[]models.IncomeCategory} "获取成功"
// @Failure 500 {object} Response "服务器内部错误"
// @Router /api/v1/income-categories [get]
func (h *IncomeHandler) GetIncomeCategories(c *gin.Context) {
	var list []models.IncomeCategory
	if err := database.DB.Order("sort ASC, id ASC").Find(&list).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	Success(c, list)
}
