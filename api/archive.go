package api

import (
	"errors"

	"ledger/middleware"
	"ledger/service"

	"github.com/gin-gonic/gin"
)

// ArchiveHandler 归档处理器
// 归档是已删除记录的中转站：条目可以恢复为活跃记录，也可以永久清除
type ArchiveHandler struct {
	lifecycle *service.LifecycleService
}

// NewArchiveHandler 创建归档处理器
func NewArchiveHandler() *ArchiveHandler {
	return &ArchiveHandler{lifecycle: service.NewLifecycleService()}
}

// Get 获取归档内容
// @Summary 获取归档内容
// @Description 获取当前用户已归档的消费和收入记录，从未归档过的用户返回空列表
// @Tags 归档
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=models.ArchiveDocument} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/archive [get]
func (h *ArchiveHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	doc, err := h.lifecycle.GetArchive(userID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询归档失败"))
		return
	}

	Success(c, doc)
}

// RestoreExpense 恢复归档的消费记录
// @Summary 恢复归档的消费记录
// @Description 将归档中的消费条目恢复为活跃记录，恢复后的记录分配新的ID
// @Tags 归档
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param entry_id path string true "归档条目ID"
// @Success 200 {object} Response{data=models.Expense} "恢复成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "条目不存在"
// @Router /api/v1/archive/expenses/{entry_id}/restore [post]
func (h *ArchiveHandler) RestoreExpense(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	entryID := c.Param("entry_id")

	expense, err := h.lifecycle.RestoreExpense(userID, entryID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			NotFound(c, "条目不存在")
			return
		}
		InternalError(c, SafeErrorMessage(err, "恢复失败"))
		return
	}

	SuccessWithMessage(c, "恢复成功", expense)
}

// RestoreIncome 恢复归档的收入记录
// @Summary 恢复归档的收入记录
// @Description 将归档中的收入条目恢复为活跃记录，恢复后的记录分配新的ID
// @Tags 归档
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param entry_id path string true "归档条目ID"
// @Success 200 {object} Response{data=models.Income} "恢复成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "条目不存在"
// @Router /api/v1/archive/incomes/{entry_id}/restore [post]
func (h *ArchiveHandler) RestoreIncome(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	entryID := c.Param("entry_id")

	income, err := h.lifecycle.RestoreIncome(userID, entryID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			NotFound(c, "条目不存在")
			return
		}
		InternalError(c, SafeErrorMessage(err, "恢复失败"))
		return
	}

	SuccessWithMessage(c, "恢复成功", income)
}

// PurgeExpense 永久删除归档的消费条目
// @Summary 永久删除归档的消费条目
// @Description 从归档中彻底删除消费条目，该操作不可恢复
// @Tags 归档
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param entry_id path string true "归档条目ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "条目不存在"
// @Router /api/v1/archive/expenses/{entry_id} [delete]
func (h *ArchiveHandler) PurgeExpense(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	entryID := c.Param("entry_id")

	if err := h.lifecycle.PurgeExpense(userID, entryID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			NotFound(c, "条目不存在")
			return
		}
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "已永久删除", nil)
}

// PurgeIncome 永久删除归档的收入条目
// @Summary 永久删除归档的收入条目
// @Description 从归档中彻底删除收入条目，该操作不可恢复
// @Tags 归档
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param entry_id path string true "归档条目ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "条目不存在"
// @Router /api/v1/archive/incomes/{entry_id} [delete]
func (h *ArchiveHandler) PurgeIncome(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	entryID := c.Param("entry_id")

	if err := h.lifecycle.PurgeIncome(userID, entryID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			NotFound(c, "条目不存在")
			return
		}
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "已永久删除", nil)
}
