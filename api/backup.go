package api

import (
	"errors"
	"log"
	"strconv"

	"ledger/config"
	"ledger/database"
	"ledger/middleware"
	"ledger/models"
	"ledger/service"

	"github.com/gin-gonic/gin"
)

// parseIDParam 解析路径中的数字ID，非法时直接返回 400
func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return 0, false
	}
	return uint(id), true
}

// BackupHandler 备份处理器
type BackupHandler struct {
	cfg          *config.Config
	lifecycle    *service.LifecycleService
	emailService *service.EmailService
}

// NewBackupHandler 创建备份处理器
func NewBackupHandler(cfg *config.Config) *BackupHandler {
	return &BackupHandler{
		cfg:          cfg,
		lifecycle:    service.NewLifecycleService(),
		emailService: service.NewEmailService(&cfg.Email),
	}
}

// Create 创建备份
// @Summary 创建备份
// @Description 对当前所有活跃的消费和收入记录创建一份全量备份，之后对活跃数据的修改不会影响该备份
// @Tags 备份
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=service.BackupInfo} "创建成功"
// @Failure 400 {object} Response "没有可备份的数据"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/backups [post]
func (h *BackupHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	info, err := h.lifecycle.CreateBackup(userID)
	if err != nil {
		if errors.Is(err, service.ErrEmptyDataset) {
			BadRequest(c, "没有可备份的数据")
			return
		}
		InternalError(c, SafeErrorMessage(err, "创建备份失败"))
		return
	}

	// 邮件通知为尽力而为，失败只记录日志，不影响备份结果
	h.notifyBackupCreated(userID, info)

	SuccessWithMessage(c, "备份创建成功", info)
}

// List 获取备份列表
// @Summary 获取备份列表
// @Description 获取当前用户的所有备份，按创建时间倒序排列，不包含快照内容
// @Tags 备份
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]service.BackupInfo} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/backups [get]
func (h *BackupHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	infos, err := h.lifecycle.ListBackups(userID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询备份失败"))
		return
	}

	Success(c, infos)
}

// Restore 恢复备份
// @Summary 恢复备份
// @Description 用备份内容整体替换当前活跃数据。当前活跃记录会被全部删除后由备份重建，归档和其他备份不受影响
// @Tags 备份
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "备份ID"
// @Success 200 {object} Response{data=service.RestoreResult} "恢复成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "备份不存在"
// @Failure 500 {object} Response "恢复未全部完成"
// @Router /api/v1/backups/{id}/restore [post]
func (h *BackupHandler) Restore(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	result, err := h.lifecycle.RestoreBackup(userID, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			NotFound(c, "备份不存在")
			return
		}
		var partial *service.PartialRestoreError
		if errors.As(err, &partial) {
			// 部分恢复需要明确告知进度，提示用户重试
			c.JSON(500, Response{
				Code:    500,
				Message: "备份恢复未全部完成，当前数据可能不完整，请重试恢复",
				Data: gin.H{
					"expenses_restored": partial.ExpensesRestored,
					"expenses_total":    partial.ExpensesTotal,
					"incomes_restored":  partial.IncomesRestored,
					"incomes_total":     partial.IncomesTotal,
				},
			})
			return
		}
		InternalError(c, SafeErrorMessage(err, "恢复备份失败"))
		return
	}

	h.notifyBackupRestored(userID, result)

	SuccessWithMessage(c, "备份恢复成功", result)
}

// Delete 删除备份
// @Summary 删除备份
// @Description 删除指定的备份，不影响活跃数据和归档
// @Tags 备份
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "备份ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "备份不存在"
// @Router /api/v1/backups/{id} [delete]
func (h *BackupHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	name, err := h.lifecycle.DeleteBackup(userID, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			NotFound(c, "备份不存在")
			return
		}
		InternalError(c, SafeErrorMessage(err, "删除备份失败"))
		return
	}

	SuccessWithMessage(c, "备份删除成功", gin.H{"name": name})
}

// notifyBackupCreated 备份创建成功后发送邮件通知
func (h *BackupHandler) notifyBackupCreated(userID uint, info service.BackupInfo) {
	if !h.cfg.Email.Enabled {
		return
	}
	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil || user.Email == "" {
		return
	}
	if err := h.emailService.SendBackupCreatedEmail(user.Email, user.Username, info.Name, info.ExpensesCount, info.IncomesCount); err != nil {
		log.Printf("发送备份创建通知失败: %v", err)
	}
}

// notifyBackupRestored 备份恢复完成后发送邮件通知
func (h *BackupHandler) notifyBackupRestored(userID uint, result service.RestoreResult) {
	if !h.cfg.Email.Enabled {
		return
	}
	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil || user.Email == "" {
		return
	}
	if err := h.emailService.SendBackupRestoredEmail(user.Email, user.Username, result.ExpensesRestored, result.IncomesRestored); err != nil {
		log.Printf("发送备份恢复通知失败: %v", err)
	}
}
