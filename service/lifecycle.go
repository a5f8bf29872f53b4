package service

import (
	"errors"
	"fmt"
	"time"

	"ledger/database"
	"ledger/models"

	"gorm.io/gorm"
)

var (
	// ErrNotFound 记录、归档条目或备份不存在（含属于其他用户的情况，对调用方不做区分）
	ErrNotFound = errors.New("记录不存在")
	// ErrEmptyDataset 没有任何活跃数据可备份
	ErrEmptyDataset = errors.New("没有可备份的数据")
)

// PartialRestoreError 备份恢复已删除活跃数据，但重新写入未全部完成
// 与整体失败区分上报，调用方应提示用户数据可能不完整并建议重试
type PartialRestoreError struct {
	ExpensesRestored int
	IncomesRestored  int
	ExpensesTotal    int
	IncomesTotal     int
	Err              error
}

func (e *PartialRestoreError) Error() string {
	return fmt.Sprintf("备份恢复未全部完成（支出 %d/%d，收入 %d/%d）: %v",
		e.ExpensesRestored, e.ExpensesTotal, e.IncomesRestored, e.IncomesTotal, e.Err)
}

func (e *PartialRestoreError) Unwrap() error {
	return e.Err
}

// BackupInfo 备份描述信息（不含快照内容）
type BackupInfo struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	Date          time.Time `json:"date"`
	ExpensesCount int       `json:"expenses_count"`
	IncomesCount  int       `json:"incomes_count"`
}

// RestoreResult 备份恢复结果
type RestoreResult struct {
	ExpensesRestored int `json:"expenses_restored"`
	IncomesRestored  int `json:"incomes_restored"`
}

// LifecycleService 记录生命周期服务
// 唯一允许执行跨表状态迁移的组件：活跃 -> 归档 -> 恢复/清除，以及全量备份的创建与恢复。
// 多步写入不依赖跨表事务，而是依靠固定的写入顺序保证任一步失败后数据仍可找回：
// 归档先写归档文档再删活跃记录，归档恢复先建新记录再摘除归档条目。
type LifecycleService struct{}

// NewLifecycleService 创建生命周期服务
func NewLifecycleService() *LifecycleService {
	return &LifecycleService{}
}

// loadArchive 加载用户的归档文档
// createIfMissing 为 true 时在文档不存在时返回一个未持久化的空文档
func (s *LifecycleService) loadArchive(userID uint, createIfMissing bool) (*models.ArchiveDocument, error) {
	var doc models.ArchiveDocument
	err := database.DB.Where("user_id = ?", userID).First(&doc).Error
	if err == nil {
		return &doc, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if createIfMissing {
			return models.NewArchiveDocument(userID), nil
		}
		return nil, ErrNotFound
	}
	return nil, fmt.Errorf("查询归档失败: %w", err)
}

// saveArchive 持久化归档文档（新文档插入，已有文档整体更新）
func (s *LifecycleService) saveArchive(doc *models.ArchiveDocument) error {
	if doc.ID == 0 {
		if err := database.DB.Create(doc).Error; err != nil {
			return fmt.Errorf("保存归档失败: %w", err)
		}
		return nil
	}
	if err := database.DB.Save(doc).Error; err != nil {
		return fmt.Errorf("保存归档失败: %w", err)
	}
	return nil
}

// GetArchive 获取用户的归档文档，没有归档时返回空文档视图
func (s *LifecycleService) GetArchive(userID uint) (*models.ArchiveDocument, error) {
	doc, err := s.loadArchive(userID, true)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ArchiveExpense 将一条消费记录从活跃集合移入归档
// 顺序约束：先持久化归档拷贝，确认写入成功后才删除原记录；
// 归档写入失败时原记录保持不动，避免记录在两边都不存在
func (s *LifecycleService) ArchiveExpense(userID, expenseID uint) (models.ArchivedExpense, error) {
	var expense models.Expense
	if err := database.DB.Where("id = ? AND user_id = ?", expenseID, userID).First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ArchivedExpense{}, ErrNotFound
		}
		return models.ArchivedExpense{}, fmt.Errorf("查询消费记录失败: %w", err)
	}

	doc, err := s.loadArchive(userID, true)
	if err != nil {
		return models.ArchivedExpense{}, err
	}

	entry := doc.AppendExpense(&expense, time.Now())
	if err := s.saveArchive(doc); err != nil {
		return models.ArchivedExpense{}, err
	}

	if err := database.DB.Delete(&expense).Error; err != nil {
		return models.ArchivedExpense{}, fmt.Errorf("删除消费记录失败: %w", err)
	}
	return entry, nil
}

// ArchiveIncome 将一条收入记录从活跃集合移入归档，顺序约束同 ArchiveExpense
func (s *LifecycleService) ArchiveIncome(userID, incomeID uint) (models.ArchivedIncome, error) {
	var income models.Income
	if err := database.DB.Where("id = ? AND user_id = ?", incomeID, userID).First(&income).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ArchivedIncome{}, ErrNotFound
		}
		return models.ArchivedIncome{}, fmt.Errorf("查询收入记录失败: %w", err)
	}

	doc, err := s.loadArchive(userID, true)
	if err != nil {
		return models.ArchivedIncome{}, err
	}

	entry := doc.AppendIncome(&income, time.Now())
	if err := s.saveArchive(doc); err != nil {
		return models.ArchivedIncome{}, err
	}

	if err := database.DB.Delete(&income).Error; err != nil {
		return models.ArchivedIncome{}, fmt.Errorf("删除收入记录失败: %w", err)
	}
	return entry, nil
}

// RestoreExpense 将归档条目恢复为活跃消费记录
// 顺序约束：先创建新记录，成功后才从归档中摘除条目，
// 中途失败时数据仍以归档拷贝的形式可找回
func (s *LifecycleService) RestoreExpense(userID uint, entryID string) (models.Expense, error) {
	doc, err := s.loadArchive(userID, false)
	if err != nil {
		return models.Expense{}, err
	}

	entry, ok := doc.FindExpense(entryID)
	if !ok {
		return models.Expense{}, ErrNotFound
	}

	// 新记录分配全新 ID，不复用 OriginalID
	expense := entry.ToExpense(userID)
	if err := database.DB.Create(&expense).Error; err != nil {
		return models.Expense{}, fmt.Errorf("恢复消费记录失败: %w", err)
	}

	doc.RemoveExpense(entryID)
	if err := s.saveArchive(doc); err != nil {
		return models.Expense{}, err
	}
	return expense, nil
}

// RestoreIncome 将归档条目恢复为活跃收入记录，顺序约束同 RestoreExpense
func (s *LifecycleService) RestoreIncome(userID uint, entryID string) (models.Income, error) {
	doc, err := s.loadArchive(userID, false)
	if err != nil {
		return models.Income{}, err
	}

	entry, ok := doc.FindIncome(entryID)
	if !ok {
		return models.Income{}, ErrNotFound
	}

	income := entry.ToIncome(userID)
	if err := database.DB.Create(&income).Error; err != nil {
		return models.Income{}, fmt.Errorf("恢复收入记录失败: %w", err)
	}

	doc.RemoveIncome(entryID)
	if err := s.saveArchive(doc); err != nil {
		return models.Income{}, err
	}
	return income, nil
}

// PurgeExpense 从归档中永久删除消费条目，不可恢复，无活跃侧副作用
func (s *LifecycleService) PurgeExpense(userID uint, entryID string) error {
	doc, err := s.loadArchive(userID, false)
	if err != nil {
		return err
	}
	if !doc.RemoveExpense(entryID) {
		return ErrNotFound
	}
	return s.saveArchive(doc)
}

// PurgeIncome 从归档中永久删除收入条目
func (s *LifecycleService) PurgeIncome(userID uint, entryID string) error {
	doc, err := s.loadArchive(userID, false)
	if err != nil {
		return err
	}
	if !doc.RemoveIncome(entryID) {
		return ErrNotFound
	}
	return s.saveArchive(doc)
}

// CreateBackup 创建当前活跃数据的全量备份
// 备份保存独立的字段拷贝，之后对活跃数据的任何修改都不会影响已有备份
func (s *LifecycleService) CreateBackup(userID uint) (BackupInfo, error) {
	var expenses []models.Expense
	if err := database.DB.Where("user_id = ?", userID).Find(&expenses).Error; err != nil {
		return BackupInfo{}, fmt.Errorf("查询消费记录失败: %w", err)
	}
	var incomes []models.Income
	if err := database.DB.Where("user_id = ?", userID).Find(&incomes).Error; err != nil {
		return BackupInfo{}, fmt.Errorf("查询收入记录失败: %w", err)
	}

	if len(expenses) == 0 && len(incomes) == 0 {
		return BackupInfo{}, ErrEmptyDataset
	}

	now := time.Now()
	backup := models.Backup{
		UserID:   userID,
		Name:     models.BackupName(now, len(expenses), len(incomes)),
		Expenses: models.SnapshotExpenses(expenses),
		Incomes:  models.SnapshotIncomes(incomes),
	}
	if err := database.DB.Create(&backup).Error; err != nil {
		return BackupInfo{}, fmt.Errorf("创建备份失败: %w", err)
	}

	return BackupInfo{
		ID:            backup.ID,
		Name:          backup.Name,
		Date:          backup.CreatedAt,
		ExpensesCount: len(backup.Expenses),
		IncomesCount:  len(backup.Incomes),
	}, nil
}

// ListBackups 获取用户的备份列表，按创建时间倒序
func (s *LifecycleService) ListBackups(userID uint) ([]BackupInfo, error) {
	var backups []models.Backup
	if err := database.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&backups).Error; err != nil {
		return nil, fmt.Errorf("查询备份失败: %w", err)
	}
	infos := make([]BackupInfo, 0, len(backups))
	for _, b := range backups {
		infos = append(infos, BackupInfo{
			ID:            b.ID,
			Name:          b.Name,
			Date:          b.CreatedAt,
			ExpensesCount: len(b.Expenses),
			IncomesCount:  len(b.Incomes),
		})
	}
	return infos, nil
}

// RestoreBackup 用备份内容整体替换当前活跃数据，归档和其他备份不受影响
// 先删除当前活跃数据再逐条重建；删除之后写入中断时返回 *PartialRestoreError，
// 此时活跃集合处于部分恢复状态，由调用方提示用户重试
func (s *LifecycleService) RestoreBackup(userID, backupID uint) (RestoreResult, error) {
	var backup models.Backup
	if err := database.DB.Where("id = ? AND user_id = ?", backupID, userID).First(&backup).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RestoreResult{}, ErrNotFound
		}
		return RestoreResult{}, fmt.Errorf("查询备份失败: %w", err)
	}

	// 只清除当前活跃数据，不触碰归档
	if err := database.DB.Where("user_id = ?", userID).Delete(&models.Expense{}).Error; err != nil {
		return RestoreResult{}, fmt.Errorf("清除消费记录失败: %w", err)
	}
	if err := database.DB.Where("user_id = ?", userID).Delete(&models.Income{}).Error; err != nil {
		return RestoreResult{}, fmt.Errorf("清除收入记录失败: %w", err)
	}

	result := RestoreResult{}
	for i := range backup.Expenses {
		expense := backup.Expenses[i].ToExpense(userID)
		if err := database.DB.Create(&expense).Error; err != nil {
			return result, &PartialRestoreError{
				ExpensesRestored: result.ExpensesRestored,
				IncomesRestored:  result.IncomesRestored,
				ExpensesTotal:    len(backup.Expenses),
				IncomesTotal:     len(backup.Incomes),
				Err:              err,
			}
		}
		result.ExpensesRestored++
	}
	for i := range backup.Incomes {
		income := backup.Incomes[i].ToIncome(userID)
		if err := database.DB.Create(&income).Error; err != nil {
			return result, &PartialRestoreError{
				ExpensesRestored: result.ExpensesRestored,
				IncomesRestored:  result.IncomesRestored,
				ExpensesTotal:    len(backup.Expenses),
				IncomesTotal:     len(backup.Incomes),
				Err:              err,
			}
		}
		result.IncomesRestored++
	}
	return result, nil
}

// DeleteBackup 删除指定备份，返回被删除备份的名称
func (s *LifecycleService) DeleteBackup(userID, backupID uint) (string, error) {
	var backup models.Backup
	if err := database.DB.Where("id = ? AND user_id = ?", backupID, userID).First(&backup).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("查询备份失败: %w", err)
	}
	if err := database.DB.Delete(&backup).Error; err != nil {
		return "", fmt.Errorf("删除备份失败: %w", err)
	}
	return backup.Name, nil
}
