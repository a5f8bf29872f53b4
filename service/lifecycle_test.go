package service

import (
	"errors"
	"testing"
	"time"

	"ledger/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (sqlmock.Sqlmock, func()) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	oldDB := database.DB
	database.DB = gormDB
	return mock, func() {
		database.DB = oldDB
		sqlDB.Close()
	}
}

func expenseRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "amount", "category", "description", "expense_time", "created_at", "updated_at", "deleted_at"})
}

func incomeRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "source", "amount", "type", "description", "income_time", "created_at", "updated_at", "deleted_at"})
}

func archiveRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "expenses", "incomes", "created_at", "updated_at"})
}

func backupRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "name", "expenses", "incomes", "created_at", "updated_at"})
}

// 归档操作必须先写归档文档、再删活跃记录，sqlmock 的顺序校验覆盖这一约束
func TestArchiveExpense_WritesArchiveBeforeDelete(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()

	// 1. 按 id + user_id 查询活跃记录
	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WillReturnRows(expenseRows().
			AddRow(42, 1, 12.50, "餐饮", "午餐", now, now, now, nil))

	// 2. 归档文档不存在，懒创建
	mock.ExpectQuery("SELECT .* FROM `archive_documents`").
		WillReturnRows(archiveRows())

	// 3. 先插入归档文档
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `archive_documents`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	// 4. 归档写入成功后才软删除原记录
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `expenses` SET `deleted_at`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	entry, err := NewLifecycleService().ArchiveExpense(1, 42)
	require.NoError(t, err)
	assert.NotEmpty(t, entry.EntryID)
	assert.Equal(t, uint(42), entry.OriginalID)
	assert.Equal(t, 12.50, entry.Amount)
	assert.Equal(t, "午餐", entry.Description)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestArchiveExpense_NotFound(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 记录不存在或属于其他用户，两种情况查询结果一致，错误也一致
	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WillReturnRows(expenseRows())

	_, err := NewLifecycleService().ArchiveExpense(1, 999)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

// 归档写入失败时，活跃记录必须原样保留（不会出现删除语句）
func TestArchiveExpense_ArchiveWriteFailureKeepsRecord(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WillReturnRows(expenseRows().
			AddRow(42, 1, 12.50, "餐饮", "午餐", now, now, now, nil))
	mock.ExpectQuery("SELECT .* FROM `archive_documents`").
		WillReturnRows(archiveRows())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `archive_documents`").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := NewLifecycleService().ArchiveExpense(1, 42)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestArchiveIncome(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `incomes`").
		WillReturnRows(incomeRows().
			AddRow(9, 1, "公司", 5000.0, "工资", "", now, now, now, nil))

	// 已有归档文档，整体更新
	mock.ExpectQuery("SELECT .* FROM `archive_documents`").
		WillReturnRows(archiveRows().
			AddRow(3, 1, []byte(`[]`), []byte(`[]`), now, now))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `archive_documents`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `incomes` SET `deleted_at`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	entry, err := NewLifecycleService().ArchiveIncome(1, 9)
	require.NoError(t, err)
	assert.Equal(t, uint(9), entry.OriginalID)
	assert.Equal(t, "公司", entry.Source)
	require.NoError(t, mock.ExpectationsWereMet())
}

// 归档恢复必须先建新记录、再摘除归档条目
func TestRestoreExpense_CreateBeforeRemove(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	archived := `[{"entry_id":"e1","amount":12.5,"category":"餐饮","description":"午餐","expense_time":"2024-01-05T12:00:00Z","deleted_at":"2024-01-06T08:00:00Z","original_id":42}]`

	mock.ExpectQuery("SELECT .* FROM `archive_documents`").
		WillReturnRows(archiveRows().
			AddRow(3, 1, []byte(archived), []byte(`[]`), now, now))

	// 1. 先插入新的活跃记录（分配全新 ID）
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `expenses`").
		WillReturnResult(sqlmock.NewResult(77, 1))
	mock.ExpectCommit()

	// 2. 再更新归档文档
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `archive_documents`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	expense, err := NewLifecycleService().RestoreExpense(1, "e1")
	require.NoError(t, err)
	assert.Equal(t, uint(77), expense.ID) // 不复用 original_id 42
	assert.Equal(t, 12.5, expense.Amount)
	assert.Equal(t, "餐饮", expense.Category)
	assert.Equal(t, "午餐", expense.Description)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRestoreExpense_ArchiveMissing(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `archive_documents`").
		WillReturnRows(archiveRows())

	_, err := NewLifecycleService().RestoreExpense(1, "e1")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRestoreIncome(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	archived := `[{"entry_id":"i1","source":"公司","amount":5000,"type":"工资","description":"","income_time":"2024-01-15T09:00:00Z","deleted_at":"2024-02-01T00:00:00Z","original_id":9}]`

	mock.ExpectQuery("SELECT .* FROM `archive_documents`").
		WillReturnRows(archiveRows().
			AddRow(3, 1, []byte(`[]`), []byte(archived), now, now))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `incomes`").
		WillReturnResult(sqlmock.NewResult(88, 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `archive_documents`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	income, err := NewLifecycleService().RestoreIncome(1, "i1")
	require.NoError(t, err)
	assert.Equal(t, uint(88), income.ID)
	assert.Equal(t, "公司", income.Source)
	assert.Equal(t, 5000.0, income.Amount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPurgeExpense(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	archived := `[{"entry_id":"e1","amount":12.5,"category":"餐饮","description":"午餐","expense_time":"2024-01-05T12:00:00Z","deleted_at":"2024-01-06T08:00:00Z","original_id":42}]`

	mock.ExpectQuery("SELECT .* FROM `archive_documents`").
		WillReturnRows(archiveRows().
			AddRow(3, 1, []byte(archived), []byte(`[]`), now, now))

	// 永久删除只更新归档文档，不触碰活跃表
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `archive_documents`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := NewLifecycleService().PurgeExpense(1, "e1")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPurgeExpense_EntryNotFound(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `archive_documents`").
		WillReturnRows(archiveRows().
			AddRow(3, 1, []byte(`[]`), []byte(`[]`), now, now))

	err := NewLifecycleService().PurgeExpense(1, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBackup_EmptyDataset(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WillReturnRows(expenseRows())
	mock.ExpectQuery("SELECT .* FROM `incomes`").
		WillReturnRows(incomeRows())

	_, err := NewLifecycleService().CreateBackup(1)
	assert.ErrorIs(t, err, ErrEmptyDataset)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBackup(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WillReturnRows(expenseRows().
			AddRow(1, 1, 12.5, "餐饮", "午餐", now, now, now, nil).
			AddRow(2, 1, 30.0, "交通", "", now, now, now, nil))
	mock.ExpectQuery("SELECT .* FROM `incomes`").
		WillReturnRows(incomeRows().
			AddRow(1, 1, "公司", 5000.0, "工资", "", now, now, now, nil))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `backups`").
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectCommit()

	info, err := NewLifecycleService().CreateBackup(1)
	require.NoError(t, err)
	assert.Equal(t, uint(5), info.ID)
	assert.Equal(t, 2, info.ExpensesCount)
	assert.Equal(t, 1, info.IncomesCount)
	assert.Contains(t, info.Name, "2 条支出")
	assert.Contains(t, info.Name, "1 条收入")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRestoreBackup_NotFound(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `backups`").
		WillReturnRows(backupRows())

	_, err := NewLifecycleService().RestoreBackup(1, 5)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

// 备份恢复先整体清除活跃数据，再逐条重建快照内容
func TestRestoreBackup_ReplacesActiveSet(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	expSnapshots := `[{"amount":12.5,"category":"餐饮","description":"午餐","expense_time":"2024-01-05T12:00:00Z"},{"amount":30,"category":"交通","description":"","expense_time":"2024-01-06T08:00:00Z"}]`
	incSnapshots := `[{"source":"公司","amount":5000,"type":"工资","description":"","income_time":"2024-01-15T09:00:00Z"}]`

	mock.ExpectQuery("SELECT .* FROM `backups`").
		WillReturnRows(backupRows().
			AddRow(5, 1, "备份 2024-01-20 10:00:00（2 条支出，1 条收入）", []byte(expSnapshots), []byte(incSnapshots), now, now))

	// 先清除当前活跃数据
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `expenses` SET `deleted_at`").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `incomes` SET `deleted_at`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// 再逐条重建
	for i := 0; i < 2; i++ {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO `expenses`").
			WillReturnResult(sqlmock.NewResult(int64(100+i), 1))
		mock.ExpectCommit()
	}
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `incomes`").
		WillReturnResult(sqlmock.NewResult(200, 1))
	mock.ExpectCommit()

	result, err := NewLifecycleService().RestoreBackup(1, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, result.ExpensesRestored)
	assert.Equal(t, 1, result.IncomesRestored)
	require.NoError(t, mock.ExpectationsWereMet())
}

// 删除之后写入中断返回 PartialRestoreError，携带已恢复数量
func TestRestoreBackup_PartialFailure(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	expSnapshots := `[{"amount":12.5,"category":"餐饮","description":"午餐","expense_time":"2024-01-05T12:00:00Z"},{"amount":30,"category":"交通","description":"","expense_time":"2024-01-06T08:00:00Z"}]`
	incSnapshots := `[{"source":"公司","amount":5000,"type":"工资","description":"","income_time":"2024-01-15T09:00:00Z"}]`

	mock.ExpectQuery("SELECT .* FROM `backups`").
		WillReturnRows(backupRows().
			AddRow(5, 1, "备份", []byte(expSnapshots), []byte(incSnapshots), now, now))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `expenses` SET `deleted_at`").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `incomes` SET `deleted_at`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `expenses`").
		WillReturnResult(sqlmock.NewResult(100, 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `expenses`").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := NewLifecycleService().RestoreBackup(1, 5)
	require.Error(t, err)

	var partial *PartialRestoreError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, 1, partial.ExpensesRestored)
	assert.Equal(t, 0, partial.IncomesRestored)
	assert.Equal(t, 2, partial.ExpensesTotal)
	assert.Equal(t, 1, partial.IncomesTotal)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteBackup(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `backups`").
		WillReturnRows(backupRows().
			AddRow(5, 1, "备份 2024-01-20 10:00:00（2 条支出，1 条收入）", []byte(`[]`), []byte(`[]`), now, now))

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `backups`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	name, err := NewLifecycleService().DeleteBackup(1, 5)
	require.NoError(t, err)
	assert.Contains(t, name, "备份 2024-01-20")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteBackup_WrongOwner(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 他人的备份与不存在的备份返回同样的结果
	mock.ExpectQuery("SELECT .* FROM `backups`").
		WillReturnRows(backupRows())

	_, err := NewLifecycleService().DeleteBackup(2, 5)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetArchive_LazyEmpty(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `archive_documents`").
		WillReturnRows(archiveRows())

	doc, err := NewLifecycleService().GetArchive(1)
	require.NoError(t, err)
	assert.Equal(t, uint(1), doc.UserID)
	assert.Empty(t, doc.Expenses)
	assert.Empty(t, doc.Incomes)
	require.NoError(t, mock.ExpectationsWereMet())
}
