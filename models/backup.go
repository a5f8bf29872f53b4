package models

import (
	"fmt"
	"time"
)

// ExpenseSnapshot 备份中的消费记录快照（与活跃记录完全独立的值拷贝）
type ExpenseSnapshot struct {
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	ExpenseTime time.Time `json:"expense_time"`
}

// IncomeSnapshot 备份中的收入记录快照
type IncomeSnapshot struct {
	Source      string    `json:"source"`
	Amount      float64   `json:"amount"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	IncomeTime  time.Time `json:"income_time"`
}

// Backup 全量备份，每个用户可有多条，创建后不可变（只读或整体删除/恢复）
type Backup struct {
	ID        uint              `json:"id" gorm:"primaryKey"`
	UserID    uint              `json:"user_id" gorm:"index;not null"`
	Name      string            `json:"name" gorm:"size:255;not null"`
	Expenses  []ExpenseSnapshot `json:"expenses" gorm:"type:json;serializer:json"`
	Incomes   []IncomeSnapshot  `json:"incomes" gorm:"type:json;serializer:json"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (Backup) TableName() string {
	return "backups"
}

// BackupName 生成备份名称，包含创建时间与两类记录数量
func BackupName(t time.Time, expenseCount, incomeCount int) string {
	return fmt.Sprintf("备份 %s（%d 条支出，%d 条收入）",
		t.Format("2006-01-02 15:04:05"), expenseCount, incomeCount)
}

// SnapshotExpenses 将活跃消费记录深拷贝为快照序列
func SnapshotExpenses(expenses []Expense) []ExpenseSnapshot {
	snapshots := make([]ExpenseSnapshot, 0, len(expenses))
	for _, e := range expenses {
		snapshots = append(snapshots, ExpenseSnapshot{
			Amount:      e.Amount,
			Category:    e.Category,
			Description: e.Description,
			ExpenseTime: e.ExpenseTime,
		})
	}
	return snapshots
}

// SnapshotIncomes 将活跃收入记录深拷贝为快照序列
func SnapshotIncomes(incomes []Income) []IncomeSnapshot {
	snapshots := make([]IncomeSnapshot, 0, len(incomes))
	for _, in := range incomes {
		snapshots = append(snapshots, IncomeSnapshot{
			Source:      in.Source,
			Amount:      in.Amount,
			Type:        in.Type,
			Description: in.Description,
			IncomeTime:  in.IncomeTime,
		})
	}
	return snapshots
}

// ToExpense 由快照构造一条新的活跃消费记录（分配全新 ID）
func (s *ExpenseSnapshot) ToExpense(userID uint) Expense {
	return Expense{
		UserID:      userID,
		Amount:      s.Amount,
		Category:    s.Category,
		Description: s.Description,
		ExpenseTime: s.ExpenseTime,
	}
}

// ToIncome 由快照构造一条新的活跃收入记录
func (s *IncomeSnapshot) ToIncome(userID uint) Income {
	return Income{
		UserID:      userID,
		Source:      s.Source,
		Amount:      s.Amount,
		Type:        s.Type,
		Description: s.Description,
		IncomeTime:  s.IncomeTime,
	}
}
