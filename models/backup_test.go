package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupName(t *testing.T) {
	ts := time.Date(2024, 1, 15, 9, 30, 0, 0, time.Local)
	name := BackupName(ts, 3, 2)
	assert.Equal(t, "备份 2024-01-15 09:30:00（3 条支出，2 条收入）", name)
}

func TestSnapshotExpenses_DeepCopy(t *testing.T) {
	expenses := []Expense{
		{ID: 1, UserID: 1, Amount: 99.99, Category: CategoryFood, Description: "晚餐", ExpenseTime: time.Now()},
		{ID: 2, UserID: 1, Amount: 30, Category: CategoryTransport, ExpenseTime: time.Now()},
	}

	snapshots := SnapshotExpenses(expenses)
	require.Len(t, snapshots, 2)

	// 快照是独立拷贝：修改活跃记录不影响快照内容
	expenses[0].Amount = 1
	expenses[0].Description = "改过了"
	assert.Equal(t, 99.99, snapshots[0].Amount)
	assert.Equal(t, "晚餐", snapshots[0].Description)
}

func TestSnapshotIncomes_DeepCopy(t *testing.T) {
	incomes := []Income{
		{ID: 1, UserID: 1, Source: "公司", Amount: 5000, Type: IncomeTypeSalary, IncomeTime: time.Now()},
	}

	snapshots := SnapshotIncomes(incomes)
	require.Len(t, snapshots, 1)

	incomes[0].Amount = 0
	incomes[0].Source = ""
	assert.Equal(t, 5000.0, snapshots[0].Amount)
	assert.Equal(t, "公司", snapshots[0].Source)
}

func TestSnapshot_ToRecord(t *testing.T) {
	s := ExpenseSnapshot{Amount: 12.5, Category: CategoryFood, Description: "午餐", ExpenseTime: time.Now()}
	e := s.ToExpense(3)
	assert.Equal(t, uint(0), e.ID)
	assert.Equal(t, uint(3), e.UserID)
	assert.Equal(t, 12.5, e.Amount)

	is := IncomeSnapshot{Source: "客户", Amount: 800, Type: IncomeTypeFreelance, IncomeTime: time.Now()}
	in := is.ToIncome(3)
	assert.Equal(t, uint(0), in.ID)
	assert.Equal(t, uint(3), in.UserID)
	assert.Equal(t, IncomeTypeFreelance, in.Type)
}
