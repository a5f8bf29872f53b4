package models

import (
	"time"

	"github.com/google/uuid"
)

// ArchivedExpense 归档的消费记录条目（值拷贝，嵌入 ArchiveDocument 的 JSON 序列）
// EntryID 是归档条目自身的标识，与原记录 ID（OriginalID）无关
type ArchivedExpense struct {
	EntryID     string    `json:"entry_id"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	ExpenseTime time.Time `json:"expense_time"`
	DeletedAt   time.Time `json:"deleted_at"`
	OriginalID  uint      `json:"original_id"`
}

// ArchivedIncome 归档的收入记录条目
type ArchivedIncome struct {
	EntryID     string    `json:"entry_id"`
	Source      string    `json:"source"`
	Amount      float64   `json:"amount"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	IncomeTime  time.Time `json:"income_time"`
	DeletedAt   time.Time `json:"deleted_at"`
	OriginalID  uint      `json:"original_id"`
}

// ArchiveDocument 归档文档，每个用户最多一条（user_id 唯一索引），按需懒创建
// 两个序列按删除时间顺序追加，删除条目时整体重建序列
type ArchiveDocument struct {
	ID        uint              `json:"id" gorm:"primaryKey"`
	UserID    uint              `json:"user_id" gorm:"uniqueIndex;not null"`
	Expenses  []ArchivedExpense `json:"expenses" gorm:"type:json;serializer:json"`
	Incomes   []ArchivedIncome  `json:"incomes" gorm:"type:json;serializer:json"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (ArchiveDocument) TableName() string {
	return "archive_documents"
}

// NewArchiveDocument 创建指定用户的空归档文档
func NewArchiveDocument(userID uint) *ArchiveDocument {
	return &ArchiveDocument{
		UserID:   userID,
		Expenses: []ArchivedExpense{},
		Incomes:  []ArchivedIncome{},
	}
}

// AppendExpense 将一条消费记录以值拷贝的形式追加到归档序列，返回新条目
func (d *ArchiveDocument) AppendExpense(e *Expense, deletedAt time.Time) ArchivedExpense {
	entry := ArchivedExpense{
		EntryID:     uuid.NewString(),
		Amount:      e.Amount,
		Category:    e.Category,
		Description: e.Description,
		ExpenseTime: e.ExpenseTime,
		DeletedAt:   deletedAt,
		OriginalID:  e.ID,
	}
	d.Expenses = append(d.Expenses, entry)
	return entry
}

// AppendIncome 将一条收入记录以值拷贝的形式追加到归档序列，返回新条目
func (d *ArchiveDocument) AppendIncome(in *Income, deletedAt time.Time) ArchivedIncome {
	entry := ArchivedIncome{
		EntryID:     uuid.NewString(),
		Source:      in.Source,
		Amount:      in.Amount,
		Type:        in.Type,
		Description: in.Description,
		IncomeTime:  in.IncomeTime,
		DeletedAt:   deletedAt,
		OriginalID:  in.ID,
	}
	d.Incomes = append(d.Incomes, entry)
	return entry
}

// FindExpense 按归档条目 ID 查找消费条目
func (d *ArchiveDocument) FindExpense(entryID string) (ArchivedExpense, bool) {
	for _, e := range d.Expenses {
		if e.EntryID == entryID {
			return e, true
		}
	}
	return ArchivedExpense{}, false
}

// FindIncome 按归档条目 ID 查找收入条目
func (d *ArchiveDocument) FindIncome(entryID string) (ArchivedIncome, bool) {
	for _, in := range d.Incomes {
		if in.EntryID == entryID {
			return in, true
		}
	}
	return ArchivedIncome{}, false
}

// RemoveExpense 从归档序列中移除指定条目，序列整体重建，保持其余条目顺序
func (d *ArchiveDocument) RemoveExpense(entryID string) bool {
	kept := make([]ArchivedExpense, 0, len(d.Expenses))
	removed := false
	for _, e := range d.Expenses {
		if e.EntryID == entryID {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	d.Expenses = kept
	return removed
}

// RemoveIncome 从归档序列中移除指定条目
func (d *ArchiveDocument) RemoveIncome(entryID string) bool {
	kept := make([]ArchivedIncome, 0, len(d.Incomes))
	removed := false
	for _, in := range d.Incomes {
		if in.EntryID == entryID {
			removed = true
			continue
		}
		kept = append(kept, in)
	}
	d.Incomes = kept
	return removed
}

// ToExpense 由归档条目构造一条新的活跃消费记录
// 不复用 OriginalID，记录以全新实体身份重新进入活跃集合
func (a *ArchivedExpense) ToExpense(userID uint) Expense {
	return Expense{
		UserID:      userID,
		Amount:      a.Amount,
		Category:    a.Category,
		Description: a.Description,
		ExpenseTime: a.ExpenseTime,
	}
}

// ToIncome 由归档条目构造一条新的活跃收入记录
func (a *ArchivedIncome) ToIncome(userID uint) Income {
	return Income{
		UserID:      userID,
		Source:      a.Source,
		Amount:      a.Amount,
		Type:        a.Type,
		Description: a.Description,
		IncomeTime:  a.IncomeTime,
	}
}
