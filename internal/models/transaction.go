package models

import (
	"math"
	"time"

	"gorm.io/gorm"
)

// DateLayout is the storage format of Transaction.Date.
const DateLayout = "2006-01-02"

// TransactionKind tells income and expense apart.
type TransactionKind string

const (
	TransactionKindIncome  TransactionKind = "income"
	TransactionKindExpense TransactionKind = "expense"
)

// Valid reports whether k is a known kind.
func (k TransactionKind) Valid() bool {
	return k == TransactionKindIncome || k == TransactionKindExpense
}

// Signed applies the kind's sign to amount: income is positive, expense negative.
func (k TransactionKind) Signed(amount float64) float64 {
	if k == TransactionKindExpense {
		return -math.Abs(amount)
	}
	return math.Abs(amount)
}

// KindOf classifies a signed amount.
func KindOf(amount float64) TransactionKind {
	if amount < 0 {
		return TransactionKindExpense
	}
	return TransactionKindIncome
}

// Transaction is a single dated movement of money on an account.
// Amount is signed: positive for income, negative for expense.
type Transaction struct {
	Base
	Date      string  `gorm:"type:varchar(10);not null;index" json:"date"`
	AccountID uint    `gorm:"not null;index" json:"account_id"`
	Category  string  `gorm:"not null;default:''" json:"category"`
	Amount    float64 `gorm:"not null" json:"amount"`
	Comment   string  `gorm:"not null;default:''" json:"comment"`
	Photo     []byte  `json:"-"`
	PhotoType string  `gorm:"not null;default:''" json:"photo_type,omitempty"`

	Kind     TransactionKind `gorm:"-" json:"kind"`
	HasPhoto bool            `gorm:"-" json:"has_photo"`
}

// Decorate fills the derived, non-persisted fields.
func (t *Transaction) Decorate() {
	t.Kind = KindOf(t.Amount)
	t.HasPhoto = t.PhotoType != ""
}

// AfterFind fills derived fields after loading.
func (t *Transaction) AfterFind(tx *gorm.DB) error {
	t.Decorate()
	return nil
}

// ParseDate validates s against DateLayout.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// TransactionView is a transaction joined with its account's name, as shown in listings.
type TransactionView struct {
	Transaction
	AccountName string `json:"account_name"`
}
