package services

import (
	"gorm.io/gorm"

	"github.com/Raiterion-coder/finance-manager/internal/models"
	"github.com/Raiterion-coder/finance-manager/internal/pagination"
)

// AccountServicer defines the contract for account-related business logic.
type AccountServicer interface {
	CreateAccount(name string, initialBalance float64) (*models.Account, error)
	ListAccounts(page pagination.PageRequest) (*pagination.PageResponse[models.Account], error)
	GetAccountByID(accountID uint) (*models.Account, error)
	GetAccountByName(name string) (*models.Account, error)
	RenameAccount(accountID uint, name string) (*models.Account, error)
	DeleteAccount(accountID uint) error
	UpdateAccountBalance(tx *gorm.DB, account *models.Account, delta float64) error
}

// CreateTransactionInput carries the fields of a new transaction.
// Amount is a magnitude; Kind decides its sign.
type CreateTransactionInput struct {
	Date      string
	AccountID uint
	Category  string
	Kind      models.TransactionKind
	Amount    float64
	Comment   string
	Photo     []byte
}

// TransactionFilter holds optional filter parameters for listing transactions.
// Dates are inclusive YYYY-MM-DD bounds.
type TransactionFilter struct {
	AccountID *uint
	Category  *string
	FromDate  *string
	ToDate    *string
	Kind      *models.TransactionKind
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(input CreateTransactionInput) (*models.Transaction, error)
	ListTransactions(page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.TransactionView], error)
	GetTransactionByID(transactionID uint) (*models.Transaction, error)
	FindTransactions(date, accountName, category string, amount float64) ([]models.Transaction, error)
	DeleteTransaction(transactionID uint) error
	GetTransactionPhoto(transactionID uint) ([]byte, string, error)
	AttachPhoto(transactionID uint, photo []byte) (*models.Transaction, error)
	RemovePhoto(transactionID uint) (*models.Transaction, error)
}

// BalancePoint is the running balance at the end of one date.
type BalancePoint struct {
	Date    string  `json:"date"`
	Change  float64 `json:"change"`
	Balance float64 `json:"balance"`
}

// BalanceHistory is the chart series of an account's balance over time.
type BalanceHistory struct {
	AccountID    uint           `json:"account_id"`
	AccountName  string         `json:"account_name"`
	StartBalance float64        `json:"start_balance"`
	FinalBalance float64        `json:"final_balance"`
	Points       []BalancePoint `json:"points"`
}

// CategoryTotal aggregates transactions sharing a category.
type CategoryTotal struct {
	Category string  `json:"category"`
	Income   float64 `json:"income"`
	Expense  float64 `json:"expense"`
	Net      float64 `json:"net"`
	Count    int     `json:"count"`
}

// SummaryFilter restricts a category summary.
type SummaryFilter struct {
	AccountID *uint
	FromDate  *string
	ToDate    *string
}

// Reconciliation compares the stored balance with the one implied by history.
type Reconciliation struct {
	AccountID        uint    `json:"account_id"`
	StoredBalance    float64 `json:"stored_balance"`
	InitialBalance   float64 `json:"initial_balance"`
	TransactionTotal float64 `json:"transaction_total"`
	ExpectedBalance  float64 `json:"expected_balance"`
	Drift            float64 `json:"drift"`
	InSync           bool    `json:"in_sync"`
}

// ReportServicer derives read-only views (chart data, summaries) from the ledger.
type ReportServicer interface {
	GetBalanceHistory(accountID uint) (*BalanceHistory, error)
	GetCategorySummary(filter SummaryFilter) ([]CategoryTotal, error)
	ReconcileAccount(accountID uint) (*Reconciliation, error)
	RepairBalance(accountID uint) (*Reconciliation, error)
}
