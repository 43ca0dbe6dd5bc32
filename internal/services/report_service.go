package services

import (
	"sort"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "github.com/Raiterion-coder/finance-manager/internal/errors"
	"github.com/Raiterion-coder/finance-manager/internal/logger"
	"github.com/Raiterion-coder/finance-manager/internal/models"
)

// reportService derives chart data and summaries from stored transactions.
type reportService struct {
	db             *gorm.DB
	accountService AccountServicer
}

// NewReportService creates a new ReportServicer.
func NewReportService(db *gorm.DB, accountService AccountServicer) ReportServicer {
	return &reportService{db: db, accountService: accountService}
}

// datedAmount is the slice of a transaction the reports need.
type datedAmount struct {
	Date     string
	Category string
	Amount   float64
}

// GetBalanceHistory builds the per-date running balance of an account.
// The series is anchored on the stored balance: it ends exactly there and
// starts at the stored balance minus the sum of all transactions.
func (s *reportService) GetBalanceHistory(accountID uint) (*BalanceHistory, error) {
	account, err := s.accountService.GetAccountByID(accountID)
	if err != nil {
		return nil, err
	}

	var rows []datedAmount
	if err := s.db.Model(&models.Transaction{}).
		Select("date, amount").
		Where("account_id = ?", account.ID).
		Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrNoTransactions
	}

	start, points := balanceSeries(account.Balance, rows)
	return &BalanceHistory{
		AccountID:    account.ID,
		AccountName:  account.Name,
		StartBalance: start,
		FinalBalance: points[len(points)-1].Balance,
		Points:       points,
	}, nil
}

// balanceSeries groups rows by date and walks them in ascending order.
// Dates are ISO strings, so lexical order is chronological order.
func balanceSeries(current float64, rows []datedAmount) (float64, []BalancePoint) {
	daily := make(map[string]decimal.Decimal)
	total := decimal.Zero
	for _, r := range rows {
		amt := decimal.NewFromFloat(r.Amount)
		daily[r.Date] = daily[r.Date].Add(amt)
		total = total.Add(amt)
	}

	dates := make([]string, 0, len(daily))
	for d := range daily {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	start := decimal.NewFromFloat(current).Sub(total)
	running := start
	points := make([]BalancePoint, 0, len(dates))
	for _, d := range dates {
		running = running.Add(daily[d])
		points = append(points, BalancePoint{
			Date:    d,
			Change:  money(daily[d]),
			Balance: money(running),
		})
	}
	return money(start), points
}

// GetCategorySummary totals income and expense per category.
func (s *reportService) GetCategorySummary(filter SummaryFilter) ([]CategoryTotal, error) {
	q := s.db.Model(&models.Transaction{}).Select("date, category, amount")
	if filter.AccountID != nil {
		if _, err := s.accountService.GetAccountByID(*filter.AccountID); err != nil {
			return nil, err
		}
		q = q.Where("account_id = ?", *filter.AccountID)
	}
	if filter.FromDate != nil {
		q = q.Where("date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		q = q.Where("date <= ?", *filter.ToDate)
	}

	var rows []datedAmount
	if err := q.Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return summarizeByCategory(rows), nil
}

func summarizeByCategory(rows []datedAmount) []CategoryTotal {
	type acc struct {
		income, expense decimal.Decimal
		count           int
	}
	byCategory := make(map[string]*acc)
	for _, r := range rows {
		a, ok := byCategory[r.Category]
		if !ok {
			a = &acc{}
			byCategory[r.Category] = a
		}
		amt := decimal.NewFromFloat(r.Amount)
		if amt.IsNegative() {
			a.expense = a.expense.Add(amt.Abs())
		} else {
			a.income = a.income.Add(amt)
		}
		a.count++
	}

	totals := make([]CategoryTotal, 0, len(byCategory))
	for name, a := range byCategory {
		totals = append(totals, CategoryTotal{
			Category: name,
			Income:   money(a.income),
			Expense:  money(a.expense),
			Net:      money(a.income.Sub(a.expense)),
			Count:    a.count,
		})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Category < totals[j].Category })
	return totals
}

// ReconcileAccount reports how far the stored balance has drifted from
// initial balance plus transaction history.
func (s *reportService) ReconcileAccount(accountID uint) (*Reconciliation, error) {
	account, err := s.accountService.GetAccountByID(accountID)
	if err != nil {
		return nil, err
	}
	return s.reconcile(s.db, account)
}

// RepairBalance overwrites the stored balance with the one implied by history.
func (s *reportService) RepairBalance(accountID uint) (*Reconciliation, error) {
	account, err := s.accountService.GetAccountByID(accountID)
	if err != nil {
		return nil, err
	}

	var result *Reconciliation
	err = s.db.Transaction(func(tx *gorm.DB) error {
		before, err := s.reconcile(tx, account)
		if err != nil {
			return err
		}
		if before.InSync {
			result = before
			return nil
		}

		if err := tx.Model(&models.Account{}).
			Where("id = ?", account.ID).
			Update("balance", before.ExpectedBalance).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		logger.Get().Warnw("account balance repaired",
			"account_id", account.ID,
			"stored_balance", before.StoredBalance,
			"expected_balance", before.ExpectedBalance,
			"drift", before.Drift,
		)

		account.Balance = before.ExpectedBalance
		result, err = s.reconcile(tx, account)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *reportService) reconcile(db *gorm.DB, account *models.Account) (*Reconciliation, error) {
	var total float64
	if err := db.Model(&models.Transaction{}).
		Where("account_id = ?", account.ID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	stored := decimal.NewFromFloat(account.Balance)
	expected := decimal.NewFromFloat(account.InitialBalance).Add(decimal.NewFromFloat(total))
	drift := stored.Sub(expected).Round(2)

	return &Reconciliation{
		AccountID:        account.ID,
		StoredBalance:    money(stored),
		InitialBalance:   money(decimal.NewFromFloat(account.InitialBalance)),
		TransactionTotal: money(decimal.NewFromFloat(total)),
		ExpectedBalance:  money(expected),
		Drift:            drift.InexactFloat64(),
		InSync:           drift.IsZero(),
	}, nil
}

// money rounds to cents.
func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
