package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "github.com/Raiterion-coder/finance-manager/internal/errors"
	"github.com/Raiterion-coder/finance-manager/internal/logger"
	"github.com/Raiterion-coder/finance-manager/internal/models"
	"github.com/Raiterion-coder/finance-manager/internal/pagination"
)

// accountService handles account-related business logic.
type accountService struct {
	db *gorm.DB
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB) AccountServicer {
	return &accountService{db: db}
}

// CreateAccount creates an account whose balance starts at initialBalance.
func (s *accountService) CreateAccount(name string, initialBalance float64) (*models.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}
	if !isFinite(initialBalance) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "initial balance must be a finite number")
	}

	account := &models.Account{
		Name:           name,
		Balance:        initialBalance,
		InitialBalance: initialBalance,
	}
	if err := s.db.Create(account).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return account, nil
}

// ListAccounts retrieves a paginated list of accounts ordered by creation.
func (s *accountService) ListAccounts(page pagination.PageRequest) (*pagination.PageResponse[models.Account], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Account{})
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var accounts []models.Account
	if err := base.Order("id ASC").Scopes(pagination.Paginate(page)).Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(accounts, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetAccountByID retrieves an account by ID
func (s *accountService) GetAccountByID(accountID uint) (*models.Account, error) {
	var account models.Account
	if err := s.db.First(&account, accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// GetAccountByName retrieves the first account with exactly this name.
func (s *accountService) GetAccountByName(name string) (*models.Account, error) {
	var account models.Account
	if err := s.db.Where("name = ?", name).Order("id ASC").First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// RenameAccount changes an account's display name.
func (s *accountService) RenameAccount(accountID uint, name string) (*models.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}

	account, err := s.GetAccountByID(accountID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(account).Update("name", name).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	account.Name = name
	return account, nil
}

// DeleteAccount removes an account together with all of its transactions.
// Each transaction's amount is reversed out of the balance first, so whatever
// is left over before the account row goes away is the accumulated drift.
func (s *accountService) DeleteAccount(accountID uint) error {
	account, err := s.GetAccountByID(accountID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var total float64
		if err := tx.Model(&models.Transaction{}).
			Where("account_id = ?", account.ID).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&total).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		res := tx.Where("account_id = ?", account.ID).Delete(&models.Transaction{})
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}

		if err := s.UpdateAccountBalance(tx, account, -total); err != nil {
			return err
		}

		if err := tx.Delete(account).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		logger.Get().Infow("account deleted",
			"account_id", account.ID,
			"name", account.Name,
			"transactions_removed", res.RowsAffected,
			"residual_balance", account.Balance,
		)
		return nil
	})
}

// UpdateAccountBalance adds delta to the stored balance in a single statement
// on tx and mirrors the change onto account.
func (s *accountService) UpdateAccountBalance(tx *gorm.DB, account *models.Account, delta float64) error {
	if err := tx.Model(&models.Account{}).
		Where("id = ?", account.ID).
		Update("balance", gorm.Expr("balance + ?", delta)).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	account.Balance += delta
	return nil
}
