package services

import (
	"errors"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "github.com/Raiterion-coder/finance-manager/internal/errors"
	"github.com/Raiterion-coder/finance-manager/internal/models"
	"github.com/Raiterion-coder/finance-manager/internal/pagination"
)

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// listColumns selects every transaction column except the photo blob, plus the account name.
var listColumns = strings.Join([]string{
	"transactions.id", "transactions.created_at", "transactions.updated_at",
	"transactions.date", "transactions.account_id", "transactions.category",
	"transactions.amount", "transactions.comment", "transactions.photo_type",
	"accounts.name AS account_name",
}, ", ")

// transactionService handles transaction-related business logic.
type transactionService struct {
	db             *gorm.DB
	accountService AccountServicer
	maxPhotoBytes  int64
	now            func() time.Time
}

// NewTransactionService creates a new TransactionServicer. Photos larger than
// maxPhotoBytes are rejected; zero disables the limit.
func NewTransactionService(db *gorm.DB, accountService AccountServicer, maxPhotoBytes int64) TransactionServicer {
	return &transactionService{
		db:             db,
		accountService: accountService,
		maxPhotoBytes:  maxPhotoBytes,
		now:            time.Now,
	}
}

// CreateTransaction records a transaction and moves the account balance by its signed amount.
func (s *transactionService) CreateTransaction(input CreateTransactionInput) (*models.Transaction, error) {
	if !input.Kind.Valid() {
		return nil, apperrors.ErrInvalidTransactionKind
	}
	if input.Amount == 0 {
		return nil, apperrors.ErrZeroAmount
	}
	if !isFinite(input.Amount) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be a finite number")
	}
	if input.AccountID == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account ID is required")
	}

	date := strings.TrimSpace(input.Date)
	if date == "" {
		date = s.now().Format(models.DateLayout)
	}
	if _, err := models.ParseDate(date); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "date must be in YYYY-MM-DD format")
	}

	var photoType string
	if len(input.Photo) > 0 {
		var err error
		if photoType, err = detectPhotoType(input.Photo, s.maxPhotoBytes); err != nil {
			return nil, err
		}
	}

	account, err := s.accountService.GetAccountByID(input.AccountID)
	if err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		Date:      date,
		AccountID: account.ID,
		Category:  strings.TrimSpace(input.Category),
		Amount:    input.Kind.Signed(input.Amount),
		Comment:   strings.TrimSpace(input.Comment),
		PhotoType: photoType,
	}
	if photoType != "" {
		transaction.Photo = input.Photo
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.accountService.UpdateAccountBalance(tx, account, transaction.Amount)
	})
	if err != nil {
		return nil, err
	}

	transaction.Photo = nil
	transaction.Decorate()
	return transaction, nil
}

// ListTransactions returns transactions joined with their account name,
// ordered by date then insertion.
func (s *transactionService) ListTransactions(page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.TransactionView], error) {
	page.Defaults()

	base := s.db.Table("transactions").
		Joins("JOIN accounts ON accounts.id = transactions.account_id")
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var views []models.TransactionView
	if err := base.Select(listColumns).
		Order("transactions.date ASC, transactions.id ASC").
		Scopes(pagination.Paginate(page)).
		Scan(&views).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for i := range views {
		views[i].Decorate()
	}

	result := pagination.NewPageResponse(views, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.AccountID != nil {
		q = q.Where("transactions.account_id = ?", *f.AccountID)
	}
	if f.Category != nil {
		q = q.Where("transactions.category = ?", *f.Category)
	}
	if f.FromDate != nil {
		q = q.Where("transactions.date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("transactions.date <= ?", *f.ToDate)
	}
	if f.Kind != nil {
		switch *f.Kind {
		case models.TransactionKindIncome:
			q = q.Where("transactions.amount >= 0")
		case models.TransactionKindExpense:
			q = q.Where("transactions.amount < 0")
		}
	}
	return q
}

// GetTransactionByID retrieves a transaction without its photo blob.
func (s *transactionService) GetTransactionByID(transactionID uint) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Omit("photo").First(&transaction, transactionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// FindTransactions looks transactions up by date, account name, category and amount.
func (s *transactionService) FindTransactions(date, accountName, category string, amount float64) ([]models.Transaction, error) {
	account, err := s.accountService.GetAccountByName(accountName)
	if err != nil {
		return nil, err
	}

	var transactions []models.Transaction
	if err := s.db.Omit("photo").
		Where("date = ? AND account_id = ? AND category = ? AND amount = ?", date, account.ID, category, amount).
		Order("id ASC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transactions, nil
}

// DeleteTransaction deletes a transaction and reverses its amount from the account balance.
// When the account is already gone only the row is removed.
func (s *transactionService) DeleteTransaction(transactionID uint) error {
	transaction, err := s.GetTransactionByID(transactionID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Transaction{}, transaction.ID).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		var account models.Account
		if err := tx.First(&account, transaction.AccountID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		return s.accountService.UpdateAccountBalance(tx, &account, -transaction.Amount)
	})
}

// GetTransactionPhoto returns the stored receipt and its MIME type.
func (s *transactionService) GetTransactionPhoto(transactionID uint) ([]byte, string, error) {
	var transaction models.Transaction
	if err := s.db.Select("id", "photo", "photo_type").First(&transaction, transactionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", apperrors.ErrTransactionNotFound
		}
		return nil, "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(transaction.Photo) == 0 {
		return nil, "", apperrors.ErrPhotoNotFound
	}
	return transaction.Photo, transaction.PhotoType, nil
}

// AttachPhoto stores photo on the transaction, replacing any previous one.
func (s *transactionService) AttachPhoto(transactionID uint, photo []byte) (*models.Transaction, error) {
	photoType, err := detectPhotoType(photo, s.maxPhotoBytes)
	if err != nil {
		return nil, err
	}
	return s.setPhoto(transactionID, photo, photoType)
}

// RemovePhoto clears the transaction's photo.
func (s *transactionService) RemovePhoto(transactionID uint) (*models.Transaction, error) {
	return s.setPhoto(transactionID, nil, "")
}

func (s *transactionService) setPhoto(transactionID uint, photo []byte, photoType string) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(transactionID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.Transaction{}).
		Where("id = ?", transaction.ID).
		Updates(map[string]interface{}{"photo": photo, "photo_type": photoType}).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	transaction.PhotoType = photoType
	transaction.Decorate()
	return transaction, nil
}
