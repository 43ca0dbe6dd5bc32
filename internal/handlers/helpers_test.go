package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Raiterion-coder/finance-manager/internal/logger"
	"github.com/Raiterion-coder/finance-manager/internal/models"
	"github.com/Raiterion-coder/finance-manager/internal/pagination"
	"github.com/Raiterion-coder/finance-manager/internal/services"
	"github.com/Raiterion-coder/finance-manager/internal/validator"
)

// --- mock account service ---

type mockAccountService struct {
	createAccountFn    func(name string, initialBalance float64) (*models.Account, error)
	listAccountsFn     func(page pagination.PageRequest) (*pagination.PageResponse[models.Account], error)
	getAccountByIDFn   func(accountID uint) (*models.Account, error)
	getAccountByNameFn func(name string) (*models.Account, error)
	renameAccountFn    func(accountID uint, name string) (*models.Account, error)
	deleteAccountFn    func(accountID uint) error
}

func (m *mockAccountService) CreateAccount(name string, initialBalance float64) (*models.Account, error) {
	if m.createAccountFn != nil {
		return m.createAccountFn(name, initialBalance)
	}
	return &models.Account{}, nil
}

func (m *mockAccountService) ListAccounts(page pagination.PageRequest) (*pagination.PageResponse[models.Account], error) {
	if m.listAccountsFn != nil {
		return m.listAccountsFn(page)
	}
	resp := pagination.NewPageResponse([]models.Account{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockAccountService) GetAccountByID(accountID uint) (*models.Account, error) {
	if m.getAccountByIDFn != nil {
		return m.getAccountByIDFn(accountID)
	}
	return &models.Account{}, nil
}

func (m *mockAccountService) GetAccountByName(name string) (*models.Account, error) {
	if m.getAccountByNameFn != nil {
		return m.getAccountByNameFn(name)
	}
	return &models.Account{}, nil
}

func (m *mockAccountService) RenameAccount(accountID uint, name string) (*models.Account, error) {
	if m.renameAccountFn != nil {
		return m.renameAccountFn(accountID, name)
	}
	return &models.Account{}, nil
}

func (m *mockAccountService) DeleteAccount(accountID uint) error {
	if m.deleteAccountFn != nil {
		return m.deleteAccountFn(accountID)
	}
	return nil
}

func (m *mockAccountService) UpdateAccountBalance(_ *gorm.DB, _ *models.Account, _ float64) error {
	return nil
}

// --- mock transaction service ---

type mockTransactionService struct {
	createTransactionFn   func(input services.CreateTransactionInput) (*models.Transaction, error)
	listTransactionsFn    func(page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.TransactionView], error)
	getTransactionByIDFn  func(transactionID uint) (*models.Transaction, error)
	findTransactionsFn    func(date, accountName, category string, amount float64) ([]models.Transaction, error)
	deleteTransactionFn   func(transactionID uint) error
	getTransactionPhotoFn func(transactionID uint) ([]byte, string, error)
	attachPhotoFn         func(transactionID uint, photo []byte) (*models.Transaction, error)
	removePhotoFn         func(transactionID uint) (*models.Transaction, error)
}

func (m *mockTransactionService) CreateTransaction(input services.CreateTransactionInput) (*models.Transaction, error) {
	if m.createTransactionFn != nil {
		return m.createTransactionFn(input)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) ListTransactions(page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.TransactionView], error) {
	if m.listTransactionsFn != nil {
		return m.listTransactionsFn(page, filter)
	}
	resp := pagination.NewPageResponse([]models.TransactionView{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockTransactionService) GetTransactionByID(transactionID uint) (*models.Transaction, error) {
	if m.getTransactionByIDFn != nil {
		return m.getTransactionByIDFn(transactionID)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) FindTransactions(date, accountName, category string, amount float64) ([]models.Transaction, error) {
	if m.findTransactionsFn != nil {
		return m.findTransactionsFn(date, accountName, category, amount)
	}
	return []models.Transaction{}, nil
}

func (m *mockTransactionService) DeleteTransaction(transactionID uint) error {
	if m.deleteTransactionFn != nil {
		return m.deleteTransactionFn(transactionID)
	}
	return nil
}

func (m *mockTransactionService) GetTransactionPhoto(transactionID uint) ([]byte, string, error) {
	if m.getTransactionPhotoFn != nil {
		return m.getTransactionPhotoFn(transactionID)
	}
	return nil, "", nil
}

func (m *mockTransactionService) AttachPhoto(transactionID uint, photo []byte) (*models.Transaction, error) {
	if m.attachPhotoFn != nil {
		return m.attachPhotoFn(transactionID, photo)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) RemovePhoto(transactionID uint) (*models.Transaction, error) {
	if m.removePhotoFn != nil {
		return m.removePhotoFn(transactionID)
	}
	return &models.Transaction{}, nil
}

// --- mock report service ---

type mockReportService struct {
	getBalanceHistoryFn  func(accountID uint) (*services.BalanceHistory, error)
	getCategorySummaryFn func(filter services.SummaryFilter) ([]services.CategoryTotal, error)
	reconcileAccountFn   func(accountID uint) (*services.Reconciliation, error)
	repairBalanceFn      func(accountID uint) (*services.Reconciliation, error)
}

func (m *mockReportService) GetBalanceHistory(accountID uint) (*services.BalanceHistory, error) {
	if m.getBalanceHistoryFn != nil {
		return m.getBalanceHistoryFn(accountID)
	}
	return &services.BalanceHistory{}, nil
}

func (m *mockReportService) GetCategorySummary(filter services.SummaryFilter) ([]services.CategoryTotal, error) {
	if m.getCategorySummaryFn != nil {
		return m.getCategorySummaryFn(filter)
	}
	return []services.CategoryTotal{}, nil
}

func (m *mockReportService) ReconcileAccount(accountID uint) (*services.Reconciliation, error) {
	if m.reconcileAccountFn != nil {
		return m.reconcileAccountFn(accountID)
	}
	return &services.Reconciliation{}, nil
}

func (m *mockReportService) RepairBalance(accountID uint) (*services.Reconciliation, error) {
	if m.repairBalanceFn != nil {
		return m.repairBalanceFn(accountID)
	}
	return &services.Reconciliation{}, nil
}

// verify interface compliance
var (
	_ services.AccountServicer     = (*mockAccountService)(nil)
	_ services.TransactionServicer = (*mockTransactionService)(nil)
	_ services.ReportServicer      = (*mockReportService)(nil)
)

// --- test helpers ---

var errBoom = errors.New("database is locked")

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// doMultipart sends fields plus an optional photo file as multipart/form-data.
func doMultipart(t *testing.T, r *gin.Engine, method, path string, fields map[string]string, photo []byte) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("failed to write field %s: %v", k, err)
		}
	}
	if photo != nil {
		fw, err := w.CreateFormFile("photo", "receipt.png")
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		if _, err := fw.Write(photo); err != nil {
			t.Fatalf("failed to write photo: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}
