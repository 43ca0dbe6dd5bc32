package services

import (
	"math"
	"testing"

	"github.com/Raiterion-coder/finance-manager/internal/logger"
	"github.com/Raiterion-coder/finance-manager/internal/models"
	"github.com/Raiterion-coder/finance-manager/internal/pagination"
	"github.com/Raiterion-coder/finance-manager/internal/testutil"
)

func init() {
	logger.Init("test")
}

func TestCreateAccount(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)

		account, err := svc.CreateAccount("  Wallet ", 1500.5)
		testutil.AssertNoError(t, err)

		if account.ID == 0 {
			t.Fatal("expected non-zero account ID")
		}
		if account.Name != "Wallet" {
			t.Errorf("expected trimmed name Wallet, got %q", account.Name)
		}
		testutil.AssertAmount(t, "balance", account.Balance, 1500.5)
		testutil.AssertAmount(t, "initial balance", account.InitialBalance, 1500.5)
	})

	t.Run("negative_initial_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)

		account, err := svc.CreateAccount("Credit", -200)
		testutil.AssertNoError(t, err)
		testutil.AssertAmount(t, "balance", account.Balance, -200)
	})

	t.Run("empty_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)

		_, err := svc.CreateAccount("   ", 0)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("non_finite_initial_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)

		for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
			_, err := svc.CreateAccount("Broken", v)
			testutil.AssertAppError(t, err, "INVALID_INPUT")
		}

		var count int64
		db.Model(&models.Account{}).Count(&count)
		if count != 0 {
			t.Errorf("expected no accounts to be stored, got %d", count)
		}
	})
}

func TestListAccounts(t *testing.T) {
	t.Run("paginates_in_creation_order", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)

		first := testutil.CreateTestAccount(t, db)
		testutil.CreateTestAccount(t, db)
		testutil.CreateTestAccount(t, db)

		result, err := svc.ListAccounts(pagination.PageRequest{Page: 1, PageSize: 2})
		testutil.AssertNoError(t, err)

		if result.TotalItems != 3 {
			t.Errorf("expected 3 total accounts, got %d", result.TotalItems)
		}
		if len(result.Data) != 2 {
			t.Fatalf("expected 2 accounts on the page, got %d", len(result.Data))
		}
		if result.Data[0].ID != first.ID {
			t.Errorf("expected first account %d, got %d", first.ID, result.Data[0].ID)
		}
		if result.TotalPages != 2 {
			t.Errorf("expected 2 pages, got %d", result.TotalPages)
		}
	})

	t.Run("empty", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)

		result, err := svc.ListAccounts(pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if result.Data == nil || len(result.Data) != 0 {
			t.Errorf("expected empty non-nil data, got %v", result.Data)
		}
	})
}

func TestGetAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAccountService(db)

	account := testutil.CreateTestAccount(t, db)

	t.Run("by_id", func(t *testing.T) {
		got, err := svc.GetAccountByID(account.ID)
		testutil.AssertNoError(t, err)
		if got.Name != account.Name {
			t.Errorf("expected %s, got %s", account.Name, got.Name)
		}
	})

	t.Run("by_name", func(t *testing.T) {
		got, err := svc.GetAccountByName(account.Name)
		testutil.AssertNoError(t, err)
		if got.ID != account.ID {
			t.Errorf("expected %d, got %d", account.ID, got.ID)
		}
	})

	t.Run("missing_id", func(t *testing.T) {
		_, err := svc.GetAccountByID(99999)
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
	})

	t.Run("missing_name", func(t *testing.T) {
		_, err := svc.GetAccountByName("nope")
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
	})
}

func TestRenameAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAccountService(db)

	account := testutil.CreateTestAccount(t, db)

	t.Run("valid", func(t *testing.T) {
		updated, err := svc.RenameAccount(account.ID, "Card")
		testutil.AssertNoError(t, err)
		if updated.Name != "Card" {
			t.Errorf("expected Card, got %s", updated.Name)
		}

		var reloaded models.Account
		db.First(&reloaded, account.ID)
		if reloaded.Name != "Card" {
			t.Errorf("expected persisted name Card, got %s", reloaded.Name)
		}
	})

	t.Run("empty_name", func(t *testing.T) {
		_, err := svc.RenameAccount(account.ID, "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("missing", func(t *testing.T) {
		_, err := svc.RenameAccount(99999, "x")
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
	})
}

func TestUpdateAccountBalance(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAccountService(db)

	account := testutil.CreateTestAccountWithBalance(t, db, 100)

	testutil.AssertNoError(t, svc.UpdateAccountBalance(db, account, -30.25))
	testutil.AssertNoError(t, svc.UpdateAccountBalance(db, account, 10))

	testutil.AssertAmount(t, "in-memory balance", account.Balance, 79.75)

	var reloaded models.Account
	db.First(&reloaded, account.ID)
	testutil.AssertAmount(t, "stored balance", reloaded.Balance, 79.75)
}

func TestDeleteAccount(t *testing.T) {
	t.Run("removes_account_and_transactions", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)

		account := testutil.CreateTestAccountWithBalance(t, db, 100)
		other := testutil.CreateTestAccount(t, db)
		testutil.CreateTestTransaction(t, db, account.ID, "2024-01-01", "food", -20)
		testutil.CreateTestTransaction(t, db, account.ID, "2024-01-02", "salary", 50)
		testutil.CreateTestTransaction(t, db, other.ID, "2024-01-02", "salary", 5)

		testutil.AssertNoError(t, svc.DeleteAccount(account.ID))

		var accounts int64
		db.Model(&models.Account{}).Where("id = ?", account.ID).Count(&accounts)
		if accounts != 0 {
			t.Error("expected account to be deleted")
		}

		var txCount int64
		db.Model(&models.Transaction{}).Where("account_id = ?", account.ID).Count(&txCount)
		if txCount != 0 {
			t.Errorf("expected transactions to be deleted, %d left", txCount)
		}

		db.Model(&models.Transaction{}).Where("account_id = ?", other.ID).Count(&txCount)
		if txCount != 1 {
			t.Errorf("expected other account's transaction to survive, got %d", txCount)
		}
	})

	t.Run("missing", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)

		testutil.AssertAppError(t, svc.DeleteAccount(99999), "ACCOUNT_NOT_FOUND")
	})
}
