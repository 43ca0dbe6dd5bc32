package testutil

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync/atomic"
	"testing"

	"gorm.io/gorm"

	"github.com/Raiterion-coder/finance-manager/internal/models"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestAccount creates an account with zero balance.
func CreateTestAccount(t *testing.T, db *gorm.DB) *models.Account {
	t.Helper()
	return CreateTestAccountWithBalance(t, db, 0)
}

// CreateTestAccountWithBalance creates an account whose balance and initial balance equal balance.
func CreateTestAccountWithBalance(t *testing.T, db *gorm.DB, balance float64) *models.Account {
	t.Helper()

	account := &models.Account{
		Name:           fmt.Sprintf("Test Account %d", nextID()),
		Balance:        balance,
		InitialBalance: balance,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestTransaction inserts a transaction row without touching the account balance.
func CreateTestTransaction(t *testing.T, db *gorm.DB, accountID uint, date, category string, amount float64) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		Date:      date,
		AccountID: accountID,
		Category:  category,
		Amount:    amount,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	tx.Decorate()
	return tx
}

// PNGBytes returns a tiny valid PNG image.
func PNGBytes(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}
