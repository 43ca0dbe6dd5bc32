// Package validator registers the ledger's custom tags with Gin's binding engine.
package validator

import (
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/Raiterion-coder/finance-manager/internal/models"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterOn(v)
	}
}

// RegisterOn adds the custom tags to v.
func RegisterOn(v *validator.Validate) {
	_ = v.RegisterValidation("transaction_kind", validateTransactionKind)
	_ = v.RegisterValidation("iso_date", validateISODate)
}

func validateTransactionKind(fl validator.FieldLevel) bool {
	return models.TransactionKind(strings.ToLower(fl.Field().String())).Valid()
}

// validateISODate accepts YYYY-MM-DD. Pair with omitempty for optional dates.
func validateISODate(fl validator.FieldLevel) bool {
	_, err := models.ParseDate(fl.Field().String())
	return err == nil
}
