package handlers

import (
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	apperrors "github.com/Raiterion-coder/finance-manager/internal/errors"
	"github.com/Raiterion-coder/finance-manager/internal/models"
	"github.com/Raiterion-coder/finance-manager/internal/pagination"
	"github.com/Raiterion-coder/finance-manager/internal/services"
)

// photoField is the multipart field carrying a receipt image.
const photoField = "photo"

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	maxPhotoBytes      int64
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, maxPhotoBytes int64) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, maxPhotoBytes: maxPhotoBytes}
}

// CreateTransactionRequest represents the request payload for creating a transaction.
// JSON clients send the photo base64-encoded; multipart clients send it as a file field.
type CreateTransactionRequest struct {
	Date      string  `json:"date" form:"date" binding:"omitempty,iso_date"`
	AccountID uint    `json:"account_id" form:"account_id" binding:"required"`
	Category  string  `json:"category" form:"category" binding:"max=100"`
	Kind      string  `json:"kind" form:"kind" binding:"required,transaction_kind"`
	Amount    float64 `json:"amount" form:"amount"`
	Comment   string  `json:"comment" form:"comment" binding:"max=500"`
	Photo     []byte  `json:"photo,omitempty" form:"-" swaggertype:"string" format:"base64"`
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Record income or expense on an account. The amount is a magnitude; kind decides its sign.
// @Tags        transactions
// @Accept      json,mpfd
// @Produce     json
// @Security    ApiKeyAuth
// @Param       request body     CreateTransactionRequest true  "Transaction details"
// @Param       photo   formData file                     false "Receipt image (multipart only)"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     413 {object} ErrorResponse "Photo too large"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req CreateTransactionRequest
	if err := c.ShouldBind(&req); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	if c.ContentType() == binding.MIMEMultipartPOSTForm {
		if fh, err := c.FormFile(photoField); err == nil {
			photo, readErr := h.readPhoto(fh)
			if readErr != nil {
				respondWithError(c, readErr)
				return
			}
			req.Photo = photo
		}
	}

	transaction, err := h.transactionService.CreateTransaction(services.CreateTransactionInput{
		Date:      req.Date,
		AccountID: req.AccountID,
		Category:  req.Category,
		Kind:      models.TransactionKind(strings.ToLower(req.Kind)),
		Amount:    req.Amount,
		Comment:   req.Comment,
		Photo:     req.Photo,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// ListTransactions handles the retrieval of transactions across accounts
// @Summary     List transactions
// @Description Get a paginated list of transactions ordered by date, with optional filters
// @Tags        transactions
// @Produce     json
// @Security    ApiKeyAuth
// @Param       page       query int    false "Page number (default 1)"
// @Param       page_size  query int    false "Items per page (default 20, max 100)"
// @Param       account_id query int    false "Filter by account ID"
// @Param       category   query string false "Filter by category"
// @Param       from_date  query string false "Inclusive start date (YYYY-MM-DD)"
// @Param       to_date    query string false "Inclusive end date (YYYY-MM-DD)"
// @Param       kind       query string false "Filter by kind (income, expense)"
// @Success     200 {object} pagination.PageResponse[models.TransactionView] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := parseQueryID(c, "account_id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	filter.AccountID = accountID

	result, err := h.transactionService.ListTransactions(page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetAccountTransactions handles the retrieval of one account's transactions
// @Summary     Get account transactions
// @Tags        transactions
// @Produce     json
// @Security    ApiKeyAuth
// @Param       id        path  int    true  "Account ID"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Param       category  query string false "Filter by category"
// @Param       from_date query string false "Inclusive start date (YYYY-MM-DD)"
// @Param       to_date   query string false "Inclusive end date (YYYY-MM-DD)"
// @Param       kind      query string false "Filter by kind (income, expense)"
// @Success     200 {object} pagination.PageResponse[models.TransactionView] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts/{id}/transactions [get]
func (h *TransactionHandler) GetAccountTransactions(c *gin.Context) {
	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	filter.AccountID = &accountID

	result, err := h.transactionService.ListTransactions(page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	var filter services.TransactionFilter

	if v, ok := c.GetQuery("category"); ok {
		filter.Category = &v
	}

	for key, dst := range map[string]**string{"from_date": &filter.FromDate, "to_date": &filter.ToDate} {
		v := c.Query(key)
		if v == "" {
			continue
		}
		if _, err := models.ParseDate(v); err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid "+key+" format, use YYYY-MM-DD")
		}
		*dst = &v
	}

	if v := c.Query("kind"); v != "" {
		kind := models.TransactionKind(strings.ToLower(v))
		if !kind.Valid() {
			return filter, apperrors.ErrInvalidTransactionKind
		}
		filter.Kind = &kind
	}

	return filter, nil
}

// FindTransactions handles the natural-key lookup of transactions
// @Summary     Look up transactions
// @Description Find transactions by date, account name, category and signed amount
// @Tags        transactions
// @Produce     json
// @Security    ApiKeyAuth
// @Param       date     query string true  "Date (YYYY-MM-DD)"
// @Param       account  query string true  "Account name"
// @Param       category query string false "Category"
// @Param       amount   query number true  "Signed amount"
// @Success     200 {object} map[string][]models.Transaction "Matching transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/lookup [get]
func (h *TransactionHandler) FindTransactions(c *gin.Context) {
	date := c.Query("date")
	if _, err := models.ParseDate(date); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "date is required, use YYYY-MM-DD"))
		return
	}
	accountName := c.Query("account")
	if accountName == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "account is required"))
		return
	}
	amount, err := strconv.ParseFloat(c.Query("amount"), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be a number"))
		return
	}

	transactions, err := h.transactionService.FindTransactions(date, accountName, c.Query("category"), amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": transactions})
}

// GetTransactionByID handles the retrieval of a specific transaction
// @Summary     Get transaction by ID
// @Tags        transactions
// @Produce     json
// @Security    ApiKeyAuth
// @Param       id path int true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction details"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction handles deleting a transaction and reversing its balance effect
// @Summary     Delete a transaction
// @Tags        transactions
// @Produce     json
// @Security    ApiKeyAuth
// @Param       id path int true "Transaction ID"
// @Success     200 {object} MessageResponse "Transaction deleted"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Transaction deleted successfully"})
}

// GetTransactionPhoto streams the stored receipt image
// @Summary     Get receipt photo
// @Tags        photos
// @Produce     image/png,image/jpeg,image/bmp,image/gif,image/webp
// @Security    ApiKeyAuth
// @Param       id path int true "Transaction ID"
// @Success     200 {file}   file "Receipt image"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     404 {object} ErrorResponse "Transaction or photo not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id}/photo [get]
func (h *TransactionHandler) GetTransactionPhoto(c *gin.Context) {
	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	data, mimeType, err := h.transactionService.GetTransactionPhoto(transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filename := fmt.Sprintf("receipt-%d%s", transactionID, services.PhotoExtension(mimeType))
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	c.Data(http.StatusOK, mimeType, data)
}

// AttachPhoto replaces the receipt image of a transaction
// @Summary     Attach receipt photo
// @Tags        photos
// @Accept      mpfd
// @Produce     json
// @Security    ApiKeyAuth
// @Param       id    path     int  true "Transaction ID"
// @Param       photo formData file true "Receipt image"
// @Success     200 {object} models.Transaction "Transaction updated"
// @Failure     400 {object} ErrorResponse "Invalid input or photo"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     413 {object} ErrorResponse "Photo too large"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id}/photo [put]
func (h *TransactionHandler) AttachPhoto(c *gin.Context) {
	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	fh, err := c.FormFile(photoField)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "photo file is required"))
		return
	}
	photo, err := h.readPhoto(fh)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.AttachPhoto(transactionID, photo)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// RemovePhoto clears the receipt image of a transaction
// @Summary     Remove receipt photo
// @Tags        photos
// @Produce     json
// @Security    ApiKeyAuth
// @Param       id path int true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction updated"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id}/photo [delete]
func (h *TransactionHandler) RemovePhoto(c *gin.Context) {
	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.RemovePhoto(transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// readPhoto reads an uploaded file, stopping one byte past the size limit
// so the service can report the upload as too large.
func (h *TransactionHandler) readPhoto(fh *multipart.FileHeader) ([]byte, error) {
	if h.maxPhotoBytes > 0 && fh.Size > h.maxPhotoBytes {
		return nil, apperrors.ErrPhotoTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidPhoto, err)
	}
	defer f.Close()

	var r io.Reader = f
	if h.maxPhotoBytes > 0 {
		r = io.LimitReader(f, h.maxPhotoBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidPhoto, err)
	}
	return data, nil
}
