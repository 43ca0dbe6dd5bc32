package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Raiterion-coder/finance-manager/internal/config"
	"github.com/Raiterion-coder/finance-manager/internal/logger"
	"github.com/Raiterion-coder/finance-manager/internal/testutil"
	"github.com/Raiterion-coder/finance-manager/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

type apiClient struct {
	t      *testing.T
	router *gin.Engine
	apiKey string
}

func newAPI(t *testing.T, apiKey string) *apiClient {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	cfg := &config.Config{Env: "test", APIKey: apiKey, MaxPhotoBytes: config.DefaultMaxPhotoBytes}
	return &apiClient{t: t, router: Setup(cfg, db), apiKey: apiKey}
}

func (a *apiClient) do(req *http.Request) *httptest.ResponseRecorder {
	if a.apiKey != "" {
		req.Header.Set("X-API-Key", a.apiKey)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *apiClient) json(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return a.do(req)
}

func (a *apiClient) multipart(method, path string, fields map[string]string, photo []byte) *httptest.ResponseRecorder {
	a.t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		_ = w.WriteField(k, v)
	}
	if photo != nil {
		fw, err := w.CreateFormFile("photo", "receipt.png")
		if err != nil {
			a.t.Fatalf("failed to create form file: %v", err)
		}
		_, _ = fw.Write(photo)
	}
	_ = w.Close()

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return a.do(req)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, want int) map[string]interface{} {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return out
}

func accountBalance(t *testing.T, api *apiClient, id int) float64 {
	t.Helper()
	body := decode(t, api.json("GET", fmt.Sprintf("/api/v1/accounts/%d", id), ""), http.StatusOK)
	return body["account"].(map[string]interface{})["balance"].(float64)
}

func TestLedgerFlow(t *testing.T) {
	api := newAPI(t, "")

	acct := decode(t, api.json("POST", "/api/v1/accounts", `{"name":"Wallet","initial_balance":100}`), http.StatusCreated)
	accountID := int(acct["account"].(map[string]interface{})["id"].(float64))

	decode(t, api.json("POST", "/api/v1/transactions",
		fmt.Sprintf(`{"date":"2024-03-01","account_id":%d,"category":"salary","kind":"income","amount":500}`, accountID)), http.StatusCreated)
	decode(t, api.json("POST", "/api/v1/transactions",
		fmt.Sprintf(`{"date":"2024-03-02","account_id":%d,"category":"food","kind":"expense","amount":20}`, accountID)), http.StatusCreated)

	png := testutil.PNGBytes(t)
	withPhoto := decode(t, api.multipart("POST", "/api/v1/transactions", map[string]string{
		"date":       "2024-03-02",
		"account_id": fmt.Sprint(accountID),
		"category":   "food",
		"kind":       "expense",
		"amount":     "5.5",
	}, png), http.StatusCreated)
	photoTx := withPhoto["transaction"].(map[string]interface{})
	photoTxID := int(photoTx["id"].(float64))
	if photoTx["has_photo"] != true {
		t.Fatalf("expected has_photo, got %v", photoTx)
	}

	if got := accountBalance(t, api, accountID); got != 574.5 {
		t.Fatalf("expected balance 574.5, got %v", got)
	}

	t.Run("list", func(t *testing.T) {
		body := decode(t, api.json("GET", fmt.Sprintf("/api/v1/accounts/%d/transactions?category=food", accountID), ""), http.StatusOK)
		if body["total_items"].(float64) != 2 {
			t.Errorf("expected 2 food transactions, got %v", body["total_items"])
		}
		first := body["data"].([]interface{})[0].(map[string]interface{})
		if first["account_name"] != "Wallet" {
			t.Errorf("expected account name Wallet, got %v", first["account_name"])
		}
	})

	t.Run("photo", func(t *testing.T) {
		rec := api.json("GET", fmt.Sprintf("/api/v1/transactions/%d/photo", photoTxID), "")
		if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
			t.Fatalf("expected png photo, got %d %s", rec.Code, rec.Header().Get("Content-Type"))
		}
		if !bytes.Equal(rec.Body.Bytes(), png) {
			t.Error("photo bytes differ from upload")
		}

		decode(t, api.json("DELETE", fmt.Sprintf("/api/v1/transactions/%d/photo", photoTxID), ""), http.StatusOK)
		rec = api.json("GET", fmt.Sprintf("/api/v1/transactions/%d/photo", photoTxID), "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404 after removal, got %d", rec.Code)
		}

		decode(t, api.multipart("PUT", fmt.Sprintf("/api/v1/transactions/%d/photo", photoTxID), nil, png), http.StatusOK)
	})

	t.Run("balance history", func(t *testing.T) {
		body := decode(t, api.json("GET", fmt.Sprintf("/api/v1/accounts/%d/balance-history", accountID), ""), http.StatusOK)
		if body["start_balance"].(float64) != 100 || body["final_balance"].(float64) != 574.5 {
			t.Errorf("unexpected history bounds: %v", body)
		}
		if points := body["points"].([]interface{}); len(points) != 2 {
			t.Errorf("expected 2 dated points, got %d", len(points))
		}
	})

	t.Run("category summary", func(t *testing.T) {
		body := decode(t, api.json("GET", "/api/v1/reports/categories", ""), http.StatusOK)
		cats := body["categories"].([]interface{})
		if len(cats) != 2 {
			t.Fatalf("expected 2 categories, got %d", len(cats))
		}
		food := cats[0].(map[string]interface{})
		if food["category"] != "food" || food["expense"].(float64) != 25.5 {
			t.Errorf("unexpected food total: %v", food)
		}
	})

	t.Run("lookup and delete", func(t *testing.T) {
		body := decode(t, api.json("GET", "/api/v1/transactions/lookup?date=2024-03-02&account=Wallet&category=food&amount=-20", ""), http.StatusOK)
		matches := body["transactions"].([]interface{})
		if len(matches) != 1 {
			t.Fatalf("expected 1 match, got %d", len(matches))
		}
		id := int(matches[0].(map[string]interface{})["id"].(float64))

		decode(t, api.json("DELETE", fmt.Sprintf("/api/v1/transactions/%d", id), ""), http.StatusOK)
		if got := accountBalance(t, api, accountID); got != 594.5 {
			t.Errorf("expected balance 594.5 after delete, got %v", got)
		}
	})

	t.Run("reconciliation", func(t *testing.T) {
		body := decode(t, api.json("GET", fmt.Sprintf("/api/v1/accounts/%d/reconciliation", accountID), ""), http.StatusOK)
		if body["in_sync"] != true {
			t.Errorf("expected ledger in sync, got %v", body)
		}
		decode(t, api.json("POST", fmt.Sprintf("/api/v1/accounts/%d/reconciliation", accountID), ""), http.StatusOK)
	})

	t.Run("zero amount", func(t *testing.T) {
		rec := api.json("POST", "/api/v1/transactions",
			fmt.Sprintf(`{"account_id":%d,"kind":"income","amount":0}`, accountID))
		body := decode(t, rec, http.StatusBadRequest)
		if body["error"].(map[string]interface{})["code"] != "INVALID_INPUT" {
			t.Errorf("expected INVALID_INPUT, got %v", body)
		}
	})

	t.Run("delete account", func(t *testing.T) {
		decode(t, api.json("DELETE", fmt.Sprintf("/api/v1/accounts/%d", accountID), ""), http.StatusOK)
		decode(t, api.json("GET", fmt.Sprintf("/api/v1/accounts/%d", accountID), ""), http.StatusNotFound)

		body := decode(t, api.json("GET", "/api/v1/transactions", ""), http.StatusOK)
		if body["total_items"].(float64) != 0 {
			t.Errorf("expected transactions to be removed with the account, got %v", body["total_items"])
		}
	})
}

func TestNonFiniteAmountRejected(t *testing.T) {
	api := newAPI(t, "")

	acct := decode(t, api.json("POST", "/api/v1/accounts", `{"name":"Wallet","initial_balance":100}`), http.StatusCreated)
	accountID := int(acct["account"].(map[string]interface{})["id"].(float64))

	for _, amount := range []string{"NaN", "Inf", "+Inf", "-Inf"} {
		t.Run(amount, func(t *testing.T) {
			rec := api.multipart("POST", "/api/v1/transactions", map[string]string{
				"account_id": fmt.Sprint(accountID),
				"kind":       "income",
				"amount":     amount,
			}, nil)
			body := decode(t, rec, http.StatusBadRequest)
			if body["error"].(map[string]interface{})["code"] != "INVALID_INPUT" {
				t.Errorf("expected INVALID_INPUT, got %v", body)
			}
		})
	}

	if balance := accountBalance(t, api, accountID); balance != 100 {
		t.Errorf("expected balance 100, got %v", balance)
	}
	decode(t, api.json("GET", fmt.Sprintf("/api/v1/accounts/%d/balance-history", accountID), ""), http.StatusOK)
	decode(t, api.json("GET", "/api/v1/reports/categories", ""), http.StatusOK)

	rec := api.json("GET", "/api/v1/transactions/lookup?date=2024-03-01&account=Wallet&amount=Inf", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for non-finite lookup amount, got %d", rec.Code)
	}
}

func TestAPIKeyGuard(t *testing.T) {
	api := newAPI(t, "s3cret")

	decode(t, api.json("GET", "/api/v1/accounts", ""), http.StatusOK)

	api.apiKey = ""
	rec := api.json("GET", "/api/v1/accounts", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", rec.Code)
	}

	decode(t, api.json("GET", "/api/health", ""), http.StatusOK)
}

func TestCORSPreflight(t *testing.T) {
	api := newAPI(t, "")

	rec := api.json("OPTIONS", "/api/v1/accounts", "")

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS header")
	}
}
