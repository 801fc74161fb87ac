package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/microcash/transactions-api/internal/messaging"
	"github.com/microcash/transactions-api/internal/service"
	"github.com/microcash/transactions-api/internal/store/memory"
	"github.com/microcash/transactions-api/internal/txid"
	"github.com/microcash/transactions-api/internal/usecase"
)

type mapCache struct {
	entries map[string]string
}

func (c *mapCache) Set(ctx context.Context, key, payload string) error {
	c.entries[key] = payload
	return nil
}

func (c *mapCache) Get(ctx context.Context, key string) (string, bool, error) {
	payload, ok := c.entries[key]
	return payload, ok, nil
}

func (c *mapCache) Remove(ctx context.Context, key string) error {
	delete(c.entries, key)
	return nil
}

type nopPublisher struct{}

func (nopPublisher) Publish(ctx context.Context, event messaging.Event) error { return nil }
func (nopPublisher) Close() error                                             { return nil }

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	svc := service.New(memory.New(), txid.NewGenerator(), logger)
	uc := usecase.NewTransactions(svc, &mapCache{entries: make(map[string]string)}, nopPublisher{}, logger)
	h := NewTransactionHandler(uc, logger)

	router := gin.New()
	api := router.Group("/api/transactions")
	api.GET("", h.List)
	api.GET("/paged", h.ListPaged)
	api.GET("/:txid", h.Get)
	api.POST("", h.Create)
	api.PUT("/:txid", h.Update)
	api.DELETE("/:txid", h.Delete)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type resourceBody struct {
	Transaction struct {
		Txid            string          `json:"txid"`
		E2eID           string          `json:"e2eId"`
		Amount          json.RawMessage `json:"amount"`
		PayerName       string          `json:"payerName"`
		PayeeName       string          `json:"payeeName"`
		TransactionDate string          `json:"transactionDate"`
	} `json:"transaction"`
	Links []struct {
		Rel    string `json:"rel"`
		Href   string `json:"href"`
		Method string `json:"method"`
	} `json:"links"`
}

func decodeResourceBody(t *testing.T, w *httptest.ResponseRecorder) resourceBody {
	t.Helper()
	var body resourceBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v (body %s)", err, w.Body.String())
	}
	return body
}

var txidPattern = regexp.MustCompile(`^[A-Za-z0-9]{26,35}$`)

const updateBodyFmt = `{
	"txid": %q,
	"payerName": "Joao",
	"payerDocument": "12345678901",
	"payerBank": "341",
	"payerBranch": "1234",
	"payerAccount": "567890",
	"payeeName": "Maria",
	"payeeDocument": "10987654321",
	"payeeBank": "237",
	"payeeBranch": "4321",
	"payeeAccount": "98765"
}`

func TestCreateTransaction(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/api/transactions", `{"amount": 100.00}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, http.StatusCreated, w.Body.String())
	}

	body := decodeResourceBody(t, w)
	if !txidPattern.MatchString(body.Transaction.Txid) {
		t.Errorf("txid %q does not match expected format", body.Transaction.Txid)
	}
	if body.Transaction.E2eID != "" {
		t.Errorf("e2eId = %q on a fresh transaction, want empty", body.Transaction.E2eID)
	}
	if got := strings.Trim(string(body.Transaction.Amount), `"`); got != "100" {
		t.Errorf("amount = %s, want 100", got)
	}

	wantLocation := "/api/transactions/" + body.Transaction.Txid
	if got := w.Header().Get("Location"); got != wantLocation {
		t.Errorf("Location = %q, want %q", got, wantLocation)
	}
	if len(body.Links) != 1 || body.Links[0].Rel != "self" || body.Links[0].Href != wantLocation {
		t.Errorf("links = %+v, want one self link to %s", body.Links, wantLocation)
	}
}

func TestCreateRejectsNonPositiveAmount(t *testing.T) {
	router := newTestRouter()

	for _, body := range []string{`{"amount": 0}`, `{"amount": -5.00}`} {
		w := doJSON(t, router, http.MethodPost, "/api/transactions", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want %d", body, w.Code, http.StatusBadRequest)
		}
	}
}

func TestCreateRejectsMalformedBody(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/api/transactions", `{"amount": "not a number`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestGetUnknownTxidReturns404(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodGet, "/api/transactions/TDOESNOTEXIST0000000000000", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestListEmptyReturns404(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodGet, "/api/transactions", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, http.StatusNotFound, w.Body.String())
	}

	var envelope struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	if envelope.Code != "NOT_FOUND" {
		t.Errorf("code = %q, want NOT_FOUND", envelope.Code)
	}
}

func TestTransactionLifecycle(t *testing.T) {
	router := newTestRouter()

	created := decodeResourceBody(t, doJSON(t, router, http.MethodPost, "/api/transactions", `{"amount": 100.00}`))
	id := created.Transaction.Txid

	updateBody := fmt.Sprintf(updateBodyFmt, id)
	w := doJSON(t, router, http.MethodPut, "/api/transactions/"+id, updateBody)
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, want %d (body %s)", w.Code, http.StatusOK, w.Body.String())
	}
	updated := decodeResourceBody(t, w)
	if updated.Transaction.E2eID == "" {
		t.Error("e2eId empty after update")
	}
	if !txidPattern.MatchString(updated.Transaction.E2eID) {
		t.Errorf("e2eId %q does not match expected format", updated.Transaction.E2eID)
	}
	if updated.Transaction.PayerName != "Joao" {
		t.Errorf("payerName = %q, want Joao", updated.Transaction.PayerName)
	}
	if updated.Transaction.Txid != id {
		t.Errorf("txid changed on update: %q != %q", updated.Transaction.Txid, id)
	}

	// A processed transaction cannot be updated again
	w = doJSON(t, router, http.MethodPut, "/api/transactions/"+id, updateBody)
	if w.Code != http.StatusConflict {
		t.Fatalf("second update status = %d, want %d (body %s)", w.Code, http.StatusConflict, w.Body.String())
	}

	// Delete works from any state and returns the final snapshot
	w = doJSON(t, router, http.MethodDelete, "/api/transactions/"+id, "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d, want %d (body %s)", w.Code, http.StatusOK, w.Body.String())
	}
	var snapshot struct {
		Txid  string `json:"txid"`
		E2eID string `json:"e2eId"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &snapshot); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snapshot.Txid != id || snapshot.E2eID == "" {
		t.Errorf("snapshot = %+v, want txid %s with e2eId set", snapshot, id)
	}

	w = doJSON(t, router, http.MethodGet, "/api/transactions/"+id, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestUpdateTxidMismatchReturns400(t *testing.T) {
	router := newTestRouter()

	created := decodeResourceBody(t, doJSON(t, router, http.MethodPost, "/api/transactions", `{"amount": 10.00}`))
	other := decodeResourceBody(t, doJSON(t, router, http.MethodPost, "/api/transactions", `{"amount": 20.00}`))

	body := fmt.Sprintf(updateBodyFmt, other.Transaction.Txid)
	w := doJSON(t, router, http.MethodPut, "/api/transactions/"+created.Transaction.Txid, body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, http.StatusBadRequest, w.Body.String())
	}
}

func TestUpdateMissingFieldsReturns400(t *testing.T) {
	router := newTestRouter()

	created := decodeResourceBody(t, doJSON(t, router, http.MethodPost, "/api/transactions", `{"amount": 10.00}`))
	id := created.Transaction.Txid

	w := doJSON(t, router, http.MethodPut, "/api/transactions/"+id, fmt.Sprintf(`{"txid": %q, "payerName": "Joao"}`, id))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestUpdateUnknownTxidReturns404(t *testing.T) {
	router := newTestRouter()

	const id = "TUNKNOWN000000000000000000"
	w := doJSON(t, router, http.MethodPut, "/api/transactions/"+id, fmt.Sprintf(updateBodyFmt, id))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, http.StatusNotFound, w.Body.String())
	}
}

func TestDeleteUnknownTxidReturns404(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodDelete, "/api/transactions/TUNKNOWN000000000000000000", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestListPaged(t *testing.T) {
	router := newTestRouter()

	for i := 0; i < 3; i++ {
		doJSON(t, router, http.MethodPost, "/api/transactions", `{"amount": 10.00}`)
	}

	w := doJSON(t, router, http.MethodGet, "/api/transactions/paged?page=1&pageSize=2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, http.StatusOK, w.Body.String())
	}

	var page struct {
		Page     int               `json:"page"`
		PageSize int               `json:"pageSize"`
		Items    []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.Page != 1 || page.PageSize != 2 || len(page.Items) != 2 {
		t.Errorf("page = %d/%d with %d items, want 1/2 with 2 items", page.Page, page.PageSize, len(page.Items))
	}
}

func TestListPagedValidation(t *testing.T) {
	router := newTestRouter()

	doJSON(t, router, http.MethodPost, "/api/transactions", `{"amount": 10.00}`)

	tests := []struct {
		name    string
		query   string
		want    int
		wantMsg string
	}{
		{"zero page", "page=0&pageSize=10", http.StatusBadRequest, "greater than zero"},
		{"negative page size", "page=1&pageSize=-1", http.StatusBadRequest, "greater than zero"},
		{"non numeric page", "page=abc&pageSize=10", http.StatusBadRequest, "page must be a number"},
		{"non numeric page size", "page=1&pageSize=ten", http.StatusBadRequest, "pageSize must be a number"},
		{"page past the data", "page=99&pageSize=10", http.StatusNotFound, ""},
		{"defaults", "", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodGet, "/api/transactions/paged?"+tt.query, "")
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
			if tt.wantMsg != "" && !strings.Contains(w.Body.String(), tt.wantMsg) {
				t.Errorf("body %s does not mention %q", w.Body.String(), tt.wantMsg)
			}
		})
	}
}
