package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/microcash/transactions-api/internal/apperrors"
	"github.com/microcash/transactions-api/internal/service"
	"github.com/microcash/transactions-api/internal/usecase"
)

// TransactionHandler handles the transaction endpoints.
type TransactionHandler struct {
	usecases *usecase.Transactions
	logger   *slog.Logger
}

// NewTransactionHandler creates a new transaction handler.
func NewTransactionHandler(usecases *usecase.Transactions, logger *slog.Logger) *TransactionHandler {
	return &TransactionHandler{
		usecases: usecases,
		logger:   logger,
	}
}

// CreateTransactionRequest is the request body for creating a transaction.
// Only the amount is accepted at creation; everything else is assigned by
// the lifecycle service.
type CreateTransactionRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// UpdateTransactionRequest is the request body for processing a transaction.
// All payer and payee fields are required at this point.
type UpdateTransactionRequest struct {
	Txid string `json:"txid" binding:"required,max=64"`

	PayerName     string `json:"payerName" binding:"required,max=100"`
	PayerDocument string `json:"payerDocument" binding:"required,max=11"`
	PayerBank     string `json:"payerBank" binding:"required,max=8,numeric"`
	PayerBranch   string `json:"payerBranch" binding:"required,max=6,numeric"`
	PayerAccount  string `json:"payerAccount" binding:"required,max=10,numeric"`

	PayeeName     string `json:"payeeName" binding:"required,max=100"`
	PayeeDocument string `json:"payeeDocument" binding:"required,max=11"`
	PayeeBank     string `json:"payeeBank" binding:"required,max=8,numeric"`
	PayeeBranch   string `json:"payeeBranch" binding:"required,max=6,numeric"`
	PayeeAccount  string `json:"payeeAccount" binding:"required,max=10,numeric"`
}

// PagedResponse wraps one page of transactions.
type PagedResponse struct {
	Page     int                `json:"page"`
	PageSize int                `json:"pageSize"`
	Items    []usecase.Resource `json:"items"`
}

// List handles GET /api/transactions
func (h *TransactionHandler) List(c *gin.Context) {
	list, err := h.usecases.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	if len(list) == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "NOT_FOUND",
			"message": "no transactions found",
		})
		return
	}

	for i := range list {
		addSelfLink(&list[i])
	}
	c.JSON(http.StatusOK, list)
}

// ListPaged handles GET /api/transactions/paged?page=&pageSize=
func (h *TransactionHandler) ListPaged(c *gin.Context) {
	page, err := intQuery(c, "page", 1)
	if err != nil {
		writeError(c, err)
		return
	}
	pageSize, err := intQuery(c, "pageSize", 10)
	if err != nil {
		writeError(c, err)
		return
	}

	items, err := h.usecases.ListPaged(c.Request.Context(), page, pageSize)
	if err != nil {
		writeError(c, err)
		return
	}

	if len(items) == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "NOT_FOUND",
			"message": "no transactions found",
		})
		return
	}

	for i := range items {
		addSelfLink(&items[i])
	}
	c.JSON(http.StatusOK, PagedResponse{
		Page:     page,
		PageSize: pageSize,
		Items:    items,
	})
}

// Get handles GET /api/transactions/:txid
func (h *TransactionHandler) Get(c *gin.Context) {
	resource, err := h.usecases.GetByTxid(c.Request.Context(), c.Param("txid"))
	if err != nil {
		writeError(c, err)
		return
	}

	addSelfLink(resource)
	c.JSON(http.StatusOK, resource)
}

// Create handles POST /api/transactions
func (h *TransactionHandler) Create(c *gin.Context) {
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "INVALID_INPUT",
			"message": "Invalid request body: " + err.Error(),
		})
		return
	}

	resource, err := h.usecases.Create(c.Request.Context(), req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}

	addSelfLink(resource)
	c.Header("Location", selfHref(resource.Transaction.Txid))
	c.JSON(http.StatusCreated, resource)
}

// Update handles PUT /api/transactions/:txid
func (h *TransactionHandler) Update(c *gin.Context) {
	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "INVALID_INPUT",
			"message": "Invalid request body: " + err.Error(),
		})
		return
	}

	payload := &service.UpdatePayload{
		Txid:          req.Txid,
		PayerName:     req.PayerName,
		PayerDocument: req.PayerDocument,
		PayerBank:     req.PayerBank,
		PayerBranch:   req.PayerBranch,
		PayerAccount:  req.PayerAccount,
		PayeeName:     req.PayeeName,
		PayeeDocument: req.PayeeDocument,
		PayeeBank:     req.PayeeBank,
		PayeeBranch:   req.PayeeBranch,
		PayeeAccount:  req.PayeeAccount,
	}

	resource, err := h.usecases.Update(c.Request.Context(), c.Param("txid"), payload)
	if err != nil {
		writeError(c, err)
		return
	}

	addSelfLink(resource)
	c.JSON(http.StatusOK, resource)
}

// Delete handles DELETE /api/transactions/:txid
func (h *TransactionHandler) Delete(c *gin.Context) {
	snapshot, err := h.usecases.Delete(c.Request.Context(), c.Param("txid"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

func writeError(c *gin.Context, err error) {
	apiErr := apperrors.ToHTTPError(err)
	c.JSON(apiErr.HTTPStatus, apiErr)
}

func intQuery(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.New(apperrors.KindInvalidInput, name+" must be a number")
	}
	return value, nil
}

func selfHref(txid string) string {
	return "/api/transactions/" + txid
}

func addSelfLink(r *usecase.Resource) {
	if r.Transaction != nil {
		r.AddSelfLink(selfHref(r.Transaction.Txid))
	}
}
