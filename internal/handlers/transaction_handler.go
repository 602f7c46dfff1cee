package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"moneylens/internal/models"
	"moneylens/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// DeleteTransactionsRequest lists the transactions to remove.
type DeleteTransactionsRequest struct {
	IDs []string `json:"ids" binding:"dive,uuid"`
}

// parseTransactionFilter reads the shared filter vocabulary from the query
// string.
func parseTransactionFilter(c *gin.Context) (models.TransactionFilter, error) {
	var filter models.TransactionFilter
	var err error

	if filter.From, err = queryDate(c, "from"); err != nil {
		return filter, err
	}
	if filter.To, err = queryDate(c, "to"); err != nil {
		return filter, err
	}
	if filter.Type, err = queryType(c); err != nil {
		return filter, err
	}
	filter.Category = queryString(c, "category")
	filter.BankAccount = queryString(c, "bank_account")
	filter.TagsAny = queryList(c, "tags_any")
	filter.TagsAll = queryList(c, "tags_all")
	filter.OrderBy = c.Query("order_by")
	filter.OrderDir = c.Query("order_dir")

	if filter.Limit, err = queryInt(c, "limit"); err != nil {
		return filter, err
	}
	if filter.Offset, err = queryInt(c, "offset"); err != nil {
		return filter, err
	}
	return filter, nil
}

// ListTransactions handles the retrieval of the user's transactions
// @Summary     List transactions
// @Description List transactions matching every given filter
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       from         query string false "Earliest date, inclusive (YYYY-MM-DD)"
// @Param       to           query string false "Latest date, inclusive (YYYY-MM-DD)"
// @Param       type         query string false "earn, spend or save"
// @Param       category     query string false "Category label"
// @Param       bank_account query string false "Bank account label"
// @Param       tags_any     query string false "Comma-separated tags; any must match"
// @Param       tags_all     query string false "Comma-separated tags; all must match"
// @Param       order_by     query string false "date, amount, category, bank_account, type or created_at"
// @Param       order_dir    query string false "asc (default) or desc"
// @Param       limit        query int    false "Maximum rows"
// @Param       offset       query int    false "Rows to skip; limit defaults to 20 when set"
// @Success     200 {object} map[string][]models.Transaction "Transactions"
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactions, err := h.transactionService.ListTransactions(c.Request.Context(), userID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": transactions})
}

// CreateSpend records an outgoing transaction
// @Summary     Create a spend
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body models.TransactionInput true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /transactions/spend [post]
func (h *TransactionHandler) CreateSpend(c *gin.Context) {
	h.create(c, models.TransactionTypeSpend, h.transactionService.CreateSpend)
}

// CreateEarn records an incoming transaction
// @Summary     Create an earning
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body models.TransactionInput true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /transactions/earn [post]
func (h *TransactionHandler) CreateEarn(c *gin.Context) {
	h.create(c, models.TransactionTypeEarn, h.transactionService.CreateEarn)
}

// CreateSave records money put aside
// @Summary     Create a saving
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body models.TransactionInput true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /transactions/save [post]
func (h *TransactionHandler) CreateSave(c *gin.Context) {
	h.create(c, models.TransactionTypeSave, h.transactionService.CreateSave)
}

type createFunc func(ctx context.Context, userID string, input models.TransactionInput) (*models.Transaction, error)

func (h *TransactionHandler) create(c *gin.Context, txType models.TransactionType, create createFunc) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req models.TransactionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	transaction, err := create(c.Request.Context(), userID, req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "CREATE_TRANSACTION", "transaction", transaction.ID, c.ClientIP(),
		map[string]interface{}{"type": txType, "amount": transaction.Amount.String(), "date": transaction.Date.String()})

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// SumTransactions totals the amount of the matching transactions
// @Summary     Sum transactions
// @Description Sum the amount of every transaction matching the filters; ordering and paging are ignored
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       from         query string false "Earliest date, inclusive (YYYY-MM-DD)"
// @Param       to           query string false "Latest date, inclusive (YYYY-MM-DD)"
// @Param       type         query string false "earn, spend or save"
// @Param       category     query string false "Category label"
// @Param       bank_account query string false "Bank account label"
// @Param       tags_any     query string false "Comma-separated tags"
// @Param       tags_all     query string false "Comma-separated tags"
// @Success     200 {object} map[string]string "Total"
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /transactions/sum [get]
func (h *TransactionHandler) SumTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	total, err := h.transactionService.SumTransactionsAmount(c.Request.Context(), userID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"total": total})
}

// GetTransactionByID handles the retrieval of a specific transaction
// @Summary     Get transaction by ID
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction details"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(c.Request.Context(), userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// UpdateTransaction applies a partial update
// @Summary     Update transaction
// @Description Change only the fields present in the body. Null clears category, bank_account, tags or notes; type, date and amount cannot be cleared.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                    true "Transaction ID"
// @Param       request body models.TransactionChanges true "Fields to update"
// @Success     200 {object} models.Transaction "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [patch]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	txID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var changes models.TransactionChanges
	if err := c.ShouldBindJSON(&changes); err != nil {
		invalidInput(c, err)
		return
	}

	transaction, err := h.transactionService.UpdateTransaction(c.Request.Context(), userID, txID, changes)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "UPDATE_TRANSACTION", "transaction", txID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction removes one transaction
// @Summary     Delete transaction
// @Description Delete a transaction. Deleting an id that does not exist succeeds.
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} map[string]string "Deleted"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	txID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(c.Request.Context(), userID, txID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "DELETE_TRANSACTION", "transaction", txID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}

// DeleteTransactions removes several transactions at once
// @Summary     Delete transactions
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body DeleteTransactionsRequest true "Transaction IDs"
// @Success     200 {object} map[string]int64 "Number of deleted rows"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /transactions [delete]
func (h *TransactionHandler) DeleteTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req DeleteTransactionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	deleted, err := h.transactionService.DeleteTransactions(c.Request.Context(), userID, req.IDs)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if deleted > 0 {
		h.auditService.Log(c.Request.Context(), userID, "DELETE_TRANSACTIONS", "transaction", "", c.ClientIP(),
			map[string]interface{}{"ids": req.IDs, "deleted": deleted})
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
