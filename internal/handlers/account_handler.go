package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/AlexyDarius/finarius/internal/errors"
	"github.com/AlexyDarius/finarius/internal/ledger"
	"github.com/AlexyDarius/finarius/internal/models"
	"github.com/AlexyDarius/finarius/internal/pagination"
	"github.com/AlexyDarius/finarius/internal/services"
)

// AccountHandler serves accounts and their raw ledgers.
type AccountHandler struct {
	accountService services.AccountServicer
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService services.AccountServicer) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// TransactionQuery filters and pages an account's transactions.
type TransactionQuery struct {
	pagination.PageRequest
	Type   string `form:"type" binding:"omitempty,transaction_type"`
	Symbol string `form:"symbol" binding:"omitempty,max=32"`
}

// ListAccounts returns every account.
// @Summary     List accounts
// @Tags        accounts
// @Produce     json
// @Success     200 {object} map[string][]ledger.Account
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts [get]
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	accounts, err := h.accountService.ListAccounts()
	if err != nil {
		respondWithError(c, err)
		return
	}
	if accounts == nil {
		accounts = []ledger.Account{}
	}
	c.JSON(http.StatusOK, gin.H{"accounts": accounts})
}

// ListTransactions returns one page of an account's transactions, newest first.
// @Summary     List account transactions
// @Tags        accounts
// @Produce     json
// @Param       id        path  int    true  "Account ID"
// @Param       page      query int    false "Page number"
// @Param       page_size query int    false "Page size (max 100)"
// @Param       type      query string false "BUY, SELL, DIVIDEND, DEPOSIT or WITHDRAW"
// @Param       symbol    query string false "Ticker"
// @Success     200 {object} pagination.PageResponse[ledger.Transaction]
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /accounts/{id}/transactions [get]
func (h *AccountHandler) ListTransactions(c *gin.Context) {
	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q TransactionQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter := ledger.TransactionFilter{Type: models.TransactionType(q.Type), Symbol: q.Symbol}
	page, err := h.accountService.ListTransactionsPage(accountID, q.PageRequest, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}
