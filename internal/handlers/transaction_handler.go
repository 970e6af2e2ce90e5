package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"khata-backend/internal/models"
	"khata-backend/internal/services"
	"khata-backend/internal/storage"
	"khata-backend/pkg/utils"

	"github.com/shopspring/decimal"
)

const maxBillSize = 10 << 20 // 10 MB

type TransactionHandler struct {
	Ledger *services.LedgerService
	Bills  *storage.BillStore
}

func NewTransactionHandler(ledger *services.LedgerService, bills *storage.BillStore) *TransactionHandler {
	return &TransactionHandler{
		Ledger: ledger,
		Bills:  bills,
	}
}

// CreateTransaction records a credit or debit. The body is either JSON or
// multipart/form-data; the multipart form may carry a "bill" file that gets
// stored before the transaction row is written.
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req models.CreateTransactionRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if !h.parseMultipartCreate(w, r, &req) {
			return
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	transaction, err := h.Ledger.CreateTransaction(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.JSON(w, http.StatusCreated, transaction)
}

func (h *TransactionHandler) parseMultipartCreate(w http.ResponseWriter, r *http.Request, req *models.CreateTransactionRequest) bool {
	if err := r.ParseMultipartForm(maxBillSize); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid multipart form")
		return false
	}

	customerID, err := strconv.Atoi(r.FormValue("customer_id"))
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid customer_id")
		return false
	}
	amount, err := decimal.NewFromString(r.FormValue("amount"))
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid amount")
		return false
	}

	req.CustomerID = customerID
	req.Amount = amount
	req.Type = models.TransactionType(r.FormValue("type"))
	req.PaymentMode = models.PaymentMode(r.FormValue("payment_mode"))
	req.Date = r.FormValue("date")
	req.Description = r.FormValue("description")

	file, header, err := r.FormFile("bill")
	if err == http.ErrMissingFile {
		return true
	}
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid bill file")
		return false
	}
	defer file.Close()

	if h.Bills == nil {
		utils.Error(w, http.StatusBadRequest, "attachment storage is not configured")
		return false
	}

	key := storage.BillKey(header.Filename)
	contentType := header.Header.Get("Content-Type")
	if err := h.Bills.Put(r.Context(), key, contentType, file); err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to store bill")
		return false
	}
	req.BillKey = key
	return true
}

func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	transaction, err := h.Ledger.GetTransaction(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, transaction)
}

func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	transactions, err := h.Ledger.ListTransactions(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, transactions)
}

func (h *TransactionHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	var req models.UpdateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	transaction, err := h.Ledger.UpdateTransaction(r.Context(), userID, id, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, transaction)
}

func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	if err := h.Ledger.DeleteTransaction(r.Context(), userID, id); err != nil {
		writeServiceError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]string{"message": "transaction deleted"})
}

// Summary reports per-type counts and totals across the caller's ledger.
func (h *TransactionHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	summary, err := h.Ledger.Summary(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, summary)
}
