package services

import (
	"bytes"
	"context"
	"fmt"

	"khata-backend/internal/models"
	"khata-backend/internal/timeutil"

	"github.com/jung-kurt/gofpdf/v2"
	"github.com/shopspring/decimal"
)

// StatementService generates printable customer account statements. It reads
// through the same store contracts as the ledger so the rendering logic can
// be exercised without a database.
type StatementService struct {
	customers    BalanceStore
	transactions TransactionStore
}

func NewStatementService(customers BalanceStore, transactions TransactionStore) *StatementService {
	return &StatementService{
		customers:    customers,
		transactions: transactions,
	}
}

// GenerateCustomerStatement renders a PDF statement for one customer: header,
// transaction table in date order, and the closing balance.
func (s *StatementService) GenerateCustomerStatement(ctx context.Context, userID, customerID int) ([]byte, string, error) {
	customer, err := s.customers.Get(ctx, userID, customerID)
	if err != nil {
		return nil, "", err
	}
	transactions, err := s.transactions.ListByCustomer(ctx, userID, customerID)
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "Account Statement", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Generated: %s", timeutil.Now().Format(timeutil.DisplayLayout)), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	// Customer info box
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Customer Information", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 7, fmt.Sprintf("Name: %s", customer.Name), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Contact: %s", customer.ContactNumber), "RB", 1, "L", false, 0, "")
	if customer.Address != "" {
		pdf.CellFormat(190, 7, fmt.Sprintf("Address: %s", customer.Address), "LRB", 1, "L", false, 0, "")
	}
	pdf.Ln(5)

	// Transaction table
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Transactions", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(30, 7, "Date", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 7, "Type", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 7, "Mode", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 7, "Amount", "1", 0, "C", true, 0, "")
	pdf.CellFormat(70, 7, "Description", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	var creditTotal, debitTotal decimal.Decimal
	// ListByCustomer returns newest first; the statement reads oldest first.
	for i := len(transactions) - 1; i >= 0; i-- {
		t := transactions[i]
		if t.Type == models.TransactionCredit {
			creditTotal = creditTotal.Add(t.Amount)
		} else {
			debitTotal = debitTotal.Add(t.Amount)
		}
		desc := t.Description
		if r := []rune(desc); len(r) > 35 {
			desc = string(r[:32]) + "..."
		}
		pdf.CellFormat(30, 6, timeutil.ToIST(t.Date).Format("02-Jan-2006"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, string(t.Type), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, string(t.PaymentMode), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("Rs. %s", t.Amount.StringFixed(2)), "1", 0, "R", false, 0, "")
		pdf.CellFormat(70, 6, desc, "1", 1, "L", false, 0, "")
	}
	if len(transactions) == 0 {
		pdf.CellFormat(190, 6, "No transactions recorded", "1", 1, "C", false, 0, "")
	}
	pdf.Ln(5)

	// Totals and closing balance
	pdf.SetFont("Arial", "B", 12)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(190, 8, "Summary", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 8, fmt.Sprintf("Total Credit: Rs. %s", creditTotal.StringFixed(2)), "1", 0, "C", false, 0, "")
	pdf.CellFormat(95, 8, fmt.Sprintf("Total Debit: Rs. %s", debitTotal.StringFixed(2)), "1", 1, "C", false, 0, "")

	if customer.AccountBalance.Sign() < 0 {
		pdf.SetFillColor(255, 200, 200)
	} else {
		pdf.SetFillColor(200, 255, 200)
	}
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(190, 10, fmt.Sprintf("Account Balance: Rs. %s", customer.AccountBalance.StringFixed(2)), "1", 1, "C", true, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("statement_%d_%s.pdf", customer.ID, timeutil.Now().Format("02012006"))
	return buf.Bytes(), filename, nil
}
