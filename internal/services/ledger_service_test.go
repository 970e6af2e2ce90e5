package services_test

import (
	"context"
	"errors"
	"testing"

	"khata-backend/internal/metrics"
	"khata-backend/internal/models"
	"khata-backend/internal/services"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
)

// fakeLedgerStore is an in-memory stand-in for the customer and transaction
// repositories. Ownership scoping mirrors the real queries: records under a
// different account-holder read as not-found.
type fakeLedgerStore struct {
	customers    map[int]*models.Customer
	transactions map[int]*models.Transaction
	nextTxnID    int

	// When set, the next Update call removes the row and reports not-found,
	// simulating a concurrent delete landing between read and write. A
	// non-zero dropCustomerOnFail removes that customer as well, as a
	// concurrent customer delete would via the cascade.
	failNextUpdate     bool
	dropCustomerOnFail int
}

func newFakeLedgerStore() *fakeLedgerStore {
	return &fakeLedgerStore{
		customers:    make(map[int]*models.Customer),
		transactions: make(map[int]*models.Transaction),
	}
}

func (f *fakeLedgerStore) addCustomer(id, userID int, name string) {
	f.customers[id] = &models.Customer{ID: id, UserID: userID, Name: name}
}

func (f *fakeLedgerStore) owned(userID, customerID int) bool {
	c, ok := f.customers[customerID]
	return ok && c.UserID == userID
}

func (f *fakeLedgerStore) Get(ctx context.Context, userID, id int) (*models.Customer, error) {
	if !f.owned(userID, id) {
		return nil, models.ErrNotFound
	}
	c := *f.customers[id]
	return &c, nil
}

func (f *fakeLedgerStore) AddToBalance(ctx context.Context, userID, id int, delta decimal.Decimal) error {
	if !f.owned(userID, id) {
		return models.ErrNotFound
	}
	c := f.customers[id]
	c.AccountBalance = c.AccountBalance.Add(delta)
	return nil
}

func (f *fakeLedgerStore) RecalculateBalance(ctx context.Context, userID, id int) (decimal.Decimal, error) {
	if !f.owned(userID, id) {
		return decimal.Zero, models.ErrNotFound
	}
	sum := decimal.Zero
	for _, t := range f.transactions {
		if t.CustomerID != id {
			continue
		}
		if t.Type == models.TransactionCredit {
			sum = sum.Add(t.Amount)
		} else {
			sum = sum.Sub(t.Amount)
		}
	}
	f.customers[id].AccountBalance = sum
	return sum, nil
}

func (f *fakeLedgerStore) CreateTxn(ctx context.Context, t *models.Transaction) error {
	f.nextTxnID++
	t.ID = f.nextTxnID
	copied := *t
	f.transactions[t.ID] = &copied
	return nil
}

func (f *fakeLedgerStore) GetTxn(ctx context.Context, userID, id int) (*models.Transaction, error) {
	t, ok := f.transactions[id]
	if !ok || !f.owned(userID, t.CustomerID) {
		return nil, models.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (f *fakeLedgerStore) ListTxns(ctx context.Context, userID int) ([]*models.Transaction, error) {
	var out []*models.Transaction
	for _, t := range f.transactions {
		if f.owned(userID, t.CustomerID) {
			copied := *t
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeLedgerStore) ListByCustomer(ctx context.Context, userID, customerID int) ([]*models.Transaction, error) {
	var out []*models.Transaction
	for _, t := range f.transactions {
		if t.CustomerID == customerID && f.owned(userID, customerID) {
			copied := *t
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeLedgerStore) UpdateTxn(ctx context.Context, userID int, t *models.Transaction) error {
	if f.failNextUpdate {
		f.failNextUpdate = false
		delete(f.transactions, t.ID)
		if f.dropCustomerOnFail != 0 {
			delete(f.customers, f.dropCustomerOnFail)
			f.dropCustomerOnFail = 0
		}
		return models.ErrNotFound
	}
	existing, ok := f.transactions[t.ID]
	if !ok || !f.owned(userID, existing.CustomerID) {
		return models.ErrNotFound
	}
	copied := *t
	f.transactions[t.ID] = &copied
	return nil
}

func (f *fakeLedgerStore) DeleteTxn(ctx context.Context, userID, id int) (*models.Transaction, error) {
	t, ok := f.transactions[id]
	if !ok || !f.owned(userID, t.CustomerID) {
		return nil, models.ErrNotFound
	}
	delete(f.transactions, id)
	copied := *t
	return &copied, nil
}

func (f *fakeLedgerStore) SummaryTxns(ctx context.Context, userID int) (*models.TransactionSummary, error) {
	s := &models.TransactionSummary{}
	for _, t := range f.transactions {
		if !f.owned(userID, t.CustomerID) {
			continue
		}
		if t.Type == models.TransactionCredit {
			s.CreditCount++
			s.CreditTotal = s.CreditTotal.Add(t.Amount)
		} else {
			s.DebitCount++
			s.DebitTotal = s.DebitTotal.Add(t.Amount)
		}
	}
	return s, nil
}

// txnStore adapts fakeLedgerStore to the transaction contract; the method
// names on the fake differ so the same struct can also serve customers.
type txnStore struct{ *fakeLedgerStore }

func (s txnStore) Create(ctx context.Context, t *models.Transaction) error {
	return s.CreateTxn(ctx, t)
}
func (s txnStore) Get(ctx context.Context, userID, id int) (*models.Transaction, error) {
	return s.GetTxn(ctx, userID, id)
}
func (s txnStore) List(ctx context.Context, userID int) ([]*models.Transaction, error) {
	return s.ListTxns(ctx, userID)
}
func (s txnStore) Update(ctx context.Context, userID int, t *models.Transaction) error {
	return s.UpdateTxn(ctx, userID, t)
}
func (s txnStore) Delete(ctx context.Context, userID, id int) (*models.Transaction, error) {
	return s.DeleteTxn(ctx, userID, id)
}
func (s txnStore) Summary(ctx context.Context, userID int) (*models.TransactionSummary, error) {
	return s.SummaryTxns(ctx, userID)
}

type fakeBillRemover struct {
	removed []string
	err     error
}

func (f *fakeBillRemover) Delete(ctx context.Context, key string) error {
	if f.err != nil {
		return f.err
	}
	f.removed = append(f.removed, key)
	return nil
}

func newLedger() (*services.LedgerService, *fakeLedgerStore, *fakeBillRemover) {
	store := newFakeLedgerStore()
	bills := &fakeBillRemover{}
	return services.NewLedgerService(txnStore{store}, store, bills), store, bills
}

func createReq(customerID int, amount string, typ models.TransactionType) *models.CreateTransactionRequest {
	return &models.CreateTransactionRequest{
		CustomerID: customerID,
		Amount:     decimal.RequireFromString(amount),
		Type:       typ,
		Date:       "2026-01-15",
	}
}

func balance(t *testing.T, store *fakeLedgerStore, customerID int) string {
	t.Helper()
	c, ok := store.customers[customerID]
	if !ok {
		t.Fatalf("customer %d missing", customerID)
	}
	return c.AccountBalance.StringFixed(2)
}

func TestCreateTransactionAppliesSignedDelta(t *testing.T) {
	svc, store, _ := newLedger()
	store.addCustomer(1, 10, "Ramesh")
	ctx := context.Background()

	if _, err := svc.CreateTransaction(ctx, 10, createReq(1, "500.00", models.TransactionCredit)); err != nil {
		t.Fatalf("create credit: %v", err)
	}
	if got, want := balance(t, store, 1), "500.00"; got != want {
		t.Fatalf("balance after credit got=%s want=%s", got, want)
	}

	if _, err := svc.CreateTransaction(ctx, 10, createReq(1, "200.00", models.TransactionDebit)); err != nil {
		t.Fatalf("create debit: %v", err)
	}
	if got, want := balance(t, store, 1), "300.00"; got != want {
		t.Fatalf("balance after debit got=%s want=%s", got, want)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	svc, store, _ := newLedger()
	store.addCustomer(1, 10, "Ramesh")
	ctx := context.Background()

	tests := []struct {
		name string
		req  *models.CreateTransactionRequest
	}{
		{"zero amount", createReq(1, "0", models.TransactionCredit)},
		{"negative amount", createReq(1, "-5.00", models.TransactionDebit)},
		{"three decimal places", createReq(1, "10.005", models.TransactionCredit)},
		{"bad type", createReq(1, "10.00", "transfer")},
		{"bad date", &models.CreateTransactionRequest{
			CustomerID: 1,
			Amount:     decimal.RequireFromString("10.00"),
			Type:       models.TransactionCredit,
			Date:       "15-01-2026",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateTransaction(ctx, 10, tt.req); err == nil {
				t.Errorf("CreateTransaction(%s) error = nil, want error", tt.name)
			}
		})
	}

	if got, want := balance(t, store, 1), "0.00"; got != want {
		t.Fatalf("rejected requests changed balance: got=%s want=%s", got, want)
	}
}

func TestCreateTransactionUnknownCustomer(t *testing.T) {
	svc, store, _ := newLedger()
	store.addCustomer(1, 10, "Ramesh")
	ctx := context.Background()

	// Missing customer and another owner's customer look the same.
	if _, err := svc.CreateTransaction(ctx, 10, createReq(99, "10.00", models.TransactionCredit)); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("missing customer error = %v, want ErrNotFound", err)
	}
	if _, err := svc.CreateTransaction(ctx, 20, createReq(1, "10.00", models.TransactionCredit)); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("foreign customer error = %v, want ErrNotFound", err)
	}
}

func TestUpdateTransactionAmountAppliesNetDelta(t *testing.T) {
	svc, store, _ := newLedger()
	store.addCustomer(1, 10, "Ramesh")
	ctx := context.Background()

	txn, err := svc.CreateTransaction(ctx, 10, createReq(1, "500.00", models.TransactionCredit))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newAmount := decimal.RequireFromString("360.00")
	updated, err := svc.UpdateTransaction(ctx, 10, txn.ID, &models.UpdateTransactionRequest{Amount: &newAmount})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got, want := updated.Amount.StringFixed(2), "360.00"; got != want {
		t.Fatalf("updated amount got=%s want=%s", got, want)
	}
	if got, want := balance(t, store, 1), "360.00"; got != want {
		t.Fatalf("balance after amount change got=%s want=%s", got, want)
	}
}

func TestUpdateTransactionAmountAndTypeTogether(t *testing.T) {
	svc, store, _ := newLedger()
	store.addCustomer(1, 10, "Ramesh")
	ctx := context.Background()

	txn, err := svc.CreateTransaction(ctx, 10, createReq(1, "100.00", models.TransactionCredit))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// +100 impact becomes -40: the net change is -140.
	amount := decimal.RequireFromString("40.00")
	debit := models.TransactionDebit
	if _, err := svc.UpdateTransaction(ctx, 10, txn.ID, &models.UpdateTransactionRequest{Amount: &amount, Type: &debit}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got, want := balance(t, store, 1), "-40.00"; got != want {
		t.Fatalf("balance got=%s want=%s", got, want)
	}
}

func TestBalanceTracksTransactionHistory(t *testing.T) {
	svc, store, _ := newLedger()
	store.addCustomer(1, 10, "Ramesh")
	ctx := context.Background()

	first, err := svc.CreateTransaction(ctx, 10, createReq(1, "500.00", models.TransactionCredit))
	if err != nil {
		t.Fatalf("create credit: %v", err)
	}
	if got, want := balance(t, store, 1), "500.00"; got != want {
		t.Fatalf("after credit got=%s want=%s", got, want)
	}

	if _, err := svc.CreateTransaction(ctx, 10, createReq(1, "200.00", models.TransactionDebit)); err != nil {
		t.Fatalf("create debit: %v", err)
	}
	if got, want := balance(t, store, 1), "300.00"; got != want {
		t.Fatalf("after debit got=%s want=%s", got, want)
	}

	// After deleting the credit only the -200 debit remains.
	if err := svc.DeleteTransaction(ctx, 10, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, want := balance(t, store, 1), "-200.00"; got != want {
		t.Fatalf("after delete got=%s want=%s", got, want)
	}

	recomputed, err := svc.RecalculateBalance(ctx, 10, 1)
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	if got, want := recomputed.StringFixed(2), "-200.00"; got != want {
		t.Fatalf("recomputed got=%s want=%s", got, want)
	}
}

func TestUpdateTransactionTypeFlip(t *testing.T) {
	svc, store, _ := newLedger()
	store.addCustomer(1, 10, "Ramesh")
	ctx := context.Background()

	txn, err := svc.CreateTransaction(ctx, 10, createReq(1, "100.00", models.TransactionCredit))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	debit := models.TransactionDebit
	if _, err := svc.UpdateTransaction(ctx, 10, txn.ID, &models.UpdateTransactionRequest{Type: &debit}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got, want := balance(t, store, 1), "-100.00"; got != want {
		t.Fatalf("balance after type flip got=%s want=%s", got, want)
	}
}

func TestUpdateTransactionMovesCustomer(t *testing.T) {
	svc, store, _ := newLedger()
	store.addCustomer(1, 10, "Ramesh")
	store.addCustomer(2, 10, "Suresh")
	ctx := context.Background()

	txn, err := svc.CreateTransaction(ctx, 10, createReq(1, "250.00", models.TransactionCredit))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	target := 2
	moved, err := svc.UpdateTransaction(ctx, 10, txn.ID, &models.UpdateTransactionRequest{CustomerID: &target})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if moved.CustomerID != 2 {
		t.Fatalf("moved customer id got=%d want=2", moved.CustomerID)
	}
	if got, want := balance(t, store, 1), "0.00"; got != want {
		t.Fatalf("source balance got=%s want=%s", got, want)
	}
	if got, want := balance(t, store, 2), "250.00"; got != want {
		t.Fatalf("target balance got=%s want=%s", got, want)
	}
}

func TestUpdateTransactionMoveToForeignCustomer(t *testing.T) {
	svc, store, _ := newLedger()
	store.addCustomer(1, 10, "Ramesh")
	store.addCustomer(2, 20, "Other owner")
	ctx := context.Background()

	txn, err := svc.CreateTransaction(ctx, 10, createReq(1, "250.00", models.TransactionCredit))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	target := 2
	if _, err := svc.UpdateTransaction(ctx, 10, txn.ID, &models.UpdateTransactionRequest{CustomerID: &target}); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("move to foreign customer error = %v, want ErrNotFound", err)
	}
	if got, want := balance(t, store, 1), "250.00"; got != want {
		t.Fatalf("rejected move changed balance: got=%s want=%s", got, want)
	}
}

func TestUpdateTransactionLostRaceRepairsBalance(t *testing.T) {
	svc, store, _ := newLedger()
	store.addCustomer(1, 10, "Ramesh")
	ctx := context.Background()

	txn, err := svc.CreateTransaction(ctx, 10, createReq(1, "500.00", models.TransactionCredit))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// The row is still readable, but a concurrent delete lands before the
	// scoped UPDATE: the write matches nothing and the stored balance is
	// left carrying the vanished row's delta.
	store.failNextUpdate = true
	raceBefore := testutil.ToFloat64(metrics.BalanceRecalculations.WithLabelValues("race"))

	newAmount := decimal.RequireFromString("900.00")
	if _, err := svc.UpdateTransaction(ctx, 10, txn.ID, &models.UpdateTransactionRequest{Amount: &newAmount}); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("lost race error = %v, want ErrNotFound", err)
	}
	if got, want := balance(t, store, 1), "0.00"; got != want {
		t.Fatalf("balance after repair got=%s want=%s", got, want)
	}
	if got := testutil.ToFloat64(metrics.BalanceRecalculations.WithLabelValues("race")) - raceBefore; got != 1 {
		t.Fatalf("race recalculations counted got=%v want=1", got)
	}
}

func TestLostRaceWithCustomerGoneSkipsRepairMetric(t *testing.T) {
	svc, store, _ := newLedger()
	store.addCustomer(1, 10, "Ramesh")
	ctx := context.Background()

	txn, err := svc.CreateTransaction(ctx, 10, createReq(1, "500.00", models.TransactionCredit))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Customer and transaction both vanish concurrently: there is nothing
	// left to repair, so no recalculation is recorded.
	store.failNextUpdate = true
	store.dropCustomerOnFail = 1
	raceBefore := testutil.ToFloat64(metrics.BalanceRecalculations.WithLabelValues("race"))

	newAmount := decimal.RequireFromString("900.00")
	if _, err := svc.UpdateTransaction(ctx, 10, txn.ID, &models.UpdateTransactionRequest{Amount: &newAmount}); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("lost race error = %v, want ErrNotFound", err)
	}
	if got := testutil.ToFloat64(metrics.BalanceRecalculations.WithLabelValues("race")) - raceBefore; got != 0 {
		t.Fatalf("race recalculations counted got=%v want=0", got)
	}
}

func TestDeleteTransactionReversesDeltaAndRemovesBill(t *testing.T) {
	svc, store, bills := newLedger()
	store.addCustomer(1, 10, "Ramesh")
	ctx := context.Background()

	req := createReq(1, "500.00", models.TransactionCredit)
	req.BillKey = "transaction_bills/bill_test.jpg"
	txn, err := svc.CreateTransaction(ctx, 10, req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.DeleteTransaction(ctx, 10, txn.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, want := balance(t, store, 1), "0.00"; got != want {
		t.Fatalf("balance after delete got=%s want=%s", got, want)
	}
	if len(bills.removed) != 1 || bills.removed[0] != req.BillKey {
		t.Fatalf("removed bills = %v, want [%s]", bills.removed, req.BillKey)
	}

	// Second delete finds nothing and must not touch the balance again.
	if err := svc.DeleteTransaction(ctx, 10, txn.ID); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("second delete error = %v, want ErrNotFound", err)
	}
	if got, want := balance(t, store, 1), "0.00"; got != want {
		t.Fatalf("balance after second delete got=%s want=%s", got, want)
	}
}

func TestDeleteTransactionBillFailureIsSwallowed(t *testing.T) {
	svc, store, bills := newLedger()
	store.addCustomer(1, 10, "Ramesh")
	bills.err = errors.New("bucket unreachable")
	ctx := context.Background()

	req := createReq(1, "75.00", models.TransactionDebit)
	req.BillKey = "transaction_bills/bill_x.png"
	txn, err := svc.CreateTransaction(ctx, 10, req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.DeleteTransaction(ctx, 10, txn.ID); err != nil {
		t.Fatalf("delete with failing bill store: %v", err)
	}
	if got, want := balance(t, store, 1), "0.00"; got != want {
		t.Fatalf("balance got=%s want=%s", got, want)
	}
}

func TestRecalculateBalanceRepairsDrift(t *testing.T) {
	svc, store, _ := newLedger()
	store.addCustomer(1, 10, "Ramesh")
	ctx := context.Background()

	if _, err := svc.CreateTransaction(ctx, 10, createReq(1, "500.00", models.TransactionCredit)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.CreateTransaction(ctx, 10, createReq(1, "200.00", models.TransactionDebit)); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Drift the stored value, then repair.
	store.customers[1].AccountBalance = decimal.RequireFromString("999.99")

	got, err := svc.RecalculateBalance(ctx, 10, 1)
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	if want := "300.00"; got.StringFixed(2) != want {
		t.Fatalf("recalculated balance got=%s want=%s", got.StringFixed(2), want)
	}
	if got, want := balance(t, store, 1), "300.00"; got != want {
		t.Fatalf("stored balance got=%s want=%s", got, want)
	}

	// Recalculating an already-correct balance changes nothing.
	again, err := svc.RecalculateBalance(ctx, 10, 1)
	if err != nil {
		t.Fatalf("second recalculate: %v", err)
	}
	if !again.Equal(got) {
		t.Fatalf("second recalculation got=%s want=%s", again, got)
	}
}

func TestOwnershipIsolation(t *testing.T) {
	svc, store, _ := newLedger()
	store.addCustomer(1, 10, "Ramesh")
	ctx := context.Background()

	txn, err := svc.CreateTransaction(ctx, 10, createReq(1, "40.00", models.TransactionCredit))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.GetTransaction(ctx, 20, txn.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("foreign get error = %v, want ErrNotFound", err)
	}
	amount := decimal.RequireFromString("1.00")
	if _, err := svc.UpdateTransaction(ctx, 20, txn.ID, &models.UpdateTransactionRequest{Amount: &amount}); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("foreign update error = %v, want ErrNotFound", err)
	}
	if err := svc.DeleteTransaction(ctx, 20, txn.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("foreign delete error = %v, want ErrNotFound", err)
	}
	if got, want := balance(t, store, 1), "40.00"; got != want {
		t.Fatalf("foreign calls changed balance: got=%s want=%s", got, want)
	}
}

func TestSummaryMatchesLedger(t *testing.T) {
	svc, store, _ := newLedger()
	store.addCustomer(1, 10, "Ramesh")
	store.addCustomer(2, 20, "Other owner")
	ctx := context.Background()

	for _, amount := range []string{"100.00", "250.50"} {
		if _, err := svc.CreateTransaction(ctx, 10, createReq(1, amount, models.TransactionCredit)); err != nil {
			t.Fatalf("create credit: %v", err)
		}
	}
	if _, err := svc.CreateTransaction(ctx, 10, createReq(1, "80.25", models.TransactionDebit)); err != nil {
		t.Fatalf("create debit: %v", err)
	}
	if _, err := svc.CreateTransaction(ctx, 20, createReq(2, "999.00", models.TransactionCredit)); err != nil {
		t.Fatalf("create foreign credit: %v", err)
	}

	summary, err := svc.Summary(ctx, 10)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.CreditCount != 2 || summary.DebitCount != 1 {
		t.Fatalf("counts got credit=%d debit=%d, want 2 and 1", summary.CreditCount, summary.DebitCount)
	}
	if got, want := summary.CreditTotal.StringFixed(2), "350.50"; got != want {
		t.Errorf("credit total got=%s want=%s", got, want)
	}
	if got, want := summary.DebitTotal.StringFixed(2), "80.25"; got != want {
		t.Errorf("debit total got=%s want=%s", got, want)
	}
}
