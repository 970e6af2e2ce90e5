package storage_test

import (
	"strings"
	"testing"

	"khata-backend/internal/storage"
)

func TestBillKey(t *testing.T) {
	key := storage.BillKey("invoice.JPG")
	if !strings.HasPrefix(key, "transaction_bills/bill_") {
		t.Errorf("BillKey(invoice.JPG) = %s, want transaction_bills/bill_ prefix", key)
	}
	if !strings.HasSuffix(key, ".JPG") {
		t.Errorf("BillKey(invoice.JPG) = %s, want original extension kept", key)
	}

	if key2 := storage.BillKey("invoice.JPG"); key2 == key {
		t.Error("two keys for the same filename collided")
	}

	if noExt := storage.BillKey("receipt"); !strings.HasSuffix(noExt, ".bin") {
		t.Errorf("BillKey(receipt) = %s, want .bin fallback extension", noExt)
	}
}
