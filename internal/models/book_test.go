package models

import "testing"

func TestSyncStockStatus(t *testing.T) {
	book := Book{Quantity: 3}
	book.SyncStockStatus()
	if book.StockStatus != StockStatusIn {
		t.Fatalf("expected %s, got %s", StockStatusIn, book.StockStatus)
	}

	book.Quantity = 0
	book.SyncStockStatus()
	if book.StockStatus != StockStatusOut {
		t.Fatalf("expected %s, got %s", StockStatusOut, book.StockStatus)
	}
}

func TestValidOrderStatus(t *testing.T) {
	for _, status := range []string{OrderStatusPending, OrderStatusDelivered, OrderStatusCancelled} {
		if !ValidOrderStatus(status) {
			t.Fatalf("expected %s to be valid", status)
		}
	}
	if ValidOrderStatus("shipped") {
		t.Fatal("expected unknown status to be invalid")
	}
}

func TestValidPaymentMethod(t *testing.T) {
	if !ValidPaymentMethod(PaymentMethodCash) || !ValidPaymentMethod(PaymentMethodVisa) {
		t.Fatal("expected cash and visa to be valid")
	}
	if ValidPaymentMethod("bitcoin") {
		t.Fatal("expected unknown payment method to be invalid")
	}
}
