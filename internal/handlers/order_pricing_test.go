package handlers

import (
	"testing"

	"github.com/mmhmddd/linah-store-server/internal/models"
)

func TestApplySaleCodeDiscount(t *testing.T) {
	total, err := applySaleCode(20, "DISCOUNT10")
	if err != nil {
		t.Fatalf("applySaleCode returned error: %v", err)
	}
	if total != 18 {
		t.Fatalf("expected discounted total 18, got %v", total)
	}
}

func TestApplySaleCodeEmptyKeepsTotal(t *testing.T) {
	total, err := applySaleCode(55.5, "")
	if err != nil {
		t.Fatalf("applySaleCode returned error: %v", err)
	}
	if total != 55.5 {
		t.Fatalf("expected total unchanged, got %v", total)
	}
}

func TestApplySaleCodeUnknownCode(t *testing.T) {
	if _, err := applySaleCode(100, "SAVE99"); err == nil {
		t.Fatal("expected error for unknown sale code")
	}
}

func TestValidateOrderShippingMissingFields(t *testing.T) {
	err := validateOrderShipping(orderShipping{
		Government:    "Cairo",
		FullName:      "",
		Address:       "12 Nile St",
		PaymentMethod: models.PaymentMethodCash,
	})
	if err == nil {
		t.Fatal("expected validation error when fullName is missing")
	}
}

func TestValidateOrderShippingBadPaymentMethod(t *testing.T) {
	err := validateOrderShipping(orderShipping{
		Government:    "Cairo",
		FullName:      "Sara Adel",
		Address:       "12 Nile St",
		PaymentMethod: "paypal",
	})
	if err == nil {
		t.Fatal("expected validation error for unsupported payment method")
	}
}

func TestValidateOrderShippingAcceptsVisa(t *testing.T) {
	err := validateOrderShipping(orderShipping{
		Government:    "Giza",
		FullName:      "Sara Adel",
		Address:       "12 Nile St",
		PaymentMethod: models.PaymentMethodVisa,
	})
	if err != nil {
		t.Fatalf("expected valid shipping, got error: %v", err)
	}
}

func TestAllowStatusTransitionFromDelivered(t *testing.T) {
	if allowStatusTransition(models.OrderStatusDelivered, models.OrderStatusPending) {
		t.Fatal("delivered order must not move back to pending")
	}
	if !allowStatusTransition(models.OrderStatusDelivered, models.OrderStatusCancelled) {
		t.Fatal("delivered order should still be cancellable")
	}
}

func TestAllowStatusTransitionFromPending(t *testing.T) {
	if !allowStatusTransition(models.OrderStatusPending, models.OrderStatusDelivered) {
		t.Fatal("pending order should be deliverable")
	}
	if !allowStatusTransition(models.OrderStatusPending, models.OrderStatusCancelled) {
		t.Fatal("pending order should be cancellable")
	}
}
