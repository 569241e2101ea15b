package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mmhmddd/linah-store-server/internal/models"
)

// The single recognized discount code. A lookup table is a known follow-up,
// not something this system models.
const (
	saleCode         = "DISCOUNT10"
	saleCodeDiscount = 0.9
)

var errInvalidSaleCode = errors.New("Invalid sale code")

// applySaleCode returns the total after discount. An empty code passes the
// total through; any unrecognized non-empty code is rejected.
func applySaleCode(total float64, code string) (float64, error) {
	if code == "" {
		return total, nil
	}
	if code != saleCode {
		return 0, errInvalidSaleCode
	}
	return total * saleCodeDiscount, nil
}

type orderShipping struct {
	Government    string
	FullName      string
	Address       string
	PaymentMethod string
}

func validateOrderShipping(s orderShipping) error {
	if strings.TrimSpace(s.Government) == "" ||
		strings.TrimSpace(s.FullName) == "" ||
		strings.TrimSpace(s.Address) == "" ||
		strings.TrimSpace(s.PaymentMethod) == "" {
		return errors.New("Government, full name, address, and payment method are required")
	}
	if !models.ValidPaymentMethod(s.PaymentMethod) {
		return fmt.Errorf("Payment method must be %q or %q", models.PaymentMethodCash, models.PaymentMethodVisa)
	}
	return nil
}

// allowStatusTransition enforces delivered terminality: a delivered order can
// only move to cancelled.
func allowStatusTransition(current, next string) bool {
	if current == models.OrderStatusDelivered {
		return next == models.OrderStatusCancelled
	}
	return true
}
