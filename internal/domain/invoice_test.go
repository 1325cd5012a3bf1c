package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerivePaymentStatus(t *testing.T) {
	assert.Equal(t, PaymentStatusUnpaid, DerivePaymentStatus(PaymentMethodCOD))
	assert.Equal(t, PaymentStatusPaid, DerivePaymentStatus(PaymentMethodCard))
	assert.Equal(t, PaymentStatusPaid, DerivePaymentStatus(PaymentMethodBank))
}
