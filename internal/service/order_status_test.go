package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"smartshop_back_end/internal/models"
)

func TestAllowedFrom(t *testing.T) {
	// Chemin nominal : chaque étape n'est atteignable que depuis la précédente
	assert.Equal(t, []string{models.OrderStatusPending}, AllowedFrom(models.OrderStatusConfirmed))
	assert.Equal(t, []string{models.OrderStatusConfirmed}, AllowedFrom(models.OrderStatusProcessing))
	assert.Equal(t, []string{models.OrderStatusProcessing}, AllowedFrom(models.OrderStatusShipping))
	assert.Equal(t, []string{models.OrderStatusShipping}, AllowedFrom(models.OrderStatusDelivered))

	// cancelled depuis tout état non terminal
	assert.ElementsMatch(t, []string{
		models.OrderStatusPending,
		models.OrderStatusConfirmed,
		models.OrderStatusProcessing,
		models.OrderStatusShipping,
	}, AllowedFrom(models.OrderStatusCancelled))

	// pending n'est jamais une cible, les états terminaux non plus des départs
	assert.Nil(t, AllowedFrom(models.OrderStatusPending))
	assert.Nil(t, AllowedFrom("unknown"))
	assert.NotContains(t, AllowedFrom(models.OrderStatusCancelled), models.OrderStatusDelivered)
	assert.NotContains(t, AllowedFrom(models.OrderStatusCancelled), models.OrderStatusCancelled)
}

func TestValidPaymentStatus(t *testing.T) {
	for _, s := range []string{
		models.PaymentStatusPending,
		models.PaymentStatusPaid,
		models.PaymentStatusFailed,
		models.PaymentStatusRefunded,
	} {
		assert.True(t, ValidPaymentStatus(s), s)
	}

	assert.False(t, ValidPaymentStatus(""))
	assert.False(t, ValidPaymentStatus("partial"))
	assert.False(t, ValidPaymentStatus("PAID"))
}
