package service

import (
	"errors"

	"smartshop_back_end/internal/models"
)

// ErrInvalidPaymentStatus : valeur hors de l'énumération des statuts de paiement.
var ErrInvalidPaymentStatus = errors.New("statut de paiement invalide")

// Table des transitions du cycle de vie : statut cible → statuts de départ
// autorisés. Le chemin nominal est linéaire, cancelled est atteignable
// depuis tout état non terminal. delivered et cancelled sont terminaux.
var allowedTransitions = map[string][]string{
	models.OrderStatusConfirmed:  {models.OrderStatusPending},
	models.OrderStatusProcessing: {models.OrderStatusConfirmed},
	models.OrderStatusShipping:   {models.OrderStatusProcessing},
	models.OrderStatusDelivered:  {models.OrderStatusShipping},
	models.OrderStatusCancelled: {
		models.OrderStatusPending,
		models.OrderStatusConfirmed,
		models.OrderStatusProcessing,
		models.OrderStatusShipping,
	},
}

// AllowedFrom retourne les statuts depuis lesquels newStatus est atteignable,
// nil si newStatus n'est pas une cible valide (pending n'est jamais une cible).
func AllowedFrom(newStatus string) []string {
	return allowedTransitions[newStatus]
}

// ValidPaymentStatus borne les valeurs acceptées par updatePaymentStatus.
func ValidPaymentStatus(s string) bool {
	switch s {
	case models.PaymentStatusPending, models.PaymentStatusPaid,
		models.PaymentStatusFailed, models.PaymentStatusRefunded:
		return true
	}
	return false
}
