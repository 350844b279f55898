package provider

import "github.com/agendly/agendly-backend/internal/models"

// MapPaymentStatus maps a provider payment status onto the local payment
// lifecycle. Unknown statuses map to pending: never assume success on
// ambiguous input.
func MapPaymentStatus(s string) string {
	switch s {
	case "approved":
		return models.PaymentStatusPaid
	case "pending", "in_process", "authorized":
		return models.PaymentStatusPending
	case "rejected":
		return models.PaymentStatusFailed
	case "cancelled", "refunded", "charged_back":
		return models.PaymentStatusCancelled
	default:
		return models.PaymentStatusPending
	}
}

// MapPreapprovalStatus maps a provider preapproval status onto the local
// subscription lifecycle. Same conservative default as payments.
func MapPreapprovalStatus(s string) string {
	switch s {
	case "authorized":
		return models.SubscriptionStatusActive
	case "paused":
		return models.SubscriptionStatusPaused
	case "cancelled":
		return models.SubscriptionStatusCancelled
	case "pending":
		return models.SubscriptionStatusPending
	default:
		return models.SubscriptionStatusPending
	}
}
