package services

import "order-service/models"

// forwardNext is the single-step forward chain an order normally follows.
var forwardNext = map[string]string{
	models.StatusNegotiating:     models.StatusConfirmed,
	models.StatusConfirmed:       models.StatusPendingPayment,
	models.StatusPendingPayment:  models.StatusPaymentUploaded,
	models.StatusPaymentUploaded: models.StatusPaid,
	models.StatusPaid:            models.StatusShipping,
	models.StatusShipping:        models.StatusDelivered,
}

// IsValidStatus reports whether s is a known order status.
func IsValidStatus(s string) bool {
	for _, known := range models.AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// CanTransition reports whether from -> to is a guarded (non-override)
// transition: one step forward, or cancellation of anything undelivered.
func CanTransition(from, to string) bool {
	if to == models.StatusCancelled {
		return from != models.StatusDelivered && from != models.StatusCancelled
	}
	return forwardNext[from] == to
}

// PriceNegotiable reports whether the order-level price may still change.
// Once evidence is uploaded or the order is paid, the price is locked.
func PriceNegotiable(status string) bool {
	switch status {
	case models.StatusNegotiating, models.StatusConfirmed, models.StatusPendingPayment:
		return true
	}
	return false
}

// ItemsFrozen reports whether order items may no longer be removed.
func ItemsFrozen(status string) bool {
	switch status {
	case models.StatusPaid, models.StatusShipping, models.StatusDelivered, models.StatusCancelled:
		return true
	}
	return false
}

// PaymentUploadable reports whether a customer may submit payment evidence.
// payment_uploaded is included: retried and partial uploads are legitimate.
func PaymentUploadable(status string) bool {
	switch status {
	case models.StatusNegotiating, models.StatusConfirmed, models.StatusPendingPayment, models.StatusPaymentUploaded:
		return true
	}
	return false
}

// VerifyAdvancesOrder reports whether verifying a payment should move the
// order to paid. Orders already paid (or shipped, cancelled...) keep their
// status; the extra verified proof is recorded but changes nothing.
func VerifyAdvancesOrder(status string) bool {
	return status == models.StatusPaymentUploaded || status == models.StatusPendingPayment
}
