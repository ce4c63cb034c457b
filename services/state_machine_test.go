package services

import (
	"order-service/models"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition_ForwardChain(t *testing.T) {
	chain := []string{
		models.StatusNegotiating,
		models.StatusConfirmed,
		models.StatusPendingPayment,
		models.StatusPaymentUploaded,
		models.StatusPaid,
		models.StatusShipping,
		models.StatusDelivered,
	}

	for i := 0; i < len(chain)-1; i++ {
		assert.True(t, CanTransition(chain[i], chain[i+1]), "%s -> %s should be guarded-legal", chain[i], chain[i+1])
	}

	// Skipping a step is not a guarded transition.
	assert.False(t, CanTransition(models.StatusNegotiating, models.StatusPaid))
	assert.False(t, CanTransition(models.StatusConfirmed, models.StatusShipping))

	// Backward moves are overrides, never guarded.
	assert.False(t, CanTransition(models.StatusPaid, models.StatusPendingPayment))
}

func TestCanTransition_Cancellation(t *testing.T) {
	for _, status := range models.AllStatuses {
		got := CanTransition(status, models.StatusCancelled)
		if status == models.StatusDelivered || status == models.StatusCancelled {
			assert.False(t, got, "cancel from %s", status)
		} else {
			assert.True(t, got, "cancel from %s", status)
		}
	}
}

func TestPriceNegotiable(t *testing.T) {
	negotiable := map[string]bool{
		models.StatusNegotiating:    true,
		models.StatusConfirmed:      true,
		models.StatusPendingPayment: true,
	}
	for _, status := range models.AllStatuses {
		assert.Equal(t, negotiable[status], PriceNegotiable(status), "status %s", status)
	}
}

func TestItemsFrozen(t *testing.T) {
	frozen := map[string]bool{
		models.StatusPaid:      true,
		models.StatusShipping:  true,
		models.StatusDelivered: true,
		models.StatusCancelled: true,
	}
	for _, status := range models.AllStatuses {
		assert.Equal(t, frozen[status], ItemsFrozen(status), "status %s", status)
	}
}

func TestPaymentUploadable(t *testing.T) {
	uploadable := map[string]bool{
		models.StatusNegotiating:     true,
		models.StatusConfirmed:       true,
		models.StatusPendingPayment:  true,
		models.StatusPaymentUploaded: true,
	}
	for _, status := range models.AllStatuses {
		assert.Equal(t, uploadable[status], PaymentUploadable(status), "status %s", status)
	}
}
