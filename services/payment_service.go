package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"order-service/models"
	repositories "order-service/repository"
	"path"
	"time"

	aws_pkg "order-service/pkg/aws"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentUpload carries one evidence file on its way into the ledger.
type PaymentUpload struct {
	Filename           string
	ContentType        string
	Size               int64
	Body               io.Reader
	AmountClaimedCents *int64
}

type PaymentService struct {
	orderRepo   repositories.OrderRepository
	paymentRepo repositories.PaymentRepository
	validator   *UploadValidator
	blobs       aws_pkg.BlobStore
	notifier    Notifier
}

func NewPaymentService(
	orderRepo repositories.OrderRepository,
	paymentRepo repositories.PaymentRepository,
	validator *UploadValidator,
	blobs aws_pkg.BlobStore,
	notifier Notifier,
) *PaymentService {
	return &PaymentService{
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		validator:   validator,
		blobs:       blobs,
		notifier:    notifier,
	}
}

// SubmitPayment validates the evidence file, stores it, records an unverified
// payment and moves the order to payment_uploaded. The blob is stored before
// any row is written, so a failed upload leaves no partial payment behind.
func (s *PaymentService) SubmitPayment(ctx context.Context, orderID uuid.UUID, userID string, upload *PaymentUpload) (*models.Payment, *ServiceError) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, errBadRequest(CodeBadRequest, "Invalid user ID format")
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, mapOrderLookupErr(err, orderID)
	}

	if !PaymentUploadable(order.Status) {
		return nil, errInvalidState("Payments cannot be submitted while the order is " + order.Status)
	}

	// Blob storage can be down at startup; uploads are refused rather than
	// accepted without evidence.
	if s.blobs == nil {
		return nil, &ServiceError{StatusCode: 503, Code: CodeInternal, Message: "Payment uploads are temporarily unavailable"}
	}

	// Peek the first bytes for content sniffing, then stitch them back.
	head := make([]byte, 512)
	n, readErr := io.ReadFull(upload.Body, head)
	if readErr != nil && readErr != io.ErrUnexpectedEOF && readErr != io.EOF {
		log.Printf("[PaymentService] failed to read upload for order %s: %v", orderID, readErr)
		return nil, errInternal("Failed to read uploaded file")
	}
	body := io.MultiReader(bytes.NewReader(head[:n]), upload.Body)

	if verr := s.validator.Validate(upload.ContentType, upload.Size, head[:n]); verr != nil {
		return nil, verr
	}

	key := fmt.Sprintf("orders/%s/payments/%s%s", orderID, uuid.New(), path.Ext(upload.Filename))
	storedKey, err := s.blobs.Store(ctx, key, upload.ContentType, body, upload.Size)
	if err != nil {
		log.Printf("[PaymentService] blob store failed order=%s key=%s: %v", orderID, key, err)
		return nil, &ServiceError{StatusCode: 502, Code: CodeInternal, Message: "Failed to store payment evidence"}
	}

	payment := &models.Payment{
		OrderID:            orderID,
		UserID:             userUUID,
		EvidenceKey:        storedKey,
		EvidenceMimeType:   upload.ContentType,
		EvidenceSizeBytes:  upload.Size,
		AmountClaimedCents: upload.AmountClaimedCents,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		log.Printf("[PaymentService] failed to record payment order=%s: %v", orderID, err)
		return nil, errInternal("Failed to record payment")
	}

	if serr := s.advanceToUploaded(ctx, order); serr != nil {
		return nil, serr
	}

	log.Printf("[PaymentService] payment submitted id=%s order=%s size=%d type=%s", payment.ID, orderID, upload.Size, upload.ContentType)
	return payment, nil
}

// advanceToUploaded moves the order to payment_uploaded. A version conflict is
// retried once: the usual cause is a concurrent upload that already advanced
// the order, which makes the retry a no-op. If the conflict persists the
// caller gets a 409, but the payment row and blob written before this call
// stay in the ledger and are settled by verification or an admin override.
func (s *PaymentService) advanceToUploaded(ctx context.Context, order *models.Order) *ServiceError {
	for attempt := 0; attempt < 2; attempt++ {
		if order.Status == models.StatusPaymentUploaded {
			return nil
		}
		if !PaymentUploadable(order.Status) {
			return errInvalidState("Order moved to " + order.Status + " during upload")
		}

		from := order.Status
		err := s.orderRepo.UpdateVersioned(ctx, order, map[string]interface{}{"status": models.StatusPaymentUploaded})
		if err == nil {
			order.Status = models.StatusPaymentUploaded
			s.logStatus(ctx, order.ID, from, models.StatusPaymentUploaded, order.UserID, "payment evidence uploaded")
			return nil
		}
		if !errors.Is(err, repositories.ErrVersionConflict) {
			log.Printf("[PaymentService] failed to advance order %s: %v", order.ID, err)
			return errInternal("Failed to update order status")
		}

		reloaded, rerr := s.orderRepo.FindByID(ctx, order.ID)
		if rerr != nil {
			return mapOrderLookupErr(rerr, order.ID)
		}
		*order = *reloaded
	}
	return errConflict()
}

// VerifyPayment marks a payment genuine and, when the order is still waiting
// on payment, advances it to paid and freezes the final price.
func (s *PaymentService) VerifyPayment(ctx context.Context, paymentID uuid.UUID, verifierID uuid.UUID) (*models.Payment, *ServiceError) {
	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("Payment not found")
		}
		log.Printf("[PaymentService] failed to fetch payment %s: %v", paymentID, err)
		return nil, errInternal("Failed to fetch payment")
	}

	if payment.Verified {
		return nil, &ServiceError{StatusCode: 409, Code: CodeAlreadyVerified, Message: "Payment is already verified"}
	}

	now := time.Now().UTC()
	updated, err := s.paymentRepo.MarkVerified(ctx, paymentID, verifierID, now)
	if err != nil {
		log.Printf("[PaymentService] failed to verify payment %s: %v", paymentID, err)
		return nil, errInternal("Failed to verify payment")
	}
	if !updated {
		// Lost a race with another verifier.
		return nil, &ServiceError{StatusCode: 409, Code: CodeAlreadyVerified, Message: "Payment is already verified"}
	}

	payment.Verified = true
	payment.VerifiedAt = &now
	payment.VerifiedBy = &verifierID

	order, err := s.orderRepo.FindByID(ctx, payment.OrderID)
	if err != nil {
		log.Printf("[PaymentService] verified payment %s but failed to load order %s: %v", paymentID, payment.OrderID, err)
		return payment, nil
	}

	if VerifyAdvancesOrder(order.Status) {
		from := order.Status
		updates := map[string]interface{}{"status": models.StatusPaid}
		if order.FinalCents == nil {
			// Freeze the price actually charged at the instant of verification.
			updates["final_cents"] = EffectiveCents(order)
		}

		if err := s.orderRepo.UpdateVersioned(ctx, order, updates); err != nil {
			if errors.Is(err, repositories.ErrVersionConflict) {
				return nil, errConflict()
			}
			log.Printf("[PaymentService] failed to mark order %s paid: %v", order.ID, err)
			return nil, errInternal("Failed to update order status")
		}

		order.Status = models.StatusPaid
		if order.FinalCents == nil {
			final := EffectiveCents(order)
			order.FinalCents = &final
		}
		s.logStatus(ctx, order.ID, from, models.StatusPaid, verifierID, "payment verified")

		if s.notifier != nil {
			s.notifier.NotifyOrderEvent(ctx, models.OrderEvent{
				Type:           models.EventOrderPaid,
				OrderID:        order.ID.String(),
				UserID:         order.UserID.String(),
				Status:         order.Status,
				EffectiveCents: EffectiveCents(order),
				Timestamp:      now,
			})
		}
	}

	log.Printf("[PaymentService] payment verified id=%s order=%s by=%s", paymentID, payment.OrderID, verifierID)
	return payment, nil
}

// ListPaymentsForOrder returns every payment for one order, oldest first.
// Customers can only list payments on their own orders.
func (s *PaymentService) ListPaymentsForOrder(ctx context.Context, orderID uuid.UUID, userID string, isAdmin bool) ([]models.Payment, *ServiceError) {
	if !isAdmin {
		userUUID, err := uuid.Parse(userID)
		if err != nil {
			return nil, errBadRequest(CodeBadRequest, "Invalid user ID format")
		}
		if _, err := s.orderRepo.FindByIDAndUserID(ctx, orderID, userUUID); err != nil {
			return nil, mapOrderLookupErr(err, orderID)
		}
	} else if _, err := s.orderRepo.FindByID(ctx, orderID); err != nil {
		return nil, mapOrderLookupErr(err, orderID)
	}

	payments, err := s.paymentRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		log.Printf("[PaymentService] failed to list payments for order %s: %v", orderID, err)
		return nil, errInternal("Failed to fetch payments")
	}
	return payments, nil
}

// PendingPayments returns the admin verification queue.
func (s *PaymentService) PendingPayments(ctx context.Context) ([]models.Payment, *ServiceError) {
	payments, err := s.paymentRepo.FindPending(ctx)
	if err != nil {
		log.Printf("[PaymentService] failed to list pending payments: %v", err)
		return nil, errInternal("Failed to fetch pending payments")
	}
	return payments, nil
}

func (s *PaymentService) logStatus(ctx context.Context, orderID uuid.UUID, from, to string, actorID uuid.UUID, note string) {
	entry := &models.OrderStatusLog{
		OrderID:    orderID,
		FromStatus: from,
		ToStatus:   to,
		ActorID:    actorID,
		Note:       note,
	}
	if err := s.orderRepo.LogStatusChange(ctx, entry); err != nil {
		log.Printf("[PaymentService] failed to write status log order=%s %s -> %s: %v", orderID, from, to, err)
	}
}
