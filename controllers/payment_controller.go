package controllers

import (
	"net/http"
	"order-service/middleware"
	"order-service/services"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PaymentController struct {
	paymentService *services.PaymentService
}

func NewPaymentController(paymentService *services.PaymentService) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
	}
}

// UploadPayment accepts a multipart proof-of-payment file for an order
func (pc *PaymentController) UploadPayment(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	orderUUID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID format"})
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "A file field is required"})
		return
	}

	var amountClaimed *int64
	if raw := ctx.PostForm("amount_claimed_cents"); raw != "" {
		cents, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "amount_claimed_cents must be an integer"})
			return
		}
		amountClaimed = &cents
	}

	file, err := fileHeader.Open()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	upload := &services.PaymentUpload{
		Filename:           fileHeader.Filename,
		ContentType:        fileHeader.Header.Get("Content-Type"),
		Size:               fileHeader.Size,
		Body:               file,
		AmountClaimedCents: amountClaimed,
	}

	payment, serviceErr := pc.paymentService.SubmitPayment(ctx.Request.Context(), orderUUID, userID, upload)
	if serviceErr != nil {
		ctx.JSON(serviceErr.StatusCode, gin.H{"error": serviceErr.Message, "code": serviceErr.Code})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"payment": payment})
}

// ListOrderPayments returns all payments for an order
func (pc *PaymentController) ListOrderPayments(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	orderUUID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID format"})
		return
	}

	payments, serviceErr := pc.paymentService.ListPaymentsForOrder(ctx.Request.Context(), orderUUID, userID, middleware.IsAdmin(ctx))
	if serviceErr != nil {
		ctx.JSON(serviceErr.StatusCode, gin.H{"error": serviceErr.Message, "code": serviceErr.Code})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"payments": payments})
}

// VerifyPayment marks a payment as verified (admin only)
func (pc *PaymentController) VerifyPayment(ctx *gin.Context) {
	adminID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	adminUUID, err := uuid.Parse(adminID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
		return
	}

	paymentUUID, err := uuid.Parse(ctx.Param("paymentId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment ID format"})
		return
	}

	payment, serviceErr := pc.paymentService.VerifyPayment(ctx.Request.Context(), paymentUUID, adminUUID)
	if serviceErr != nil {
		ctx.JSON(serviceErr.StatusCode, gin.H{"error": serviceErr.Message, "code": serviceErr.Code})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"payment": payment})
}

// GetPendingPayments returns the unverified payment queue (admin only)
func (pc *PaymentController) GetPendingPayments(ctx *gin.Context) {
	payments, serviceErr := pc.paymentService.PendingPayments(ctx.Request.Context())
	if serviceErr != nil {
		ctx.JSON(serviceErr.StatusCode, gin.H{"error": serviceErr.Message, "code": serviceErr.Code})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"payments": payments})
}
