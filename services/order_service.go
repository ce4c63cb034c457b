package services

import (
	"context"
	"errors"
	"log"
	"order-service/models"
	repositories "order-service/repository"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateOrderRequest struct {
	CarIDs []uuid.UUID `json:"car_ids" binding:"required"`
}

// UpdateOrderStatusRequest is the admin PATCH body. Status is the raw
// override escape hatch; the other fields are ordinary admin edits.
type UpdateOrderStatusRequest struct {
	Status               *string `json:"status"`
	NegotiatedPriceCents *int64  `json:"negotiated_price_cents"`
	Notes                *string `json:"notes"`
	TrackingInfo         *string `json:"tracking_info"`
	EstimatedDelivery    *string `json:"estimated_delivery"`
}

type OrderResponse struct {
	Orders []models.Order `json:"orders"`
	Meta   MetaData       `json:"meta"`
}

type MetaData struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	TotalOrders int64 `json:"total_orders"`
	TotalPages  int64 `json:"total_pages"`
	HasMore     bool  `json:"has_more"`
}

type OrderStats struct {
	Counts map[string]int64 `json:"counts"`
	Total  int64            `json:"total"`
}

type OrderService struct {
	orderRepo repositories.OrderRepository
	catalog   CatalogClient
	notifier  Notifier
}

func NewOrderService(orderRepo repositories.OrderRepository, catalog CatalogClient, notifier Notifier) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		catalog:   catalog,
		notifier:  notifier,
	}
}

// CreateOrder snapshots the selected cars from the catalog and opens the
// order in negotiating state.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, req *CreateOrderRequest) (*models.Order, *ServiceError) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, errBadRequest(CodeBadRequest, "Invalid user ID format")
	}

	if len(req.CarIDs) == 0 {
		return nil, errBadRequest(CodeEmptySelection, "At least one car is required")
	}

	items := make([]models.OrderItem, 0, len(req.CarIDs))
	for _, carID := range req.CarIDs {
		car, err := s.catalog.FetchCarByID(ctx, carID)
		if err != nil {
			if errors.Is(err, ErrCarNotFound) {
				return nil, errBadRequest(CodeCarUnavailable, "Car "+carID.String()+" is not available")
			}
			log.Printf("[OrderService] catalog lookup failed car=%s: %v", carID, err)
			return nil, errInternal("Failed to check car availability")
		}
		if !car.IsActive {
			return nil, errBadRequest(CodeCarUnavailable, "Car "+carID.String()+" is not available")
		}

		items = append(items, models.OrderItem{
			CarID:              car.ID,
			CarTitle:           car.Title,
			CarYear:            car.Year,
			CarImageURL:        car.ImageURL,
			OriginalPriceCents: car.PriceCents,
		})
	}

	order := &models.Order{
		UserID:             userUUID,
		Status:             models.StatusNegotiating,
		TotalOriginalCents: SumOriginalCents(items),
		Version:            1,
		OrderItems:         items,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		log.Printf("[OrderService] failed to create order for user %s: %v", userID, err)
		return nil, errInternal("Failed to create order")
	}

	log.Printf("[OrderService] order created id=%s user=%s items=%d total=%d", order.ID, userID, len(items), order.TotalOriginalCents)
	return order, nil
}

// GetOrder retrieves one order. Admins see any order, customers only their own.
func (s *OrderService) GetOrder(ctx context.Context, userID string, orderID uuid.UUID, isAdmin bool) (*models.Order, *ServiceError) {
	if isAdmin {
		order, err := s.orderRepo.FindByID(ctx, orderID)
		if err != nil {
			return nil, mapOrderLookupErr(err, orderID)
		}
		return order, nil
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, errBadRequest(CodeBadRequest, "Invalid user ID format")
	}

	order, err := s.orderRepo.FindByIDAndUserID(ctx, orderID, userUUID)
	if err != nil {
		return nil, mapOrderLookupErr(err, orderID)
	}
	return order, nil
}

// GetUserOrders retrieves paginated orders for a specific user
func (s *OrderService) GetUserOrders(ctx context.Context, userID string, page, limit int) (*OrderResponse, *ServiceError) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, errBadRequest(CodeBadRequest, "Invalid user ID format")
	}

	orders, total, err := s.orderRepo.FindByUserID(ctx, userUUID, page, limit)
	if err != nil {
		log.Printf("[OrderService] failed to fetch orders for user %s: %v", userID, err)
		return nil, errInternal("Failed to fetch orders")
	}

	return &OrderResponse{
		Orders: orders,
		Meta: MetaData{
			Page:        page,
			Limit:       limit,
			TotalOrders: total,
			TotalPages:  calculateTotalPages(total, limit),
			HasMore:     total > int64(page*limit),
		},
	}, nil
}

// GetAllOrders retrieves paginated orders for all users (admin only)
func (s *OrderService) GetAllOrders(ctx context.Context, adminID string, page, limit int) (*OrderResponse, *ServiceError) {
	orders, total, err := s.orderRepo.FindAll(ctx, page, limit)
	if err != nil {
		log.Printf("[OrderService] failed to fetch all orders for admin %s: %v", adminID, err)
		return nil, errInternal("Failed to fetch orders")
	}

	return &OrderResponse{
		Orders: orders,
		Meta: MetaData{
			Page:        page,
			Limit:       limit,
			TotalOrders: total,
			TotalPages:  calculateTotalPages(total, limit),
			HasMore:     total > int64(page*limit),
		},
	}, nil
}

// RemoveOrderItem deletes one item from an order that has not reached paid
// state. Removing the last item cancels the order.
func (s *OrderService) RemoveOrderItem(ctx context.Context, orderID, itemID, actorID uuid.UUID) (*models.Order, *ServiceError) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, mapOrderLookupErr(err, orderID)
	}

	if ItemsFrozen(order.Status) {
		return nil, errInvalidState("Items cannot be removed once the order is " + order.Status)
	}

	var found bool
	remaining := make([]models.OrderItem, 0, len(order.OrderItems))
	for _, item := range order.OrderItems {
		if item.ID == itemID {
			found = true
			continue
		}
		remaining = append(remaining, item)
	}
	if !found {
		return nil, errNotFound("Order item not found")
	}

	updates := map[string]interface{}{
		"total_original_cents": SumOriginalCents(remaining),
	}
	cancelled := len(remaining) == 0
	if cancelled {
		updates["status"] = models.StatusCancelled
	}

	// Item delete and order update share one transaction; a failure leaves
	// the order untouched.
	if err := s.orderRepo.RemoveItemVersioned(ctx, order, itemID, updates); err != nil {
		if errors.Is(err, repositories.ErrVersionConflict) {
			return nil, errConflict()
		}
		log.Printf("[OrderService] failed to remove item %s from order %s: %v", itemID, orderID, err)
		return nil, errInternal("Failed to remove order item")
	}

	if cancelled {
		s.logStatus(ctx, orderID, order.Status, models.StatusCancelled, actorID, "last item removed", false)
		log.Printf("[OrderService] order %s auto-cancelled: last item removed by %s", orderID, actorID)
	}

	updated, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, mapOrderLookupErr(err, orderID)
	}
	return updated, nil
}

// ApplyNegotiatedPrice sets the order-level negotiated price while the order
// is still in a negotiable state.
func (s *OrderService) ApplyNegotiatedPrice(ctx context.Context, orderID uuid.UUID, cents int64, actorID uuid.UUID) (*models.Order, *ServiceError) {
	if cents <= 0 {
		return nil, errBadRequest(CodeInvalidAmount, "Negotiated price must be positive")
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, mapOrderLookupErr(err, orderID)
	}

	if !PriceNegotiable(order.Status) {
		return nil, errInvalidState("Price is locked once the order is " + order.Status)
	}

	if err := s.orderRepo.UpdateVersioned(ctx, order, map[string]interface{}{"negotiated_cents": cents}); err != nil {
		if errors.Is(err, repositories.ErrVersionConflict) {
			return nil, errConflict()
		}
		log.Printf("[OrderService] failed to apply negotiated price on order %s: %v", orderID, err)
		return nil, errInternal("Failed to update order")
	}

	order.NegotiatedCents = &cents
	return order, nil
}

// UpdateOrderStatus is the admin PATCH surface: a raw status override that is
// never rejected for any from/to pair, plus optional price/notes/tracking
// edits. Every status change is audit-logged; changes that do not follow the
// guarded transition table are flagged as overrides.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, req *UpdateOrderStatusRequest, actorID uuid.UUID) (*models.Order, *ServiceError) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, mapOrderLookupErr(err, orderID)
	}

	updates := map[string]interface{}{}

	if req.NegotiatedPriceCents != nil {
		cents := *req.NegotiatedPriceCents
		if cents <= 0 {
			return nil, errBadRequest(CodeInvalidAmount, "Negotiated price must be positive")
		}
		if !PriceNegotiable(order.Status) {
			return nil, errInvalidState("Price is locked once the order is " + order.Status)
		}
		updates["negotiated_cents"] = cents
	}

	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.TrackingInfo != nil {
		updates["tracking_info"] = *req.TrackingInfo
	}
	if req.EstimatedDelivery != nil {
		updates["estimated_delivery"] = *req.EstimatedDelivery
	}

	fromStatus := order.Status
	statusChanged := false
	if req.Status != nil {
		if !IsValidStatus(*req.Status) {
			return nil, errBadRequest(CodeBadRequest, "Unknown status "+*req.Status)
		}
		if *req.Status != order.Status {
			updates["status"] = *req.Status
			statusChanged = true
		}
	}

	if len(updates) == 0 {
		return order, nil
	}

	if err := s.orderRepo.UpdateVersioned(ctx, order, updates); err != nil {
		if errors.Is(err, repositories.ErrVersionConflict) {
			return nil, errConflict()
		}
		log.Printf("[OrderService] failed to update order %s: %v", orderID, err)
		return nil, errInternal("Failed to update order")
	}

	updated, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, mapOrderLookupErr(err, orderID)
	}

	if statusChanged {
		newStatus := *req.Status
		override := !CanTransition(fromStatus, newStatus)
		s.logStatus(ctx, orderID, fromStatus, newStatus, actorID, "admin status update", override)
		if override {
			log.Printf("[OrderService] OVERRIDE order=%s %s -> %s by admin=%s", orderID, fromStatus, newStatus, actorID)
		}

		// A backward override out of paid leaves final_cents in place; the
		// frozen price stays the audit record of what was charged. Events are
		// built from the reloaded row so a price set in the same request is
		// reflected in the payload.
		switch newStatus {
		case models.StatusPaid:
			s.notify(ctx, updated, models.EventOrderPaid)
		case models.StatusShipping:
			s.notify(ctx, updated, models.EventOrderShipping)
		}
	}

	return updated, nil
}

// Stats returns order counts per status for the admin dashboard.
func (s *OrderService) Stats(ctx context.Context) (*OrderStats, *ServiceError) {
	counts, err := s.orderRepo.CountByStatus(ctx)
	if err != nil {
		log.Printf("[OrderService] failed to count orders by status: %v", err)
		return nil, errInternal("Failed to compute order stats")
	}

	stats := &OrderStats{Counts: make(map[string]int64, len(models.AllStatuses))}
	for _, status := range models.AllStatuses {
		stats.Counts[status] = counts[status]
		stats.Total += counts[status]
	}
	return stats, nil
}

func (s *OrderService) logStatus(ctx context.Context, orderID uuid.UUID, from, to string, actorID uuid.UUID, note string, override bool) {
	entry := &models.OrderStatusLog{
		OrderID:    orderID,
		FromStatus: from,
		ToStatus:   to,
		ActorID:    actorID,
		Note:       note,
		Override:   override,
	}
	if err := s.orderRepo.LogStatusChange(ctx, entry); err != nil {
		log.Printf("[OrderService] failed to write status log order=%s %s -> %s: %v", orderID, from, to, err)
	}
}

func (s *OrderService) notify(ctx context.Context, order *models.Order, eventType string) {
	if s.notifier == nil {
		return
	}
	s.notifier.NotifyOrderEvent(ctx, models.OrderEvent{
		Type:           eventType,
		OrderID:        order.ID.String(),
		UserID:         order.UserID.String(),
		Status:         order.Status,
		EffectiveCents: EffectiveCents(order),
		Timestamp:      time.Now().UTC(),
	})
}

func mapOrderLookupErr(err error, orderID uuid.UUID) *ServiceError {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errNotFound("Order not found")
	}
	log.Printf("[OrderService] failed to fetch order %s: %v", orderID, err)
	return errInternal("Failed to fetch order")
}

func calculateTotalPages(total int64, limit int) int64 {
	if limit == 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
