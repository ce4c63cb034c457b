package services

import (
	"bytes"
	"context"
	"io"
	"order-service/models"
	repositories "order-service/repository"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory fakes mirroring the GORM repositories closely enough for the
// service tests: record-not-found sentinels, versioned updates, insertion
// order on payment listings.

type fakeOrderRepo struct {
	mu             sync.Mutex
	orders         map[uuid.UUID]*models.Order
	logs           []models.OrderStatusLog
	conflictNext   bool
	conflictAll    bool
	failRemoveNext bool
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]*models.Order)}
}

func (f *fakeOrderRepo) Create(_ context.Context, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	for i := range order.OrderItems {
		if order.OrderItems[i].ID == uuid.Nil {
			order.OrderItems[i].ID = uuid.New()
		}
		order.OrderItems[i].OrderID = order.ID
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt

	f.orders[order.ID] = copyOrder(order)
	return nil
}

func (f *fakeOrderRepo) FindByID(_ context.Context, orderID uuid.UUID) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.orders[orderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return copyOrder(stored), nil
}

func (f *fakeOrderRepo) FindByIDAndUserID(_ context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.orders[orderID]
	if !ok || stored.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return copyOrder(stored), nil
}

func (f *fakeOrderRepo) FindByUserID(_ context.Context, userID uuid.UUID, page, limit int) ([]models.Order, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, *copyOrder(o))
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeOrderRepo) FindAll(_ context.Context, page, limit int) ([]models.Order, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Order
	for _, o := range f.orders {
		out = append(out, *copyOrder(o))
	}
	return out, int64(len(out)), nil
}

func (f *fakeOrderRepo) UpdateVersioned(_ context.Context, order *models.Order, updates map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.conflictAll {
		return repositories.ErrVersionConflict
	}
	if f.conflictNext {
		f.conflictNext = false
		return repositories.ErrVersionConflict
	}

	stored, ok := f.orders[order.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored.Version != order.Version {
		return repositories.ErrVersionConflict
	}

	applyOrderUpdates(stored, updates)
	order.Version++
	return nil
}

// RemoveItemVersioned mirrors the transactional repo method: on any failure
// nothing is applied.
func (f *fakeOrderRepo) RemoveItemVersioned(_ context.Context, order *models.Order, itemID uuid.UUID, updates map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failRemoveNext {
		f.failRemoveNext = false
		return io.ErrClosedPipe
	}

	stored, ok := f.orders[order.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored.Version != order.Version {
		return repositories.ErrVersionConflict
	}

	for i, item := range stored.OrderItems {
		if item.ID == itemID {
			stored.OrderItems = append(stored.OrderItems[:i], stored.OrderItems[i+1:]...)
			break
		}
	}

	applyOrderUpdates(stored, updates)
	order.Version++
	return nil
}

func applyOrderUpdates(stored *models.Order, updates map[string]interface{}) {
	for key, val := range updates {
		switch key {
		case "status":
			stored.Status = val.(string)
		case "total_original_cents":
			stored.TotalOriginalCents = asInt64(val)
		case "negotiated_cents":
			cents := asInt64(val)
			stored.NegotiatedCents = &cents
		case "final_cents":
			cents := asInt64(val)
			stored.FinalCents = &cents
		case "notes":
			s := val.(string)
			stored.Notes = &s
		case "tracking_info":
			s := val.(string)
			stored.TrackingInfo = &s
		case "estimated_delivery":
			s := val.(string)
			stored.EstimatedDelivery = &s
		case "version":
			// applied below
		}
	}

	stored.Version++
	stored.UpdatedAt = time.Now()
}

func (f *fakeOrderRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	counts := make(map[string]int64)
	for _, o := range f.orders {
		counts[o.Status]++
	}
	return counts, nil
}

func (f *fakeOrderRepo) LogStatusChange(_ context.Context, entry *models.OrderStatusLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.logs = append(f.logs, *entry)
	return nil
}

func copyOrder(o *models.Order) *models.Order {
	cp := *o
	cp.OrderItems = append([]models.OrderItem(nil), o.OrderItems...)
	if o.NegotiatedCents != nil {
		v := *o.NegotiatedCents
		cp.NegotiatedCents = &v
	}
	if o.FinalCents != nil {
		v := *o.FinalCents
		cp.FinalCents = &v
	}
	return &cp
}

func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	}
	panic("unexpected numeric type in fake repo")
}

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments []*models.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{}
}

func (f *fakePaymentRepo) Create(_ context.Context, payment *models.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	payment.CreatedAt = time.Now()
	cp := *payment
	f.payments = append(f.payments, &cp)
	return nil
}

func (f *fakePaymentRepo) FindByID(_ context.Context, paymentID uuid.UUID) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, p := range f.payments {
		if p.ID == paymentID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePaymentRepo) FindByOrderID(_ context.Context, orderID uuid.UUID) ([]models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Payment
	for _, p := range f.payments {
		if p.OrderID == orderID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePaymentRepo) FindPending(_ context.Context) ([]models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Payment
	for _, p := range f.payments {
		if !p.Verified {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePaymentRepo) MarkVerified(_ context.Context, paymentID, verifierID uuid.UUID, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, p := range f.payments {
		if p.ID == paymentID {
			if p.Verified {
				return false, nil
			}
			p.Verified = true
			p.VerifiedAt = &at
			p.VerifiedBy = &verifierID
			return true, nil
		}
	}
	return false, nil
}

type fakeCatalog struct {
	cars map[uuid.UUID]*Car
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{cars: make(map[uuid.UUID]*Car)}
}

func (f *fakeCatalog) addCar(priceCents int64, active bool) uuid.UUID {
	id := uuid.New()
	f.cars[id] = &Car{
		ID:         id,
		Title:      "Toyota Land Cruiser",
		Year:       2019,
		PriceCents: priceCents,
		IsActive:   active,
	}
	return id
}

func (f *fakeCatalog) FetchCarByID(_ context.Context, carID uuid.UUID) (*Car, error) {
	car, ok := f.cars[carID]
	if !ok {
		return nil, ErrCarNotFound
	}
	cp := *car
	return &cp, nil
}

type fakeBlobStore struct {
	mu       sync.Mutex
	stored   map[string][]byte
	failNext bool
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{stored: make(map[string][]byte)}
}

func (f *fakeBlobStore) Store(_ context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failNext {
		f.failNext = false
		return "", io.ErrClosedPipe
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.stored[key] = data
	return key, nil
}

func (f *fakeBlobStore) Retrieve(_ context.Context, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, ok := f.stored[key]
	if !ok {
		return nil, io.ErrUnexpectedEOF
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []models.OrderEvent
}

func (n *recordingNotifier) NotifyOrderEvent(_ context.Context, evt models.OrderEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, evt)
}
