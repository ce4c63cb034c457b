package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// ErrCarNotFound is returned when the catalog has no car with the given id.
var ErrCarNotFound = errors.New("car not found")

// Car is the catalog view the order core needs: a price snapshot plus the
// availability flag checked at creation time.
type Car struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Year       int       `json:"year"`
	ImageURL   string    `json:"image_url"`
	PriceCents int64     `json:"price_cents"`
	IsActive   bool      `json:"is_active"`
}

// CatalogClient fetches cars from the catalog service.
type CatalogClient interface {
	FetchCarByID(ctx context.Context, carID uuid.UUID) (*Car, error)
}

type HTTPCatalogClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPCatalogClient(baseURL string) *HTTPCatalogClient {
	return &HTTPCatalogClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *HTTPCatalogClient) FetchCarByID(ctx context.Context, carID uuid.UUID) (*Car, error) {
	url := fmt.Sprintf("%s/cars/internal/%s", c.baseURL, carID.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrCarNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog service returned %d", resp.StatusCode)
	}

	var car Car
	if err := json.NewDecoder(resp.Body).Decode(&car); err != nil {
		return nil, err
	}
	return &car, nil
}
