package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/greenbasket/pos/internal/domain"
	apperrors "github.com/greenbasket/pos/pkg/errors"
	"github.com/greenbasket/pos/pkg/httpclient"
)

// CatalogClient looks up products in the catalog backend.
type CatalogClient struct {
	http    HTTPDoer
	baseURL string
	logger  *slog.Logger
}

// NewCatalogClient creates a client for the catalog backend.
func NewCatalogClient(httpClient HTTPDoer, baseURL string, logger *slog.Logger) *CatalogClient {
	return &CatalogClient{
		http:    httpClient,
		baseURL: baseURL,
		logger:  logger,
	}
}

type productResponse struct {
	Product *domain.Product `json:"product"`
}

type productListResponse struct {
	Products []domain.Product `json:"products"`
	Total    int              `json:"total"`
}

// GetByBarcode resolves one product by its scanned barcode.
func (c *CatalogClient) GetByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	if barcode == "" {
		return nil, apperrors.InvalidInput("barcode is required")
	}

	endpoint := c.baseURL + "/api/products/barcode/" + url.PathEscape(barcode)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create barcode lookup request: %w", err)
	}

	resp, err := c.http.Do(ctx, httpReq)
	if err != nil {
		return nil, fmt.Errorf("call catalog service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, apperrors.NotFound("product", barcode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "catalog")
	}

	var productResp productResponse
	if err := json.NewDecoder(resp.Body).Decode(&productResp); err != nil {
		return nil, fmt.Errorf("decode product response: %w", err)
	}
	if productResp.Product == nil {
		return nil, apperrors.NotFound("product", barcode)
	}

	c.logger.DebugContext(ctx, "product resolved by barcode",
		slog.String("barcode", barcode),
		slog.Int64("product_id", productResp.Product.ID),
	)

	return productResp.Product, nil
}

// Search queries the catalog by name or SKU fragment.
func (c *CatalogClient) Search(ctx context.Context, query string, limit, offset int) ([]domain.Product, int, error) {
	if query == "" {
		return nil, 0, apperrors.InvalidInput("search query is required")
	}

	params := url.Values{}
	params.Set("search", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	endpoint := c.baseURL + "/api/products?" + params.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create product search request: %w", err)
	}

	resp, err := c.http.Do(ctx, httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("call catalog service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, httpclient.ParseResponseError(resp, "catalog")
	}

	var listResp productListResponse
	if err := json.NewDecoder(resp.Body).Decode(&listResp); err != nil {
		return nil, 0, fmt.Errorf("decode product list response: %w", err)
	}

	return listResp.Products, listResp.Total, nil
}
