package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/fdlabs/fd_deposit_core/internal/apperrors"
	"github.com/fdlabs/fd_deposit_core/internal/core/domain"
	portssvc "github.com/fdlabs/fd_deposit_core/internal/core/ports/services"
)

// httpCatalog resolves products and customers from the product service over
// its JSON API. A 404 maps to apperrors.ErrNotFound; any other failure maps
// to apperrors.ErrCollaborator so callers never default business terms.
type httpCatalog struct {
	baseURL string
	client  *http.Client
}

// NewHTTPCatalog creates a catalog client against the product service.
func NewHTTPCatalog(baseURL string) portssvc.ProductSvcFacade {
	return &httpCatalog{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

var _ portssvc.ProductSvcFacade = (*httpCatalog)(nil)

func (c *httpCatalog) GetProduct(ctx context.Context, productCode string) (*domain.Product, error) {
	var product domain.Product
	if err := c.getJSON(ctx, "/api/v1/products/"+url.PathEscape(productCode), &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *httpCatalog) GetCustomer(ctx context.Context, customerID string) (*domain.Customer, error) {
	var customer domain.Customer
	if err := c.getJSON(ctx, "/api/v1/customers/"+url.PathEscape(customerID), &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

func (c *httpCatalog) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrCollaborator, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: catalog returned status %d", apperrors.ErrCollaborator, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode catalog response: %v", apperrors.ErrCollaborator, err)
	}
	return nil
}
