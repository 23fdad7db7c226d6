package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jesusrosales17/ecommerce-sub001/internal/domain"
	"github.com/jesusrosales17/ecommerce-sub001/internal/platform/httpx"
	"github.com/jesusrosales17/ecommerce-sub001/internal/repositories"
	"github.com/jesusrosales17/ecommerce-sub001/internal/services"
)

// CatalogHandlers exposes public product listing and detail endpoints.
type CatalogHandlers struct {
	catalog services.CatalogService
}

// NewCatalogHandlers constructs the public catalog handlers.
func NewCatalogHandlers(catalog services.CatalogService) *CatalogHandlers {
	return &CatalogHandlers{catalog: catalog}
}

// Routes wires the /products endpoints onto the provided router.
func (h *CatalogHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.listProducts)
	r.Get("/{productId}", h.getProduct)
}

type productImagePayload struct {
	URL       string `json:"url"`
	Principal bool   `json:"principal"`
	Position  int    `json:"position"`
}

type productPayload struct {
	ID             string                `json:"id"`
	Name           string                `json:"name"`
	Description    string                `json:"description,omitempty"`
	Price          string                `json:"price"`
	SalePrice      *string               `json:"salePrice,omitempty"`
	EffectivePrice string                `json:"effectivePrice"`
	IsOnSale       bool                  `json:"isOnSale"`
	Stock          int                   `json:"stock"`
	CategoryID     *string               `json:"categoryId,omitempty"`
	Images         []productImagePayload `json:"images,omitempty"`
}

func buildProductPayload(product domain.Product) productPayload {
	payload := productPayload{
		ID:             product.ID.String(),
		Name:           product.Name,
		Description:    product.Description,
		Price:          product.Price.StringFixed(2),
		EffectivePrice: product.EffectivePrice().StringFixed(2),
		IsOnSale:       product.IsOnSale,
		Stock:          product.Stock,
	}
	if product.SalePrice != nil {
		sale := product.SalePrice.StringFixed(2)
		payload.SalePrice = &sale
	}
	if product.CategoryID != nil {
		id := product.CategoryID.String()
		payload.CategoryID = &id
	}
	for _, image := range product.Images {
		payload.Images = append(payload.Images, productImagePayload{
			URL:       image.URL,
			Principal: image.Principal,
			Position:  image.Position,
		})
	}
	return payload
}

func (h *CatalogHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_service_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	filter, err := parseProductFilter(r)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	products, err := h.catalog.ListProducts(ctx, filter)
	if err != nil {
		h.writeCatalogError(ctx, w, err)
		return
	}

	payload := make([]productPayload, 0, len(products))
	for _, product := range products {
		payload = append(payload, buildProductPayload(product))
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"products": payload})
}

func (h *CatalogHandlers) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_service_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	productID, err := uuid.Parse(chi.URLParam(r, "productId"))
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "productId must be a uuid", http.StatusBadRequest))
		return
	}

	product, err := h.catalog.GetProduct(ctx, productID)
	if err != nil {
		h.writeCatalogError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"product": buildProductPayload(product)})
}

func parseProductFilter(r *http.Request) (repositories.ProductFilter, error) {
	var filter repositories.ProductFilter
	query := r.URL.Query()

	if raw := strings.TrimSpace(query.Get("category")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, errors.New("category must be a uuid")
		}
		filter.CategoryID = &id
	}
	if raw := strings.TrimSpace(query.Get("onSale")); raw != "" {
		onSale, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, errors.New("onSale must be a boolean")
		}
		filter.OnSale = &onSale
	}
	filter.Search = strings.TrimSpace(query.Get("q"))

	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return filter, errors.New("limit must be a non-negative integer")
		}
		filter.Limit = limit
	}
	if raw := strings.TrimSpace(query.Get("offset")); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return filter, errors.New("offset must be a non-negative integer")
		}
		filter.Offset = offset
	}
	return filter, nil
}

func (h *CatalogHandlers) writeCatalogError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCatalogInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCatalogNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("product_not_found", "product not found", http.StatusNotFound))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("catalog_service_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
	}
}
