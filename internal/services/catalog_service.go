package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jesusrosales17/ecommerce-sub001/internal/domain"
	"github.com/jesusrosales17/ecommerce-sub001/internal/repositories"
)

const maxCatalogPageSize = 100

var (
	// ErrCatalogInvalidInput indicates the caller supplied invalid input.
	ErrCatalogInvalidInput = errors.New("catalog service: invalid input")
	// ErrCatalogNotFound indicates the requested product is not available.
	ErrCatalogNotFound = errors.New("catalog service: not found")
	// ErrCatalogUnavailable indicates the catalog backend failed.
	ErrCatalogUnavailable = errors.New("catalog service: unavailable")
)

// CatalogServiceDeps wires the repository dependency for catalog reads.
type CatalogServiceDeps struct {
	Products repositories.ProductRepository
	Logger   Logger
}

type catalogService struct {
	products repositories.ProductRepository
	logger   Logger
}

// NewCatalogService constructs a CatalogService validating required dependencies.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Products == nil {
		return nil, errors.New("catalog service: product repository is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &catalogService{products: deps.Products, logger: logger}, nil
}

// GetProduct returns an active product. Inactive and deleted products read as missing.
func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	if id == uuid.Nil {
		return domain.Product{}, ErrCatalogInvalidInput
	}

	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return domain.Product{}, ErrCatalogNotFound
		}
		return domain.Product{}, errors.Join(ErrCatalogUnavailable, err)
	}
	if product.Status != domain.ProductStatusActive {
		return domain.Product{}, ErrCatalogNotFound
	}
	return product, nil
}

// ListProducts returns a filtered page of active products.
func (s *catalogService) ListProducts(ctx context.Context, filter repositories.ProductFilter) ([]domain.Product, error) {
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, ErrCatalogInvalidInput
	}
	if filter.Limit > maxCatalogPageSize {
		filter.Limit = maxCatalogPageSize
	}

	products, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, errors.Join(ErrCatalogUnavailable, err)
	}
	return products, nil
}
