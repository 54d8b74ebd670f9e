package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/nretrorsum/work-test/internal/apperr"
	"github.com/nretrorsum/work-test/internal/dto"
	"github.com/nretrorsum/work-test/internal/model"
	"github.com/nretrorsum/work-test/internal/repository"
)

// ProductCache is a read-through cache in front of the catalog store.
// Failures are logged and otherwise ignored: the store stays authoritative.
type ProductCache interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Product, error)
	Set(ctx context.Context, p *model.Product) error
	Invalidate(ctx context.Context, id uuid.UUID) error
}

type ProductService interface {
	Create(ctx context.Context, req dto.AddProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	List(ctx context.Context, q dto.ProductListQuery) ([]dto.ProductResponse, error)
	Replace(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Patch(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	repo  repository.ProductRepository
	cache ProductCache
}

// NewProductService builds the service. cache may be nil to disable caching.
func NewProductService(repo repository.ProductRepository, cache ProductCache) ProductService {
	return &productService{repo: repo, cache: cache}
}

func (s *productService) Create(ctx context.Context, req dto.AddProductRequest) (*dto.ProductResponse, error) {
	if req.Price == nil {
		return nil, apperr.Validationf("missing required field: price")
	}
	p := &model.Product{Name: req.Name, Price: *req.Price, Quantity: decimal.Zero}
	if req.Quantity != nil {
		p.Quantity = *req.Quantity
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	resp := dto.NewProductResponse(p)
	return &resp, nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		if err != nil {
			log.Warn().Err(err).Str("product_id", id.String()).Msg("product cache read failed")
		} else if cached != nil {
			resp := dto.NewProductResponse(cached)
			return &resp, nil
		}
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFoundf("product %s not found", id)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, p); err != nil {
			log.Warn().Err(err).Str("product_id", id.String()).Msg("product cache write failed")
		}
	}
	resp := dto.NewProductResponse(p)
	return &resp, nil
}

func (s *productService) List(ctx context.Context, q dto.ProductListQuery) ([]dto.ProductResponse, error) {
	products, err := s.repo.List(ctx, q.Skip, q.Limit)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ProductResponse, len(products))
	for i := range products {
		resp[i] = dto.NewProductResponse(&products[i])
	}
	return resp, nil
}

func (s *productService) Replace(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.Replace(ctx, id, req.Patch())
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	resp := dto.NewProductResponse(p)
	return &resp, nil
}

func (s *productService) Patch(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.Patch(ctx, id, req.Patch())
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	resp := dto.NewProductResponse(p)
	return &resp, nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.NotFoundf("product %s not found", id)
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *productService) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		log.Warn().Err(err).Str("product_id", id.String()).Msg("product cache invalidation failed")
	}
}
