package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nretrorsum/work-test/internal/apperr"
	"github.com/nretrorsum/work-test/internal/dto"
	"github.com/nretrorsum/work-test/internal/model"
	"github.com/nretrorsum/work-test/internal/repository/repotest"
)

// mapCache is an in-memory ProductCache; fail makes every call error.
type mapCache struct {
	items       map[uuid.UUID]model.Product
	fail        bool
	invalidated []uuid.UUID
}

func newMapCache() *mapCache { return &mapCache{items: make(map[uuid.UUID]model.Product)} }

var errCacheDown = errors.New("cache down")

func (c *mapCache) Get(_ context.Context, id uuid.UUID) (*model.Product, error) {
	if c.fail {
		return nil, errCacheDown
	}
	p, ok := c.items[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (c *mapCache) Set(_ context.Context, p *model.Product) error {
	if c.fail {
		return errCacheDown
	}
	c.items[p.ID] = *p
	return nil
}

func (c *mapCache) Invalidate(_ context.Context, id uuid.UUID) error {
	c.invalidated = append(c.invalidated, id)
	if c.fail {
		return errCacheDown
	}
	delete(c.items, id)
	return nil
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func seedViaService(t *testing.T, svc ProductService, name, price string) *dto.ProductResponse {
	t.Helper()
	p, err := svc.Create(context.Background(), dto.AddProductRequest{Name: name, Price: dec(price), Quantity: dec("5")})
	require.NoError(t, err)
	return p
}

func TestProductService_GetIsReadThrough(t *testing.T) {
	repo := repotest.NewProducts()
	cache := newMapCache()
	svc := NewProductService(repo, cache)
	p := seedViaService(t, svc, "Milk", "1.20")
	id := uuid.MustParse(p.ID)

	_, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	_, err = svc.Get(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.Reads, "second read is served from cache")
	assert.Contains(t, cache.items, id)
}

func TestProductService_PatchInvalidatesCache(t *testing.T) {
	repo := repotest.NewProducts()
	cache := newMapCache()
	svc := NewProductService(repo, cache)
	p := seedViaService(t, svc, "Bread", "2.00")
	id := uuid.MustParse(p.ID)

	_, err := svc.Get(context.Background(), id)
	require.NoError(t, err)

	updated, err := svc.Patch(context.Background(), id, dto.UpdateProductRequest{Quantity: dec("0")})
	require.NoError(t, err)
	assert.True(t, updated.Quantity.IsZero())
	assert.Equal(t, "Bread", updated.Name)
	assert.NotContains(t, cache.items, id)

	got, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, got.Quantity.IsZero())
}

func TestProductService_CacheFailureFallsBackToStore(t *testing.T) {
	repo := repotest.NewProducts()
	cache := newMapCache()
	cache.fail = true
	svc := NewProductService(repo, cache)
	p := seedViaService(t, svc, "Eggs", "3.10")

	got, err := svc.Get(context.Background(), uuid.MustParse(p.ID))
	require.NoError(t, err)
	assert.Equal(t, "Eggs", got.Name)

	require.NoError(t, svc.Delete(context.Background(), uuid.MustParse(p.ID)))
}

func TestProductService_NilCache(t *testing.T) {
	svc := NewProductService(repotest.NewProducts(), nil)
	p := seedViaService(t, svc, "Tea", "4.00")

	got, err := svc.Get(context.Background(), uuid.MustParse(p.ID))
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("4")))
}

func TestProductService_NotFound(t *testing.T) {
	svc := NewProductService(repotest.NewProducts(), newMapCache())
	missing := uuid.New()

	_, err := svc.Get(context.Background(), missing)
	assert.True(t, apperr.Is(err, apperr.NotFound))

	err = svc.Delete(context.Background(), missing)
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestProductService_ReplaceRequiresAllFields(t *testing.T) {
	svc := NewProductService(repotest.NewProducts(), nil)
	p := seedViaService(t, svc, "Rice", "1.00")

	name := "Rice 1kg"
	_, err := svc.Replace(context.Background(), uuid.MustParse(p.ID), dto.UpdateProductRequest{Name: &name})
	assert.True(t, apperr.Is(err, apperr.Validation))
}

func TestProductService_ListOrdersByPriceDesc(t *testing.T) {
	svc := NewProductService(repotest.NewProducts(), nil)
	seedViaService(t, svc, "Cheap", "1.00")
	seedViaService(t, svc, "Dear", "9.00")
	seedViaService(t, svc, "Mid", "5.00")

	list, err := svc.List(context.Background(), dto.ProductListQuery{Skip: 0, Limit: 2})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Dear", list[0].Name)
	assert.Equal(t, "Mid", list[1].Name)
}
