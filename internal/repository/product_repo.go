package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nretrorsum/work-test/internal/apperr"
	"github.com/nretrorsum/work-test/internal/model"
)

// ProductRepository is the catalog store.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	// FindByID returns (nil, nil) when the product does not exist.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	// List returns a page ordered by descending price.
	List(ctx context.Context, skip, limit int) ([]model.Product, error)
	// Replace overwrites name, price and quantity; all three are required.
	Replace(ctx context.Context, id uuid.UUID, patch model.ProductPatch) (*model.Product, error)
	// Patch changes only the supplied fields.
	Patch(ctx context.Context, id uuid.UUID, patch model.ProductPatch) (*model.Product, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type productRepo struct{ db *gorm.DB }

var _ ProductRepository = (*productRepo)(nil)

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func validateProductFields(name *string, price, quantity *decimal.Decimal) error {
	if name != nil && strings.TrimSpace(*name) == "" {
		return apperr.Validationf("name must not be empty")
	}
	if price != nil && price.IsNegative() {
		return apperr.Validationf("price must be >= 0")
	}
	if quantity != nil && quantity.IsNegative() {
		return apperr.Validationf("quantity must be >= 0")
	}
	return nil
}

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	if err := validateProductFields(&p.Name, &p.Price, &p.Quantity); err != nil {
		return err
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	}
	return classify(r.db.WithContext(ctx).Create(p).Error, "failed to create product")
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	res := r.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&p)
	if res.Error != nil {
		return nil, classify(res.Error, "failed to fetch product")
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *productRepo) List(ctx context.Context, skip, limit int) ([]model.Product, error) {
	if skip < 0 || limit < 0 {
		return nil, apperr.Validationf("skip and limit must be >= 0")
	}
	products := []model.Product{}
	if limit == 0 {
		return products, nil
	}
	err := r.db.WithContext(ctx).
		Order("price DESC").Order("id").
		Offset(skip).Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, classify(err, "failed to list products")
	}
	return products, nil
}

func (r *productRepo) Replace(ctx context.Context, id uuid.UUID, patch model.ProductPatch) (*model.Product, error) {
	if !patch.Complete() {
		return nil, apperr.Validationf("name, price and quantity are required")
	}
	return r.apply(ctx, id, patch)
}

func (r *productRepo) Patch(ctx context.Context, id uuid.UUID, patch model.ProductPatch) (*model.Product, error) {
	if patch.Empty() {
		return nil, apperr.Validationf("no fields to update provided")
	}
	return r.apply(ctx, id, patch)
}

func (r *productRepo) apply(ctx context.Context, id uuid.UUID, patch model.ProductPatch) (*model.Product, error) {
	if err := validateProductFields(patch.Name, patch.Price, patch.Quantity); err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Price != nil {
		updates["price"] = *patch.Price
	}
	if patch.Quantity != nil {
		updates["quantity"] = *patch.Quantity
	}

	var p model.Product
	res := r.db.WithContext(ctx).Model(&p).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return nil, classify(res.Error, "failed to update product")
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFoundf("product %s not found", id)
	}
	return &p, nil
}

// Delete removes the product. A product still referenced by a line item
// cannot be deleted and yields apperr.Conflict.
func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Product{})
	if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
		return false, apperr.Conflictf("product %s is referenced by transactions", id)
	}
	if res.Error != nil {
		return false, classify(res.Error, "failed to delete product")
	}
	return res.RowsAffected > 0, nil
}
