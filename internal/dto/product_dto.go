package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nretrorsum/work-test/internal/model"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AddProductRequest struct {
	Name     string           `json:"name"     validate:"required,min=1,max=100"`
	Price    *decimal.Decimal `json:"price"    validate:"required,min=0"`
	Quantity *decimal.Decimal `json:"quantity" validate:"omitempty,min=0"`
}

// UpdateProductRequest is shared by PUT (all fields required, checked by the
// store) and PATCH (only supplied fields change). Pointers keep "absent"
// distinct from zero, so PATCH {"quantity": 0} sets the quantity to zero.
type UpdateProductRequest struct {
	Name     *string          `json:"name"     validate:"omitempty,min=1,max=100"`
	Price    *decimal.Decimal `json:"price"    validate:"omitempty,min=0"`
	Quantity *decimal.Decimal `json:"quantity" validate:"omitempty,min=0"`
}

func (r UpdateProductRequest) Patch() model.ProductPatch {
	return model.ProductPatch{Name: r.Name, Price: r.Price, Quantity: r.Quantity}
}

// ProductListQuery is bound from the query string of GET /api/product/.
type ProductListQuery struct {
	Skip  int `form:"skip,default=0"    validate:"min=0"`
	Limit int `form:"limit,default=100" validate:"min=0,max=1000"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  decimal.Decimal `json:"quantity"`
	CreatedAt time.Time       `json:"created_at"`
}

func NewProductResponse(p *model.Product) ProductResponse {
	return ProductResponse{
		ID:        p.ID.String(),
		Name:      p.Name,
		Price:     p.Price,
		Quantity:  p.Quantity,
		CreatedAt: p.CreatedAt,
	}
}
