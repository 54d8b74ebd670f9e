package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Quantity is informational; sales do not
// decrement it.
type Product struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string          `gorm:"type:varchar(100);not null"`
	Price     decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Quantity  decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	CreatedAt time.Time
}

func (Product) TableName() string { return "products" }

// ProductPatch carries catalog update fields. A nil pointer means "not
// supplied"; a supplied zero (e.g. quantity 0) is applied.
type ProductPatch struct {
	Name     *string
	Price    *decimal.Decimal
	Quantity *decimal.Decimal
}

func (p ProductPatch) Empty() bool {
	return p.Name == nil && p.Price == nil && p.Quantity == nil
}

// Complete reports whether every field is supplied, as a full update requires.
func (p ProductPatch) Complete() bool {
	return p.Name != nil && p.Price != nil && p.Quantity != nil
}
