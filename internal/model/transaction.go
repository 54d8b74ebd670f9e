package model

import (
	"bytes"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status values accepted for Transaction.Status.
const (
	StatusPaid     = "paid"
	StatusCanceled = "canceled"
)

func ValidStatus(status string) bool {
	return status == StatusPaid || status == StatusCanceled
}

// Transaction is a sale header. TotalPrice is stored as supplied by the
// caller and never recomputed from the line items.
type Transaction struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CashierID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Status     string          `gorm:"type:varchar(20);not null"`
	CreatedAt  time.Time       `gorm:"not null;index"`
	UpdatedAt  time.Time       `gorm:"not null"`
}

func (Transaction) TableName() string { return "transactions" }

// TransactionProduct is a line item: one product on one transaction.
type TransactionProduct struct {
	TransactionID uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ProductID     uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Quantity      decimal.Decimal `gorm:"type:numeric(10,2);not null"`
}

func (TransactionProduct) TableName() string { return "transaction_product" }

// LineItemInput is one requested (product, quantity) pair.
type LineItemInput struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
}

// NewTransaction is the input of a sale creation. Zero values of ID, Status,
// CreatedAt and UpdatedAt are filled in by the store; TotalPrice and Items
// are required, so they are pointers/nil-able to tell "absent" from zero.
type NewTransaction struct {
	ID         uuid.UUID
	CashierID  uuid.UUID
	TotalPrice *decimal.Decimal
	Status     string
	Items      []LineItemInput
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TransactionPatch holds the fields of a partial update. A nil pointer means
// the field was not supplied. ID and CreatedAt exist only so that attempts to
// change them can be rejected.
type TransactionPatch struct {
	ID         *uuid.UUID
	CreatedAt  *time.Time
	CashierID  *uuid.UUID
	TotalPrice *decimal.Decimal
	Status     *string
}

func (p TransactionPatch) Empty() bool {
	return p.CashierID == nil && p.TotalPrice == nil && p.Status == nil
}

// LineItemView is a line item joined with the product's current name and price.
type LineItemView struct {
	ProductID uuid.UUID
	Name      string
	Price     decimal.Decimal
	Quantity  decimal.Decimal
}

// SortLineItems orders items by product id, the order every read and write
// path returns them in.
func SortLineItems(items []LineItemView) {
	sort.Slice(items, func(i, j int) bool {
		return bytes.Compare(items[i].ProductID[:], items[j].ProductID[:]) < 0
	})
}

// TransactionView is a transaction with its joined line items.
type TransactionView struct {
	Transaction
	Items []LineItemView
}

// TransactionFilter selects a page of transactions. Date bounds are inclusive.
type TransactionFilter struct {
	Skip      int
	Limit     int
	StartDate *time.Time
	EndDate   *time.Time
}
