package dto

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nretrorsum/work-test/internal/model"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type TransactionItemRequest struct {
	ProductID uuid.UUID        `json:"product_id" validate:"required"`
	Quantity  *decimal.Decimal `json:"quantity"   validate:"required"`
}

type CreateTransactionRequest struct {
	CashierID  uuid.UUID                `json:"cashier_id"  validate:"required"`
	TotalPrice *decimal.Decimal         `json:"total_price" validate:"required"`
	Status     string                   `json:"status"      validate:"omitempty,oneof=paid canceled"`
	Items      []TransactionItemRequest `json:"items"       validate:"required,min=1,dive"`
}

func (r CreateTransactionRequest) Model() model.NewTransaction {
	items := make([]model.LineItemInput, 0, len(r.Items))
	for _, it := range r.Items {
		q := decimal.Zero
		if it.Quantity != nil {
			q = *it.Quantity
		}
		items = append(items, model.LineItemInput{ProductID: it.ProductID, Quantity: q})
	}
	return model.NewTransaction{
		CashierID:  r.CashierID,
		TotalPrice: r.TotalPrice,
		Status:     r.Status,
		Items:      items,
	}
}

// UpdateTransactionRequest is the PATCH body. ID and CreatedAt are accepted
// only so that attempts to change them are rejected explicitly.
type UpdateTransactionRequest struct {
	ID         *string          `json:"id"`
	CreatedAt  *string          `json:"created_at"`
	CashierID  *uuid.UUID       `json:"cashier_id"`
	TotalPrice *decimal.Decimal `json:"total_price"`
	Status     *string          `json:"status" validate:"omitempty,oneof=paid canceled"`
}

func (r UpdateTransactionRequest) Patch() model.TransactionPatch {
	p := model.TransactionPatch{
		CashierID:  r.CashierID,
		TotalPrice: r.TotalPrice,
		Status:     r.Status,
	}
	// The values are irrelevant: presence alone is an immutable-field violation.
	if r.ID != nil {
		p.ID = &uuid.Nil
	}
	if r.CreatedAt != nil {
		t := time.Time{}
		p.CreatedAt = &t
	}
	return p
}

// TransactionListQuery is bound from the query string of GET /transactions/.
type TransactionListQuery struct {
	Skip      int    `form:"skip,default=0"    validate:"min=0"`
	Limit     int    `form:"limit,default=100" validate:"min=0,max=1000"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

var dateTimeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05"}

const dateLayout = "2006-01-02"

// parseBound parses an RFC 3339 / ISO 8601 timestamp or a plain date. A plain
// end date covers the whole day so that the bound stays inclusive.
func parseBound(s string, end bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, errors.New("invalid date " + s + ": expected ISO 8601")
	}
	if end {
		d = d.Add(24*time.Hour - time.Microsecond)
	}
	return &d, nil
}

func (q TransactionListQuery) Filter() (model.TransactionFilter, error) {
	start, err := parseBound(q.StartDate, false)
	if err != nil {
		return model.TransactionFilter{}, err
	}
	end, err := parseBound(q.EndDate, true)
	if err != nil {
		return model.TransactionFilter{}, err
	}
	if start != nil && end != nil && end.Before(*start) {
		return model.TransactionFilter{}, errors.New("end_date must not be before start_date")
	}
	return model.TransactionFilter{Skip: q.Skip, Limit: q.Limit, StartDate: start, EndDate: end}, nil
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type TransactionItemResponse struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  decimal.Decimal `json:"quantity"`
}

type TransactionResponse struct {
	ID         string                    `json:"id"`
	CashierID  string                    `json:"cashier_id"`
	TotalPrice decimal.Decimal           `json:"total_price"`
	Status     string                    `json:"status"`
	CreatedAt  time.Time                 `json:"created_at"`
	UpdatedAt  time.Time                 `json:"updated_at"`
	Items      []TransactionItemResponse `json:"items"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func NewTransactionResponse(v *model.TransactionView) TransactionResponse {
	items := make([]TransactionItemResponse, 0, len(v.Items))
	for _, it := range v.Items {
		items = append(items, TransactionItemResponse{
			ProductID: it.ProductID.String(),
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
	}
	return TransactionResponse{
		ID:         v.ID.String(),
		CashierID:  v.CashierID.String(),
		TotalPrice: v.TotalPrice,
		Status:     v.Status,
		CreatedAt:  v.CreatedAt,
		UpdatedAt:  v.UpdatedAt,
		Items:      items,
	}
}
