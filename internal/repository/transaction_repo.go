package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nretrorsum/work-test/internal/apperr"
	"github.com/nretrorsum/work-test/internal/model"
)

// TransactionRepository is the transaction engine. Every method runs in a
// single database transaction that is rolled back when the method returns an
// error.
type TransactionRepository interface {
	// CreateWithItems inserts a transaction and its line items atomically.
	// Every referenced product must exist, otherwise nothing is written.
	CreateWithItems(ctx context.Context, in model.NewTransaction) (*model.TransactionView, error)
	// List returns a page of transactions, newest first, with their items.
	List(ctx context.Context, filter model.TransactionFilter) ([]model.TransactionView, error)
	// Get returns (nil, nil) when the transaction does not exist.
	Get(ctx context.Context, id uuid.UUID) (*model.TransactionView, error)
	// Update applies the supplied scalar fields; line items are left alone.
	Update(ctx context.Context, id uuid.UUID, patch model.TransactionPatch) (*model.TransactionView, error)
	// Delete removes the line items and then the transaction. It reports
	// whether a transaction row was removed.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type transactionRepo struct {
	db  *gorm.DB
	now func() time.Time
}

var _ TransactionRepository = (*transactionRepo)(nil)

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db: db, now: time.Now}
}

// timestamp returns the current time at the precision Postgres stores.
func (r *transactionRepo) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Microsecond)
}

// ── CreateWithItems ──────────────────────────────────────────────────────────

// ValidateNewTransaction checks a creation request and defaults an empty
// status to paid. It does not touch the store.
func ValidateNewTransaction(in *model.NewTransaction) error {
	if in.CashierID == uuid.Nil {
		return apperr.Validationf("missing required field: cashier_id")
	}
	if in.TotalPrice == nil {
		return apperr.Validationf("missing required field: total_price")
	}
	if in.Items == nil {
		return apperr.Validationf("missing required field: items")
	}
	if len(in.Items) == 0 {
		return apperr.Validationf("items must contain at least one line item")
	}
	if in.Status == "" {
		in.Status = model.StatusPaid
	}
	if !model.ValidStatus(in.Status) {
		return apperr.Validationf("invalid transaction status %q: must be one of paid, canceled", in.Status)
	}

	seen := make(map[uuid.UUID]bool, len(in.Items))
	for _, item := range in.Items {
		if item.ProductID == uuid.Nil {
			return apperr.Validationf("line item is missing product_id")
		}
		if seen[item.ProductID] {
			return apperr.Validationf("product %s appears more than once in items", item.ProductID)
		}
		seen[item.ProductID] = true
	}
	return nil
}

func (r *transactionRepo) CreateWithItems(ctx context.Context, in model.NewTransaction) (*model.TransactionView, error) {
	if err := ValidateNewTransaction(&in); err != nil {
		return nil, err
	}

	var view *model.TransactionView
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make([]uuid.UUID, 0, len(in.Items))
		for _, item := range in.Items {
			ids = append(ids, item.ProductID)
		}

		var products []model.Product
		if err := tx.Where("id IN ?", ids).Find(&products).Error; err != nil {
			return classify(err, "failed to resolve products")
		}
		byID := make(map[uuid.UUID]model.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}
		for _, item := range in.Items {
			if _, ok := byID[item.ProductID]; !ok {
				return apperr.Referentialf("product %s not found", item.ProductID)
			}
		}

		now := r.timestamp()
		t := model.Transaction{
			ID:         in.ID,
			CashierID:  in.CashierID,
			TotalPrice: *in.TotalPrice,
			Status:     in.Status,
			CreatedAt:  in.CreatedAt,
			UpdatedAt:  in.UpdatedAt,
		}
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}
		if t.UpdatedAt.IsZero() {
			t.UpdatedAt = now
		}

		if err := tx.Create(&t).Error; err != nil {
			if errors.Is(err, gorm.ErrForeignKeyViolated) {
				return apperr.Referentialf("cashier %s not found", in.CashierID)
			}
			return classify(err, "failed to insert transaction")
		}

		lines := make([]model.TransactionProduct, 0, len(in.Items))
		items := make([]model.LineItemView, 0, len(in.Items))
		for _, item := range in.Items {
			lines = append(lines, model.TransactionProduct{
				TransactionID: t.ID,
				ProductID:     item.ProductID,
				Quantity:      item.Quantity,
			})
			p := byID[item.ProductID]
			items = append(items, model.LineItemView{
				ProductID: p.ID,
				Name:      p.Name,
				Price:     p.Price,
				Quantity:  item.Quantity,
			})
		}
		if err := tx.CreateInBatches(lines, 500).Error; err != nil {
			return classify(err, "failed to insert line items")
		}

		model.SortLineItems(items)
		view = &model.TransactionView{Transaction: t, Items: items}
		return nil
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.Store, err, "failed to create transaction")
	}
	return view, nil
}

// ── Reads ────────────────────────────────────────────────────────────────────

// lineItemRow is one row of transaction_product joined with products.
type lineItemRow struct {
	TransactionID uuid.UUID
	ProductID     uuid.UUID
	Name          string
	Price         decimal.Decimal
	Quantity      decimal.Decimal
}

// lineItems loads the joined items of the given transactions, grouped by
// transaction id. Item order within a transaction is by product id.
func lineItems(tx *gorm.DB, ids []uuid.UUID) (map[uuid.UUID][]model.LineItemView, error) {
	out := make(map[uuid.UUID][]model.LineItemView, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []lineItemRow
	err := tx.Table("transaction_product AS tp").
		Select("tp.transaction_id, tp.product_id, p.name, p.price, tp.quantity").
		Joins("JOIN products AS p ON p.id = tp.product_id").
		Where("tp.transaction_id IN ?", ids).
		Order("tp.product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.TransactionID] = append(out[row.TransactionID], model.LineItemView{
			ProductID: row.ProductID,
			Name:      row.Name,
			Price:     row.Price,
			Quantity:  row.Quantity,
		})
	}
	return out, nil
}

// fold attaches items to their headers, keeping header order. A header with
// no items gets an empty, non-nil list.
func fold(headers []model.Transaction, items map[uuid.UUID][]model.LineItemView) []model.TransactionView {
	views := make([]model.TransactionView, 0, len(headers))
	for _, h := range headers {
		its := items[h.ID]
		if its == nil {
			its = []model.LineItemView{}
		}
		views = append(views, model.TransactionView{Transaction: h, Items: its})
	}
	return views
}

func (r *transactionRepo) List(ctx context.Context, f model.TransactionFilter) ([]model.TransactionView, error) {
	if f.Skip < 0 || f.Limit < 0 {
		return nil, apperr.Validationf("skip and limit must be >= 0")
	}
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return nil, apperr.Validationf("end_date must not be before start_date")
	}
	if f.Limit == 0 {
		return []model.TransactionView{}, nil
	}

	var views []model.TransactionView
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&model.Transaction{})
		if f.StartDate != nil {
			q = q.Where("created_at >= ?", *f.StartDate)
		}
		if f.EndDate != nil {
			q = q.Where("created_at <= ?", *f.EndDate)
		}

		// Paginate headers first so that a page never splits a transaction's items.
		var headers []model.Transaction
		if err := q.Order("created_at DESC").Order("id DESC").
			Offset(f.Skip).Limit(f.Limit).
			Find(&headers).Error; err != nil {
			return err
		}

		ids := make([]uuid.UUID, 0, len(headers))
		for _, h := range headers {
			ids = append(ids, h.ID)
		}
		items, err := lineItems(tx, ids)
		if err != nil {
			return err
		}
		views = fold(headers, items)
		return nil
	})
	if err != nil {
		return nil, classify(err, "failed to list transactions")
	}
	return views, nil
}

func getView(tx *gorm.DB, id uuid.UUID) (*model.TransactionView, error) {
	var t model.Transaction
	res := tx.Where("id = ?", id).Limit(1).Find(&t)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	items, err := lineItems(tx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	views := fold([]model.Transaction{t}, items)
	return &views[0], nil
}

func (r *transactionRepo) Get(ctx context.Context, id uuid.UUID) (*model.TransactionView, error) {
	var view *model.TransactionView
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		view, err = getView(tx, id)
		return err
	})
	if err != nil {
		return nil, classify(err, "failed to get transaction")
	}
	return view, nil
}

// ── Update / Delete ──────────────────────────────────────────────────────────

// ValidatePatch rejects immutable, empty or malformed transaction patches.
func ValidatePatch(p model.TransactionPatch) error {
	if p.ID != nil {
		return apperr.Immutablef("cannot update field: id")
	}
	if p.CreatedAt != nil {
		return apperr.Immutablef("cannot update field: created_at")
	}
	if p.Empty() {
		return apperr.Validationf("no transaction fields to update provided")
	}
	if p.CashierID != nil && *p.CashierID == uuid.Nil {
		return apperr.Validationf("cashier_id must not be empty")
	}
	if p.Status != nil && !model.ValidStatus(*p.Status) {
		return apperr.Validationf("invalid transaction status %q: must be one of paid, canceled", *p.Status)
	}
	return nil
}

func (r *transactionRepo) Update(ctx context.Context, id uuid.UUID, patch model.TransactionPatch) (*model.TransactionView, error) {
	if err := ValidatePatch(patch); err != nil {
		return nil, err
	}

	updates := map[string]any{"updated_at": r.timestamp()}
	if patch.CashierID != nil {
		updates["cashier_id"] = *patch.CashierID
	}
	if patch.TotalPrice != nil {
		updates["total_price"] = *patch.TotalPrice
	}
	if patch.Status != nil {
		updates["status"] = *patch.Status
	}

	var view *model.TransactionView
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Transaction{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
				return apperr.Referentialf("cashier %s not found", *patch.CashierID)
			}
			return classify(res.Error, "failed to update transaction")
		}
		if res.RowsAffected == 0 {
			return apperr.NotFoundf("transaction %s not found", id)
		}
		var err error
		view, err = getView(tx, id)
		return err
	})
	if err != nil {
		return nil, classify(err, "failed to update transaction")
	}
	return view, nil
}

func (r *transactionRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Line items first: they reference the transaction row.
		if err := tx.Where("transaction_id = ?", id).Delete(&model.TransactionProduct{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.Transaction{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, classify(err, "failed to delete transaction")
	}
	return deleted, nil
}
