// Package repotest provides in-memory repositories for handler and service
// tests. They follow the error contracts of the GORM repositories and share
// their input validation.
package repotest

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nretrorsum/work-test/internal/apperr"
	"github.com/nretrorsum/work-test/internal/model"
	"github.com/nretrorsum/work-test/internal/repository"
)

// ── Users ─────────────────────────────────────────────────────────────────────

type Users struct {
	mu    sync.Mutex
	users map[string]*model.User
	// Lookups counts FindByUsername calls.
	Lookups int
}

var _ repository.UserRepository = (*Users)(nil)

func NewUsers() *Users { return &Users{users: make(map[string]*model.User)} }

func (r *Users) Register(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.Username]; ok {
		return apperr.Conflictf("username %q already exists", u.Username)
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = time.Now().UTC()
	cp := *u
	r.users[u.Username] = &cp
	return nil
}

func (r *Users) FindByUsername(_ context.Context, username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Lookups++
	u, ok := r.users[username]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *Users) Delete(_ context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[username]
	delete(r.users, username)
	return ok, nil
}

// ── Products ──────────────────────────────────────────────────────────────────

type Products struct {
	mu       sync.Mutex
	products map[uuid.UUID]model.Product
	// Reads counts FindByID and List calls.
	Reads int
}

var _ repository.ProductRepository = (*Products)(nil)

func NewProducts() *Products { return &Products{products: make(map[uuid.UUID]model.Product)} }

func (r *Products) Create(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	r.products[p.ID] = *p
	return nil
}

func (r *Products) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Reads++
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *Products) List(_ context.Context, skip, limit int) ([]model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Reads++
	if skip < 0 || limit < 0 {
		return nil, apperr.Validationf("skip and limit must be >= 0")
	}
	out := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Price.Equal(out[j].Price) {
			return out[i].Price.GreaterThan(out[j].Price)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return page(out, skip, limit), nil
}

func (r *Products) Replace(ctx context.Context, id uuid.UUID, patch model.ProductPatch) (*model.Product, error) {
	if !patch.Complete() {
		return nil, apperr.Validationf("name, price and quantity are required")
	}
	return r.Patch(ctx, id, patch)
}

func (r *Products) Patch(_ context.Context, id uuid.UUID, patch model.ProductPatch) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if patch.Empty() {
		return nil, apperr.Validationf("no product fields to update provided")
	}
	p, ok := r.products[id]
	if !ok {
		return nil, apperr.NotFoundf("product %s not found", id)
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Quantity != nil {
		p.Quantity = *patch.Quantity
	}
	r.products[id] = p
	return &p, nil
}

func (r *Products) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.products[id]
	delete(r.products, id)
	return ok, nil
}

// ── Transactions ──────────────────────────────────────────────────────────────

// Transactions resolves line items against a Products store at read time.
type Transactions struct {
	mu       sync.Mutex
	products *Products
	headers  map[uuid.UUID]model.Transaction
	items    map[uuid.UUID][]model.LineItemInput
	// Calls counts every method call.
	Calls int
}

var _ repository.TransactionRepository = (*Transactions)(nil)

func NewTransactions(products *Products) *Transactions {
	return &Transactions{
		products: products,
		headers:  make(map[uuid.UUID]model.Transaction),
		items:    make(map[uuid.UUID][]model.LineItemInput),
	}
}

func (r *Transactions) view(t model.Transaction) model.TransactionView {
	r.products.mu.Lock()
	defer r.products.mu.Unlock()
	items := []model.LineItemView{}
	for _, in := range r.items[t.ID] {
		p := r.products.products[in.ProductID]
		items = append(items, model.LineItemView{ProductID: p.ID, Name: p.Name, Price: p.Price, Quantity: in.Quantity})
	}
	model.SortLineItems(items)
	return model.TransactionView{Transaction: t, Items: items}
}

func (r *Transactions) CreateWithItems(_ context.Context, in model.NewTransaction) (*model.TransactionView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls++
	if err := repository.ValidateNewTransaction(&in); err != nil {
		return nil, err
	}
	r.products.mu.Lock()
	for _, it := range in.Items {
		if _, ok := r.products.products[it.ProductID]; !ok {
			r.products.mu.Unlock()
			return nil, apperr.Referentialf("product %s not found", it.ProductID)
		}
	}
	r.products.mu.Unlock()

	now := time.Now().UTC()
	t := model.Transaction{
		ID:         uuid.New(),
		CashierID:  in.CashierID,
		TotalPrice: *in.TotalPrice,
		Status:     in.Status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	r.headers[t.ID] = t
	r.items[t.ID] = append([]model.LineItemInput(nil), in.Items...)
	v := r.view(t)
	return &v, nil
}

func (r *Transactions) List(_ context.Context, f model.TransactionFilter) ([]model.TransactionView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls++
	if f.Skip < 0 || f.Limit < 0 {
		return nil, apperr.Validationf("skip and limit must be >= 0")
	}
	headers := make([]model.Transaction, 0, len(r.headers))
	for _, t := range r.headers {
		if f.StartDate != nil && t.CreatedAt.Before(*f.StartDate) {
			continue
		}
		if f.EndDate != nil && t.CreatedAt.After(*f.EndDate) {
			continue
		}
		headers = append(headers, t)
	}
	sort.Slice(headers, func(i, j int) bool {
		if !headers[i].CreatedAt.Equal(headers[j].CreatedAt) {
			return headers[i].CreatedAt.After(headers[j].CreatedAt)
		}
		return bytes.Compare(headers[i].ID[:], headers[j].ID[:]) > 0
	})
	headers = page(headers, f.Skip, f.Limit)
	out := make([]model.TransactionView, 0, len(headers))
	for _, t := range headers {
		out = append(out, r.view(t))
	}
	return out, nil
}

func (r *Transactions) Get(_ context.Context, id uuid.UUID) (*model.TransactionView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls++
	t, ok := r.headers[id]
	if !ok {
		return nil, nil
	}
	v := r.view(t)
	return &v, nil
}

func (r *Transactions) Update(_ context.Context, id uuid.UUID, p model.TransactionPatch) (*model.TransactionView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls++
	if err := repository.ValidatePatch(p); err != nil {
		return nil, err
	}
	t, ok := r.headers[id]
	if !ok {
		return nil, apperr.NotFoundf("transaction %s not found", id)
	}
	if p.CashierID != nil {
		t.CashierID = *p.CashierID
	}
	if p.TotalPrice != nil {
		t.TotalPrice = *p.TotalPrice
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	t.UpdatedAt = time.Now().UTC()
	r.headers[id] = t
	v := r.view(t)
	return &v, nil
}

func (r *Transactions) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls++
	_, ok := r.headers[id]
	delete(r.headers, id)
	delete(r.items, id)
	return ok, nil
}

func page[T any](rows []T, skip, limit int) []T {
	if limit == 0 || skip >= len(rows) {
		return []T{}
	}
	rows = rows[skip:]
	if limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}
