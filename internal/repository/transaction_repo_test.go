package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nretrorsum/work-test/internal/apperr"
	"github.com/nretrorsum/work-test/internal/model"
)

func ptr[T any](v T) *T { return &v }

func validInput() model.NewTransaction {
	return model.NewTransaction{
		CashierID:  uuid.New(),
		TotalPrice: ptr(decimal.NewFromInt(20)),
		Items: []model.LineItemInput{
			{ProductID: uuid.New(), Quantity: decimal.NewFromInt(2)},
		},
	}
}

func TestValidateNewTransaction_DefaultsStatus(t *testing.T) {
	in := validInput()
	require.NoError(t, ValidateNewTransaction(&in))
	assert.Equal(t, model.StatusPaid, in.Status)
}

func TestValidateNewTransaction_MissingFields(t *testing.T) {
	cases := map[string]func(*model.NewTransaction){
		"cashier_id":  func(in *model.NewTransaction) { in.CashierID = uuid.Nil },
		"total_price": func(in *model.NewTransaction) { in.TotalPrice = nil },
		"items":       func(in *model.NewTransaction) { in.Items = nil },
	}
	for field, mutate := range cases {
		t.Run(field, func(t *testing.T) {
			in := validInput()
			mutate(&in)
			err := ValidateNewTransaction(&in)
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.Validation))
			assert.Contains(t, err.Error(), field)
		})
	}
}

func TestValidateNewTransaction_RejectsDuplicateProducts(t *testing.T) {
	in := validInput()
	in.Items = append(in.Items, in.Items[0])

	err := ValidateNewTransaction(&in)
	assert.True(t, apperr.Is(err, apperr.Validation))
}

func TestValidateNewTransaction_RejectsUnknownStatus(t *testing.T) {
	in := validInput()
	in.Status = "refunded"
	assert.True(t, apperr.Is(ValidateNewTransaction(&in), apperr.Validation))
}

func TestValidatePatch(t *testing.T) {
	now := time.Now()
	id := uuid.New()

	assert.True(t, apperr.Is(ValidatePatch(model.TransactionPatch{ID: &id, Status: ptr("paid")}), apperr.ImmutableField))
	assert.True(t, apperr.Is(ValidatePatch(model.TransactionPatch{CreatedAt: &now}), apperr.ImmutableField))
	assert.True(t, apperr.Is(ValidatePatch(model.TransactionPatch{}), apperr.Validation))
	assert.True(t, apperr.Is(ValidatePatch(model.TransactionPatch{Status: ptr("lost")}), apperr.Validation))
	assert.NoError(t, ValidatePatch(model.TransactionPatch{TotalPrice: ptr(decimal.Zero)}))
}

func TestFold_KeepsHeaderOrderAndEmptyItems(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	headers := []model.Transaction{{ID: a}, {ID: b}}
	items := map[uuid.UUID][]model.LineItemView{
		b: {{Name: "Milk"}, {Name: "Tea"}},
	}

	views := fold(headers, items)
	require.Len(t, views, 2)
	assert.Equal(t, a, views[0].ID)
	assert.NotNil(t, views[0].Items)
	assert.Empty(t, views[0].Items)
	assert.Len(t, views[1].Items, 2)
}

func TestCreateWithItems_ValidationFailsBeforeStore(t *testing.T) {
	// db is nil: a validation failure must return before any store access.
	repo := &transactionRepo{now: time.Now}
	_, err := repo.CreateWithItems(context.Background(), model.NewTransaction{})
	assert.True(t, apperr.Is(err, apperr.Validation))
}

func TestUpdate_ImmutableFailsBeforeStore(t *testing.T) {
	repo := &transactionRepo{now: time.Now}
	newID := uuid.New()
	_, err := repo.Update(context.Background(), uuid.New(), model.TransactionPatch{ID: &newID})
	assert.True(t, apperr.Is(err, apperr.ImmutableField))
}

func TestList_ZeroLimitReturnsEmptyPage(t *testing.T) {
	ctx := context.Background()

	views, err := (&transactionRepo{}).List(ctx, model.TransactionFilter{Limit: 0})
	require.NoError(t, err)
	assert.NotNil(t, views)
	assert.Empty(t, views)

	products, err := (&productRepo{}).List(ctx, 3, 0)
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)

	_, err = (&transactionRepo{}).List(ctx, model.TransactionFilter{Limit: -1})
	assert.True(t, apperr.Is(err, apperr.Validation))
}
