package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf_Unclassified(t *testing.T) {
	assert.Equal(t, Store, KindOf(errors.New("boom")))
}

func TestWrap_KeepsInnerKind(t *testing.T) {
	inner := NotFoundf("product %s not found", "abc")
	wrapped := Wrap(Store, inner, "lookup failed")
	assert.Equal(t, NotFound, KindOf(wrapped))

	outer := fmt.Errorf("handler: %w", wrapped)
	assert.True(t, Is(outer, NotFound))
}

func TestWrap_ClassifiesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(Store, cause, "failed to create transaction")

	assert.Equal(t, Store, KindOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to create transaction: connection reset", err.Error())
	assert.Nil(t, Wrap(Store, nil, "ignored"))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "immutable_field", ImmutableField.String())
	assert.Equal(t, "store", Kind(99).String())
}
