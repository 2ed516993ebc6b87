package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"sentinel", ErrEmptyCart, KindEmptyCart},
		{"wrapped", fmt.Errorf("%w: product p1", ErrOutOfStock), KindOutOfStock},
		{"wrapped not found", fmt.Errorf("course %w", ErrNotFound), KindNotFound},
		{"unknown", errors.New("connection reset"), KindStorageFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestComputeTotals(t *testing.T) {
	totals := ComputeTotals(decimal.NewFromInt(20))

	assert.True(t, totals.Total.Equal(decimal.NewFromInt(20)))
	assert.True(t, totals.Taxes.Equal(decimal.NewFromInt(2)), "taxes %s", totals.Taxes)
	assert.True(t, totals.Discounts.Equal(decimal.NewFromInt(1)), "discounts %s", totals.Discounts)
	assert.True(t, totals.Final.Equal(decimal.NewFromInt(21)), "final %s", totals.Final)
}

func TestComputeTotals_Zero(t *testing.T) {
	totals := ComputeTotals(decimal.Zero)
	assert.True(t, totals.Final.IsZero())
}

func TestCart_FindAndRemove(t *testing.T) {
	cart := Cart{Items: []CartItem{
		{ID: "a", Kind: ItemKindCourse, RefID: "c1", Quantity: 1},
		{ID: "b", Kind: ItemKindProduct, RefID: "p1", Quantity: 2},
	}}

	assert.Equal(t, 1, cart.Find(ProductRef("p1")))
	assert.Equal(t, -1, cart.Find(CourseRef("p1")), "kind is part of the identity")

	item, ok := cart.ItemByID("b")
	require.True(t, ok)
	assert.Equal(t, 2, item.Quantity)

	cart.Remove("a")
	cart.Remove("missing")
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "b", cart.Items[0].ID)
}

func TestCart_CloneIsIndependent(t *testing.T) {
	cart := Cart{Items: []CartItem{{ID: "a", Kind: ItemKindProduct, RefID: "p1", Quantity: 1}}}
	cp := cart.Clone()
	cp.Items[0].Quantity = 5

	assert.Equal(t, 1, cart.Items[0].Quantity)
}

func TestParsePaymentStatus(t *testing.T) {
	status, err := ParsePaymentStatus("Cancelled")
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusCancelled, status)

	_, err = ParsePaymentStatus("Refunded")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestParseItemKind(t *testing.T) {
	kind, err := ParseItemKind("Course")
	require.NoError(t, err)
	assert.Equal(t, ItemKindCourse, kind)

	_, err = ParseItemKind("Book")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNormalizePage(t *testing.T) {
	page, limit := NormalizePage(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, limit)

	_, limit = NormalizePage(2, 1000)
	assert.Equal(t, 100, limit)

	p := NewPage([]int{1, 2, 3}, 21, 2, 10)
	assert.Equal(t, 3, p.TotalPages)
}
