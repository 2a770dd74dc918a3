package model_test

import (
	"testing"
	"time"

	"orderdesk/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func i64(v int64) *int64 { return &v }
func str(v string) *string { return &v }

var fixedNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func TestNewOrder_DerivesAmounts(t *testing.T) {
	o, err := model.NewOrder(model.NewOrderParams{
		Items: []model.OrderItem{
			{Name: "beef noodles", UnitPrice: 100, Quantity: 2},
			{Name: "tea", UnitPrice: 50, Quantity: 1},
		},
		ApplyDiscount: true,
		Now:           fixedNow,
	})
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusOpen, o.Status)
	assert.Equal(t, model.DineTypeTakeout, o.DineType)
	assert.Equal(t, int64(250), o.Subtotal)
	assert.Equal(t, int64(25), o.Discount)
	assert.Equal(t, int64(0), o.Allowance)
	assert.Equal(t, int64(225), o.Total)
	assert.Equal(t, int64(3), o.Count)
	assert.Equal(t, fixedNow, o.CreatedAt)
	require.NotNil(t, o.StartedAt)
	assert.Equal(t, fixedNow, *o.StartedAt)
	assert.Nil(t, o.PaidAt)
	assert.Len(t, o.Items, 2)
	assert.Equal(t, "beef noodles", o.Items[0].Name)
}

func TestNewOrder_TrustsOverrides(t *testing.T) {
	o, err := model.NewOrder(model.NewOrderParams{
		Items:     []model.OrderItem{{UnitPrice: 100, Quantity: 1}},
		Subtotal:  i64(80),
		Allowance: i64(5),
		Total:     i64(-10),
		Now:       fixedNow,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(80), o.Subtotal)
	assert.Equal(t, int64(0), o.Discount)
	assert.Equal(t, int64(5), o.Allowance)
	assert.Equal(t, int64(-10), o.Total)
}

func TestNewOrder_DiscountUsesEffectiveSubtotal(t *testing.T) {
	o, err := model.NewOrder(model.NewOrderParams{
		Items:         []model.OrderItem{{UnitPrice: 100, Quantity: 1}},
		Subtotal:      i64(1000),
		ApplyDiscount: true,
		Now:           fixedNow,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100), o.Discount)
	assert.Equal(t, int64(900), o.Total)
}

func TestNewOrder_Rejects(t *testing.T) {
	_, err := model.NewOrder(model.NewOrderParams{Now: fixedNow})
	assert.ErrorIs(t, err, model.ErrNoItems)

	_, err = model.NewOrder(model.NewOrderParams{
		Items: []model.OrderItem{{Name: "x", UnitPrice: -1, Quantity: 1}},
		Now:   fixedNow,
	})
	assert.ErrorIs(t, err, model.ErrInvalidItem)
}

func TestOccupiedTable(t *testing.T) {
	o, err := model.NewOrder(model.NewOrderParams{
		DineType: model.DineTypeDineIn,
		TableNo:  str(" A3 "),
		Items:    []model.OrderItem{{UnitPrice: 1, Quantity: 1}},
		Now:      fixedNow,
	})
	require.NoError(t, err)
	table, ok := o.OccupiedTable()
	assert.True(t, ok)
	assert.Equal(t, "A3", table)

	o.DineType = model.DineTypeTakeout
	_, ok = o.OccupiedTable()
	assert.False(t, ok)

	o.DineType = model.DineTypeDineIn
	o.TableNo = nil
	_, ok = o.OccupiedTable()
	assert.False(t, ok)
}

func TestAmend(t *testing.T) {
	o := model.Order{Subtotal: 250, Discount: 25, Allowance: 0, Total: 225}

	o.Amend(model.AmountPatch{Discount: i64(50)})
	assert.Equal(t, int64(50), o.Discount)
	assert.Equal(t, int64(200), o.Total)

	o.Amend(model.AmountPatch{Allowance: i64(10), Total: i64(999)})
	assert.Equal(t, int64(10), o.Allowance)
	assert.Equal(t, int64(999), o.Total)

	o.Amend(model.AmountPatch{Subtotal: i64(300), KeepTotal: true})
	assert.Equal(t, int64(300), o.Subtotal)
	assert.Equal(t, int64(999), o.Total)

	o.Amend(model.AmountPatch{})
	assert.Equal(t, int64(240), o.Total)
}

func TestAdvance(t *testing.T) {
	o := model.Order{Status: model.OrderStatusOpen}

	o.Advance(model.OrderStatusServed, fixedNow)
	assert.Equal(t, model.OrderStatusServed, o.Status)
	assert.Nil(t, o.PaidAt)

	o.Advance(model.OrderStatusPaid, fixedNow)
	require.NotNil(t, o.PaidAt)
	assert.Equal(t, fixedNow, *o.PaidAt)

	later := fixedNow.Add(time.Minute)
	o.Advance(model.OrderStatusPaid, later)
	assert.Equal(t, later, *o.PaidAt)

	o.Advance(model.OrderStatusServed, later.Add(time.Minute))
	assert.Equal(t, model.OrderStatusServed, o.Status)
	assert.Equal(t, later, *o.PaidAt)
}

func TestParseTargetStatus(t *testing.T) {
	s, ok := model.ParseTargetStatus("  PAID ")
	assert.True(t, ok)
	assert.Equal(t, model.OrderStatusPaid, s)

	s, ok = model.ParseTargetStatus("served")
	assert.True(t, ok)
	assert.Equal(t, model.OrderStatusServed, s)

	for _, in := range []string{"open", "cancelled", ""} {
		_, ok = model.ParseTargetStatus(in)
		assert.False(t, ok, "in=%q", in)
	}
}

func TestParseDineType(t *testing.T) {
	cases := map[string]model.DineType{
		"":        model.DineTypeTakeout,
		"takeout": model.DineTypeTakeout,
		"外帶":      model.DineTypeTakeout,
		"dine-in": model.DineTypeDineIn,
		"DINE_IN": model.DineTypeDineIn,
		"內用":      model.DineTypeDineIn,
	}
	for in, want := range cases {
		got, ok := model.ParseDineType(in)
		assert.True(t, ok, "in=%q", in)
		assert.Equal(t, want, got, "in=%q", in)
	}
	_, ok := model.ParseDineType("delivery")
	assert.False(t, ok)
}
