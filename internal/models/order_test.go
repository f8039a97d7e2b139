package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderSetKeepsFirstSeenPosition(t *testing.T) {
	var o Order
	o.Set("pizza", 1)
	o.Set("samosa", 2)
	o.Set("pizza", 4)

	assert.Equal(t, []OrderItem{{Name: "pizza", Quantity: 4}, {Name: "samosa", Quantity: 2}}, o.Items())
}

func TestOrderRemoveReindexes(t *testing.T) {
	o := NewOrder(
		OrderItem{Name: "a", Quantity: 1},
		OrderItem{Name: "b", Quantity: 2},
		OrderItem{Name: "c", Quantity: 3},
	)

	assert.True(t, o.Remove("a"))
	assert.False(t, o.Remove("a"))

	qty, ok := o.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 3, qty)

	o.Set("c", 7)
	assert.Equal(t, []OrderItem{{Name: "b", Quantity: 2}, {Name: "c", Quantity: 7}}, o.Items())
}

func TestOrderNamesMatchCaseInsensitively(t *testing.T) {
	o := NewOrder(OrderItem{Name: "Pizza", Quantity: 1}, OrderItem{Name: "Samosa", Quantity: 3})
	o.Merge(NewOrder(OrderItem{Name: "pizza", Quantity: 2}))

	assert.Equal(t, []OrderItem{{Name: "Pizza", Quantity: 2}, {Name: "Samosa", Quantity: 3}}, o.Items())
	assert.True(t, o.Has("PIZZA"))

	assert.True(t, o.Remove("pIzZa"))
	assert.False(t, o.Has("Pizza"))

	qty, ok := o.Get("samosa")
	assert.True(t, ok)
	assert.Equal(t, 3, qty)
}

func TestOrderMerge(t *testing.T) {
	o := NewOrder(OrderItem{Name: "a", Quantity: 1}, OrderItem{Name: "b", Quantity: 2})
	o.Merge(NewOrder(OrderItem{Name: "b", Quantity: 5}, OrderItem{Name: "c", Quantity: 1}))

	assert.Equal(t, "1 a, 5 b, 1 c", FormatOrder(o))
}

func TestOrderCloneIsIndependent(t *testing.T) {
	o := NewOrder(OrderItem{Name: "a", Quantity: 1})
	c := o.Clone()
	c.Set("a", 9)
	c.Set("b", 1)

	qty, _ := o.Get("a")
	assert.Equal(t, 1, qty)
	assert.False(t, o.Has("b"))
}

func TestFormatOrder(t *testing.T) {
	tests := []struct {
		name  string
		order Order
		want  string
	}{
		{name: "empty", order: Order{}, want: ""},
		{name: "single", order: NewOrder(OrderItem{Name: "Pav Bhaji", Quantity: 2}), want: "2 Pav Bhaji"},
		{
			name: "insertion order",
			order: NewOrder(
				OrderItem{Name: "Samosa", Quantity: 3},
				OrderItem{Name: "Mango Lassi", Quantity: 1},
			),
			want: "3 Samosa, 1 Mango Lassi",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatOrder(tt.order))
		})
	}
}

func TestFormatOrderIsIdempotent(t *testing.T) {
	o := NewOrder(OrderItem{Name: "a", Quantity: 1}, OrderItem{Name: "b", Quantity: 2})
	assert.Equal(t, FormatOrder(o), FormatOrder(o))
}

func TestCreateOrderPlacedMessage(t *testing.T) {
	o := NewOrder(OrderItem{Name: "Pizza", Quantity: 2})
	msg := CreateOrderPlacedMessage("evt-1", 41, "sess", o, 24.5)

	assert.Equal(t, 41, msg.OrderID)
	assert.Equal(t, "in progress", msg.Status)
	assert.Equal(t, []OrderItem{{Name: "Pizza", Quantity: 2}}, msg.Items)
	assert.False(t, msg.PlacedAt.IsZero())
}
