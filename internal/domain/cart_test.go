package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/marina/internal/domain"
)

func product(name string, price int64) domain.Product {
	return domain.Product{
		ID:     uuid.New(),
		Name:   name,
		Price:  decimal.NewFromInt(price),
		Images: []string{"https://img/" + name + ".jpg"},
	}
}

func TestCartAdd(t *testing.T) {
	t.Parallel()

	t.Run("same product and size merges", func(t *testing.T) {
		t.Parallel()

		p := product("luna", 100)
		var c domain.Cart
		c.Add(p, "M")
		c.Add(p, "M")

		require.Len(t, c.Items, 1)
		assert.Equal(t, 2, c.Items[0].Quantity)
		assert.Equal(t, "https://img/luna.jpg", c.Items[0].Image)
	})

	t.Run("different size is a new line", func(t *testing.T) {
		t.Parallel()

		p := product("luna", 100)
		var c domain.Cart
		c.Add(p, "M")
		c.Add(p, "L")

		require.Len(t, c.Items, 2)
		assert.Equal(t, 1, c.Items[0].Quantity)
		assert.Equal(t, 1, c.Items[1].Quantity)
		assert.Equal(t, 2, c.TotalItems())
	})
}

func TestCartUpdateQuantity(t *testing.T) {
	t.Parallel()

	p := product("sol", 250)
	var c domain.Cart
	c.Add(p, "S")

	c.UpdateQuantity(p.ID, "S", 4)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 4, c.Items[0].Quantity)

	c.UpdateQuantity(p.ID, "S", 0)
	assert.Empty(t, c.Items)

	c.Add(p, "S")
	c.UpdateQuantity(p.ID, "S", -3)
	assert.Empty(t, c.Items)
}

func TestCartRemoveAndClear(t *testing.T) {
	t.Parallel()

	a, b := product("a", 10), product("b", 20)
	var c domain.Cart
	c.Add(a, "M")
	c.Add(b, "M")

	c.Remove(a.ID, "M")
	require.Len(t, c.Items, 1)
	assert.Equal(t, b.ID, c.Items[0].ProductID)

	c.Remove(a.ID, "M")
	assert.Len(t, c.Items, 1)

	c.Clear()
	assert.Empty(t, c.Items)
	assert.Zero(t, c.TotalItems())
	assert.True(t, c.TotalPrice().IsZero())
}

func TestCartTotalPriceIgnoresOrder(t *testing.T) {
	t.Parallel()

	a, b, d := product("a", 1500), product("b", 2300), product("d", 990)

	var first domain.Cart
	first.Add(a, "M")
	first.Add(b, "L")
	first.Add(b, "L")
	first.Add(d, "S")

	var second domain.Cart
	second.Add(d, "S")
	second.Add(b, "L")
	second.Add(a, "M")
	second.Add(b, "L")

	assert.True(t, first.TotalPrice().Equal(second.TotalPrice()))
	assert.Equal(t, "7090", first.TotalPrice().String())
	assert.Equal(t, 4, second.TotalItems())
}

func TestRestoreCart(t *testing.T) {
	t.Parallel()

	luna := product("luna", 100)
	sol := product("sol", 250)
	gone := uuid.New()
	catalog := map[uuid.UUID]domain.Product{luna.ID: luna, sol.ID: sol}

	c := domain.RestoreCart([]domain.CartLine{
		{ProductID: luna.ID, Size: "M", Quantity: 2},
		{ProductID: gone, Size: "M", Quantity: 1},
		{ProductID: sol.ID, Size: "S", Quantity: 0},
		{ProductID: sol.ID, Size: "L", Quantity: 1},
		{ProductID: luna.ID, Size: "m", Quantity: 1},
	}, catalog)

	require.Len(t, c.Items, 2)
	assert.Equal(t, "luna", c.Items[0].Name)
	assert.Equal(t, 3, c.Items[0].Quantity)
	assert.Equal(t, "https://img/luna.jpg", c.Items[0].Image)
	assert.True(t, decimal.NewFromInt(550).Equal(c.TotalPrice()))

	back := domain.RestoreCart(c.Lines(), catalog)
	assert.Equal(t, c, back)
}

func TestRestoreCartCapsLines(t *testing.T) {
	t.Parallel()

	p := product("luna", 100)
	lines := []domain.CartLine{}
	for i := 0; i < domain.MaxCartLines+5; i++ {
		lines = append(lines, domain.CartLine{ProductID: p.ID, Size: string(rune('A' + i)), Quantity: 1})
	}
	c := domain.RestoreCart(lines, map[uuid.UUID]domain.Product{p.ID: p})
	assert.Len(t, c.Items, domain.MaxCartLines)
}
