package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/marina/internal/adapters/repo/memory"
	"github.com/phenrril/marina/internal/cache"
	"github.com/phenrril/marina/internal/domain"
	"github.com/phenrril/marina/internal/usecase"
)

func newProduct(name string) *domain.Product {
	return &domain.Product{
		Name:        name,
		Description: "Bordado a mano",
		Price:       decimal.NewFromInt(10000),
		Images:      []string{name + ".jpg"},
		Category:    domain.CategoryBikini,
		Active:      true,
	}
}

func TestProductCreateAssignsDisplayOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	uc := &usecase.ProductUC{Products: memory.NewProductRepo()}

	first := newProduct("a")
	require.NoError(t, uc.Create(ctx, first))
	assert.Equal(t, 0, first.DisplayOrder)
	assert.NotEqual(t, uuid.Nil, first.ID)

	second := newProduct("b")
	require.NoError(t, uc.Create(ctx, second))
	assert.Equal(t, 1, second.DisplayOrder)

	bad := newProduct("c")
	bad.Images = nil
	assert.True(t, domain.IsValidation(uc.Create(ctx, bad)))
}

func TestProductReorderBAC(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	uc := &usecase.ProductUC{Products: memory.NewProductRepo(), Cache: cache.New(time.Minute)}
	a, b, c := newProduct("A"), newProduct("B"), newProduct("C")
	for _, p := range []*domain.Product{a, b, c} {
		require.NoError(t, uc.Create(ctx, p))
	}

	n, err := uc.Reorder(ctx, []uuid.UUID{b.ID, a.ID, c.ID})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	list, err := uc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"B", "A", "C"}, []string{list[0].Name, list[1].Name, list[2].Name})
	assert.Equal(t, []int{0, 1, 2}, []int{list[0].DisplayOrder, list[1].DisplayOrder, list[2].DisplayOrder})

	_, err = uc.Reorder(ctx, nil)
	assert.True(t, domain.IsValidation(err))
}

func TestProductListCacheInvalidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	uc := &usecase.ProductUC{Products: memory.NewProductRepo(), Cache: cache.New(time.Minute)}
	p := newProduct("visible")
	require.NoError(t, uc.Create(ctx, p))

	list, err := uc.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	hidden := *p
	hidden.Active = false
	require.NoError(t, uc.Update(ctx, p.ID, &hidden))

	list, err = uc.List(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, list)

	all, err := uc.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestProductUpdateAndDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	uc := &usecase.ProductUC{Products: memory.NewProductRepo()}
	p := newProduct("luna")
	require.NoError(t, uc.Create(ctx, p))

	edit := newProduct("Luna II")
	edit.DisplayOrder = 99
	require.NoError(t, uc.Update(ctx, p.ID, edit))

	got, err := uc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Luna II", got.Name)
	assert.Equal(t, 0, got.DisplayOrder)

	assert.ErrorIs(t, uc.Update(ctx, uuid.New(), newProduct("x")), domain.ErrNotFound)

	require.NoError(t, uc.Delete(ctx, p.ID))
	_, err = uc.Get(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
