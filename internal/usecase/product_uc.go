package usecase

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/phenrril/marina/internal/cache"
	"github.com/phenrril/marina/internal/domain"
)

const (
	productsCachePrefix = "products:"
	activeProductsKey   = productsCachePrefix + "active"
)

type ProductUC struct {
	Products domain.ProductRepo
	Cache    *cache.Cache
}

// List con activeOnly sale del caché mientras no haya escrituras.
func (uc *ProductUC) List(ctx context.Context, activeOnly bool) ([]domain.Product, error) {
	if activeOnly {
		if v, ok := uc.Cache.Get(activeProductsKey); ok {
			if list, ok := v.([]domain.Product); ok {
				return list, nil
			}
		}
	}
	list, err := uc.Products.List(ctx, domain.ProductFilter{ActiveOnly: activeOnly})
	if err != nil {
		return nil, err
	}
	if activeOnly {
		uc.Cache.Set(activeProductsKey, list)
	}
	return list, nil
}

func (uc *ProductUC) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	if id == uuid.Nil {
		return nil, domain.Invalid("id", "ID de producto requerido")
	}
	return uc.Products.FindByID(ctx, id)
}

// Create agrega el producto al final del catálogo.
func (uc *ProductUC) Create(ctx context.Context, p *domain.Product) error {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return err
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	max, ok, err := uc.Products.MaxDisplayOrder(ctx)
	if err != nil {
		return err
	}
	p.DisplayOrder = 0
	if ok {
		p.DisplayOrder = max + 1
	}
	if err := uc.Products.Save(ctx, p); err != nil {
		return err
	}
	uc.invalidate()
	return nil
}

// Update reemplaza el producto completo; el orden solo cambia con Reorder.
func (uc *ProductUC) Update(ctx context.Context, id uuid.UUID, p *domain.Product) error {
	cur, err := uc.Get(ctx, id)
	if err != nil {
		return err
	}
	p.Normalize()
	if err := p.Validate(); err != nil {
		return err
	}
	p.ID = cur.ID
	p.DisplayOrder = cur.DisplayOrder
	p.CreatedAt = cur.CreatedAt
	if err := uc.Products.Save(ctx, p); err != nil {
		return err
	}
	uc.invalidate()
	return nil
}

func (uc *ProductUC) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return domain.Invalid("id", "ID de producto requerido")
	}
	if err := uc.Products.Delete(ctx, id); err != nil {
		return err
	}
	uc.invalidate()
	return nil
}

// Reorder asigna a cada producto su posición en la lista.
func (uc *ProductUC) Reorder(ctx context.Context, ids []uuid.UUID) (int, error) {
	if ids == nil {
		return 0, domain.Invalid("productIds", "Se requiere la lista de productos")
	}
	n, err := uc.Products.Reorder(ctx, ids)
	if err != nil {
		return 0, err
	}
	uc.invalidate()
	return n, nil
}

// Names resuelve nombres para los rankings; los que fallan se omiten.
func (uc *ProductUC) Names(ctx context.Context, ids []uuid.UUID) map[uuid.UUID]string {
	out := make(map[uuid.UUID]string, len(ids))
	for _, id := range ids {
		p, err := uc.Products.FindByID(ctx, id)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				logLookupError(err, id)
			}
			continue
		}
		out[id] = p.Name
	}
	return out
}

func (uc *ProductUC) invalidate() {
	uc.Cache.DeleteByPrefix(productsCachePrefix)
}
