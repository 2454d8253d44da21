package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/phenrril/marina/internal/domain"
)

// ProductRepo guarda el catálogo en memoria (DEV_MODE y tests).
type ProductRepo struct {
	mu    sync.RWMutex
	items map[uuid.UUID]domain.Product
	now   func() time.Time
}

func NewProductRepo() *ProductRepo {
	return &ProductRepo{items: map[uuid.UUID]domain.Product{}, now: time.Now}
}

func copyProduct(p domain.Product) domain.Product {
	p.Images = append([]string{}, p.Images...)
	p.Sizes = append([]string{}, p.Sizes...)
	p.Colors = append([]string{}, p.Colors...)
	return p
}

func (r *ProductRepo) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]domain.Product, 0, len(r.items))
	for _, p := range r.items {
		if f.ActiveOnly && !p.Active {
			continue
		}
		list = append(list, copyProduct(p))
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].DisplayOrder != list[j].DisplayOrder {
			return list[i].DisplayOrder < list[j].DisplayOrder
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list, nil
}

func (r *ProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := copyProduct(p)
	return &cp, nil
}

func (r *ProductRepo) MaxDisplayOrder(ctx context.Context) (int, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	max, ok := 0, false
	for _, p := range r.items {
		if !ok || p.DisplayOrder > max {
			max, ok = p.DisplayOrder, true
		}
	}
	return max, ok, nil
}

func (r *ProductRepo) Save(ctx context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	if prev, ok := r.items[p.ID]; ok {
		p.CreatedAt = prev.CreatedAt
	} else if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	r.items[p.ID] = copyProduct(*p)
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *ProductRepo) Reorder(ctx context.Context, ids []uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for i, id := range ids {
		p, ok := r.items[id]
		if !ok {
			continue
		}
		p.DisplayOrder = i
		p.UpdatedAt = r.now()
		r.items[id] = p
		n++
	}
	return n, nil
}
