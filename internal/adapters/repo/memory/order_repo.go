package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/phenrril/marina/internal/domain"
)

type OrderRepo struct {
	mu     sync.RWMutex
	seq    int64
	orders map[uuid.UUID]domain.Order
	now    func() time.Time

	// FailCreate hace fallar Create; sirve para probar huecos en la numeración.
	FailCreate error
}

func NewOrderRepo() *OrderRepo {
	return &OrderRepo{orders: map[uuid.UUID]domain.Order{}, now: time.Now}
}

func copyOrder(o domain.Order) domain.Order {
	o.Items = append([]domain.OrderItem{}, o.Items...)
	return o
}

func (r *OrderRepo) NextSequence(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return r.seq, nil
}

func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailCreate != nil {
		return r.FailCreate
	}
	for _, existing := range r.orders {
		if existing.Number == o.Number {
			return domain.ErrConflict
		}
	}
	now := r.now()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
	for i := range o.Items {
		if o.Items[i].ID == uuid.Nil {
			o.Items[i].ID = uuid.New()
		}
		o.Items[i].OrderID = o.ID
		o.Items[i].Position = i
	}
	r.orders[o.ID] = copyOrder(*o)
	return nil
}

func (r *OrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := copyOrder(o)
	return &cp, nil
}

func (r *OrderRepo) List(ctx context.Context, f domain.OrderFilter) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		list = append(list, copyOrder(o))
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].Number > list[j].Number
	})
	return list, nil
}

func (r *OrderRepo) Update(ctx context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.orders[o.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Status = o.Status
	cur.Notes = o.Notes
	cur.UpdatedAt = r.now()
	o.UpdatedAt = cur.UpdatedAt
	r.orders[o.ID] = cur
	return nil
}

func (r *OrderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.orders, id)
	return nil
}

func (r *OrderRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.orders)
}
