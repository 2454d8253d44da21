package memory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/phenrril/marina/internal/domain"
)

type AdminRepo struct {
	mu    sync.RWMutex
	users map[string]domain.AdminUser
}

func NewAdminRepo() *AdminRepo {
	return &AdminRepo{users: map[string]domain.AdminUser{}}
}

func (r *AdminRepo) FindByEmail(ctx context.Context, email string) (*domain.AdminUser, error) {
	e := strings.ToLower(strings.TrimSpace(email))
	if e == "" {
		return nil, errors.New("email vacío")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[e]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (r *AdminRepo) Save(ctx context.Context, u *domain.AdminUser) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.Email] = *u
	return nil
}
