package memory

import (
	"context"
	"sync"
	"time"

	"github.com/phenrril/marina/internal/domain"
)

type SettingsRepo struct {
	mu  sync.Mutex
	row *domain.Settings
	now func() time.Time
}

func NewSettingsRepo() *SettingsRepo {
	return &SettingsRepo{now: time.Now}
}

func copySettings(s domain.Settings) *domain.Settings {
	s.HeroImages = append([]string{}, s.HeroImages...)
	return &s
}

func (r *SettingsRepo) Get(ctx context.Context) (*domain.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.row == nil {
		return nil, domain.ErrNotFound
	}
	return copySettings(*r.row), nil
}

func (r *SettingsRepo) Init(ctx context.Context, def *domain.Settings) (*domain.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.row == nil {
		now := r.now()
		row := copySettings(*def)
		row.ID = domain.SettingsID
		row.CreatedAt, row.UpdatedAt = now, now
		r.row = row
	}
	return copySettings(*r.row), nil
}

func (r *SettingsRepo) Save(ctx context.Context, s *domain.Settings, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.row == nil {
		return domain.ErrNotFound
	}
	if expectedVersion > 0 && r.row.Version != expectedVersion {
		return domain.ErrConflict
	}
	s.ID = domain.SettingsID
	s.Version = r.row.Version + 1
	s.CreatedAt = r.row.CreatedAt
	s.UpdatedAt = r.now()
	r.row = copySettings(*s)
	return nil
}
