package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/phenrril/marina/internal/domain"
)

type SettingsRepo struct{ db *gorm.DB }

func NewSettingsRepo(db *gorm.DB) *SettingsRepo { return &SettingsRepo{db: db} }

func (r *SettingsRepo) Get(ctx context.Context) (*domain.Settings, error) {
	var s domain.Settings
	if err := r.db.WithContext(ctx).First(&s, "id = ?", domain.SettingsID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Init inserta la fila por defecto; si otro request la creó antes no hace nada.
func (r *SettingsRepo) Init(ctx context.Context, def *domain.Settings) (*domain.Settings, error) {
	row := *def
	row.ID = domain.SettingsID
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return nil, err
	}
	return r.Get(ctx)
}

func (r *SettingsRepo) Save(ctx context.Context, s *domain.Settings, expectedVersion int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur domain.Settings
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&cur, "id = ?", domain.SettingsID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}
		if expectedVersion > 0 && cur.Version != expectedVersion {
			return domain.ErrConflict
		}
		s.ID = domain.SettingsID
		s.Version = cur.Version + 1
		s.CreatedAt = cur.CreatedAt
		return tx.Save(s).Error
	})
}
