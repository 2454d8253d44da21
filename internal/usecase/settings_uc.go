package usecase

import (
	"context"
	"errors"

	"github.com/phenrril/marina/internal/cache"
	"github.com/phenrril/marina/internal/domain"
)

const settingsKey = "settings"

type SettingsUC struct {
	Settings        domain.SettingsRepo
	Cache           *cache.Cache
	DefaultWhatsApp string
}

// Get crea la fila con valores por defecto la primera vez.
func (uc *SettingsUC) Get(ctx context.Context) (*domain.Settings, error) {
	if v, ok := uc.Cache.Get(settingsKey); ok {
		if s, ok := v.(domain.Settings); ok {
			return &s, nil
		}
	}
	s, err := uc.Settings.Get(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		def, derr := domain.NewDefaultSettings(uc.DefaultWhatsApp)
		if derr != nil {
			return nil, derr
		}
		s, err = uc.Settings.Init(ctx, def)
	}
	if err != nil {
		return nil, err
	}
	uc.Cache.Set(settingsKey, *s)
	return s, nil
}

// Update pisa toda la fila. Con expectedVersion > 0 falla con ErrConflict
// si alguien guardó antes.
func (uc *SettingsUC) Update(ctx context.Context, s *domain.Settings, expectedVersion int64) (*domain.Settings, error) {
	s.Normalize()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if _, err := uc.Get(ctx); err != nil {
		return nil, err
	}
	uc.Cache.Delete(settingsKey)
	if err := uc.Settings.Save(ctx, s, expectedVersion); err != nil {
		return nil, err
	}
	return s, nil
}

// WhatsAppNumber devuelve el número de la tienda o el de configuración si falla.
func (uc *SettingsUC) WhatsAppNumber(ctx context.Context) string {
	s, err := uc.Get(ctx)
	if err != nil {
		return uc.DefaultWhatsApp
	}
	return s.WhatsAppNumber
}
