package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/marina/internal/adapters/repo/memory"
	"github.com/phenrril/marina/internal/cache"
	"github.com/phenrril/marina/internal/domain"
	"github.com/phenrril/marina/internal/usecase"
)

func TestSettingsLazyCreate(t *testing.T) {
	t.Parallel()

	uc := &usecase.SettingsUC{Settings: memory.NewSettingsRepo(), DefaultWhatsApp: "5492215082423"}
	s, err := uc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "5492215082423", s.WhatsAppNumber)
	assert.Equal(t, "Bikimar", s.StoreName)
	assert.EqualValues(t, 1, s.Version)
}

func TestSettingsUpdateVersioning(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	uc := &usecase.SettingsUC{Settings: memory.NewSettingsRepo(), Cache: cache.New(time.Minute)}
	cur, err := uc.Get(ctx)
	require.NoError(t, err)

	// dos admins leen la versión 1
	a, b := *cur, *cur
	a.StoreName = "Marina"
	b.StoreName = "Bikimar Verano"

	saved, err := uc.Update(ctx, &a, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, saved.Version)

	_, err = uc.Update(ctx, &b, 1)
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := uc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Marina", got.StoreName)

	// sin versión gana la última escritura
	_, err = uc.Update(ctx, &b, 0)
	require.NoError(t, err)
	got, err = uc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bikimar Verano", got.StoreName)
	assert.EqualValues(t, 3, got.Version)
}

func TestSettingsRequiresWhatsApp(t *testing.T) {
	t.Parallel()

	uc := &usecase.SettingsUC{Settings: memory.NewSettingsRepo()}
	_, err := uc.Update(context.Background(), &domain.Settings{StoreName: "x"}, 0)
	assert.True(t, domain.IsValidation(err))
}
