package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/phenrril/marina/internal/domain"
)

type AdminUC struct {
	Admins domain.AdminRepo
}

// Authenticate no distingue entre usuario inexistente y clave errónea.
func (uc *AdminUC) Authenticate(ctx context.Context, email, password string) (*domain.AdminUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.Invalid("credentials", "Email y contraseña son requeridos")
	}
	u, err := uc.Admins.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrUnauthorized
	}
	if u.Role != domain.RoleAdmin {
		return nil, domain.ErrUnauthorized
	}
	return u, nil
}

// IsAdmin confirma que el mail sigue registrado como administrador.
func (uc *AdminUC) IsAdmin(ctx context.Context, email string) (bool, error) {
	u, err := uc.Admins.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return u.Role == domain.RoleAdmin, nil
}

// EnsureAdmin crea el admin inicial o actualiza su clave si cambió.
func (uc *AdminUC) EnsureAdmin(ctx context.Context, email, password, name string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}
	u, err := uc.Admins.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if u != nil && u.Role == domain.RoleAdmin && bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if u == nil {
		u = &domain.AdminUser{Email: email, Name: name}
		log.Info().Str("email", email).Msg("admin creado")
	} else {
		log.Info().Str("email", email).Msg("admin actualizado")
	}
	u.PasswordHash = string(hash)
	u.Role = domain.RoleAdmin
	return uc.Admins.Save(ctx, u)
}
