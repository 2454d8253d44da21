package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/marina/internal/adapters/repo/memory"
	"github.com/phenrril/marina/internal/usecase"
)

func seededAdmins(t *testing.T) *usecase.AdminUC {
	t.Helper()
	admins := &usecase.AdminUC{Admins: memory.NewAdminRepo()}
	require.NoError(t, admins.EnsureAdmin(context.Background(), "duena@marina.com", "secreto", "Dueña"))
	return admins
}

func TestAdminTokenRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := &Server{adminSecret: []byte("k"), admins: seededAdmins(t), adminAllowed: map[string]struct{}{"ok@marina.com": {}}}

	tok, _, err := s.issueAdminToken("duena@marina.com", "Dueña", "password", time.Hour)
	require.NoError(t, err)
	c, err := s.verifyAdminToken(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, "duena@marina.com", c.Email)

	// google solo vale para mails permitidos
	tok, _, _ = s.issueAdminToken("otro@gmail.com", "", "google", time.Hour)
	_, err = s.verifyAdminToken(ctx, tok)
	assert.Error(t, err)
	tok, _, _ = s.issueAdminToken("ok@marina.com", "", "google", time.Hour)
	_, err = s.verifyAdminToken(ctx, tok)
	assert.NoError(t, err)

	// clave: el mail tiene que seguir siendo admin
	tok, _, _ = s.issueAdminToken("nadie@marina.com", "", "password", time.Hour)
	_, err = s.verifyAdminToken(ctx, tok)
	assert.Error(t, err)

	tok, _, _ = s.issueAdminToken("duena@marina.com", "", "password", -time.Minute)
	_, err = s.verifyAdminToken(ctx, tok)
	assert.Error(t, err)

	other := &Server{adminSecret: []byte("otra"), admins: s.admins}
	tok, _, _ = s.issueAdminToken("duena@marina.com", "", "password", time.Hour)
	_, err = other.verifyAdminToken(ctx, tok)
	assert.Error(t, err)
}

func TestEmptySecretRejectsDevToken(t *testing.T) {
	t.Parallel()

	admins := seededAdmins(t)
	h := New(Options{Admins: admins, StoreMode: "memory"})

	forger := &Server{adminSecret: []byte("dev-admin-secret")}
	for _, email := range []string{"nobody@evil.test", "duena@marina.com"} {
		tok, _, err := forger.issueAdminToken(email, "", "password", time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/admin/session", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, email)
	}
}

func TestSignedTokenForUnknownAdminIsRejected(t *testing.T) {
	t.Parallel()

	h := New(Options{Admins: seededAdmins(t), AdminSecret: "test-secret", StoreMode: "memory"})
	signer := &Server{adminSecret: []byte("test-secret")}

	check := func(email string) int {
		tok, _, err := signer.issueAdminToken(email, "", "password", time.Hour)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/admin/session", nil)
		req.AddCookie(&http.Cookie{Name: adminCookie, Value: tok})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}
	assert.Equal(t, http.StatusUnauthorized, check("nobody@evil.test"))
	assert.Equal(t, http.StatusOK, check("duena@marina.com"))
}
