package httpserver

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/phenrril/marina/internal/domain"
)

const (
	adminCookie = "admin_token"
	adminTTL    = 6 * time.Hour
)

type adminClaims struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role"`
	Src   string `json:"src"`
	Exp   int64  `json:"exp"`
	Iat   int64  `json:"iat"`
	Iss   string `json:"iss"`
}

type adminCtxKey struct{}

func adminFrom(ctx context.Context) *adminClaims {
	c, _ := ctx.Value(adminCtxKey{}).(*adminClaims)
	return c
}

func (s *Server) issueAdminToken(email, name, src string, dur time.Duration) (string, time.Time, error) {
	head := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	now := time.Now()
	exp := now.Add(dur)
	b, err := json.Marshal(adminClaims{
		Sub: email, Email: email, Name: name, Role: string(domain.RoleAdmin), Src: src,
		Exp: exp.Unix(), Iat: now.Unix(), Iss: "marina",
	})
	if err != nil {
		return "", time.Time{}, err
	}
	unsigned := head + "." + base64.RawURLEncoding.EncodeToString(b)
	h := hmac.New(sha256.New, s.adminSecret)
	h.Write([]byte(unsigned))
	return unsigned + "." + base64.RawURLEncoding.EncodeToString(h.Sum(nil)), exp, nil
}

func (s *Server) verifyAdminToken(ctx context.Context, tok string) (*adminClaims, error) {
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("formato")
	}
	unsigned := parts[0] + "." + parts[1]
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, fmt.Errorf("sig")
	}
	h := hmac.New(sha256.New, s.adminSecret)
	h.Write([]byte(unsigned))
	if !hmac.Equal(sig, h.Sum(nil)) {
		return nil, fmt.Errorf("firma")
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("payload")
	}
	var c adminClaims
	if err := json.Unmarshal(payload, &c); err != nil {
		return nil, fmt.Errorf("json")
	}
	if c.Role != string(domain.RoleAdmin) || c.Email == "" {
		return nil, fmt.Errorf("claims")
	}
	if time.Now().Unix() > c.Exp {
		return nil, fmt.Errorf("exp")
	}
	// los tokens de Google se revocan sacando el mail de la lista,
	// los de clave borrando o degradando al usuario
	if c.Src == "google" {
		if _, ok := s.adminAllowed[strings.ToLower(c.Email)]; !ok {
			return nil, fmt.Errorf("not allowed")
		}
		return &c, nil
	}
	ok, err := s.admins.IsAdmin(ctx, c.Email)
	if err != nil {
		return nil, fmt.Errorf("admin lookup: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("not admin")
	}
	return &c, nil
}

func (s *Server) readAdminToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	c, err := r.Cookie(adminCookie)
	if err != nil || c.Value == "" {
		return ""
	}
	return c.Value
}

// admin envuelve un handler que requiere sesión de administrador.
func (s *Server) admin(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok := s.readAdminToken(r)
		if tok == "" {
			writeError(w, r, domain.ErrUnauthorized)
			return
		}
		claims, err := s.verifyAdminToken(r.Context(), tok)
		if err != nil {
			log.Debug().Err(err).Str("path", r.URL.Path).Msg("token admin rechazado")
			writeError(w, r, domain.ErrUnauthorized)
			return
		}
		h(w, r.WithContext(context.WithValue(r.Context(), adminCtxKey{}, claims)))
	}
}

func isSecure(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

func setAdminCookie(w http.ResponseWriter, r *http.Request, tok string, maxAge int) {
	http.SetCookie(w, &http.Cookie{Name: adminCookie, Value: tok, Path: "/", MaxAge: maxAge, HttpOnly: true, Secure: isSecure(r), SameSite: http.SameSiteStrictMode})
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	u, err := s.admins.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		log.Warn().Str("email", req.Email).Str("ip", s.clientIP(r)).Msg("login admin fallido")
		writeError(w, r, err)
		return
	}
	tok, exp, err := s.issueAdminToken(u.Email, u.Name, "password", adminTTL)
	if err != nil {
		writeError(w, r, err)
		return
	}
	setAdminCookie(w, r, tok, int(adminTTL.Seconds()))
	writeJSON(w, http.StatusOK, map[string]any{"token": tok, "exp": exp.Unix(), "email": u.Email, "name": u.Name})
}

func (s *Server) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	setAdminCookie(w, r, "", -1)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleAdminSession(w http.ResponseWriter, r *http.Request) {
	c := adminFrom(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"email": c.Email, "name": c.Name, "role": c.Role, "exp": c.Exp})
}

func (s *Server) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if s.oauthCfg == nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "oauth no configurado"})
		return
	}
	state := uuid.New().String()
	http.SetCookie(w, &http.Cookie{Name: "oauth_state", Value: state, Path: "/", MaxAge: 300, HttpOnly: true, Secure: isSecure(r), SameSite: http.SameSiteLaxMode})
	http.Redirect(w, r, s.oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOnline), http.StatusFound)
}

func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if s.oauthCfg == nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "oauth no configurado"})
		return
	}
	q := r.URL.Query()
	c, _ := r.Cookie("oauth_state")
	if c == nil || c.Value == "" || c.Value != q.Get("state") {
		badRequest(w, "state inválido")
		return
	}
	tok, err := s.oauthCfg.Exchange(r.Context(), q.Get("code"))
	if err != nil {
		log.Error().Err(err).Msg("exchange oauth")
		badRequest(w, "oauth")
		return
	}
	resp, err := s.oauthCfg.Client(r.Context(), tok).Get("https://www.googleapis.com/oauth2/v3/userinfo")
	if err != nil {
		log.Error().Err(err).Msg("userinfo")
		badRequest(w, "userinfo")
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Error().Int("status", resp.StatusCode).Msg("userinfo")
		badRequest(w, "userinfo")
		return
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	var info struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	_ = json.Unmarshal(body, &info)
	email := strings.ToLower(strings.TrimSpace(info.Email))
	if _, ok := s.adminAllowed[email]; !ok || email == "" {
		log.Warn().Str("email", email).Msg("google login no permitido")
		writeError(w, r, domain.ErrUnauthorized)
		return
	}
	adminTok, _, err := s.issueAdminToken(email, info.Name, "google", adminTTL)
	if err != nil {
		writeError(w, r, err)
		return
	}
	setAdminCookie(w, r, adminTok, int(adminTTL.Seconds()))
	http.Redirect(w, r, "/admin", http.StatusFound)
}
