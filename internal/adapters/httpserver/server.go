package httpserver

import (
	"crypto/rand"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/schema"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/phenrril/marina/internal/domain"
	"github.com/phenrril/marina/internal/usecase"
)

type Options struct {
	Products  *usecase.ProductUC
	Orders    *usecase.OrderUC
	Analytics *usecase.AnalyticsUC
	Settings  *usecase.SettingsUC
	Admins    *usecase.AdminUC
	Images    domain.ImageStorage
	OAuth     *oauth2.Config

	AdminSecret  string
	SessionKey   string
	AdminAllowed []string
	StoreMode    string
	RateLimit    int
	TrustProxy   bool
}

type Server struct {
	mux       *http.ServeMux
	products  *usecase.ProductUC
	orders    *usecase.OrderUC
	analytics *usecase.AnalyticsUC
	settings  *usecase.SettingsUC
	admins    *usecase.AdminUC
	images    domain.ImageStorage
	oauthCfg  *oauth2.Config
	query     *schema.Decoder

	adminAllowed map[string]struct{}
	adminSecret  []byte
	sessionKey   []byte
	storeMode    string
	trustProxy   bool
}

func New(opts Options) http.Handler {
	s := &Server{
		mux:       http.NewServeMux(),
		products:  opts.Products,
		orders:    opts.Orders,
		analytics: opts.Analytics,
		settings:  opts.Settings,
		admins:    opts.Admins,
		images:    opts.Images,
		oauthCfg:  opts.OAuth,
		query:     schema.NewDecoder(),
		storeMode: opts.StoreMode,
	}
	s.trustProxy = opts.TrustProxy
	s.query.IgnoreUnknownKeys(true)

	s.adminAllowed = map[string]struct{}{}
	for _, e := range opts.AdminAllowed {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			s.adminAllowed[e] = struct{}{}
		}
	}
	s.adminSecret = secretOrRandom(opts.AdminSecret, "admin")
	s.sessionKey = secretOrRandom(opts.SessionKey, "session")

	s.routes()
	return Chain(s.mux,
		RequestID,
		Recovery,
		Logging,
		PublicRateLimit(map[string]int{
			"POST /api/orders":          10,
			"POST /api/cart/checkout":   10,
			"POST /api/analytics/visit": 30,
			"POST /admin/login":         10,
		}, opts.TrustProxy),
		RateLimit(opts.RateLimit, opts.TrustProxy),
		SecurityHeaders,
	)
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("GET /api/products", s.apiProducts)
	s.mux.HandleFunc("GET /api/products/{id}", s.apiProductByID)
	s.mux.HandleFunc("POST /api/products", s.admin(s.apiProductCreate))
	s.mux.HandleFunc("PUT /api/products/{id}", s.admin(s.apiProductUpdate))
	s.mux.HandleFunc("DELETE /api/products/{id}", s.admin(s.apiProductDelete))
	s.mux.HandleFunc("POST /api/products/reorder", s.admin(s.apiProductsReorder))

	s.mux.HandleFunc("GET /api/cart", s.apiCart)
	s.mux.HandleFunc("POST /api/cart/items", s.apiCartAdd)
	s.mux.HandleFunc("PATCH /api/cart/items", s.apiCartUpdate)
	s.mux.HandleFunc("DELETE /api/cart/items", s.apiCartRemove)
	s.mux.HandleFunc("DELETE /api/cart", s.apiCartClear)
	s.mux.HandleFunc("POST /api/cart/checkout", s.apiCartCheckout)

	s.mux.HandleFunc("POST /api/orders", s.apiOrderCreate)
	s.mux.HandleFunc("GET /api/orders", s.admin(s.apiOrders))
	s.mux.HandleFunc("GET /api/orders/export", s.admin(s.apiOrdersExport))
	s.mux.HandleFunc("GET /api/orders/{id}", s.admin(s.apiOrderByID))
	s.mux.HandleFunc("PATCH /api/orders/{id}", s.admin(s.apiOrderUpdate))
	s.mux.HandleFunc("DELETE /api/orders/{id}", s.admin(s.apiOrderDelete))

	s.mux.HandleFunc("POST /api/analytics/visit", s.apiVisit)
	s.mux.HandleFunc("POST /api/analytics/click", s.apiClick)
	s.mux.HandleFunc("POST /api/analytics/view", s.apiView)
	s.mux.HandleFunc("GET /api/analytics/stats", s.admin(s.apiStats))
	s.mux.HandleFunc("GET /api/analytics/export", s.admin(s.apiVisitsExport))

	s.mux.HandleFunc("GET /api/settings", s.apiSettings)
	s.mux.HandleFunc("PUT /api/settings", s.admin(s.apiSettingsUpdate))

	s.mux.HandleFunc("POST /api/upload", s.admin(s.apiUpload))
	s.mux.HandleFunc("DELETE /api/upload", s.admin(s.apiUploadDelete))

	s.mux.HandleFunc("POST /admin/login", s.handleAdminLogin)
	s.mux.HandleFunc("POST /admin/logout", s.handleAdminLogout)
	s.mux.HandleFunc("GET /admin/session", s.admin(s.handleAdminSession))
	s.mux.HandleFunc("GET /auth/google/login", s.handleGoogleLogin)
	s.mux.HandleFunc("GET /auth/google/callback", s.handleGoogleCallback)
}

// secretOrRandom usa una clave aleatoria si no vino ninguna; las sesiones
// firmadas con ella no sobreviven a un reinicio.
func secretOrRandom(secret, name string) []byte {
	if secret != "" {
		return []byte(secret)
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	log.Warn().Str("key", name).Msg("clave vacía, uso una aleatoria")
	return b
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "store": s.storeMode})
}

func (s *Server) clientIP(r *http.Request) string {
	return clientIP(r, s.trustProxy)
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, domain.Invalid("id", "ID inválido")
	}
	return id, nil
}
