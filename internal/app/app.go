package app

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/phenrril/marina/internal/adapters/geo/ipapi"
	"github.com/phenrril/marina/internal/adapters/httpserver"
	"github.com/phenrril/marina/internal/adapters/notify"
	"github.com/phenrril/marina/internal/adapters/repo/memory"
	"github.com/phenrril/marina/internal/adapters/repo/postgres"
	"github.com/phenrril/marina/internal/adapters/storage/cloudinary"
	"github.com/phenrril/marina/internal/cache"
	"github.com/phenrril/marina/internal/config"
	"github.com/phenrril/marina/internal/domain"
	"github.com/phenrril/marina/internal/usecase"
)

type repos struct {
	products  domain.ProductRepo
	orders    domain.OrderRepo
	analytics domain.AnalyticsRepo
	settings  domain.SettingsRepo
	admins    domain.AdminRepo
}

type App struct {
	Cfg         *config.Config
	DB          *gorm.DB
	Cache       *cache.Cache
	ProductUC   *usecase.ProductUC
	OrderUC     *usecase.OrderUC
	AnalyticsUC *usecase.AnalyticsUC
	SettingsUC  *usecase.SettingsUC
	AdminUC     *usecase.AdminUC
	Images      domain.ImageStorage
	OAuthConfig *oauth2.Config

	products domain.ProductRepo
}

// NewApp arma todo el grafo. Con db nil se usa el almacenamiento en memoria.
func NewApp(cfg *config.Config, db *gorm.DB) (*App, error) {
	var r repos
	if db == nil {
		r = repos{
			products:  memory.NewProductRepo(),
			orders:    memory.NewOrderRepo(),
			analytics: memory.NewAnalyticsRepo(),
			settings:  memory.NewSettingsRepo(),
			admins:    memory.NewAdminRepo(),
		}
	} else {
		r = repos{
			products:  postgres.NewProductRepo(db),
			orders:    postgres.NewOrderRepo(db),
			analytics: postgres.NewAnalyticsRepo(db),
			settings:  postgres.NewSettingsRepo(db),
			admins:    postgres.NewAdminRepo(db),
		}
	}

	app := &App{Cfg: cfg, DB: db, Cache: cache.New(cfg.CacheTTL), products: r.products}
	app.ProductUC = &usecase.ProductUC{Products: r.products, Cache: app.Cache}
	app.OrderUC = &usecase.OrderUC{
		Orders:   r.orders,
		Products: r.products,
		Notifier: notify.NewAsync(buildNotifier(cfg), cfg.NotifyTimeout, nil),
		Prefix:   cfg.OrderPrefix,
	}
	app.AnalyticsUC = &usecase.AnalyticsUC{
		Events:   r.analytics,
		Products: app.ProductUC,
		Geo:      ipapi.New(cfg.GeoLookupURL, cfg.GeoTimeout),
		Rollup:   usecase.RollupPolicy{Views: cfg.RollupViews, Clicks: cfg.RollupClicks},
	}
	app.SettingsUC = &usecase.SettingsUC{Settings: r.settings, Cache: app.Cache, DefaultWhatsApp: cfg.WhatsAppNumber}
	app.AdminUC = &usecase.AdminUC{Admins: r.admins}

	if cfg.CloudinaryURL != "" {
		st, err := cloudinary.New(cfg.CloudinaryURL, cfg.CloudinaryFolder)
		if err != nil {
			return nil, err
		}
		app.Images = st
	} else {
		log.Warn().Msg("CLOUDINARY_URL vacío: subida de imágenes deshabilitada")
	}

	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		app.OAuthConfig = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.BaseURL + "/auth/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}
	return app, nil
}

func buildNotifier(cfg *config.Config) domain.OrderNotifier {
	var chans notify.Multi
	if cfg.TelegramToken != "" && len(cfg.TelegramChatIDs) > 0 {
		chans = append(chans, notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatIDs))
	}
	if cfg.SMTP.Enabled() && cfg.OrderNotifyEmail != "" {
		chans = append(chans, notify.NewMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Pass, cfg.SMTP.From, cfg.OrderNotifyEmail))
	}
	if len(chans) == 0 {
		log.Warn().Msg("sin canales de notificación configurados")
		return notify.Noop{}
	}
	return chans
}

func (a *App) StoreMode() string {
	if a.DB == nil {
		return "memory"
	}
	return "postgres"
}

func (a *App) HTTPHandler() http.Handler {
	return httpserver.New(httpserver.Options{
		Products:     a.ProductUC,
		Orders:       a.OrderUC,
		Analytics:    a.AnalyticsUC,
		Settings:     a.SettingsUC,
		Admins:       a.AdminUC,
		Images:       a.Images,
		OAuth:        a.OAuthConfig,
		AdminSecret:  a.Cfg.AdminSecret,
		SessionKey:   a.Cfg.SessionKey,
		AdminAllowed: a.Cfg.AdminAllowedEmails,
		StoreMode:    a.StoreMode(),
		RateLimit:    a.Cfg.RateLimit,
		TrustProxy:   a.Cfg.TrustProxy,
	})
}

// Start corre las tareas de fondo hasta que se cancele el contexto.
func (a *App) Start(ctx context.Context) {
	go a.Cache.Janitor(ctx, a.Cfg.CacheTTL)
}

func (a *App) MigrateAndSeed(ctx context.Context) error {
	if a.DB != nil {
		if err := a.DB.WithContext(ctx).AutoMigrate(
			&domain.Product{}, &domain.Order{}, &domain.OrderItem{},
			&domain.Event{}, &domain.DailyCounter{},
			&domain.Settings{}, &domain.AdminUser{}, &postgres.Counter{},
		); err != nil {
			return err
		}
		if err := postgres.SeedCounter(ctx, a.DB); err != nil {
			return err
		}
	}
	if err := a.AdminUC.EnsureAdmin(ctx, a.Cfg.AdminEmail, a.Cfg.AdminPassword, a.Cfg.AdminName); err != nil {
		return err
	}
	if _, err := a.SettingsUC.Get(ctx); err != nil {
		return err
	}
	if a.Cfg.SeedSample || a.DB == nil {
		return seedProducts(ctx, a.products)
	}
	return nil
}

// seedProducts carga el catálogo de ejemplo solo si está vacío.
func seedProducts(ctx context.Context, repo domain.ProductRepo) error {
	if _, ok, err := repo.MaxDisplayOrder(ctx); err != nil || ok {
		return err
	}
	sample := "https://res.cloudinary.com/demo/image/upload/sample.jpg"
	prods := []domain.Product{
		{Name: "Bikini Bordado Negro Flores", Description: "Bikini negro con bordados artesanales de flores doradas. Diseño exclusivo hecho a mano.", Price: decimal.NewFromInt(32000), Category: domain.CategoryBikini, Style: "Artesanal", Pattern: "Bordado", Stitching: "A mano", Sizes: []string{"S", "M", "L"}, Colors: []string{"Negro", "Dorado"}},
		{Name: "Bikini Turquesa Mar", Description: "Bikini en tonos turquesa vibrante, inspirado en los colores del mar. Pieza única.", Price: decimal.NewFromInt(28500), Category: domain.CategoryBikini, Style: "Tropical", Pattern: "Liso", Stitching: "Reforzado", Sizes: []string{"S", "M", "L"}, Colors: []string{"Turquesa", "Aguamarina"}},
		{Name: "Enteriza Atardecer Coral", Description: "Diseño exclusivo en tonos coral y naranja, como un atardecer playero. Bordados únicos.", Price: decimal.NewFromInt(35000), Category: domain.CategoryEnteriza, Style: "Romántico", Pattern: "Degradado", Stitching: "A mano", Sizes: []string{"S", "M"}, Colors: []string{"Coral", "Naranja", "Dorado"}},
		{Name: "Pareo Verde Esmeralda", Description: "Pareo en verde esmeralda con detalles artesanales. Diseño único e irrepetible.", Price: decimal.NewFromInt(15000), Category: domain.CategoryPareo, Style: "Elegante", Pattern: "Lentejuelas", Colors: []string{"Verde", "Esmeralda"}},
	}
	for i := range prods {
		p := &prods[i]
		p.ID = uuid.New()
		p.Images = []string{sample}
		p.Stock = 1
		p.Active = true
		p.DisplayOrder = i
		p.Normalize()
		if err := repo.Save(ctx, p); err != nil {
			return err
		}
	}
	log.Info().Int("productos", len(prods)).Msg("catálogo de ejemplo cargado")
	return nil
}
