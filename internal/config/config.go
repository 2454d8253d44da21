package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// valores de desarrollo; Load los rechaza con APP_ENV=production
const (
	devSessionKey  = "dev-insecure"
	devAdminSecret = "dev-admin-secret"
)

type DB struct {
	DSN      string
	Host     string `default:"localhost"`
	Port     string `default:"5432"`
	User     string `default:"postgres"`
	Password string `default:"postgres"`
	Name     string `default:"marina"`
	SSLMode  string `default:"disable"`
}

// ConnString arma el DSN a partir de las partes si no vino uno completo.
func (d DB) ConnString() string {
	if strings.TrimSpace(d.DSN) != "" {
		return d.DSN
	}
	return "host=" + d.Host + " user=" + d.User + " password=" + d.Password + " dbname=" + d.Name + " port=" + d.Port + " sslmode=" + d.SSLMode
}

type SMTP struct {
	Host string
	Port int `default:"587"`
	User string
	Pass string
	From string
}

func (s SMTP) Enabled() bool {
	return s.Host != "" && s.User != "" && s.Pass != ""
}

type Config struct {
	AppEnv   string `default:"development"`
	Port     string `default:"8080"`
	BaseURL  string `default:"http://localhost:8080"`
	DevMode  bool
	LogLevel string `default:"info"`

	DB DB

	SessionKey  string `default:"dev-insecure"`
	AdminSecret string `default:"dev-admin-secret"`

	AdminEmail         string
	AdminPassword      string
	AdminName          string `default:"Admin"`
	AdminAllowedEmails []string

	GoogleClientID     string
	GoogleClientSecret string

	SMTP             SMTP
	OrderNotifyEmail string
	TelegramToken    string
	TelegramChatIDs  []string
	NotifyTimeout    time.Duration `default:"15s"`

	CloudinaryURL    string
	CloudinaryFolder string `default:"marina"`

	WhatsAppNumber string
	OrderPrefix    string `default:"BK"`

	GeoLookupURL string        `default:"https://ipapi.co"`
	GeoTimeout   time.Duration `default:"3s"`

	RollupViews  bool `default:"true"`
	RollupClicks bool

	CacheTTL     time.Duration `default:"60s"`
	RateLimit    int           `default:"60"`
	TrustProxy   bool
	SeedSample   bool
	ShutdownWait time.Duration `default:"5s"`
}

func (c *Config) IsProduction() bool {
	e := strings.ToLower(c.AppEnv)
	return e == "production" || e == "prod"
}

// Load lee .env si existe, aplica los defaults y después las variables de entorno.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Warn().Err(err).Msg("no se pudo leer .env")
		}
	}

	c := &Config{}
	if err := defaults.Set(c); err != nil {
		return nil, err
	}

	c.AppEnv = getEnv("APP_ENV", c.AppEnv)
	c.Port = getEnv("PORT", c.Port)
	c.BaseURL = strings.TrimRight(getEnv("BASE_URL", c.BaseURL), "/")
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	c.DB.DSN = getEnv("DB_DSN", c.DB.DSN)
	c.DB.Host = getEnv("DB_HOST", c.DB.Host)
	c.DB.Port = getEnv("DB_PORT", c.DB.Port)
	c.DB.User = firstEnv(c.DB.User, "DB_USER", "POSTGRES_USER")
	c.DB.Password = firstEnv(c.DB.Password, "DB_PASSWORD", "POSTGRES_PASSWORD")
	c.DB.Name = firstEnv(c.DB.Name, "DB_NAME", "POSTGRES_DB")
	c.DB.SSLMode = getEnv("DB_SSLMODE", c.DB.SSLMode)

	// sin base configurada arrancamos en memoria
	dbConfigured := os.Getenv("DB_DSN") != "" || os.Getenv("DB_HOST") != "" || os.Getenv("POSTGRES_USER") != ""
	c.DevMode = getBool("DEV_MODE", !dbConfigured)

	c.SessionKey = getEnv("SESSION_KEY", c.SessionKey)
	c.AdminSecret = firstEnv(c.AdminSecret, "JWT_ADMIN_SECRET", "SECRET_KEY")
	c.AdminEmail = strings.ToLower(strings.TrimSpace(getEnv("ADMIN_EMAIL", c.AdminEmail)))
	c.AdminPassword = getEnv("ADMIN_PASSWORD", c.AdminPassword)
	c.AdminName = getEnv("ADMIN_NAME", c.AdminName)
	c.AdminAllowedEmails = getList("ADMIN_ALLOWED_EMAILS", true)
	if c.AdminEmail != "" && !contains(c.AdminAllowedEmails, c.AdminEmail) {
		c.AdminAllowedEmails = append(c.AdminAllowedEmails, c.AdminEmail)
	}

	c.GoogleClientID = getEnv("GOOGLE_CLIENT_ID", "")
	c.GoogleClientSecret = getEnv("GOOGLE_CLIENT_SECRET", "")

	c.SMTP.Host = getEnv("SMTP_HOST", c.SMTP.Host)
	c.SMTP.Port = getInt("SMTP_PORT", c.SMTP.Port)
	c.SMTP.User = getEnv("SMTP_USER", c.SMTP.User)
	c.SMTP.Pass = getEnv("SMTP_PASS", c.SMTP.Pass)
	c.SMTP.From = getEnv("SMTP_FROM", c.SMTP.User)
	c.OrderNotifyEmail = getEnv("ORDER_NOTIFY_EMAIL", c.OrderNotifyEmail)
	c.TelegramToken = getEnv("TELEGRAM_BOT_TOKEN", "")
	c.TelegramChatIDs = getList("TELEGRAM_CHAT_IDS", false)
	if len(c.TelegramChatIDs) == 0 {
		c.TelegramChatIDs = getList("TELEGRAM_CHAT_ID", false)
	}
	c.NotifyTimeout = getDuration("NOTIFY_TIMEOUT", c.NotifyTimeout)

	c.CloudinaryURL = getEnv("CLOUDINARY_URL", "")
	c.CloudinaryFolder = getEnv("CLOUDINARY_FOLDER", c.CloudinaryFolder)

	c.WhatsAppNumber = getEnv("WHATSAPP_NUMBER", c.WhatsAppNumber)
	c.OrderPrefix = strings.ToUpper(getEnv("ORDER_PREFIX", c.OrderPrefix))

	c.GeoLookupURL = strings.TrimRight(getEnv("GEO_LOOKUP_URL", c.GeoLookupURL), "/")
	c.GeoTimeout = getDuration("GEO_TIMEOUT", c.GeoTimeout)

	c.RollupViews = getBool("ANALYTICS_ROLLUP_VIEWS", c.RollupViews)
	c.RollupClicks = getBool("ANALYTICS_ROLLUP_CLICKS", c.RollupClicks)

	c.CacheTTL = getDuration("CACHE_TTL", c.CacheTTL)
	c.RateLimit = getInt("RATE_LIMIT_PER_MIN", c.RateLimit)
	// solo detrás de un proxy propio que pise X-Forwarded-For
	c.TrustProxy = getBool("TRUST_PROXY", c.TrustProxy)
	c.SeedSample = getBool("SEED_SAMPLE", c.SeedSample)

	if c.IsProduction() {
		if c.SessionKey == devSessionKey {
			return nil, errors.New("SESSION_KEY requerido en producción")
		}
		if c.AdminSecret == devAdminSecret {
			return nil, errors.New("JWT_ADMIN_SECRET requerido en producción")
		}
	}
	return c, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func firstEnv(fallback string, keys ...string) string {
	for _, k := range keys {
		if v := getEnv(k, ""); v != "" {
			return v
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("bool inválido, uso default")
		return fallback
	}
	return b
}

func getInt(key string, fallback int) int {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("entero inválido, uso default")
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("duración inválida, uso default")
		return fallback
	}
	return d
}

// getList separa por coma; lower pasa todo a minúsculas (emails).
func getList(key string, lower bool) []string {
	raw := getEnv(key, "")
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		p := strings.TrimSpace(part)
		if lower {
			p = strings.ToLower(p)
		}
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
