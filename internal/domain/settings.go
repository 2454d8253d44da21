package domain

import (
	"strings"
	"time"

	"github.com/creasty/defaults"
)

// SettingsID es la única fila de la tabla.
const SettingsID = 1

type Settings struct {
	ID                int       `gorm:"primaryKey;autoIncrement:false" json:"-"`
	WhatsAppNumber    string    `gorm:"size:40;not null" json:"whatsappNumber" default:"5491123456789"`
	InstagramURL      string    `gorm:"size:255" json:"instagramUrl"`
	StoreName         string    `gorm:"size:120" json:"storeName" default:"Bikimar"`
	StoreDescription  string    `gorm:"type:text" json:"storeDescription"`
	BannerText        string    `gorm:"type:text" json:"bannerText" default:"✦ Envíos a todo el país ✦ 3 cuotas sin interés ✦ Temporada 2025 ✦ Diseños únicos ✦ Bordados a mano ✦ Envíos express"`
	HeroImages        []string  `gorm:"type:jsonb;serializer:json" json:"heroImages"`
	HeroTitle         string    `gorm:"size:120" json:"heroTitle" default:"MARINA"`
	HeroSubtitle      string    `gorm:"size:120" json:"heroSubtitle" default:"BIKINIS AUTORA"`
	HeroDescription   string    `gorm:"type:text" json:"heroDescription" default:"Diseños artesanales únicos\nBordados a mano con dedicación"`
	FooterGif         string    `gorm:"size:255" json:"footerGif" default:"/marina/Beautiful Water GIF.gif"`
	FooterTitle       string    `gorm:"size:120" json:"footerTitle" default:"MARINA BIKINIS"`
	FooterSubtitle    string    `gorm:"size:255" json:"footerSubtitle" default:"Diseños artesanales únicos"`
	FooterDescription string    `gorm:"type:text" json:"footerDescription" default:"Bordados a mano con dedicación"`
	Version           int64     `gorm:"not null" json:"version"`
	CreatedAt         time.Time `json:"-"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// NewDefaultSettings arma la fila inicial; whatsapp pisa el número por defecto si viene.
func NewDefaultSettings(whatsapp string) (*Settings, error) {
	s := &Settings{}
	if err := defaults.Set(s); err != nil {
		return nil, err
	}
	s.ID = SettingsID
	s.Version = 1
	s.HeroImages = []string{}
	if w := strings.TrimSpace(whatsapp); w != "" {
		s.WhatsAppNumber = w
	}
	return s, nil
}

func (s *Settings) Normalize() {
	s.WhatsAppNumber = strings.TrimSpace(s.WhatsAppNumber)
	s.InstagramURL = strings.TrimSpace(s.InstagramURL)
	s.StoreName = strings.TrimSpace(s.StoreName)
	s.HeroImages = compact(s.HeroImages)
}

func (s *Settings) Validate() error {
	if s.WhatsAppNumber == "" {
		return Invalid("whatsappNumber", "El número de WhatsApp es requerido")
	}
	if digitsOnly(s.WhatsAppNumber) == "" {
		return Invalid("whatsappNumber", "Número de WhatsApp inválido")
	}
	return nil
}
