package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type EventKind string

const (
	EventVisit EventKind = "visit"
	EventClick EventKind = "click"
	EventView  EventKind = "view"
)

const UnknownPlace = "Unknown"

const (
	DefaultStatsDays  = 30
	StatsPageSize     = 10
	TopProductsLimit  = 10
	RecentClicksLimit = 20
)

// Event es un evento discreto (una fila por visita, click o vista).
type Event struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Kind      EventKind  `gorm:"type:varchar(10);not null;index:idx_events_kind_ts,priority:1" json:"type"`
	IP        string     `gorm:"size:64;index" json:"ip,omitempty"`
	Country   string     `gorm:"size:120" json:"country,omitempty"`
	City      string     `gorm:"size:120" json:"city,omitempty"`
	UserAgent string     `gorm:"type:text" json:"userAgent,omitempty"`
	ProductID *uuid.UUID `gorm:"type:uuid;index" json:"productId,omitempty"`
	Timestamp time.Time  `gorm:"not null;index:idx_events_kind_ts,priority:2" json:"timestamp"`
}

func (Event) TableName() string { return "analytics_events" }

// DailyCounter acumula en el lugar los eventos de un producto por día.
type DailyCounter struct {
	Day       datatypes.Date `gorm:"primaryKey" json:"day"`
	Metric    EventKind      `gorm:"type:varchar(10);primaryKey" json:"metric"`
	ProductID uuid.UUID      `gorm:"type:uuid;primaryKey" json:"productId"`
	Count     int64          `gorm:"not null" json:"count"`
}

func (DailyCounter) TableName() string { return "analytics_daily_counters" }

type GeoInfo struct {
	Country string
	City    string
}

func UnknownGeo() GeoInfo {
	return GeoInfo{Country: UnknownPlace, City: UnknownPlace}
}

type CountryCount struct {
	Country string `json:"country"`
	Count   int64  `json:"count"`
}

type ProductCount struct {
	ProductID uuid.UUID
	Count     int64
}

type ProductStat struct {
	ProductID   uuid.UUID `json:"productId"`
	ProductName string    `json:"productName"`
	Count       int64     `json:"count"`
}

type RecentClick struct {
	ProductID   uuid.UUID `json:"productId"`
	ProductName string    `json:"productName"`
	IP          string    `json:"ip,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
}

type Stats struct {
	Days            int            `json:"days"`
	TotalVisits     int64          `json:"totalVisits"`
	TotalClicks     int64          `json:"totalClicks"`
	TotalViews      int64          `json:"totalViews"`
	UniqueVisitors  int64          `json:"uniqueVisitors"`
	VisitsByCountry []CountryCount `json:"visitsByCountry"`
	RecentVisits    []Event        `json:"recentVisits"`
	RecentClicks    []RecentClick  `json:"recentClicks"`
	Pagination      Pagination     `json:"pagination"`
	MostViewed      []ProductStat  `json:"mostViewedProducts"`
	MostClicked     []ProductStat  `json:"mostClickedProducts"`
	WindowStart     time.Time      `json:"from"`
	WindowEnd       time.Time      `json:"to"`
}

// SortCountries ordena de mayor a menor; a igual cantidad, por nombre.
func SortCountries(cs []CountryCount) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].Count != cs[j].Count {
			return cs[i].Count > cs[j].Count
		}
		return cs[i].Country < cs[j].Country
	})
}

// MergeProductCounts suma los conteos de los eventos discretos y de los
// contadores diarios y devuelve la lista ordenada de mayor a menor.
func MergeProductCounts(sets ...[]ProductCount) []ProductCount {
	acc := map[uuid.UUID]int64{}
	for _, set := range sets {
		for _, pc := range set {
			if pc.ProductID == uuid.Nil {
				continue
			}
			acc[pc.ProductID] += pc.Count
		}
	}
	out := make([]ProductCount, 0, len(acc))
	for id, n := range acc {
		out = append(out, ProductCount{ProductID: id, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].ProductID.String() < out[j].ProductID.String()
	})
	return out
}

func SumCounts(set []ProductCount) int64 {
	var n int64
	for _, pc := range set {
		n += pc.Count
	}
	return n
}

func TotalPages(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}

// Paginate devuelve el offset de la página pedida (1-based) y su metadata.
// Una página posterior a la última apunta al final y queda vacía.
func Paginate(total int64, page, size int) (int, Pagination) {
	if page < 1 {
		page = 1
	}
	pages := TotalPages(total, size)
	offset := pages * size
	if page <= pages {
		offset = (page - 1) * size
	}
	return offset, Pagination{
		CurrentPage:  page,
		TotalPages:   pages,
		TotalItems:   total,
		ItemsPerPage: size,
	}
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
