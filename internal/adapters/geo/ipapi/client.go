package ipapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/phenrril/marina/internal/domain"
)

// Client resuelve país y ciudad de una IP contra ipapi.co.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "https://ipapi.co"
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: &http.Client{Timeout: timeout}}
}

type ipapiResp struct {
	CountryName string `json:"country_name"`
	City        string `json:"city"`
	Error       bool   `json:"error"`
	Reason      string `json:"reason"`
}

var errLocalIP = errors.New("ip local o inválida")

func (c *Client) Locate(ctx context.Context, ip string) (domain.GeoInfo, error) {
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil || parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() {
		return domain.UnknownGeo(), errLocalIP
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+url.PathEscape(parsed.String())+"/json/", nil)
	if err != nil {
		return domain.UnknownGeo(), err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "marina-backend")
	res, err := c.httpClient.Do(req)
	if err != nil {
		return domain.UnknownGeo(), fmt.Errorf("ipapi: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return domain.UnknownGeo(), fmt.Errorf("ipapi status %d: %s", res.StatusCode, string(body))
	}
	var out ipapiResp
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return domain.UnknownGeo(), fmt.Errorf("ipapi json: %w", err)
	}
	if out.Error {
		return domain.UnknownGeo(), fmt.Errorf("ipapi: %s", out.Reason)
	}
	info := domain.GeoInfo{Country: out.CountryName, City: out.City}
	if info.Country == "" {
		info.Country = domain.UnknownPlace
	}
	if info.City == "" {
		info.City = domain.UnknownPlace
	}
	return info, nil
}
