package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type Location struct {
	City    string
	Country string
}

func (l Location) String() string {
	return l.City + ", " + l.Country
}

// Resolver maps an IP address to a Location.
type Resolver interface {
	Resolve(ctx context.Context, ip string) (Location, error)
}

// HTTPResolver queries an ip-api style endpoint: GET <base>/<ip> returns
// a JSON object with status, city and country fields.
type HTTPResolver struct {
	baseURL string
	client  *http.Client
}

func NewHTTPResolver(baseURL string, timeout time.Duration) *HTTPResolver {
	return &HTTPResolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (r *HTTPResolver) Resolve(ctx context.Context, ip string) (Location, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/"+ip, nil)
	if err != nil {
		return Location{}, fmt.Errorf("failed to build geo request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("geo lookup failed: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Status  string `json:"status"`
		City    string `json:"city"`
		Country string `json:"country"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Location{}, fmt.Errorf("failed to decode geo response: %w", err)
	}
	if payload.Status != "success" {
		return Location{}, fmt.Errorf("geo lookup for %s returned status %q", ip, payload.Status)
	}

	return Location{City: payload.City, Country: payload.Country}, nil
}
