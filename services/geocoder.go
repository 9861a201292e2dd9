package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"safii-be/models"
)

// Geocoder resolves coordinates to a human-readable area name using a
// Nominatim-compatible reverse geocoding endpoint.
type Geocoder struct {
	client    *http.Client
	baseURL   string
	userAgent string
	zoom      int
}

// NewGeocoder returns a Geocoder. A nil client gets a 10 second timeout.
func NewGeocoder(baseURL, userAgent string, zoom int, client *http.Client) *Geocoder {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Geocoder{
		client:    client,
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		zoom:      zoom,
	}
}

type reverseResponse struct {
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address"`
}

// areaKeys in order of preference.
var areaKeys = []string{
	"suburb", "neighbourhood", "village", "town", "city",
	"county", "state_district", "state",
}

// AreaName returns the most specific area name for the point, or "" when
// the lookup fails for any reason.
func (g *Geocoder) AreaName(ctx context.Context, lat, lng float64) string {
	name, err := g.reverse(ctx, lat, lng)
	if err != nil {
		log.Printf("Reverse geocoding %.4f, %.4f failed: %v", lat, lng, err)
		return ""
	}
	return name
}

// DescribeCoordinates builds a coordinates location, naming the area when
// the geocoder knows it.
func (g *Geocoder) DescribeCoordinates(ctx context.Context, lat, lng float64) models.Location {
	return models.NewCoordinateLocation(lat, lng, g.AreaName(ctx, lat, lng))
}

func (g *Geocoder) reverse(ctx context.Context, lat, lng float64) (string, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("format", "json")
	q.Set("zoom", strconv.Itoa(g.zoom))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	if g.userAgent != "" {
		req.Header.Set("User-Agent", g.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	var decoded reverseResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	for _, key := range areaKeys {
		if v := strings.TrimSpace(decoded.Address[key]); v != "" {
			return v, nil
		}
	}
	if v := strings.TrimSpace(decoded.DisplayName); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("no area name in response")
}
