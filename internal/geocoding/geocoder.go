package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
)

const defaultBaseURL = "https://api.mapbox.com/search/geocode/v6/forward"

// ErrNoResults is returned when the provider finds no match for a query.
var ErrNoResults = errors.New("no geocoding results found")

type Geocoder struct {
	logger      *logrus.Logger
	accessToken string
	baseURL     string
	client      *http.Client
	cache       map[string]orb.Point
	cacheLock   sync.RWMutex
}

func NewGeocoder(logger *logrus.Logger, accessToken string) *Geocoder {
	return &Geocoder{
		logger:      logger,
		accessToken: accessToken,
		baseURL:     defaultBaseURL,
		client:      &http.Client{Timeout: 10 * time.Second},
		cache:       make(map[string]orb.Point),
	}
}

// SetBaseURL overrides the provider endpoint, used by tests.
func (g *Geocoder) SetBaseURL(baseURL string) {
	g.baseURL = baseURL
}

type forwardResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// Geocode resolves a free-text address or location to a lon/lat point
// using the Mapbox forward geocoding API, returning the best match.
func (g *Geocoder) Geocode(ctx context.Context, query string) (orb.Point, error) {
	g.cacheLock.RLock()
	if point, ok := g.cache[query]; ok {
		g.cacheLock.RUnlock()
		return point, nil
	}
	g.cacheLock.RUnlock()

	params := url.Values{
		"q":            []string{query},
		"limit":        []string{"1"},
		"access_token": []string{g.accessToken},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL, nil)
	if err != nil {
		return orb.Point{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.URL.RawQuery = params.Encode()

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.WithError(err).WithField("query", query).Error("Geocoding request failed")
		return orb.Point{}, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return orb.Point{}, fmt.Errorf("failed to read geocoding response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		g.logger.WithFields(logrus.Fields{
			"query":  query,
			"status": resp.StatusCode,
		}).Error("Geocoding provider returned an error")
		return orb.Point{}, fmt.Errorf("geocoding provider returned status %d", resp.StatusCode)
	}

	var result forwardResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return orb.Point{}, fmt.Errorf("failed to parse geocoding response: %w", err)
	}

	if len(result.Features) == 0 || len(result.Features[0].Geometry.Coordinates) < 2 {
		g.logger.WithField("query", query).Warn("No geocoding results found")
		return orb.Point{}, fmt.Errorf("%w: %s", ErrNoResults, query)
	}

	coords := result.Features[0].Geometry.Coordinates
	point := orb.Point{coords[0], coords[1]}

	g.logger.WithFields(logrus.Fields{
		"query":     query,
		"longitude": point.Lon(),
		"latitude":  point.Lat(),
	}).Info("Geocoded location")

	g.cacheLock.Lock()
	g.cache[query] = point
	g.cacheLock.Unlock()

	return point, nil
}
