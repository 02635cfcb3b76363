package geocoding

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
	"trashperson-route-service/internal/domain"
	"trashperson-route-service/internal/platform/obs"
)

// GeocodeCache persists address -> coordinate lookups between requests.
type GeocodeCache interface {
	GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error)
	PutMany(ctx context.Context, results map[string]domain.Coordinates) error
}

// ORSGeocoder implements ports.Geocoder using OpenRouteService.
//
// It coordinates:
//   - Address normalization
//   - Persistent geocode caching
//   - External API calls with retry/backoff
//
// The geocoder is safe for concurrent use.
type ORSGeocoder struct {
	session *http.Client
	apiKey  string
	baseURL string
	country string
	backoff time.Duration
	cache   GeocodeCache
}

func NewORSGeocoder(apiKey string, cache GeocodeCache) (*ORSGeocoder, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	return &ORSGeocoder{
		session: &http.Client{Timeout: 10 * time.Second},
		apiKey:  apiKey,
		baseURL: "https://api.openrouteservice.org",
		country: "US",
		backoff: initialBackoff,
		cache:   cache,
	}, nil
}

// WithBaseURL points the geocoder at a different ORS deployment.
func (o *ORSGeocoder) WithBaseURL(baseURL string) *ORSGeocoder {
	o.baseURL = strings.TrimRight(baseURL, "/")
	return o
}

// WithBackoff sets the first retry delay; it doubles on each attempt.
func (o *ORSGeocoder) WithBackoff(d time.Duration) *ORSGeocoder {
	o.backoff = d
	return o
}

// normalize ensures consistent cache keys by collapsing whitespace.
func (o *ORSGeocoder) normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Geocode resolves addresses, consulting the cache before calling ORS.
func (o *ORSGeocoder) Geocode(
	ctx context.Context,
	addresses []string,
) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, "ors.Geocode")(&err)

	seen := make(map[string]struct{}, len(addresses))
	needed := make([]string, 0, len(addresses))
	for _, a := range addresses {
		n := o.normalize(a)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		needed = append(needed, n)
	}

	if len(needed) == 0 {
		return map[string]domain.Coordinates{}, nil
	}

	hits := make(map[string]domain.Coordinates)
	if o.cache != nil {
		hits, err = o.cache.GetMany(ctx, needed)
		if err != nil {
			return nil, fmt.Errorf("ORS get geocode cache: %w", err)
		}
	}

	misses := make([]string, 0, len(needed))
	for _, a := range needed {
		if _, ok := hits[a]; !ok {
			misses = append(misses, a)
		}
	}

	fresh := make(map[string]domain.Coordinates)
	if len(misses) > 0 {
		fresh, err = o.geocodeMany(ctx, misses)
		if err != nil {
			return nil, fmt.Errorf("retrieving coordinates: %w", err)
		}
	}

	if o.cache != nil && len(fresh) > 0 {
		if err := o.cache.PutMany(ctx, fresh); err != nil {
			log.Printf("req_id=%s geocode cache write failed: %v", obs.RequestID(ctx), err)
		}
	}

	out := make(map[string]domain.Coordinates, len(hits)+len(fresh))
	for k, v := range hits {
		out[k] = v
	}
	for k, v := range fresh {
		out[k] = v
	}

	return out, nil
}
