package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"trashperson-route-service/internal/domain"
	"trashperson-route-service/internal/platform/obs"
)

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// geocodeMany resolves addresses individually using OpenRouteService (/geocode/search).
// Addresses with no match are left out of the result; transport failures abort.
func (o *ORSGeocoder) geocodeMany(
	ctx context.Context,
	addresses []string,
) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, "ors.geocodeMany")(&err)

	out := make(map[string]domain.Coordinates, len(addresses))
	for _, a := range addresses {
		coord, ok, err := o.geocodeOne(ctx, a)
		if err != nil {
			return nil, fmt.Errorf("geocode %q: %w", a, err)
		}
		if ok {
			out[a] = coord
		}
	}

	return out, nil
}

func (o *ORSGeocoder) geocodeOne(ctx context.Context, address string) (domain.Coordinates, bool, error) {
	endpoint := o.baseURL + "/geocode/search"

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := o.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("text", address)
		q.Set("boundary.country", o.country)
		q.Set("size", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("decode geocode response: %w", err)
	}

	if len(decoded.Features) == 0 {
		return domain.Coordinates{}, false, nil
	}

	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return domain.Coordinates{}, false, fmt.Errorf("invalid coordinate format for %q", address)
	}

	// ORS returns GeoJSON order: [lon, lat].
	lon, lat := coords[0], coords[1]
	// A point outside WGS-84 ranges is treated as no match so it never reaches storage.
	if !domain.ValidCoordinates(lat, lon) {
		log.Printf("req_id=%s geocode out of range lon=%v lat=%v address=%q", obs.RequestID(ctx), lon, lat, address)
		return domain.Coordinates{}, false, nil
	}
	return domain.Coordinates{Lon: lon, Lat: lat}, true, nil
}
