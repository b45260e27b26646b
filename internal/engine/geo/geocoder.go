package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rendis/markview/internal/model"
)

// NominatimURL is the search endpoint used by GeocodeCenter.
var NominatimURL = "https://nominatim.openstreetmap.org/search"

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// GeocodeCenter resolves a place name to a coordinate using the OSM
// Nominatim API. It is used to seed the initial map centre.
func GeocodeCenter(ctx context.Context, place string) (model.LatLng, string, error) {
	u := NominatimURL + "?" + url.Values{
		"q":      {place},
		"format": {"json"},
		"limit":  {"1"},
	}.Encode()

	client := &http.Client{Timeout: 10 * time.Second}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return model.LatLng{}, "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "markview/0.1 (map marker viewer)")

	resp, err := client.Do(req)
	if err != nil {
		return model.LatLng{}, "", fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.LatLng{}, "", fmt.Errorf("geocoding returned status %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return model.LatLng{}, "", fmt.Errorf("decoding geocoding response: %w", err)
	}

	if len(results) == 0 {
		return model.LatLng{}, "", fmt.Errorf("place %q not found", place)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return model.LatLng{}, "", fmt.Errorf("invalid latitude %q from geocoder", results[0].Lat)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return model.LatLng{}, "", fmt.Errorf("invalid longitude %q from geocoder", results[0].Lon)
	}

	return model.LatLng{Lat: lat, Lng: lon}, results[0].DisplayName, nil
}
