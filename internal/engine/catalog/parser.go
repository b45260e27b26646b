package catalog

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/samber/lo"

	"github.com/rendis/markview/internal/model"
)

type searchResponse struct {
	Meta struct {
		Code  int `json:"code"`
		Error *struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	} `json:"meta"`
	Result *struct {
		Total int        `json:"total"`
		Items []rawPoint `json:"items"`
	} `json:"result"`
}

type rawPoint struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// ParseSearchResponse decodes a marker search body. status is the HTTP
// status the body came with.
func ParseSearchResponse(body []byte, status int) ([]model.Marker, error) {
	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		if status == http.StatusNotFound {
			return nil, &StatusError{StatusCode: status}
		}
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	code := resp.Meta.Code
	if code == 0 {
		code = status
	}
	if code == http.StatusNotFound {
		return []model.Marker{}, nil
	}
	if code != http.StatusOK {
		e := &StatusError{StatusCode: code}
		if resp.Meta.Error != nil {
			e.Message = resp.Meta.Error.Message
		}
		return nil, e
	}
	if resp.Result == nil {
		return []model.Marker{}, nil
	}

	// points at 0,0 are placeholders without a location
	points := lo.Filter(resp.Result.Items, func(p rawPoint, _ int) bool {
		return p.Lat != 0 || p.Lon != 0
	})
	seen := make(map[string]struct{}, len(points))
	points = lo.Filter(points, func(p rawPoint, _ int) bool {
		if p.ID == "" {
			return true
		}
		if _, dup := seen[p.ID]; dup {
			return false
		}
		seen[p.ID] = struct{}{}
		return true
	})

	return lo.Map(points, func(p rawPoint, _ int) model.Marker {
		return model.Marker{ID: p.ID, Name: p.Name, Lat: p.Lat, Lon: p.Lon}
	}), nil
}
