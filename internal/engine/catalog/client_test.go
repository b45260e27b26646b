package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rendis/markview/internal/pkg/config"
)

func testClient(url string) *Client {
	return NewClient(config.CatalogConfig{
		BaseURL:  url,
		Key:      "k",
		RegionID: 32,
		PageSize: 1000,
		Timeout:  2 * time.Second,
	})
}

func TestSearch(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"meta":{"code":200},"result":{"total":3,"items":[
			{"id":"a","lat":55.75,"lon":37.61},
			{"id":"b","name":"Cafe","lat":55.76,"lon":37.62},
			{"id":"a","lat":55.75,"lon":37.61},
			{"id":"c","lat":0,"lon":0}
		]}}`))
	}))
	defer srv.Close()

	markers, err := testClient(srv.URL).Search(context.Background(), "кафе")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != searchPath {
		t.Errorf("unexpected path %q", gotPath)
	}
	for _, want := range []string{"page_size=1000", "region_id=32", "key=k", "q=%D0%BA"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("expected %q in query %q", want, gotQuery)
		}
	}

	if len(markers) != 2 {
		t.Fatalf("expected 2 markers, got %d: %+v", len(markers), markers)
	}
	if markers[0].ID != "a" || markers[1].ID != "b" || markers[1].Name != "Cafe" {
		t.Errorf("unexpected markers %+v", markers)
	}
}

func TestSearch_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"meta":{"code":404,"error":{"type":"itemNotFound","message":"Results not found"}}}`))
	}))
	defer srv.Close()

	markers, err := testClient(srv.URL).Search(context.Background(), "nothing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if markers == nil || len(markers) != 0 {
		t.Errorf("expected empty non-nil result, got %+v", markers)
	}
}

func TestSearch_StatusError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   int
	}{
		{"http error", http.StatusInternalServerError, "oops", 500},
		{"api error", http.StatusOK, `{"meta":{"code":403,"error":{"message":"bad key"}}}`, 403},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := testClient(srv.URL).Search(context.Background(), "x")
			var se *StatusError
			if !errors.As(err, &se) {
				t.Fatalf("expected StatusError, got %v", err)
			}
			if se.StatusCode != tt.want {
				t.Errorf("expected status %d, got %d", tt.want, se.StatusCode)
			}
		})
	}
}

func TestParseSearchResponse_Malformed(t *testing.T) {
	if _, err := ParseSearchResponse([]byte("not json"), http.StatusOK); err == nil {
		t.Error("expected decode error")
	}
}
