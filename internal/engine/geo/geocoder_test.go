package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGeocodeCenter(t *testing.T) {
	var gotQ string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQ = r.URL.Query().Get("q")
		w.Write([]byte(`[{"lat":"55.7539","lon":"37.6208","display_name":"Red Square, Moscow"}]`))
	}))
	defer srv.Close()

	old := NominatimURL
	NominatimURL = srv.URL
	defer func() { NominatimURL = old }()

	ll, name, err := GeocodeCenter(context.Background(), "Red Square")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQ != "Red Square" {
		t.Errorf("unexpected query %q", gotQ)
	}
	if ll.Lat != 55.7539 || ll.Lng != 37.6208 || name != "Red Square, Moscow" {
		t.Errorf("unexpected result %+v %q", ll, name)
	}
}

func TestGeocodeCenter_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	old := NominatimURL
	NominatimURL = srv.URL
	defer func() { NominatimURL = old }()

	if _, _, err := GeocodeCenter(context.Background(), "nowhere"); err == nil {
		t.Error("expected error for unknown place")
	}
}
