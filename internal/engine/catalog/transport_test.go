package catalog

import (
	"net/http"
	"slices"
	"testing"

	utls "github.com/refraction-networking/utls"
)

func TestChromeHelloPinsHTTP1(t *testing.T) {
	spec, err := chromeHello()
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, ext := range spec.Extensions {
		if alpn, ok := ext.(*utls.ALPNExtension); ok {
			found = true
			if !slices.Equal(alpn.AlpnProtocols, []string{"http/1.1"}) {
				t.Errorf("ALPN = %v, want [http/1.1]", alpn.AlpnProtocols)
			}
		}
	}
	if !found {
		t.Error("hello has no ALPN extension")
	}
}

func TestNewTransport(t *testing.T) {
	tests := []struct {
		name       string
		proxy      string
		wantDialer bool
		wantProxy  bool
	}{
		{"direct", "", true, false},
		{"proxy", "http://127.0.0.1:3128", false, true},
		{"bad proxy ignored", "://nope", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTransport(tt.proxy)
			if got := tr.DialTLSContext != nil; got != tt.wantDialer {
				t.Errorf("fingerprinting dialer set = %v, want %v", got, tt.wantDialer)
			}
			if got := tr.Proxy != nil; got != tt.wantProxy {
				t.Errorf("proxy set = %v, want %v", got, tt.wantProxy)
			}
		})
	}
	var _ http.RoundTripper = newTransport("")
}
