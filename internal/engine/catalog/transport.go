package catalog

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"net/url"
	"time"

	utls "github.com/refraction-networking/utls"
)

// newTransport returns a transport whose TLS handshake looks like Chrome's.
// With a proxy the handshake is left to the standard library, since the
// proxy tunnel is negotiated by http.Transport itself.
func newTransport(proxy string) *http.Transport {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	t := &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			tlsConn, err := handshake(ctx, conn, addr)
			if err != nil {
				conn.Close()
				return nil, err
			}
			return tlsConn, nil
		},
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	if proxy == "" {
		return t
	}
	proxyURL, err := url.Parse(proxy)
	if err != nil {
		return t
	}
	t.Proxy = http.ProxyURL(proxyURL)
	t.DialTLSContext = nil
	t.TLSClientConfig = &tls.Config{}
	return t
}

func handshake(ctx context.Context, conn net.Conn, addr string) (*utls.UConn, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	spec, err := chromeHello()
	if err != nil {
		return nil, err
	}
	tlsConn := utls.UClient(conn, &utls.Config{ServerName: host}, utls.HelloCustom)
	if err := tlsConn.ApplyPreset(&spec); err != nil {
		return nil, err
	}
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		return nil, err
	}
	return tlsConn, nil
}

// chromeHello is Chrome's ClientHello with ALPN limited to http/1.1.
// http.Transport only speaks HTTP/2 over connections it dials itself, so a
// server that picked h2 on this one would get HTTP/1.1 frames.
func chromeHello() (utls.ClientHelloSpec, error) {
	spec, err := utls.UTLSIdToSpec(utls.HelloChrome_Auto)
	if err != nil {
		return utls.ClientHelloSpec{}, err
	}
	for _, ext := range spec.Extensions {
		if alpn, ok := ext.(*utls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
		}
	}
	return spec, nil
}
