package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/proxy"
	"h12.io/socks"
)

// EgressKind is the protocol family of an egress path.
type EgressKind int

const (
	EgressDirect EgressKind = iota
	EgressHTTP
	EgressSOCKS
)

func (k EgressKind) String() string {
	switch k {
	case EgressHTTP:
		return "http"
	case EgressSOCKS:
		return "socks"
	default:
		return "direct"
	}
}

var ErrUnsupportedEgress = errors.New("unsupported egress")

// UnsupportedEgressError is returned for an egress URI whose scheme has no
// dialer. Fatal for the one request that needed it.
type UnsupportedEgressError struct {
	URI    string
	Scheme string
}

func (e *UnsupportedEgressError) Error() string {
	return fmt.Sprintf("unsupported egress scheme %q in %q", e.Scheme, e.URI)
}

func (e *UnsupportedEgressError) Is(target error) bool { return target == ErrUnsupportedEgress }

// Egress is a parsed egress endpoint. The zero value is direct egress.
type Egress struct {
	Kind EgressKind
	URI  string
	URL  *url.URL
}

// ParseEgress resolves a proxy URI once into its protocol family.
// The empty string means direct egress.
func ParseEgress(uri string) (Egress, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return Egress{Kind: EgressDirect}, nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		// "host:port" without a scheme does not even parse
		return Egress{}, &UnsupportedEgressError{URI: uri}
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return Egress{Kind: EgressHTTP, URI: uri, URL: u}, nil
	case "socks5", "socks5h", "socks4", "socks4a":
		return Egress{Kind: EgressSOCKS, URI: uri, URL: u}, nil
	default:
		return Egress{}, &UnsupportedEgressError{URI: uri, Scheme: u.Scheme}
	}
}

func baseTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}
}

// Transport builds a round tripper that sends every request through e.
func (e Egress) Transport() (http.RoundTripper, error) {
	t := baseTransport()
	switch e.Kind {
	case EgressDirect:
		return t, nil
	case EgressHTTP:
		t.Proxy = http.ProxyURL(e.URL)
		return t, nil
	case EgressSOCKS:
		if isSOCKS4(e.URL) {
			t.Proxy = nil
			t.DialContext = socks4Dialer(e.URL)
			return t, nil
		}
		dialer, err := proxy.FromURL(e.URL, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("socks dialer %s: %w", e.URI, err)
		}
		t.Proxy = nil
		if cd, ok := dialer.(proxy.ContextDialer); ok {
			t.DialContext = cd.DialContext
		} else {
			t.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			}
		}
		return t, nil
	default:
		return nil, &UnsupportedEgressError{URI: e.URI, Scheme: e.Kind.String()}
	}
}

func isSOCKS4(u *url.URL) bool {
	scheme := strings.ToLower(u.Scheme)
	return scheme == "socks4" || scheme == "socks4a"
}

// socks4Dialer dials through a SOCKS4 or SOCKS4a server. x/net/proxy only
// speaks SOCKS5. The dial ignores ctx, so it carries its own timeout.
func socks4Dialer(u *url.URL) func(context.Context, string, string) (net.Conn, error) {
	withTimeout := *u
	withTimeout.Scheme = strings.ToLower(u.Scheme)
	q := withTimeout.Query()
	if q.Get("timeout") == "" {
		q.Set("timeout", "10s")
		withTimeout.RawQuery = q.Encode()
	}
	dial := socks.Dial(withTimeout.String())
	return func(_ context.Context, network, addr string) (net.Conn, error) {
		return dial(network, addr)
	}
}
