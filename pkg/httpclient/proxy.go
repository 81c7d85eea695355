package httpclient

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

// socks5h asks the proxy to resolve hostnames. x/net/proxy never resolves
// locally, so both SOCKS schemes share one dialer.
var proxySchemes = []string{"http", "https", "socks5", "socks5h"}

// defaultSOCKSPort is used when a SOCKS proxy URL has no port.
const defaultSOCKSPort = "1080"

// ValidateProxyURL reports whether raw can be used as Config.Proxy.
// An empty string means no proxy and is valid.
func ValidateProxyURL(raw string) error {
	_, err := parseProxy(raw)
	return err
}

// parseProxy returns nil, nil for an empty raw. A missing scheme means http.
func parseProxy(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, nil
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProxy, err)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if !slices.Contains(proxySchemes, u.Scheme) {
		return nil, fmt.Errorf("%w: unsupported scheme %q (use %s)", ErrInvalidProxy, u.Scheme, strings.Join(proxySchemes, ", "))
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidProxy)
	}
	return u, nil
}

func isSOCKS(u *url.URL) bool {
	return strings.HasPrefix(u.Scheme, "socks5")
}

// applyProxy routes t through raw. HTTP(S) proxies go through t.Proxy and
// SOCKS proxies replace t.DialContext. An unusable raw leaves t direct.
func applyProxy(t *http.Transport, raw string, dialTimeout time.Duration) {
	u, err := parseProxy(raw)
	if err != nil || u == nil {
		return
	}
	if !isSOCKS(u) {
		t.Proxy = http.ProxyURL(u)
		return
	}
	if dial, err := socksDialContext(u, dialTimeout); err == nil {
		t.DialContext = dial
	}
}

type dialContextFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// socksDialContext dials through the SOCKS5 proxy in u. Dial failures wrap
// ErrProxyConnect so Classify reports them as proxy errors.
func socksDialContext(u *url.URL, dialTimeout time.Duration) (dialContextFunc, error) {
	addr := u.Host
	if u.Port() == "" {
		addr = net.JoinHostPort(u.Hostname(), defaultSOCKSPort)
	}

	var auth *proxy.Auth
	if u.User != nil {
		password, _ := u.User.Password()
		auth = &proxy.Auth{User: u.User.Username(), Password: password}
	}

	d, err := proxy.SOCKS5("tcp", addr, auth, &net.Dialer{Timeout: dialTimeout})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProxy, err)
	}
	cd, ok := d.(proxy.ContextDialer)
	if !ok {
		return nil, fmt.Errorf("%w: SOCKS dialer has no DialContext", ErrInvalidProxy)
	}

	return func(ctx context.Context, network, target string) (net.Conn, error) {
		conn, err := cd.DialContext(ctx, network, target)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrProxyConnect, err)
		}
		return conn, nil
	}, nil
}
