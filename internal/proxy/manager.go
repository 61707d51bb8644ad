package proxy

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/proxy"
)

// Manager is an http.RoundTripper that rotates outbound requests over the
// configured proxies. With no proxies it dials directly.
type Manager struct {
	transports []*http.Transport
	mu         sync.Mutex
	proxyIndex int
}

// DefaultTransport is the pooled transport every route is built from.
func DefaultTransport() *http.Transport {
	return &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		ForceAttemptHTTP2:   true,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}
}

// NewManager builds one transport per proxy URL. Supported schemes are http,
// https and socks5.
func NewManager(proxyURLs []string) (*Manager, error) {
	m := &Manager{}
	for _, raw := range proxyURLs {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		t, err := transportFor(raw)
		if err != nil {
			return nil, err
		}
		m.transports = append(m.transports, t)
	}
	if len(m.transports) == 0 {
		m.transports = []*http.Transport{DefaultTransport()}
	}
	return m, nil
}

func transportFor(proxyAddr string) (*http.Transport, error) {
	u, err := url.Parse(proxyAddr)
	if err != nil {
		return nil, fmt.Errorf("parse proxy url: %w", err)
	}

	base := DefaultTransport()
	switch u.Scheme {
	case "http", "https":
		base.Proxy = http.ProxyURL(u)
	case "socks5":
		var auth *proxy.Auth
		if u.User != nil {
			pass, _ := u.User.Password()
			auth = &proxy.Auth{User: u.User.Username(), Password: pass}
		}
		dialer, err := proxy.SOCKS5("tcp", u.Host, auth, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("socks5 proxy: %w", err)
		}
		dc, ok := dialer.(proxy.ContextDialer)
		if !ok {
			return nil, fmt.Errorf("socks5: context dialer not supported")
		}
		base.DialContext = dc.DialContext
	default:
		return nil, fmt.Errorf("unsupported proxy scheme: %q", u.Scheme)
	}
	return base, nil
}

// Len is the number of routes in rotation.
func (m *Manager) Len() int { return len(m.transports) }

// next returns a transport, rotating sequentially.
func (m *Manager) next() *http.Transport {
	if len(m.transports) == 1 {
		return m.transports[0]
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.transports[m.proxyIndex]
	m.proxyIndex = (m.proxyIndex + 1) % len(m.transports)
	return t
}

func (m *Manager) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.next().RoundTrip(req)
}

// CloseIdleConnections releases pooled connections on every route.
func (m *Manager) CloseIdleConnections() {
	for _, t := range m.transports {
		t.CloseIdleConnections()
	}
}
