package proxy

import (
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
}

// Manager handles the rotation of outbound proxies and user agents.
type Manager struct {
	proxies    []*url.URL
	userAgents []string
	mu         sync.Mutex
	proxyIndex int
	rnd        *rand.Rand
}

// NewManager builds a manager from proxy URLs and an optional fixed user
// agent. Unparsable proxy entries are skipped.
func NewManager(proxies []string, userAgent string) *Manager {
	m := &Manager{
		userAgents: defaultUserAgents,
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if ua := strings.TrimSpace(userAgent); ua != "" {
		m.userAgents = []string{ua}
	}
	for _, p := range proxies {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		u, err := url.Parse(p)
		if err != nil || u.Host == "" {
			continue
		}
		m.proxies = append(m.proxies, u)
	}
	return m
}

// GetProxy returns the next proxy in the list, or nil when none are configured.
func (m *Manager) GetProxy() *url.URL {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.proxies) == 0 {
		return nil
	}
	p := m.proxies[m.proxyIndex]
	m.proxyIndex = (m.proxyIndex + 1) % len(m.proxies)
	return p
}

// ProxyFunc adapts the rotation to http.Transport.Proxy.
func (m *Manager) ProxyFunc(*http.Request) (*url.URL, error) {
	return m.GetProxy(), nil
}

// GetUserAgent returns a random user agent string.
func (m *Manager) GetUserAgent() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.userAgents[m.rnd.Intn(len(m.userAgents))]
}
