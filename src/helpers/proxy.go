package helpers

import (
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"confluence-engine/src/logger"
)

// -----------------------------------------------------------------------------
// ProxyManager rotates outbound proxies and user agents for the network
// layer. With no proxies configured every method degrades to direct
// requests with a rotating User-Agent, which is the common deployment.
// -----------------------------------------------------------------------------

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.114 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:89.0) Gecko/20100101 Firefox/89.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.1.1 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.114 Safari/537.36",
	"Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:88.0) Gecko/20100101 Firefox/88.0",
}

type ProxyManager struct {
	proxies    []string
	index      int
	mu         sync.Mutex
	logger     *logger.Logger
	httpClient *http.Client
}

// -----------------------------------------------------------------------------

func NewProxyManager(proxies []string) *ProxyManager {
	var valid []string
	for _, p := range proxies {
		if ValidateProxy(p) {
			valid = append(valid, FormatProxy(p))
		}
	}

	return &ProxyManager{
		proxies: valid,
		logger:  logger.NewLogger("", "ProxyManager"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// -----------------------------------------------------------------------------

func (pm *ProxyManager) GetCurrentProxy() (string, error) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if len(pm.proxies) == 0 {
		return "", nil
	}
	return pm.proxies[pm.index], nil
}

// -----------------------------------------------------------------------------

func (pm *ProxyManager) RotateProxy() {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if len(pm.proxies) <= 1 {
		return
	}
	pm.index = (pm.index + 1) % len(pm.proxies)
	pm.logger.Info("Rotating proxy to: %s", pm.proxies[pm.index])
}

// -----------------------------------------------------------------------------

func (pm *ProxyManager) HasProxies() bool {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return len(pm.proxies) > 0
}

// -----------------------------------------------------------------------------

func (pm *ProxyManager) GetUserAgent() string {
	return userAgents[rand.Intn(len(userAgents))]
}

// -----------------------------------------------------------------------------

var proxyRowRe = regexp.MustCompile(`<tr><td>(\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})</td><td>(\d+)</td>`)

// RefreshProxies replaces the pool with fresh entries scraped from
// sslproxies.org. Called by the network layer after repeated blocks.
func (pm *ProxyManager) RefreshProxies() (int, error) {
	pm.logger.Info("Refreshing proxies from https://www.sslproxies.org/...")

	req, err := http.NewRequest("GET", "https://www.sslproxies.org/", nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", pm.GetUserAgent())

	resp, err := pm.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}

	var fresh []string
	for _, match := range proxyRowRe.FindAllStringSubmatch(string(body), -1) {
		fresh = append(fresh, fmt.Sprintf("http://%s:%s", match[1], match[2]))
	}
	if len(fresh) == 0 {
		return 0, fmt.Errorf("no proxies found on page")
	}

	rand.Shuffle(len(fresh), func(i, j int) {
		fresh[i], fresh[j] = fresh[j], fresh[i]
	})
	if len(fresh) > 50 {
		fresh = fresh[:50]
	}

	pm.mu.Lock()
	pm.proxies = fresh
	pm.index = 0
	pm.mu.Unlock()

	pm.logger.Info("Found and updated %d proxies", len(fresh))
	return len(fresh), nil
}

// -----------------------------------------------------------------------------

// ValidateProxy checks that a proxy string is roughly usable. A missing
// scheme is allowed; FormatProxy fills it in.
func ValidateProxy(proxyStr string) bool {
	u, err := url.Parse(proxyStr)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https" || u.Scheme == "socks5" || u.Scheme == "")
}

// -----------------------------------------------------------------------------

// FormatProxy ensures the proxy has a scheme.
func FormatProxy(proxyStr string) string {
	if !strings.Contains(proxyStr, "://") {
		return "http://" + proxyStr
	}
	return proxyStr
}
