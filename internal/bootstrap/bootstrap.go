// Package bootstrap turns the local config endpoint into a ready platform
// client handle.
package bootstrap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mfukui/actlog/internal/platform"
)

// ErrConfigUnavailable covers every way the config fetch can fail: transport
// error, non-2xx response, malformed body, or missing fields. Callers must
// treat all subsequent auth/data operations as unavailable.
var ErrConfigUnavailable = errors.New("bootstrap: configuration unavailable")

// Bootstrapper fetches {serviceUrl, serviceKey} from the collaborator and
// memoizes the resulting client. Initialize is safe for concurrent use and
// performs the network call at most once per success; a failed attempt may
// be retried.
type Bootstrapper struct {
	endpoint string
	http     *http.Client

	mu     sync.Mutex
	client *platform.Client
}

func New(configEndpoint string) *Bootstrapper {
	return &Bootstrapper{
		endpoint: strings.TrimRight(configEndpoint, "/"),
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

// NewWithHTTPClient is used by tests to supply a custom transport.
func NewWithHTTPClient(configEndpoint string, hc *http.Client) *Bootstrapper {
	b := New(configEndpoint)
	b.http = hc
	return b
}

// Initialize returns the memoized client, fetching the configuration on
// first use. The client, once constructed, lives for the remainder of the
// process and is never torn down.
func (b *Bootstrapper) Initialize(ctx context.Context) (*platform.Client, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.client != nil {
		return b.client, nil
	}

	cfg, err := b.fetch(ctx)
	if err != nil {
		return nil, err
	}

	b.client = platform.New(cfg.ServiceURL, cfg.ServiceKey)
	return b.client, nil
}

type remoteConfig struct {
	ServiceURL string `json:"serviceUrl"`
	ServiceKey string `json:"serviceKey"`
}

func (b *Bootstrapper) fetch(ctx context.Context) (*remoteConfig, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.endpoint+"/api/config", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigUnavailable, err)
	}

	resp, err := b.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: config endpoint returned %d", ErrConfigUnavailable, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigUnavailable, err)
	}

	var cfg remoteConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigUnavailable, err)
	}
	if cfg.ServiceURL == "" || cfg.ServiceKey == "" {
		return nil, fmt.Errorf("%w: serviceUrl or serviceKey missing", ErrConfigUnavailable)
	}
	return &cfg, nil
}
