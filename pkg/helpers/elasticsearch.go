package helpers

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
)

// ESOptions configures the contact search client.
type ESOptions struct {
	Addresses []string
	Username  string
	Password  string
	// MaxRetries on 502/503/504 and network errors; 0 disables retries.
	MaxRetries int
}

// NewESClient creates an Elasticsearch client with bounded dial and header
// timeouts and optional basic auth.
func NewESClient(opts ESOptions) (*elasticsearch.Client, error) {
	cfg := elasticsearch.Config{
		Addresses:    opts.Addresses,
		Username:     opts.Username,
		Password:     opts.Password,
		DisableRetry: opts.MaxRetries <= 0,
		MaxRetries:   opts.MaxRetries,
		RetryBackoff: func(attempt int) time.Duration { return time.Duration(attempt) * 100 * time.Millisecond },
		Transport: &http.Transport{
			MaxIdleConnsPerHost:   10,
			ResponseHeaderTimeout: 5 * time.Second,
			TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
			DialContext:           (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		},
	}
	return elasticsearch.NewClient(cfg)
}
