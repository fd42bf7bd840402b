package client

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"github.com/lunehart/esstream/pkg/token"
)

// Interface is the minimal Elasticsearch client interface the rest of
// the library consumes.
type Interface interface {
	// RoundTrip sends the request and returns the response without
	// interpreting the status code. Callers that parse the body for an
	// application-level error field want the body even on a 4xx/5xx.
	RoundTrip(ctx context.Context, r Request) (*http.Response, error)

	// Do sends the request and fails on a non-2xx status, reading the
	// body into the error message.
	Do(ctx context.Context, r Request) (*http.Response, error)

	// BaseURL returns the cluster base URL.
	BaseURL() string
}

type Client struct {
	HTTPClient *http.Client

	baseURL string
	token   token.Provider
	log     zerolog.Logger
}

type Option func(c *Client)

// WithToken sets the provider for the API key sent on every request.
func WithToken(tp token.Provider) Option {
	return func(c *Client) {
		c.token = tp
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.HTTPClient = hc
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithCA trusts the given PEM bundle instead of the system pool. Used
// for clusters behind self-signed certificates.
func WithCA(ca []byte) Option {
	return func(c *Client) {
		certPool := x509.NewCertPool()
		certPool.AppendCertsFromPEM(ca)
		c.HTTPClient.Transport = &http.Transport{TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
			RootCAs:    certPool,
		}}
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		HTTPClient: &http.Client{},
		log:        zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}

	return c
}

// NewFromEnv creates a Client from the conventional environment
// variables: ELASTICSEARCH_URL for the cluster address, and optionally
// ELASTICSEARCH_API_KEY_FILE for a watched API key file.
func NewFromEnv() (*Client, error) {
	url := os.Getenv("ELASTICSEARCH_URL")
	if len(url) == 0 {
		return nil, fmt.Errorf("unable to load configuration, ELASTICSEARCH_URL must be defined")
	}

	opts := []Option{}
	if keyFile := os.Getenv("ELASTICSEARCH_API_KEY_FILE"); len(keyFile) != 0 {
		tp, err := token.NewFile(keyFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithToken(tp))
	}

	return New(url, opts...), nil
}

func (c *Client) RoundTrip(ctx context.Context, r Request) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, r.Method, c.baseURL+r.URL(), r.Body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	if r.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if key := c.token.Token(); len(key) > 0 {
			req.Header.Set("Authorization", "ApiKey "+key)
		}
	}

	c.log.Debug().Str("method", r.Method).Str("url", r.URL()).Msg("request")

	return c.HTTPClient.Do(req)
}

func (c *Client) Do(ctx context.Context, r Request) (*http.Response, error) {
	resp, err := c.RoundTrip(ctx, r)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 226 {
		defer resp.Body.Close()
		errmsg, _ := io.ReadAll(resp.Body)
		return resp, fmt.Errorf("invalid response code %d for request url %q: %s", resp.StatusCode, r.URL(), errmsg)
	}

	return resp, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}
