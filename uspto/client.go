// Package uspto provides a retrying client for the USPTO Open Data Portal
// patent applications search API with configurable secret management.
package uspto

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/letmevibethatforyou/patentsearch"
)

const (
	// DefaultBaseURL is the production search endpoint.
	DefaultBaseURL = patentsearch.SearchEndpoint

	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 3
	defaultRetryDelay = 2 * time.Second
)

// Secrets holds the USPTO API credential.
type Secrets struct {
	// APIKey is sent in the X-API-KEY header on every request.
	APIKey string `json:"api_key"`
}

// FetchSecrets is a function type that retrieves the API credential.
// It allows for different secret retrieval strategies (static, environment
// variables, AWS Secrets Manager).
type FetchSecrets func() (Secrets, error)

// StaticSecrets returns a FetchSecrets function that provides a static key.
// This is useful for testing or when the key is known at compile time.
func StaticSecrets(apiKey string) FetchSecrets {
	return func() (Secrets, error) {
		return Secrets{APIKey: apiKey}, nil
	}
}

// EnvSecrets returns a FetchSecrets function reading USPTO_API_KEY.
func EnvSecrets() FetchSecrets {
	return func() (Secrets, error) {
		apiKey := os.Getenv("USPTO_API_KEY")
		if apiKey == "" {
			return Secrets{}, errors.Mark(
				errors.New("USPTO_API_KEY environment variable is not set"),
				patentsearch.ErrMissingCredentials,
			)
		}
		return Secrets{APIKey: apiKey}, nil
	}
}

// Client issues POST requests against the search endpoint. The credential is
// fetched lazily on first use; a missing key fails closed before any network
// I/O happens.
type Client struct {
	baseURL    string
	httpClient *http.Client
	getSecrets func() (Secrets, error)
	tracer     trace.Tracer
	maxRetries int
	retryDelay time.Duration
	sleep      func(time.Duration)
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL points the client at a different endpoint.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithMaxRetries sets how many attempts a single call may take.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxRetries = n
		}
	}
}

// WithRetryDelay sets the default delay between retry attempts.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.retryDelay = d
		}
	}
}

// NewClient creates a USPTO API client.
func NewClient(fetchSecrets FetchSecrets, opts ...ClientOption) *Client {
	getSecrets := sync.OnceValues(func() (Secrets, error) {
		secrets, err := fetchSecrets()
		if err != nil {
			return Secrets{}, errors.Wrap(err, "failed to fetch secrets")
		}
		if secrets.APIKey == "" {
			return Secrets{}, patentsearch.ErrMissingCredentials
		}
		return secrets, nil
	})

	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		getSecrets: getSecrets,
		tracer:     otel.Tracer("patentsearch-uspto"),
		maxRetries: defaultMaxRetries,
		retryDelay: defaultRetryDelay,
		sleep:      time.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// credentials returns the cached API credential.
func (c *Client) credentials() (Secrets, error) {
	return c.getSecrets()
}

// do issues a single POST attempt with the request headers set.
func (c *Client) do(ctx context.Context, apiKey string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("X-API-KEY", apiKey)
	req.Header.Set("Content-Type", "application/json")
	return c.httpClient.Do(req)
}
