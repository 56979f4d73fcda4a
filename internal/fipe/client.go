package fipe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const maxDiagnosticBody = 4 << 10

// Client performs authenticated GETs against the pricing API.
type Client struct {
	httpClient *http.Client
	token      string
	limiter    *rate.Limiter
	log        *logrus.Entry
}

type ClientOptions struct {
	Token   string
	Timeout time.Duration
	// RateLimit is the outbound request ceiling per second. Zero disables it.
	RateLimit float64
	Transport http.RoundTripper
}

type loggingTransport struct {
	next http.RoundTripper
	log  *logrus.Entry
}

func NewClient(logger *logrus.Logger, opts ClientOptions) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	next := opts.Transport
	if next == nil {
		next = http.DefaultTransport
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: &loggingTransport{next: next, log: logger.WithField("component", "fipe_transport")},
		},
		token: opts.Token,
		log:   logger.WithField("component", "fipe_client"),
	}
	if opts.RateLimit > 0 {
		burst := int(opts.RateLimit)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return c
}

// Get returns the body of a successful response. Any transport failure or
// non-2xx status is logged and reported as ErrUpstreamUnavailable.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	log := c.log.WithField("url", url)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			log.WithError(err).Warn("Outbound rate limiter wait aborted")
			return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "FipeGateway/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Error("Lookup request failed")
		return nil, ErrUpstreamUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxDiagnosticBody))
		log.WithFields(logrus.Fields{
			"status_code": resp.StatusCode,
			"body":        string(body),
		}).Error("Lookup service returned an error")
		return nil, ErrUpstreamUnavailable
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.WithError(err).Error("Failed to read lookup response")
		return nil, ErrUpstreamUnavailable
	}
	return body, nil
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	log := t.log.WithFields(logrus.Fields{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		log.WithError(err).Error("HTTP request failed")
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"status_code": resp.StatusCode,
		"duration":    time.Since(start),
	}).Debug("HTTP request completed")
	return resp, nil
}
