package fipe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"time"

	"github.com/sdko-org/fipe-gateway/internal/cache"
	"github.com/sirupsen/logrus"
)

// DefaultTTL is the freshness window of a cached lookup.
const DefaultTTL = 24 * time.Hour

type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Gateway sits between the lookup endpoints and the pricing API. Fresh
// entries are served from the store; everything else goes upstream once and
// overwrites the stored entry. Concurrent misses on one key are not
// coalesced.
type Gateway struct {
	store  cache.Store
	client Fetcher
	ttl    time.Duration
	now    func() time.Time
	log    *logrus.Entry
}

type GatewayOption func(*Gateway)

func WithTTL(ttl time.Duration) GatewayOption {
	return func(g *Gateway) {
		if ttl > 0 {
			g.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) GatewayOption {
	return func(g *Gateway) { g.now = now }
}

func NewGateway(logger *logrus.Logger, store cache.Store, client Fetcher, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		store:  store,
		client: client,
		ttl:    DefaultTTL,
		now:    time.Now,
		log:    logger.WithField("component", "fipe_gateway"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// FetchWithCache decodes the payload for key into v, from the store when
// the entry is younger than the TTL and from rawURL otherwise. A payload
// that does not decode into v is ErrDecodeFailure and is not stored.
func (g *Gateway) FetchWithCache(ctx context.Context, key, rawURL string, v any) error {
	if key == "" {
		return fmt.Errorf("%w: empty cache key", ErrInvalidRequest)
	}
	if u, err := url.Parse(rawURL); err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%w: url %q is not absolute", ErrInvalidRequest, rawURL)
	}

	log := g.log.WithField("key", key)
	now := g.now()

	entry, ok, err := g.store.Get(ctx, key)
	if err != nil {
		log.WithError(err).Warn("Cache lookup failed, falling back to upstream")
	}
	if ok && now.Sub(entry.StoredAt) < g.ttl {
		if err := decode(entry.Payload, v); err == nil {
			log.Debug("Serving lookup from cache")
			return nil
		}
		log.Warn("Cached payload no longer decodes, refetching")
		reset(v)
	}

	log.WithField("source", "upstream").Debug("Fetching lookup from upstream")
	body, err := g.client.Get(ctx, rawURL)
	if err != nil {
		return err
	}

	if err := decode(body, v); err != nil {
		log.WithError(err).Error("Lookup response failed validation")
		return err
	}

	if err := g.store.Set(ctx, cache.Entry{Key: key, StoredAt: now, Payload: body}); err != nil {
		log.WithError(err).Error("Failed to cache lookup response")
	}
	return nil
}

func decode(body []byte, v any) error {
	if bytes.Equal(bytes.TrimSpace(body), []byte("null")) {
		return fmt.Errorf("%w: null payload", ErrDecodeFailure)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", ErrDecodeFailure, err)
	}
	if val, ok := v.(validator); ok {
		if err := val.validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrDecodeFailure, err)
		}
	}
	return nil
}

// reset zeroes the value v points to so a failed decode leaves nothing behind.
func reset(v any) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv.Elem().Set(reflect.Zero(rv.Elem().Type()))
	}
}
