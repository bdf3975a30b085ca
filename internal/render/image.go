package render

// The host accepts images as data URIs. Renders repeat every minute even when
// nothing changed, so encoded payloads are kept in an in-memory LRU keyed by
// markup and unchanged faces skip re-encoding.

import (
	"encoding/base64"

	lru "github.com/hashicorp/golang-lru"
)

const dataURIPrefix = "data:image/svg+xml;base64,"

// Encoder converts vector markup into the embeddable image payload the host
// expects.
type Encoder struct {
	cache *lru.Cache
}

// NewEncoder creates an encoder with an LRU of the given size.
func NewEncoder(size int) (*Encoder, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &Encoder{cache: cache}, nil
}

// DataURI returns the base64 data URI for the markup, served from cache when
// the identical markup was encoded before.
func (e *Encoder) DataURI(markup string) string {
	if cached, ok := e.cache.Get(markup); ok {
		return cached.(string)
	}
	uri := dataURIPrefix + base64.StdEncoding.EncodeToString([]byte(markup))
	e.cache.Add(markup, uri)
	return uri
}
