// Package api implements the read-only client for a Nightscout-compatible
// remote. Two endpoints are used: the v2 combined-properties endpoint for the
// current snapshot and the v1 entries endpoint for short-term history.
package api

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/glucodeck/glucodeck/internal/models"
)

const propertiesPath = "/api/v2/properties/bgnow,buckets,delta,direction"

var (
	ErrRequest = errors.New("error making api request")
	ErrStatus  = errors.New("error status from api")
)

// Client fetches snapshot and history data from a single remote base URL.
type Client struct {
	baseURL      string
	secretDigest string
	http         *http.Client
	limiter      *rate.Limiter
	logger       *logrus.Logger
}

// NewClient builds a client for the given base URL. When secret is non-empty
// its hex SHA-1 digest is sent as the API-SECRET header on every request; the
// raw secret never leaves the process. The remote mandates SHA-1 here, so no
// stronger hash can be substituted.
func NewClient(baseURL, secret string, timeout time.Duration, logger *logrus.Logger) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(5, 10),
		logger:  logger,
	}
	if secret != "" {
		sum := sha1.Sum([]byte(secret))
		c.secretDigest = hex.EncodeToString(sum[:])
	}
	return c
}

// FetchSnapshot retrieves the current combined-properties snapshot.
func (c *Client) FetchSnapshot(ctx context.Context) (*models.Snapshot, error) {
	var snap models.Snapshot
	if err := c.get(ctx, c.baseURL+propertiesPath, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// FetchEntries retrieves up to count history samples, newest first as the
// remote emits them. Callers sort before plotting.
func (c *Client) FetchEntries(ctx context.Context, count int) ([]models.Entry, error) {
	url := fmt.Sprintf("%s/api/v1/entries.json?count=%d", c.baseURL, count)
	var entries []models.Entry
	if err := c.get(ctx, url, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) get(ctx context.Context, url string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrRequest, err)
	}

	requestID := uuid.NewString()
	c.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"url":        url,
	}).Debug("Fetching from remote")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequest, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.secretDigest != "" {
		req.Header.Set("API-SECRET", c.secretDigest)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: got %d", ErrStatus, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %v", err)
	}
	return nil
}
