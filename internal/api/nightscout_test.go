package api

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestFetchSnapshot(t *testing.T) {
	var gotPath, gotSecret string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotSecret = r.Header.Get("API-SECRET")
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"bgnow": {"mean": 113, "last": 113, "mills": 1700000000000},
			"buckets": [{"index": 0, "fromMills": 1700000000000, "toMills": 1699999700000}],
			"delta": {"display": "+2", "scaled": 2},
			"direction": {"value": "Flat"}
		}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", "hunter2", 5*time.Second, testLogger())

	snap, err := client.FetchSnapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/api/v2/properties/bgnow,buckets,delta,direction", gotPath)
	sum := sha1.Sum([]byte("hunter2"))
	assert.Equal(t, hex.EncodeToString(sum[:]), gotSecret)
	assert.Equal(t, float64(113), snap.BGNow.Last)
	assert.Equal(t, "Flat", snap.Direction.Value)
}

func TestFetchSnapshotNoSecretHeader(t *testing.T) {
	var hasHeader bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasHeader = r.Header["Api-Secret"]
		io.WriteString(w, `{"bgnow": {"last": 100, "mills": 1}}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", 5*time.Second, testLogger())
	_, err := client.FetchSnapshot(context.Background())
	require.NoError(t, err)
	assert.False(t, hasHeader, "API-SECRET must be absent when no secret is configured")
}

func TestFetchEntries(t *testing.T) {
	var gotCount string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/entries.json", r.URL.Path)
		gotCount = r.URL.Query().Get("count")
		io.WriteString(w, `[
			{"sgv": 110, "date": 1700000000000, "direction": "Flat"},
			{"sgv": 115, "date": 1699999700000, "direction": "FortyFiveUp"}
		]`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", 5*time.Second, testLogger())

	entries, err := client.FetchEntries(context.Background(), 96)
	require.NoError(t, err)

	assert.Equal(t, "96", gotCount)
	require.Len(t, entries, 2)
	assert.Equal(t, float64(110), entries[0].SGV)
	assert.Equal(t, "FortyFiveUp", entries[1].Direction)
}

func TestFetchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", 5*time.Second, testLogger())

	_, err := client.FetchSnapshot(context.Background())
	assert.ErrorIs(t, err, ErrStatus)

	_, err = client.FetchEntries(context.Background(), 12)
	assert.ErrorIs(t, err, ErrStatus)
}

func TestFetchTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := NewClient(srv.URL, "", time.Second, testLogger())

	_, err := client.FetchSnapshot(context.Background())
	assert.ErrorIs(t, err, ErrRequest)
}

func TestFetchBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"bgnow": `)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", 5*time.Second, testLogger())

	_, err := client.FetchSnapshot(context.Background())
	assert.Error(t, err)
}
