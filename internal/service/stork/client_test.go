package stork

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"StorkPull/internal/domain/models"
	xhttp "StorkPull/pkg/http"
)

func newServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestSignedPrices(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, r.URL.Path, "/v1/stork_signed_prices")
		assert.Equal(t, r.Header.Get("Authorization"), "Bearer tok")
		assert.Equal(t, r.Header.Get("User-Agent"), DefaultUserAgent)
		assert.Equal(t, r.Header.Get("Origin"), DefaultOrigin)
		assert.Equal(t, r.Header.Get("Content-Type"), "")
		_, _ = w.Write([]byte(`{"data": {
			"ETHUSD": {"price": "2500.5", "timestamped_signature": {"msg_hash": "0xeth", "timestamp": 1700000000123456789, "signature": {"r": "1"}}},
			"BTCUSD": {"price": 64000, "timestamped_signature": {"msg_hash": "0xbtc", "timestamp": "1700000000000000000"}},
			"BAD":    {"price": "", "timestamped_signature": null}
		}}`))
	})

	c := New(srv.URL + "/v1/")
	points, err := c.SignedPrices(context.Background(), "tok")
	assert.Equal(t, err, nil)
	assert.Equal(t, len(points), 3)

	// sorted by asset
	assert.Equal(t, points[0].Asset, "BAD")
	assert.Equal(t, points[1].Asset, "BTCUSD")
	assert.Equal(t, points[2].Asset, "ETHUSD")

	assert.Equal(t, points[0].Price.Valid, false)
	assert.Equal(t, points[0].MsgHash, "")
	assert.Equal(t, points[0].Timestamp.IsZero(), true)

	assert.Equal(t, points[1].Price.Decimal.String(), "64000")
	assert.Equal(t, points[1].Timestamp, time.Unix(1700000000, 0).UTC())

	assert.Equal(t, points[2].MsgHash, "0xeth")
	assert.Equal(t, points[2].Price.Decimal.String(), "2500.5")
	assert.Equal(t, points[2].Timestamp, time.Unix(1700000000, 123456789).UTC())
	assert.Equal(t, string(points[2].Signature), `{"r": "1"}`)
}

func TestUserStats(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, r.URL.Path, "/me")
		_, _ = w.Write([]byte(`{"data": {"email": "a@x.io", "stats": {"stork_signed_prices_valid_count": 42, "stork_signed_prices_invalid_count": "3", "referral_usage_count": 0}}}`))
	})

	stats, err := New(srv.URL, WithUserAgent("ua/1")).UserStats(context.Background(), "tok")
	assert.Equal(t, err, nil)
	assert.Equal(t, stats.ValidCount, int64(42))
	assert.Equal(t, stats.InvalidCount, int64(3))
	assert.Equal(t, len(stats.Raw), 3)
}

func TestFetchFailureCarriesStatus(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"expired"}`))
	})

	_, err := New(srv.URL).SignedPrices(context.Background(), "tok")
	assert.Equal(t, errors.Is(err, models.ErrFetchFailure), true)

	var fe *models.FetchError
	assert.Equal(t, errors.As(err, &fe), true)
	assert.Equal(t, fe.Status, http.StatusUnauthorized)
	assert.Equal(t, fe.Op, "prices")
}

func TestSubmitValidation(t *testing.T) {
	var got validationRequest
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, r.Method, http.MethodPost)
		assert.Equal(t, r.URL.Path, "/stork_signed_prices/validations")
		assert.Equal(t, r.Header.Get("Content-Type"), "application/json")
		assert.Equal(t, json.NewDecoder(r.Body).Decode(&got), nil)
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	})

	err := New(srv.URL).SubmitValidation(context.Background(), "tok", "", "0xabc", true)
	assert.Equal(t, err, nil)
	assert.Equal(t, got, validationRequest{MsgHash: "0xabc", Valid: true})
}

func TestSubmitValidationThroughProxy(t *testing.T) {
	var hits int32
	proxySrv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		// a forward proxy sees the absolute target URL
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, r.URL.Host, "oracle.invalid")
		_, _ = w.Write([]byte(`{}`))
	})

	c := New("http://oracle.invalid/v1")
	for i := 0; i < 2; i++ {
		err := c.SubmitValidation(context.Background(), "tok", proxySrv.URL, "0xabc", false)
		assert.Equal(t, err, nil)
	}
	assert.Equal(t, atomic.LoadInt32(&hits), int32(2))
	assert.Equal(t, len(c.clients), 1)
}

func TestSubmitValidationUnsupportedEgress(t *testing.T) {
	err := New("http://oracle.invalid").SubmitValidation(context.Background(), "tok", "ftp://10.0.0.1:21", "0xabc", true)
	assert.Equal(t, errors.Is(err, xhttp.ErrUnsupportedEgress), true)
}
