package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fortify-index/mfi/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestSource(srv *httptest.Server, token string) *RESTSource {
	return NewRESTSource(RESTOptions{
		BaseURL:   srv.URL + "/api",
		Endpoint:  "ranking",
		Token:     token,
		UserAgent: "test-agent",
		Timeout:   5 * time.Second,
		Client:    srv.Client(),
	})
}

func TestRESTSourceFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ranking", r.URL.Path)
		assert.Equal(t, "2024", r.URL.Query().Get("cycle"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[
			{"id": 7, "name": "Golden", "company_name": "Acme", "productType": "Wheat Flour",
			 "tier": "TIER_1", "ivc": null, "sat": "30", "pt": 20, "ieg": "n/a",
			 "compliance": [{"percentage_compliance": 85}, {"percentage_compliance": 70}]}
		]}`))
	}))
	defer srv.Close()

	records, err := newTestSource(srv, "secret").Fetch(context.Background(), "2024")
	require.NoError(t, err)
	require.Len(t, records, 1)

	m := records[0]
	assert.Equal(t, schema.EntityID("7"), m.ID)
	assert.Equal(t, "Golden", m.Name)
	assert.Equal(t, "Wheat Flour", m.ProductType)
	assert.False(t, m.IVC.Valid)
	assert.Equal(t, schema.NewScore(30), m.SAT)
	assert.Equal(t, schema.NewScore(20), m.PT)
	assert.False(t, m.IEG.Valid)
	assert.Equal(t, []float64{85, 70}, m.ComplianceValues())
}

func TestRESTSourceNoToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.False(t, r.URL.Query().Has("cycle"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	records, err := newTestSource(srv, "").Fetch(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRESTSourceErrors(t *testing.T) {
	t.Run("non-2xx status", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			http.Error(w, "boom", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		records, err := newTestSource(srv, "").Fetch(context.Background(), "2024")
		require.Error(t, err)
		assert.Nil(t, records)
		assert.Equal(t, int32(1), calls.Load(), "no retry")

		var statusErr *StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
		assert.Contains(t, statusErr.Body, "boom")
		assert.Contains(t, err.Error(), "503")
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}))
		defer srv.Close()

		_, err := newTestSource(srv, "").Fetch(context.Background(), "2024")
		assert.Error(t, err)
	})

	t.Run("transport failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		src := newTestSource(srv, "")
		srv.Close()

		_, err := src.Fetch(context.Background(), "2024")
		assert.Error(t, err)
	})

	t.Run("cancelled while waiting for limiter", func(t *testing.T) {
		src := NewRESTSource(RESTOptions{
			BaseURL:  "http://127.0.0.1:1",
			Endpoint: "ranking",
			Limiter:  rate.NewLimiter(rate.Every(time.Hour), 1),
		})
		// Drain the single token
		require.True(t, src.limiter.Allow())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := src.Fetch(ctx, "2024")
		assert.Error(t, err)
	})
}

func TestRESTSourceURL(t *testing.T) {
	src := NewRESTSource(RESTOptions{BaseURL: "https://mfi.example.org/api", Endpoint: "ranking"})
	u, err := src.URL("2024 Q1")
	require.NoError(t, err)
	assert.Equal(t, "https://mfi.example.org/api/ranking?cycle=2024+Q1", u)
	assert.Equal(t, "https://mfi.example.org/api/ranking", src.Name())
}
