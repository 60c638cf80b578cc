package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OptionPilot/internal/domain/repository"
)

func TestModelClientPredict(t *testing.T) {
	tests := []struct {
		name string
		body string
		want float64
	}{
		{"number", `{"prediction": 0.71}`, 0.71},
		{"array", `{"prediction": [0.42, 0.1]}`, 0.42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/predict", r.URL.Path)
				var req predictRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				require.Len(t, req.Features, 1)
				assert.Equal(t, []float64{1, 2}, req.Features[0])
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			m := NewModelClient(NewHTTPServiceBase(srv.URL, time.Second), 1)
			got, err := m.Predict(context.Background(), []float64{1, 2})
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestModelClientRejectsEmptyArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"prediction": []}`))
	}))
	defer srv.Close()

	m := NewModelClient(NewHTTPServiceBase(srv.URL, time.Second), 1)
	_, err := m.Predict(context.Background(), []float64{1})
	assert.Error(t, err)
}

func TestModelClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"prediction": 0.6}`))
	}))
	defer srv.Close()

	m := NewModelClient(NewHTTPServiceBase(srv.URL, time.Second), 3)
	got, err := m.Predict(context.Background(), []float64{1})
	require.NoError(t, err)
	assert.Equal(t, 0.6, got)
	assert.Equal(t, int32(2), calls.Load())
}

func TestModelClientNilWithoutURL(t *testing.T) {
	assert.Nil(t, NewModelClient(NewHTTPServiceBase("  ", time.Second), 1))
}

func TestMarketDataClientFetchChain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chains/AAPL", r.URL.Path)
		_, _ = w.Write([]byte(`{"symbol":"AAPL","contracts":[{"symbol":"AAPL 2026-04-17 150C","bid":1,"ask":1.2}]}`))
	}))
	defer srv.Close()

	c := NewMarketDataClient(NewHTTPServiceBase(srv.URL, time.Second), BreakerSettings{}, nil)
	p, err := c.FetchChain(context.Background(), " aapl ")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Len(t, p.Records(), 1)
}

func TestMarketDataClientNotFoundIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewMarketDataClient(NewHTTPServiceBase(srv.URL, time.Second), BreakerSettings{}, nil)
	p, err := c.FetchChain(context.Background(), "ZZZ")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestMarketDataClientDisabled(t *testing.T) {
	c := NewMarketDataClient(nil, BreakerSettings{}, nil)
	_, err := c.FetchChain(context.Background(), "AAPL")
	assert.True(t, errors.Is(err, repository.ErrMarketDataDisabled))
}

func TestMarketDataClientBreakerOpens(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewMarketDataClient(NewHTTPServiceBase(srv.URL, time.Second), BreakerSettings{
		ConsecutiveFailures: 2,
		Timeout:             time.Minute,
	}, nil)

	for i := 0; i < 4; i++ {
		_, err := c.FetchChain(context.Background(), "AAPL")
		assert.True(t, errors.Is(err, repository.ErrFetchFailed))
	}
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, "open", c.State())
}
