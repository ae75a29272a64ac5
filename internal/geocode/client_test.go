package geocode

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roost/internal/platform/config"
	"roost/pkg/platform/sentinel"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.Geocoder{
		BaseURL: srv.URL,
		Token:   "test-token",
		Timeout: 2 * time.Second,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)), testMetrics)
}

func TestClientForward(t *testing.T) {
	t.Run("uses the first feature of the response", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/Tallinn, Estonia.json", r.URL.Path)
			assert.Equal(t, "1", r.URL.Query().Get("limit"))
			assert.Equal(t, "test-token", r.URL.Query().Get("access_token"))
			_, _ = w.Write([]byte(`{"features":[
				{"geometry":{"type":"Point","coordinates":[24.7536,59.4370]}},
				{"geometry":{"type":"Point","coordinates":[0,0]}}
			]}`))
		})

		point, err := client.Forward(context.Background(), "Tallinn, Estonia")
		require.NoError(t, err)
		assert.Equal(t, "Point", point.Type)
		assert.Equal(t, [2]float64{24.7536, 59.4370}, point.Coordinates)
	})

	t.Run("empty feature list is a no-match", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"features":[]}`))
		})

		_, err := client.Forward(context.Background(), "Nowhere at all")
		assert.ErrorIs(t, err, sentinel.ErrNoMatch)
	})

	t.Run("provider error status maps to unavailable", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})

		_, err := client.Forward(context.Background(), "Tallinn")
		assert.ErrorIs(t, err, sentinel.ErrUnavailable)
	})

	t.Run("malformed body maps to unavailable", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html>not json</html>`))
		})

		_, err := client.Forward(context.Background(), "Tallinn")
		assert.ErrorIs(t, err, sentinel.ErrUnavailable)
	})

	t.Run("unreachable provider maps to unavailable", func(t *testing.T) {
		client := NewClient(config.Geocoder{
			BaseURL: "http://127.0.0.1:1",
			Timeout: 200 * time.Millisecond,
		}, slog.New(slog.NewTextHandler(io.Discard, nil)), testMetrics)

		_, err := client.Forward(context.Background(), "Tallinn")
		assert.ErrorIs(t, err, sentinel.ErrUnavailable)
	})
}

func TestStaticGeocoder(t *testing.T) {
	geocoder := StaticGeocoder{Points: map[string]Point{
		"Tallinn, Estonia": NewPoint(24.7536, 59.4370),
	}}

	point, err := geocoder.Forward(context.Background(), "Tallinn, Estonia")
	require.NoError(t, err)
	assert.Equal(t, [2]float64{24.7536, 59.4370}, point.Coordinates)

	_, err = geocoder.Forward(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, sentinel.ErrNoMatch)
}
