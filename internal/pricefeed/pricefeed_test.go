package pricefeed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, ErrAPIConfiguration)
}

func TestMarkPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		symbol := r.URL.Query().Get("symbol")
		json.NewEncoder(w).Encode(priceResponse{Symbol: symbol, Price: "42000.25"})
	}))
	defer server.Close()

	feed, err := New(server.URL)
	require.NoError(t, err)

	price, err := feed.MarkPrice(context.Background(), "BTC")
	require.NoError(t, err)
	assert.Equal(t, "42000.25", price.String())
}

func TestMarkPrice_RejectsBadReplies(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
		want    error
	}{
		{
			name: "non-200 status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			want: ErrRequestFailed,
		},
		{
			name: "wrong symbol echoed",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(priceResponse{Symbol: "ETH", Price: "1"})
			},
			want: ErrInvalidPriceData,
		},
		{
			name: "non-decimal price",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(priceResponse{Symbol: "BTC", Price: "not-a-number"})
			},
			want: ErrInvalidPriceData,
		},
		{
			name: "non-positive price",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(priceResponse{Symbol: "BTC", Price: "0"})
			},
			want: ErrInvalidPriceData,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(tc.handler)
			defer server.Close()

			feed, err := New(server.URL)
			require.NoError(t, err)

			_, err = feed.MarkPrice(context.Background(), "BTC")
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestMarkPrice_EmptySymbol(t *testing.T) {
	feed, err := New("http://localhost:1")
	require.NoError(t, err)

	_, err = feed.MarkPrice(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidPriceData)
}
