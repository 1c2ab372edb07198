package strategy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRemote_RequiresEndpoint(t *testing.T) {
	_, err := NewRemote("spot", "")
	assert.ErrorIs(t, err, ErrInvalidEndpoint)
}

func TestRemote_RoundTrip(t *testing.T) {
	var lastRequest remoteRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&lastRequest))
		json.NewEncoder(w).Encode(remoteResponse{Amount: lastRequest.Amount})
	}))
	defer server.Close()

	remote, err := NewRemote("spot", server.URL)
	require.NoError(t, err)
	ctx := context.Background()

	accepted, err := remote.Deposit(ctx, sdkmath.NewInt(100))
	require.NoError(t, err)
	assert.Equal(t, "100", accepted.String())
	assert.Equal(t, "deposit", lastRequest.Op)

	returned, err := remote.Withdraw(ctx, sdkmath.NewInt(40))
	require.NoError(t, err)
	assert.Equal(t, "40", returned.String())
	assert.Equal(t, "withdraw", lastRequest.Op)
}

func TestRemote_TotalAssets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(remoteResponse{Amount: "12345"})
	}))
	defer server.Close()

	remote, err := NewRemote("perp", server.URL)
	require.NoError(t, err)

	balance, err := remote.TotalAssets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "12345", balance.String())
}

func TestRemote_ErrorReplyRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(remoteResponse{Error: "position limit reached"})
	}))
	defer server.Close()

	remote, err := NewRemote("perp", server.URL)
	require.NoError(t, err)

	_, err = remote.Deposit(context.Background(), sdkmath.NewInt(100))
	assert.ErrorIs(t, err, ErrRequestFailed)
}

func TestRemote_InvalidRepliesRejected(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
		want    error
	}{
		{
			name: "non-200 status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			want: ErrRequestFailed,
		},
		{
			name:    "empty body",
			handler: func(w http.ResponseWriter, r *http.Request) {},
			want:    ErrInvalidResponse,
		},
		{
			name: "non-integer amount",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(remoteResponse{Amount: "12.5"})
			},
			want: ErrInvalidResponse,
		},
		{
			name: "negative amount",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(remoteResponse{Amount: "-5"})
			},
			want: ErrInvalidResponse,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(tc.handler)
			defer server.Close()

			remote, err := NewRemote("spot", server.URL)
			require.NoError(t, err)

			_, err = remote.Deposit(context.Background(), sdkmath.NewInt(100))
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestRemote_RejectsNonPositiveAmounts(t *testing.T) {
	remote, err := NewRemote("spot", "http://localhost:1")
	require.NoError(t, err)
	ctx := context.Background()

	_, err = remote.Deposit(ctx, sdkmath.ZeroInt())
	assert.ErrorIs(t, err, ErrNonPositiveAmount)
	_, err = remote.Withdraw(ctx, sdkmath.NewInt(-1))
	assert.ErrorIs(t, err, ErrNonPositiveAmount)
}
