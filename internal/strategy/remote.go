/*

This file contains the remote strategy adapter: a JSON-over-HTTP client for
strategies running out of process. The wire format is deliberately small —
one POST per operation with integer amounts carried as decimal strings.

The adapter enforces the same contract the vault core checks: a reply whose
amount differs from the request is surfaced as-is and rejected upstream.

*/

package strategy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog"

	"github.com/basislabs/dnvault/internal/logger"
)

// Error definitions for zero-tolerance error handling
var (
	ErrInvalidEndpoint = errors.New("strategy endpoint is invalid")
	ErrRequestFailed   = errors.New("strategy request failed")
	ErrInvalidResponse = errors.New("strategy response is invalid")
)

const remoteTimeout = 20 * time.Second

// remoteRequest is the body of every strategy call.
type remoteRequest struct {
	Op     string `json:"op"`               // "deposit", "withdraw", "total_assets"
	Amount string `json:"amount,omitempty"` // Decimal string, base units
}

// remoteResponse is the reply for every strategy call.
type remoteResponse struct {
	Amount string `json:"amount"` // Accepted / returned / balance, decimal string
	Error  string `json:"error,omitempty"`
}

// Remote is an HTTP client for an out-of-process strategy.
type Remote struct {
	logger   zerolog.Logger
	endpoint string
	client   http.Client
}

// NewRemote creates a remote strategy adapter for the given endpoint.
func NewRemote(name, endpoint string) (*Remote, error) {
	if endpoint == "" {
		return nil, errors.Join(ErrInvalidEndpoint, errors.New("endpoint cannot be empty"))
	}
	return &Remote{
		logger:   logger.GetForComponent("strategy_" + name),
		endpoint: endpoint,
		client:   http.Client{Timeout: remoteTimeout},
	}, nil
}

// Deposit deploys amount into the remote strategy.
func (r *Remote) Deposit(ctx context.Context, amount sdkmath.Int) (sdkmath.Int, error) {
	if amount.IsNil() || !amount.IsPositive() {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: deposit of %s", ErrNonPositiveAmount, amount)
	}
	return r.call(ctx, remoteRequest{Op: "deposit", Amount: amount.String()})
}

// Withdraw pulls amount back out of the remote strategy.
func (r *Remote) Withdraw(ctx context.Context, amount sdkmath.Int) (sdkmath.Int, error) {
	if amount.IsNil() || !amount.IsPositive() {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: withdrawal of %s", ErrNonPositiveAmount, amount)
	}
	return r.call(ctx, remoteRequest{Op: "withdraw", Amount: amount.String()})
}

// TotalAssets queries the remote strategy's live balance.
func (r *Remote) TotalAssets(ctx context.Context) (sdkmath.Int, error) {
	return r.call(ctx, remoteRequest{Op: "total_assets"})
}

// call executes one request/response round trip with strict validation.
func (r *Remote) call(ctx context.Context, request remoteRequest) (sdkmath.Int, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return sdkmath.ZeroInt(), errors.Join(ErrRequestFailed, fmt.Errorf("failed to marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewBuffer(body))
	if err != nil {
		return sdkmath.ZeroInt(), errors.Join(ErrRequestFailed, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Error().Err(err).Str("endpoint", r.endpoint).Str("op", request.Op).Msg("Strategy request failed")
		return sdkmath.ZeroInt(), errors.Join(ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return sdkmath.ZeroInt(), errors.Join(ErrRequestFailed,
			fmt.Errorf("strategy replied with status %d %s", resp.StatusCode, resp.Status))
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return sdkmath.ZeroInt(), errors.Join(ErrInvalidResponse, fmt.Errorf("failed to read response body: %w", err))
	}
	if len(respBody) == 0 {
		return sdkmath.ZeroInt(), errors.Join(ErrInvalidResponse, errors.New("response body is empty"))
	}

	var response remoteResponse
	if err := json.Unmarshal(respBody, &response); err != nil {
		return sdkmath.ZeroInt(), errors.Join(ErrInvalidResponse, fmt.Errorf("failed to unmarshal response: %w", err))
	}
	if response.Error != "" {
		return sdkmath.ZeroInt(), errors.Join(ErrRequestFailed,
			fmt.Errorf("strategy rejected %s: %s", request.Op, response.Error))
	}

	amount, ok := sdkmath.NewIntFromString(response.Amount)
	if !ok {
		return sdkmath.ZeroInt(), errors.Join(ErrInvalidResponse,
			fmt.Errorf("amount %q is not a valid integer", response.Amount))
	}
	if amount.IsNegative() {
		return sdkmath.ZeroInt(), errors.Join(ErrInvalidResponse,
			fmt.Errorf("amount %s is negative", amount))
	}

	return amount, nil
}
