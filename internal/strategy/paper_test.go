package strategy

import (
	"context"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaper_DepositAcceptsFullAmount(t *testing.T) {
	p := NewPaper("test")
	ctx := context.Background()

	accepted, err := p.Deposit(ctx, sdkmath.NewInt(100))
	require.NoError(t, err)
	assert.Equal(t, "100", accepted.String())

	balance, err := p.TotalAssets(ctx)
	require.NoError(t, err)
	assert.Equal(t, "100", balance.String())
}

func TestPaper_WithdrawExactOrFail(t *testing.T) {
	p := NewPaper("test")
	ctx := context.Background()

	_, err := p.Deposit(ctx, sdkmath.NewInt(100))
	require.NoError(t, err)

	returned, err := p.Withdraw(ctx, sdkmath.NewInt(60))
	require.NoError(t, err)
	assert.Equal(t, "60", returned.String())

	_, err = p.Withdraw(ctx, sdkmath.NewInt(41))
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	// Failed withdrawal must not have touched the balance.
	balance, err := p.TotalAssets(ctx)
	require.NoError(t, err)
	assert.Equal(t, "40", balance.String())
}

func TestPaper_RejectsNonPositiveAmounts(t *testing.T) {
	p := NewPaper("test")
	ctx := context.Background()

	_, err := p.Deposit(ctx, sdkmath.ZeroInt())
	assert.ErrorIs(t, err, ErrNonPositiveAmount)
	_, err = p.Deposit(ctx, sdkmath.NewInt(-1))
	assert.ErrorIs(t, err, ErrNonPositiveAmount)
	_, err = p.Withdraw(ctx, sdkmath.ZeroInt())
	assert.ErrorIs(t, err, ErrNonPositiveAmount)
}

func TestPaper_YieldAccruesUpward(t *testing.T) {
	p := NewPaper("test")
	ctx := context.Background()

	_, err := p.Deposit(ctx, sdkmath.NewInt(1000))
	require.NoError(t, err)

	require.NoError(t, p.AccrueYield(sdkmath.NewInt(50)))
	balance, err := p.TotalAssets(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1050", balance.String())

	assert.Error(t, p.AccrueYield(sdkmath.NewInt(-1)))
	require.NoError(t, p.AccrueYield(sdkmath.ZeroInt()))

	// 100 bps of 1050, truncated.
	require.NoError(t, p.AccrueYieldBps(100))
	balance, err = p.TotalAssets(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1060", balance.String())

	assert.Error(t, p.AccrueYieldBps(-1))
}
