package ledger

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintAndBurn(t *testing.T) {
	l := New()

	require.NoError(t, l.Mint("alice", sdkmath.NewInt(100)))
	require.NoError(t, l.Mint("bob", sdkmath.NewInt(50)))

	assert.Equal(t, "100", l.BalanceOf("alice").String())
	assert.Equal(t, "50", l.BalanceOf("bob").String())
	assert.Equal(t, "150", l.TotalShares().String())
	assert.Equal(t, 2, l.HolderCount())

	require.NoError(t, l.Burn("alice", sdkmath.NewInt(40)))
	assert.Equal(t, "60", l.BalanceOf("alice").String())
	assert.Equal(t, "110", l.TotalShares().String())

	require.NoError(t, l.CheckInvariant())
}

func TestBurn_RemovesZeroEntries(t *testing.T) {
	l := New()

	require.NoError(t, l.Mint("alice", sdkmath.NewInt(10)))
	require.NoError(t, l.Burn("alice", sdkmath.NewInt(10)))

	assert.Equal(t, 0, l.HolderCount())
	assert.True(t, l.TotalShares().IsZero())
	assert.True(t, l.BalanceOf("alice").IsZero())
}

func TestBurn_InsufficientBalance(t *testing.T) {
	l := New()

	require.NoError(t, l.Mint("alice", sdkmath.NewInt(10)))

	err := l.Burn("alice", sdkmath.NewInt(11))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, "10", l.BalanceOf("alice").String())

	err = l.Burn("bob", sdkmath.NewInt(1))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestTransfer(t *testing.T) {
	l := New()

	require.NoError(t, l.Mint("alice", sdkmath.NewInt(100)))
	require.NoError(t, l.Transfer("alice", "bob", sdkmath.NewInt(100)))

	assert.True(t, l.BalanceOf("alice").IsZero())
	assert.Equal(t, "100", l.BalanceOf("bob").String())
	assert.Equal(t, "100", l.TotalShares().String())
	assert.Equal(t, 1, l.HolderCount())

	err := l.Transfer("bob", "alice", sdkmath.NewInt(101))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	require.NoError(t, l.CheckInvariant())
}

func TestArgumentValidation(t *testing.T) {
	l := New()

	assert.ErrorIs(t, l.Mint("", sdkmath.NewInt(1)), ErrEmptyOwner)
	assert.ErrorIs(t, l.Mint("alice", sdkmath.ZeroInt()), ErrNonPositiveAmount)
	assert.ErrorIs(t, l.Mint("alice", sdkmath.NewInt(-1)), ErrNonPositiveAmount)
	assert.ErrorIs(t, l.Burn("", sdkmath.NewInt(1)), ErrEmptyOwner)
	assert.ErrorIs(t, l.Burn("alice", sdkmath.ZeroInt()), ErrNonPositiveAmount)
	assert.ErrorIs(t, l.Transfer("", "bob", sdkmath.NewInt(1)), ErrEmptyOwner)
	assert.ErrorIs(t, l.Transfer("alice", "", sdkmath.NewInt(1)), ErrEmptyOwner)
	assert.ErrorIs(t, l.Transfer("alice", "bob", sdkmath.ZeroInt()), ErrNonPositiveAmount)
}
