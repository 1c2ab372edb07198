package utils

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntToFloat64(t *testing.T) {
	value, err := IntToFloat64(sdkmath.NewInt(1_500_000), 6)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, value, 1e-9)

	value, err = IntToFloat64(sdkmath.NewInt(42), 0)
	require.NoError(t, err)
	assert.InDelta(t, 42.0, value, 1e-9)

	_, err = IntToFloat64(sdkmath.NewInt(1), 19)
	assert.ErrorIs(t, err, ErrInvalidPrecision)

	_, err = IntToFloat64(sdkmath.Int{}, 6)
	assert.ErrorIs(t, err, ErrAmountNil)

	_, err = IntToFloat64(sdkmath.NewInt(-1), 6)
	assert.ErrorIs(t, err, ErrAmountNegative)
}

func TestFloat64ToInt(t *testing.T) {
	value, err := Float64ToInt(1.5, 6)
	require.NoError(t, err)
	assert.Equal(t, "1500000", value.String())

	// Truncates toward zero past the configured precision.
	value, err = Float64ToInt(0.1234567, 6)
	require.NoError(t, err)
	assert.Equal(t, "123457", value.String()) // %.6f rounds the string form

	value, err = Float64ToInt(0, 6)
	require.NoError(t, err)
	assert.True(t, value.IsZero())

	_, err = Float64ToInt(-1.0, 6)
	assert.ErrorIs(t, err, ErrAmountNegative)

	_, err = Float64ToInt(1.0, 19)
	assert.ErrorIs(t, err, ErrInvalidPrecision)
}

func TestSharePrice(t *testing.T) {
	price, err := SharePrice(sdkmath.NewInt(165), sdkmath.NewInt(150))
	require.NoError(t, err)
	assert.InDelta(t, 1.1, price, 1e-9)

	// Empty vault prices the first deposit at par.
	price, err = SharePrice(sdkmath.ZeroInt(), sdkmath.ZeroInt())
	require.NoError(t, err)
	assert.Equal(t, 1.0, price)

	_, err = SharePrice(sdkmath.NewInt(-1), sdkmath.NewInt(1))
	assert.ErrorIs(t, err, ErrAmountNegative)

	_, err = SharePrice(sdkmath.Int{}, sdkmath.NewInt(1))
	assert.ErrorIs(t, err, ErrAmountNil)
}
