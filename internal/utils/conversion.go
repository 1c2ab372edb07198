/*
This file contains common utility functions for converting between integer
base-unit amounts and display values, with strict precision handling.
*/

package utils

import (
	"errors"
	"fmt"
	"math"

	sdkmath "cosmossdk.io/math"
)

// Error definitions for zero-tolerance error handling
var (
	ErrInvalidPrecision = errors.New("precision is invalid")
	ErrAmountNil        = errors.New("amount is nil")
	ErrAmountNegative   = errors.New("amount is negative")
	ErrNotFinite        = errors.New("value is not finite")
	ErrConversionFailed = errors.New("conversion failed")
)

// IntToFloat64 converts a base-unit Int amount to a display float64 with the
// given decimal precision. Display only: never feed the result back into
// share math.
func IntToFloat64(amount sdkmath.Int, decimals int) (float64, error) {
	if decimals < 0 || decimals > 18 {
		return 0, fmt.Errorf("%w: %d (must be between 0 and 18)", ErrInvalidPrecision, decimals)
	}
	if amount.IsNil() {
		return 0, ErrAmountNil
	}
	if amount.IsNegative() {
		return 0, ErrAmountNegative
	}

	decAmount := sdkmath.LegacyNewDecFromInt(amount)
	factor := sdkmath.LegacyNewDec(10).Power(uint64(decimals))

	result, err := decAmount.Quo(factor).Float64()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrConversionFailed, err)
	}
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0, fmt.Errorf("%w: result is %f", ErrNotFinite, result)
	}

	return result, nil
}

// Float64ToInt converts a display float64 to a base-unit Int amount with the
// given decimal precision, truncating toward zero.
func Float64ToInt(amount float64, decimals int) (sdkmath.Int, error) {
	if decimals < 0 || decimals > 18 {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: %d (must be between 0 and 18)", ErrInvalidPrecision, decimals)
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: amount is %f", ErrNotFinite, amount)
	}
	if amount < 0 {
		return sdkmath.ZeroInt(), ErrAmountNegative
	}
	if amount == 0 {
		return sdkmath.ZeroInt(), nil
	}

	// String round-trip avoids binary floating point surprises.
	amountStr := fmt.Sprintf(fmt.Sprintf("%%.%df", decimals), amount)
	decAmount, err := sdkmath.LegacyNewDecFromStr(amountStr)
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: failed to create decimal from string: %w", ErrConversionFailed, err)
	}

	factor := sdkmath.LegacyNewDec(10).Power(uint64(decimals))
	result := decAmount.Mul(factor).TruncateInt()
	if result.IsNegative() {
		return sdkmath.ZeroInt(), ErrAmountNegative
	}

	return result, nil
}

// SharePrice computes totalAssets/totalShares as a display float64. Returns
// 1.0 for an empty vault (the first-depositor price).
func SharePrice(totalAssets, totalShares sdkmath.Int) (float64, error) {
	if totalAssets.IsNil() || totalShares.IsNil() {
		return 0, ErrAmountNil
	}
	if totalAssets.IsNegative() || totalShares.IsNegative() {
		return 0, ErrAmountNegative
	}
	if totalShares.IsZero() {
		return 1.0, nil
	}

	price, err := sdkmath.LegacyNewDecFromInt(totalAssets).
		Quo(sdkmath.LegacyNewDecFromInt(totalShares)).
		Float64()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrConversionFailed, err)
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("%w: price is %f", ErrNotFinite, price)
	}

	return price, nil
}
