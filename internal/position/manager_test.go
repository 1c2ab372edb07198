package position

import (
	"context"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T, toleranceBps int64, feed PriceSource) *NeutralManager {
	t.Helper()
	m, err := New(Config{
		SpotSymbol:   "BTC",
		PerpSymbol:   "BTC-PERP",
		ToleranceBps: toleranceBps,
		Feed:         feed,
	})
	require.NoError(t, err)
	return m
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{SpotSymbol: "BTC", PerpSymbol: "BTC-PERP", ToleranceBps: 0})
	assert.ErrorIs(t, err, ErrInvalidTolerance)

	_, err = New(Config{SpotSymbol: "BTC", PerpSymbol: "BTC-PERP", ToleranceBps: PRECISION})
	assert.ErrorIs(t, err, ErrInvalidTolerance)

	_, err = New(Config{SpotSymbol: "", PerpSymbol: "BTC-PERP", ToleranceBps: 50})
	assert.Error(t, err)
}

func TestUpdatePosition_RejectsNegative(t *testing.T) {
	m := newManager(t, 50, nil)

	err := m.UpdatePosition(context.Background(), sdkmath.NewInt(-1), sdkmath.NewInt(1))
	assert.ErrorIs(t, err, ErrNegativeAmount)
}

func TestCurrentDelta_ParPricing(t *testing.T) {
	m := newManager(t, 50, nil)
	ctx := context.Background()

	delta, err := m.CurrentDelta(ctx)
	require.NoError(t, err)
	assert.True(t, delta.IsZero())

	require.NoError(t, m.UpdatePosition(ctx, sdkmath.NewInt(60), sdkmath.NewInt(40)))

	delta, err = m.CurrentDelta(ctx)
	require.NoError(t, err)
	assert.Equal(t, "20", delta.String())
}

func TestIsRebalanceNeeded_EmptyBook(t *testing.T) {
	m := newManager(t, 50, nil)

	needed, err := m.IsRebalanceNeeded(context.Background())
	require.NoError(t, err)
	assert.False(t, needed)
}

func TestIsRebalanceNeeded_Threshold(t *testing.T) {
	m := newManager(t, 100, nil)
	ctx := context.Background()

	// |delta| = 2, gross = 200: exactly 100 bps, not strictly above.
	require.NoError(t, m.UpdatePosition(ctx, sdkmath.NewInt(101), sdkmath.NewInt(99)))
	needed, err := m.IsRebalanceNeeded(ctx)
	require.NoError(t, err)
	assert.False(t, needed)

	// One more unit of spot tips past the tolerance.
	require.NoError(t, m.UpdatePosition(ctx, sdkmath.NewInt(1), sdkmath.ZeroInt()))
	needed, err = m.IsRebalanceNeeded(ctx)
	require.NoError(t, err)
	assert.True(t, needed)
}

func TestCalculateRebalanceAmounts_SplitsDelta(t *testing.T) {
	m := newManager(t, 50, nil)
	ctx := context.Background()

	require.NoError(t, m.UpdatePosition(ctx, sdkmath.NewInt(70), sdkmath.NewInt(30)))

	spotAdj, perpAdj, err := m.CalculateRebalanceAmounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, "-20", spotAdj.String())
	assert.Equal(t, "20", perpAdj.String())
}

func TestCalculateRebalanceAmounts_OddDelta(t *testing.T) {
	m := newManager(t, 50, nil)
	ctx := context.Background()

	require.NoError(t, m.UpdatePosition(ctx, sdkmath.NewInt(30), sdkmath.NewInt(71)))

	// delta = -41: adjustments must sum back to the delta.
	spotAdj, perpAdj, err := m.CalculateRebalanceAmounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, "20", spotAdj.String())
	assert.Equal(t, "-21", perpAdj.String())
}

// stubFeed serves fixed mark prices per symbol.
type stubFeed struct {
	prices map[string]decimal.Decimal
}

func (f *stubFeed) MarkPrice(_ context.Context, symbol string) (decimal.Decimal, error) {
	price, ok := f.prices[symbol]
	if !ok {
		return decimal.Zero, assert.AnError
	}
	return price, nil
}

func TestCurrentDelta_MarkPriced(t *testing.T) {
	feed := &stubFeed{prices: map[string]decimal.Decimal{
		"BTC":      decimal.NewFromFloat(2.5),
		"BTC-PERP": decimal.NewFromFloat(2.0),
	}}
	m := newManager(t, 50, feed)
	ctx := context.Background()

	require.NoError(t, m.UpdatePosition(ctx, sdkmath.NewInt(100), sdkmath.NewInt(100)))

	// 100*2.5 - 100*2.0 = 50.
	delta, err := m.CurrentDelta(ctx)
	require.NoError(t, err)
	assert.Equal(t, "50", delta.String())

	needed, err := m.IsRebalanceNeeded(ctx)
	require.NoError(t, err)
	assert.True(t, needed)
}

func TestCurrentDelta_FeedFailurePropagates(t *testing.T) {
	m := newManager(t, 50, &stubFeed{prices: map[string]decimal.Decimal{}})
	ctx := context.Background()

	require.NoError(t, m.UpdatePosition(ctx, sdkmath.NewInt(10), sdkmath.NewInt(10)))

	_, err := m.CurrentDelta(ctx)
	assert.Error(t, err)
	_, err = m.IsRebalanceNeeded(ctx)
	assert.Error(t, err)
}

func TestDeltaBps(t *testing.T) {
	m := newManager(t, 50, nil)
	ctx := context.Background()

	bps, err := m.DeltaBps(ctx)
	require.NoError(t, err)
	assert.Zero(t, bps)

	require.NoError(t, m.UpdatePosition(ctx, sdkmath.NewInt(101), sdkmath.NewInt(99)))

	bps, err = m.DeltaBps(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, bps, 0.0001)
}
