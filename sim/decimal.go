package sim

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// RatioScale is the fixed decimal scale used for every ratio metric in
// this package, per spec §9.
const RatioScale = 10

// Decimal is the fixed-scale decimal type used for every ratio metric.
type Decimal = decimal.Decimal

var (
	// DecimalOne is the conventional safe value for metrics whose
	// empty-denominator case means "fully safe / fully utilized" (§7e).
	DecimalOne = decimal.NewFromInt(1)
	// DecimalZero is the conventional safe value for metrics whose
	// empty-denominator case means "vacuously zero".
	DecimalZero = decimal.NewFromInt(0)
	// DecimalSentinel is the §7e sentinel (-1) for hit-proportion metrics
	// with no targets configured.
	DecimalSentinel = decimal.NewFromInt(-1)
)

func init() {
	decimal.DivisionPrecision = RatioScale
}

// Ratio computes num/den rounded half-up to RatioScale places. If den is
// zero, ifZero is returned unmodified — callers pass the conventional
// safe value for the metric being computed (spec §7e).
func Ratio(num, den int64, ifZero decimal.Decimal) decimal.Decimal {
	if den == 0 {
		return ifZero
	}
	return decimal.NewFromInt(num).DivRound(decimal.NewFromInt(den), RatioScale)
}

// DecimalFromInt converts a plain int64 into a Decimal, for averaging
// per-entity ratios computed by the metrics layer.
func DecimalFromInt(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}

// RatioBigInt computes num/den rounded half-up to RatioScale places for
// math/big.Int operands (used by the core-utilization metric, whose
// operands are tick accumulators that can exceed 64 bits).
func RatioBigInt(num, den *big.Int, ifZero decimal.Decimal) decimal.Decimal {
	if den.Sign() == 0 {
		return ifZero
	}
	return decimal.NewFromBigInt(num, 0).DivRound(decimal.NewFromBigInt(den, 0), RatioScale)
}
