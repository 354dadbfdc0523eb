package book

import "gleipnir/internal/common"

// sidePolicy fixes the orientation of one half of the book. less orders
// price levels so that the best price for the side is always first in the
// btree. beyond reports whether the best resting price is outside the
// marketable range for a taker with the given limit; it is the only place
// side asymmetry enters the match walk.
type sidePolicy struct {
	side   common.Side
	less   func(a, b common.Price) bool
	beyond func(best, limit common.Price) bool
}

var (
	// Bids sort greatest first. Matching against them stops once the best
	// bid drops below the taker's limit.
	bidPolicy = sidePolicy{
		side:   common.Buy,
		less:   func(a, b common.Price) bool { return a > b },
		beyond: func(best, limit common.Price) bool { return best < limit },
	}

	// Asks sort least first. Matching against them stops once the best
	// ask rises above the taker's limit.
	askPolicy = sidePolicy{
		side:   common.Sell,
		less:   func(a, b common.Price) bool { return a < b },
		beyond: func(best, limit common.Price) bool { return best > limit },
	}
)
