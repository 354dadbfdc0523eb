package input

import (
	"math/rand"

	"gleipnir/internal/common"
)

const (
	// Limit orders land within this many ticks of the mid price.
	priceBand = 50
	maxQty    = 100

	cancelRate = 0.10
	marketRate = 0.15
)

// GeneratorConfig parameterises the synthetic order flow.
type GeneratorConfig struct {
	Seed      int64
	MidPrice  common.Price
	NumEvents int
}

// Generator produces a seeded synthetic order flow around a mid price:
// mostly limit orders within a band of the mid, with occasional market
// orders and cancels of tracked resting ids. The same seed always yields
// the same stream.
type Generator struct {
	rng       *rand.Rand
	midPrice  common.Price
	remaining int
	nextID    uint64
	resting   []common.OrderID
}

func NewGenerator(cfg GeneratorConfig) *Generator {
	mid := cfg.MidPrice
	if mid == 0 {
		mid = 10_000
	}
	return &Generator{
		rng:       rand.New(rand.NewSource(cfg.Seed)),
		midPrice:  mid,
		remaining: cfg.NumEvents,
	}
}

func (g *Generator) Next() (common.Inbound, bool) {
	if g.remaining <= 0 {
		return nil, false
	}
	g.remaining--

	roll := g.rng.Float64()
	switch {
	case roll < cancelRate && len(g.resting) > 0:
		// Cancel a random resting order.
		idx := g.rng.Intn(len(g.resting))
		id := g.resting[idx]
		g.resting = append(g.resting[:idx], g.resting[idx+1:]...)
		return common.CancelOrder{ID: id}, true

	case roll < cancelRate+marketRate:
		return common.MarketOrder{
			ID:   g.nextOrderID(),
			Side: g.randSide(),
			Qty:  g.randQty(),
		}, true

	default:
		// Limit order near the mid. Buys sit at or below it, sells at
		// or above, so most orders rest and a crossing minority trades.
		side := g.randSide()
		offset := common.Price(g.rng.Intn(priceBand))
		price := g.midPrice + offset
		if side == common.Buy {
			price = g.midPrice - offset
		}
		order := common.LimitOrder{
			ID:    g.nextOrderID(),
			Side:  side,
			Price: price,
			Qty:   g.randQty(),
		}
		g.resting = append(g.resting, order.ID)
		return order, true
	}
}

func (g *Generator) nextOrderID() common.OrderID {
	g.nextID++
	return common.OrderID(g.nextID)
}

func (g *Generator) randSide() common.Side {
	if g.rng.Float64() < 0.5 {
		return common.Buy
	}
	return common.Sell
}

func (g *Generator) randQty() common.Qty {
	return common.Qty(1 + g.rng.Intn(maxQty))
}
