package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gleipnir/internal/common"
)

func collectAll(source Source) []common.Inbound {
	var events []common.Inbound
	for {
		event, ok := source.Next()
		if !ok {
			return events
		}
		events = append(events, event)
	}
}

func TestGeneratorIsDeterministicForSeed(t *testing.T) {
	cfg := GeneratorConfig{Seed: 42, MidPrice: 10_000, NumEvents: 2_000}

	first := collectAll(NewGenerator(cfg))
	second := collectAll(NewGenerator(cfg))

	require.Len(t, first, cfg.NumEvents)
	assert.Equal(t, first, second)
}

func TestGeneratorSeedChangesStream(t *testing.T) {
	first := collectAll(NewGenerator(GeneratorConfig{Seed: 1, NumEvents: 500}))
	second := collectAll(NewGenerator(GeneratorConfig{Seed: 2, NumEvents: 500}))

	assert.NotEqual(t, first, second)
}

func TestGeneratorProducesValidEvents(t *testing.T) {
	gen := NewGenerator(GeneratorConfig{Seed: 7, MidPrice: 10_000, NumEvents: 5_000})

	seen := make(map[common.OrderID]bool)
	issued := make(map[common.OrderID]bool)

	for {
		event, ok := gen.Next()
		if !ok {
			break
		}
		switch order := event.(type) {
		case common.LimitOrder:
			assert.False(t, seen[order.ID], "order id %d reused", order.ID)
			seen[order.ID] = true
			issued[order.ID] = true
			assert.Positive(t, order.Price)
			assert.Positive(t, order.Qty)
			// Buys at or below the mid, sells at or above.
			if order.Side == common.Buy {
				assert.LessOrEqual(t, order.Price, common.Price(10_000))
			} else {
				assert.GreaterOrEqual(t, order.Price, common.Price(10_000))
			}
		case common.MarketOrder:
			assert.False(t, seen[order.ID], "order id %d reused", order.ID)
			seen[order.ID] = true
			assert.Positive(t, order.Qty)
		case common.CancelOrder:
			// Cancels only reference ids the generator issued as limits.
			assert.True(t, issued[order.ID], "cancel of unknown id %d", order.ID)
			delete(issued, order.ID)
		}
	}
}
