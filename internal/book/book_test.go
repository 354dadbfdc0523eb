package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gleipnir/internal/common"
)

// --- Setup & Helpers --------------------------------------------------------

func insertLimit(b *OrderBook, id common.OrderID, side common.Side, price common.Price, qty common.Qty) {
	b.Insert(RestingOrder{ID: id, Price: price, Side: side}, qty)
}

// chainIDs walks a level head to tail and returns the order ids in FIFO order.
func chainIDs(b *OrderBook, level *PriceLevel) []common.OrderID {
	var ids []common.OrderID
	for idx := level.head; idx != noIdx; idx = b.orders.at(idx).next {
		ids = append(ids, b.orders.at(idx).ID)
	}
	return ids
}

// assertWellFormed checks the structural invariants that must hold between
// operations: every level chain is consistent with its counters, every
// resting order is indexed, and the index, the arena and the levels all
// agree on the resting set.
func assertWellFormed(t *testing.T, b *OrderBook) {
	t.Helper()

	total := 0
	for _, side := range []*bookSide{&b.bids, &b.asks} {
		side.scan(func(level *PriceLevel) bool {
			count := 0
			last := noIdx
			for idx := level.head; idx != noIdx; idx = b.orders.at(idx).next {
				order := b.orders.at(idx)
				assert.Equal(t, level.price, order.Price, "order price matches its level")
				assert.Equal(t, side.policy.side, order.Side, "order side matches its book side")

				mapped, ok := b.orderMap[order.ID]
				assert.True(t, ok, "resting order is indexed")
				assert.Equal(t, idx, mapped, "index resolves to the order's cell")

				last = idx
				count++
			}
			assert.NotZero(t, count, "empty levels must not exist")
			assert.Equal(t, uint32(count), level.totalOrders)
			assert.Equal(t, last, level.tail)
			total += count
			return true
		})
	}
	assert.Equal(t, total, len(b.orderMap))
	assert.Equal(t, total, b.orders.len())
}

// --- Tests ------------------------------------------------------------------

func TestInsertAndPriceSorting(t *testing.T) {
	b := NewOrderBook(0)

	// 1. Bids out of price order, then asks out of price order.
	insertLimit(b, 1, common.Buy, 100, 5)
	insertLimit(b, 2, common.Buy, 105, 5)
	insertLimit(b, 3, common.Buy, 102, 5)
	insertLimit(b, 4, common.Sell, 110, 5)
	insertLimit(b, 5, common.Sell, 108, 5)
	insertLimit(b, 6, common.Sell, 115, 5)

	// 2. Best bid is the highest price, best ask the lowest.
	bestBid, ok := b.BestBid()
	require.True(t, ok)
	assert.Equal(t, common.Price(105), bestBid)

	bestAsk, ok := b.BestAsk()
	require.True(t, ok)
	assert.Equal(t, common.Price(108), bestAsk)

	assert.Equal(t, 3, b.bids.len())
	assert.Equal(t, 3, b.asks.len())
	assertWellFormed(t, b)
}

func TestFIFOWithinLevel(t *testing.T) {
	b := NewOrderBook(0)

	insertLimit(b, 1, common.Sell, 100, 5)
	insertLimit(b, 2, common.Sell, 100, 5)
	insertLimit(b, 3, common.Sell, 100, 5)

	level, ok := b.asks.best()
	require.True(t, ok)
	assert.Equal(t, uint32(3), level.totalOrders)
	assert.Equal(t, []common.OrderID{1, 2, 3}, chainIDs(b, level))

	// Tail is the latest insertion; head the earliest.
	assert.Equal(t, common.OrderID(3), b.orders.at(level.tail).ID)
	assert.Equal(t, common.OrderID(1), b.orders.at(level.head).ID)
	assertWellFormed(t, b)
}

func TestCancelDropsEmptyLevel(t *testing.T) {
	b := NewOrderBook(0)

	insertLimit(b, 1, common.Buy, 100, 10)

	event, ok := b.Cancel(1)
	require.True(t, ok)
	assert.Equal(t, common.OrderID(1), event.ID)
	assert.Equal(t, common.Qty(10), event.Qty)

	_, hasBid := b.BestBid()
	assert.False(t, hasBid)
	assert.Zero(t, b.bids.len())
	assert.Zero(t, b.Resting())
	assert.Zero(t, b.orders.len())
}

func TestCancelMiddleOfLevelRelinks(t *testing.T) {
	b := NewOrderBook(0)

	insertLimit(b, 1, common.Sell, 100, 5)
	insertLimit(b, 2, common.Sell, 100, 5)
	insertLimit(b, 3, common.Sell, 100, 5)

	_, ok := b.Cancel(2)
	require.True(t, ok)

	level, ok := b.asks.best()
	require.True(t, ok)
	assert.Equal(t, []common.OrderID{1, 3}, chainIDs(b, level))
	assertWellFormed(t, b)
}

func TestCancelHeadAndTail(t *testing.T) {
	b := NewOrderBook(0)

	insertLimit(b, 1, common.Sell, 100, 5)
	insertLimit(b, 2, common.Sell, 100, 5)
	insertLimit(b, 3, common.Sell, 100, 5)

	_, ok := b.Cancel(1)
	require.True(t, ok)
	_, ok = b.Cancel(3)
	require.True(t, ok)

	level, ok := b.asks.best()
	require.True(t, ok)
	assert.Equal(t, []common.OrderID{2}, chainIDs(b, level))
	assertWellFormed(t, b)
}

func TestCancelUnknownIsNoop(t *testing.T) {
	b := NewOrderBook(0)

	insertLimit(b, 1, common.Buy, 100, 10)
	before := b.Checksum()

	_, ok := b.Cancel(999)
	assert.False(t, ok)
	assert.Equal(t, before, b.Checksum())
	assert.Equal(t, 1, b.Resting())
}

func TestGetOrderLookups(t *testing.T) {
	b := NewOrderBook(0)

	insertLimit(b, 7, common.Buy, 100, 10)

	order, ok := b.GetOrder(7)
	require.True(t, ok)
	assert.Equal(t, common.OrderID(7), order.ID)
	assert.Equal(t, common.Price(100), order.Price)
	assert.Equal(t, common.Qty(10), order.Qty)
	assert.NotZero(t, order.TS)

	idx, ok := b.GetIndex(7)
	require.True(t, ok)
	assert.Equal(t, order, b.orders.at(idx))

	_, ok = b.GetOrder(8)
	assert.False(t, ok)
}

func TestArenaSlotReusedAfterCancel(t *testing.T) {
	b := NewOrderBook(0)

	insertLimit(b, 1, common.Buy, 100, 10)
	idx, ok := b.GetIndex(1)
	require.True(t, ok)

	_, ok = b.Cancel(1)
	require.True(t, ok)

	insertLimit(b, 2, common.Buy, 101, 10)
	reused, ok := b.GetIndex(2)
	require.True(t, ok)
	assert.Equal(t, idx, reused)
}

func TestChecksumStability(t *testing.T) {
	build := func() *OrderBook {
		b := NewOrderBook(0)
		insertLimit(b, 1, common.Buy, 100, 5)
		insertLimit(b, 2, common.Buy, 102, 7)
		insertLimit(b, 3, common.Sell, 105, 5)
		insertLimit(b, 4, common.Sell, 108, 9)
		b.Cancel(2)
		return b
	}

	first := build()
	second := build()
	assert.Equal(t, first.Checksum(), second.Checksum())

	// Any change to the resting set changes the digest.
	second.Cancel(1)
	assert.NotEqual(t, first.Checksum(), second.Checksum())
}

func TestSnapshotListsLevelsInPriorityOrder(t *testing.T) {
	b := NewOrderBook(0)

	insertLimit(b, 1, common.Buy, 100, 5)
	insertLimit(b, 2, common.Buy, 102, 5)
	insertLimit(b, 3, common.Sell, 105, 5)

	want := "--- BID SIDE ---\n" +
		"Price: 102 | Orders: 1\n" +
		"Price: 100 | Orders: 1\n" +
		"--- ASK SIDE ---\n" +
		"Price: 105 | Orders: 1\n"
	assert.Equal(t, want, b.Snapshot())
}
