package book

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog/log"

	"gleipnir/internal/common"
)

// DefaultCapacity pre-sizes the resting order arena and the id index.
const DefaultCapacity = 262144

// OrderBook is the single-instrument limit order book. It owns both
// price-ordered sides, the arena of resting order cells and the id index
// into it. All mutation happens through Insert, Cancel and the match
// iterators; between those calls the book is never crossed.
type OrderBook struct {
	bids bookSide
	asks bookSide

	orders   arena
	orderMap map[common.OrderID]int32
}

func NewOrderBook(capacity int) *OrderBook {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &OrderBook{
		bids:     newBookSide(bidPolicy),
		asks:     newBookSide(askPolicy),
		orders:   newArena(capacity),
		orderMap: make(map[common.OrderID]int32, capacity),
	}
}

func (b *OrderBook) sideFor(side common.Side) *bookSide {
	if side == common.Buy {
		return &b.bids
	}
	return &b.asks
}

// Insert rests order on the book with the given remaining open quantity,
// stamping its entry timestamp. The order is appended at the tail of its
// price level, so it ranks behind everything already resting at the price.
// A buy rests on the bids, a sell on the asks.
func (b *OrderBook) Insert(order RestingOrder, remaining common.Qty) common.InsertEvent {
	order.Qty = remaining
	order.prev, order.next = noIdx, noIdx
	order.TS = time.Now().UnixMicro()

	idx := b.orders.alloc(order)
	b.orderMap[order.ID] = idx

	level := b.sideFor(order.Side).levelMut(order.Price)
	if level.tail != noIdx {
		b.orders.at(level.tail).next = idx
		b.orders.at(idx).prev = level.tail
	}
	level.tail = idx
	if level.head == noIdx {
		level.head = idx
	}
	level.totalOrders++

	return common.InsertEvent{
		ID:    order.ID,
		Price: order.Price,
		Qty:   remaining,
		TS:    order.TS,
	}
}

// Cancel unlinks the resting order with the given id from its level,
// releases its arena slot and drops the level if it emptied. An unknown
// id is a no-op: the book is untouched and ok is false. The order's own
// side determines which half of the book is touched.
func (b *OrderBook) Cancel(id common.OrderID) (common.CancelEvent, bool) {
	idx, ok := b.orderMap[id]
	if !ok {
		log.Warn().Uint64("orderID", uint64(id)).Msg("unknown order id on cancel, skipping")
		return common.CancelEvent{}, false
	}
	delete(b.orderMap, id)

	order := *b.orders.at(idx)
	side := b.sideFor(order.Side)
	level := side.levelMut(order.Price)

	if order.prev != noIdx {
		b.orders.at(order.prev).next = order.next
	} else {
		level.head = order.next
	}
	if order.next != noIdx {
		b.orders.at(order.next).prev = order.prev
	} else {
		level.tail = order.prev
	}
	level.totalOrders--

	if level.head == noIdx {
		side.remove(order.Price)
	}
	b.orders.release(idx)

	return common.CancelEvent{
		ID:  order.ID,
		Qty: order.Qty,
		TS:  time.Now().UnixMicro(),
	}, true
}

// MatchMarketBuy walks the asks with no price limit.
func (b *OrderBook) MatchMarketBuy(order common.MarketOrder) *MatchIter {
	return newMatchIter(b, &b.asks, order.ID, order.Qty, 0, false)
}

// MatchMarketSell walks the bids with no price limit.
func (b *OrderBook) MatchMarketSell(order common.MarketOrder) *MatchIter {
	return newMatchIter(b, &b.bids, order.ID, order.Qty, 0, false)
}

// MatchLimitBuy walks the asks, stopping once the best ask is above the
// taker's limit.
func (b *OrderBook) MatchLimitBuy(order common.LimitOrder) *MatchIter {
	return newMatchIter(b, &b.asks, order.ID, order.Qty, order.Price, true)
}

// MatchLimitSell walks the bids, stopping once the best bid is below the
// taker's limit.
func (b *OrderBook) MatchLimitSell(order common.LimitOrder) *MatchIter {
	return newMatchIter(b, &b.bids, order.ID, order.Qty, order.Price, true)
}

// GetIndex looks up the arena index of a resting order.
func (b *OrderBook) GetIndex(id common.OrderID) (int32, bool) {
	idx, ok := b.orderMap[id]
	return idx, ok
}

// GetOrder looks up a resting order by id. The returned pointer is valid
// until the cell is released or the next Insert, which may grow the arena.
func (b *OrderBook) GetOrder(id common.OrderID) (*RestingOrder, bool) {
	idx, ok := b.orderMap[id]
	if !ok {
		return nil, false
	}
	return b.orders.at(idx), true
}

// BestBid is the highest resting bid price.
func (b *OrderBook) BestBid() (common.Price, bool) {
	level, ok := b.bids.best()
	if !ok {
		return 0, false
	}
	return level.price, true
}

// BestAsk is the lowest resting ask price.
func (b *OrderBook) BestAsk() (common.Price, bool) {
	level, ok := b.asks.best()
	if !ok {
		return 0, false
	}
	return level.price, true
}

// Resting is the number of orders currently on the book.
func (b *OrderBook) Resting() int {
	return len(b.orderMap)
}

// Checksum digests the full resting state: each side in priority order,
// each level's price and order count, then every order at the level in
// FIFO order with its id, quantity and side. Books with identical
// contents produce identical sums regardless of arena layout, so the
// digest can compare runs and implementations.
func (b *OrderBook) Checksum() uint64 {
	digest := xxhash.New()
	var buf [8]byte
	write := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		digest.Write(buf[:])
	}

	for _, side := range []*bookSide{&b.bids, &b.asks} {
		write(uint64(side.policy.side))
		side.scan(func(level *PriceLevel) bool {
			write(uint64(level.price))
			write(uint64(level.totalOrders))
			for idx := level.head; idx != noIdx; idx = b.orders.at(idx).next {
				order := b.orders.at(idx)
				write(uint64(order.ID))
				write(uint64(order.Qty))
				write(uint64(order.Side))
			}
			return true
		})
	}
	return digest.Sum64()
}

// Snapshot renders the resting state of both sides, best price first.
func (b *OrderBook) Snapshot() string {
	var sb strings.Builder
	sb.WriteString("--- BID SIDE ---\n")
	b.dumpLevels(&sb, &b.bids)
	sb.WriteString("--- ASK SIDE ---\n")
	b.dumpLevels(&sb, &b.asks)
	return sb.String()
}

func (b *OrderBook) dumpLevels(sb *strings.Builder, side *bookSide) {
	side.scan(func(level *PriceLevel) bool {
		fmt.Fprintf(sb, "Price: %d | Orders: %d\n", level.price, level.totalOrders)
		return true
	})
}
