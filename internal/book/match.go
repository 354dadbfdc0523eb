package book

import (
	"time"

	"gleipnir/internal/common"
)

// MatchIter is the lazy fill walk of one taker against the opposing side
// of the book. It holds the book for its lifetime; every Next that yields
// a fill has already applied that fill, so fills can be consumed one at a
// time and nothing is buffered.
type MatchIter struct {
	book      *OrderBook
	side      *bookSide
	taker     common.OrderID
	remaining common.Qty
	limit     common.Price
	hasLimit  bool
}

func newMatchIter(
	book *OrderBook,
	side *bookSide,
	taker common.OrderID,
	qty common.Qty,
	limit common.Price,
	hasLimit bool,
) *MatchIter {
	return &MatchIter{
		book:      book,
		side:      side,
		taker:     taker,
		remaining: qty,
		limit:     limit,
		hasLimit:  hasLimit,
	}
}

// Next produces one fill against the head of the best opposing level,
// mutating the book as it goes. ok is false once the taker is filled, the
// opposing side is empty, or the best resting price is beyond the taker's
// limit; the iterator stays exhausted from then on.
func (it *MatchIter) Next() (common.MatchEvent, bool) {
	if it.remaining == 0 {
		return common.MatchEvent{}, false
	}

	level, ok := it.side.best()
	if !ok {
		return common.MatchEvent{}, false
	}
	if it.hasLimit && it.side.policy.beyond(level.price, it.limit) {
		return common.MatchEvent{}, false
	}

	headIdx := level.head
	if headIdx == noIdx {
		return common.MatchEvent{}, false
	}

	maker := it.book.orders.at(headIdx)
	traded := min(it.remaining, maker.Qty)
	maker.Qty -= traded
	it.remaining -= traded

	makerID := maker.ID
	price := level.price

	if maker.Qty == 0 {
		next := maker.next
		level.head = next
		if next == noIdx {
			level.tail = noIdx
		}
		level.totalOrders--
		it.book.orders.release(headIdx)
		delete(it.book.orderMap, makerID)
	}

	if level.head == noIdx {
		it.side.remove(price)
	}

	return common.MatchEvent{
		Maker: makerID,
		Taker: it.taker,
		Price: price,
		Qty:   traded,
		TS:    time.Now().UnixMicro(),
	}, true
}

// Remaining is the taker's unfilled quantity. Read it after the iterator
// exhausts to decide whether a residual insert is needed.
func (it *MatchIter) Remaining() common.Qty {
	return it.remaining
}
