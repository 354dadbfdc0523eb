package engine

import (
	"github.com/rs/zerolog/log"

	"gleipnir/internal/book"
	"gleipnir/internal/common"
)

// This is the main matching engine.

// Engine applies inbound orders to the book one at a time and returns the
// book events each produces. Every call is atomic from the book's
// perspective: no mutation is outstanding between calls.
type Engine struct {
	book *book.OrderBook
}

func New(capacity int) *Engine {
	return &Engine{
		book: book.NewOrderBook(capacity),
	}
}

// Book exposes the underlying order book for snapshots and diagnostics.
func (e *Engine) Book() *book.OrderBook {
	return e.book
}

// MatchOrder dispatches on the inbound order kind. The returned events
// are the fills in the order the match walk produced them, followed by at
// most one insert or cancel event.
func (e *Engine) MatchOrder(inbound common.Inbound) []common.BookEvent {
	switch order := inbound.(type) {
	case common.LimitOrder:
		return e.matchLimit(order)
	case common.MarketOrder:
		return e.matchMarket(order)
	case common.CancelOrder:
		return e.matchCancel(order)
	}
	return nil
}

func (e *Engine) matchLimit(order common.LimitOrder) []common.BookEvent {
	var iter *book.MatchIter
	if order.Side == common.Buy {
		iter = e.book.MatchLimitBuy(order)
	} else {
		iter = e.book.MatchLimitSell(order)
	}

	events := collect(iter)

	if remaining := iter.Remaining(); remaining > 0 {
		resting := book.RestingOrder{
			ID:    order.ID,
			Price: order.Price,
			Side:  order.Side,
		}
		events = append(events, e.book.Insert(resting, remaining))
	}
	return events
}

func (e *Engine) matchMarket(order common.MarketOrder) []common.BookEvent {
	var iter *book.MatchIter
	if order.Side == common.Buy {
		iter = e.book.MatchMarketBuy(order)
	} else {
		iter = e.book.MatchMarketSell(order)
	}

	events := collect(iter)

	// A market order that outruns the opposing side has no price to rest
	// at; the leftover quantity is dropped.
	if remaining := iter.Remaining(); remaining > 0 {
		log.Debug().
			Uint64("orderID", uint64(order.ID)).
			Uint32("remaining", uint32(remaining)).
			Msg("market order residual dropped")
	}
	return events
}

func (e *Engine) matchCancel(order common.CancelOrder) []common.BookEvent {
	event, ok := e.book.Cancel(order.ID)
	if !ok {
		return nil
	}
	return []common.BookEvent{event}
}

func collect(iter *book.MatchIter) []common.BookEvent {
	var events []common.BookEvent
	for {
		fill, ok := iter.Next()
		if !ok {
			return events
		}
		events = append(events, fill)
	}
}
