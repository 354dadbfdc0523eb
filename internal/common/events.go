package common

// BookEvent is the union of events the book emits towards the logger.
type BookEvent interface {
	bookEvent()
}

// MatchEvent records one fill. The maker is the resting order that
// supplied liquidity; its price is the trade price.
type MatchEvent struct {
	Maker OrderID
	Taker OrderID
	Price Price
	Qty   Qty
	TS    int64 // microseconds since epoch
}

// CancelEvent records the removal of a resting order, with the open
// quantity at the moment of cancellation.
type CancelEvent struct {
	ID  OrderID
	Qty Qty
	TS  int64
}

// InsertEvent records a limit order residual coming to rest on the book.
type InsertEvent struct {
	ID    OrderID
	Price Price
	Qty   Qty
	TS    int64
}

// SnapshotEvent carries the terminal text dump of the book, emitted
// exactly once at end of run.
type SnapshotEvent struct {
	Text string
}

func (MatchEvent) bookEvent()    {}
func (CancelEvent) bookEvent()   {}
func (InsertEvent) bookEvent()   {}
func (SnapshotEvent) bookEvent() {}
