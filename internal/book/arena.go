package book

import "gleipnir/internal/common"

// noIdx marks an absent arena index in the intrusive lists.
const noIdx = int32(-1)

// RestingOrder is one arena cell: an order sitting on the book plus its
// intrusive FIFO links within its price level.
type RestingOrder struct {
	ID    common.OrderID
	Price common.Price
	Qty   common.Qty // remaining open quantity, > 0 while resting
	Side  common.Side
	TS    int64 // microseconds since epoch, stamped on insertion

	prev, next int32 // arena indices of the level neighbours
}

// arena is a slot-reusing pool of resting orders. Cells are addressed by
// index rather than pointer; a released slot goes on the free list and is
// handed back out on a later alloc, so an issued index stays valid until
// the cell is explicitly released.
type arena struct {
	cells []RestingOrder
	free  []int32
	live  int
}

func newArena(capacity int) arena {
	return arena{
		cells: make([]RestingOrder, 0, capacity),
	}
}

func (a *arena) alloc(order RestingOrder) int32 {
	a.live++
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		a.cells[idx] = order
		return idx
	}
	a.cells = append(a.cells, order)
	return int32(len(a.cells) - 1)
}

func (a *arena) release(idx int32) {
	a.cells[idx] = RestingOrder{prev: noIdx, next: noIdx}
	a.free = append(a.free, idx)
	a.live--
}

// at returns the cell at idx. The pointer is valid until the next alloc.
func (a *arena) at(idx int32) *RestingOrder {
	return &a.cells[idx]
}

func (a *arena) len() int {
	return a.live
}
