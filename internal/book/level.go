package book

import "gleipnir/internal/common"

// PriceLevel holds the FIFO chain of resting orders at one price. head is
// the oldest order at the price and matches first; new orders append at
// tail. An empty level never stays in its side's btree.
type PriceLevel struct {
	price       common.Price
	head        int32
	tail        int32
	totalOrders uint32
}

func newPriceLevel(price common.Price) *PriceLevel {
	return &PriceLevel{
		price: price,
		head:  noIdx,
		tail:  noIdx,
	}
}

// Price of every order resting at this level.
func (l *PriceLevel) Price() common.Price {
	return l.price
}

// Orders is the number of orders resting at this level.
func (l *PriceLevel) Orders() uint32 {
	return l.totalOrders
}
