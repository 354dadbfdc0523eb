package book

import (
	"github.com/tidwall/btree"

	"gleipnir/internal/common"
)

// bookSide is one price-ordered half of the book. Levels live in a btree
// whose ordering comes from the side policy, so the first entry is always
// the best price for the side.
type bookSide struct {
	policy sidePolicy
	levels *btree.BTreeG[*PriceLevel]
}

func newBookSide(policy sidePolicy) bookSide {
	less := policy.less
	return bookSide{
		policy: policy,
		levels: btree.NewBTreeG(func(a, b *PriceLevel) bool {
			return less(a.price, b.price)
		}),
	}
}

// levelMut returns the level at price, creating an empty one if absent.
func (s *bookSide) levelMut(price common.Price) *PriceLevel {
	if level, ok := s.levels.GetMut(&PriceLevel{price: price}); ok {
		return level
	}
	level := newPriceLevel(price)
	s.levels.Set(level)
	return level
}

// remove erases the level at price. Must only be called once the level
// has been emptied.
func (s *bookSide) remove(price common.Price) {
	s.levels.Delete(&PriceLevel{price: price})
}

// best returns the best-priced level for the side, if any.
func (s *bookSide) best() (*PriceLevel, bool) {
	return s.levels.MinMut()
}

// scan visits the levels in priority order while visit returns true.
func (s *bookSide) scan(visit func(level *PriceLevel) bool) {
	s.levels.Scan(visit)
}

func (s *bookSide) len() int {
	return s.levels.Len()
}
