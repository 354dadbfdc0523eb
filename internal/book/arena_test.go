package book

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gleipnir/internal/common"
)

func TestArenaAllocAndRelease(t *testing.T) {
	a := newArena(4)

	idx0 := a.alloc(RestingOrder{ID: 1})
	idx1 := a.alloc(RestingOrder{ID: 2})
	assert.Equal(t, int32(0), idx0)
	assert.Equal(t, int32(1), idx1)
	assert.Equal(t, 2, a.len())

	a.release(idx0)
	assert.Equal(t, 1, a.len())

	// The freed slot is handed back out before the pool grows.
	idx2 := a.alloc(RestingOrder{ID: 3})
	assert.Equal(t, idx0, idx2)
	assert.Equal(t, common.OrderID(3), a.at(idx2).ID)
	assert.Equal(t, 2, a.len())
}

func TestArenaGrowsPastCapacity(t *testing.T) {
	a := newArena(2)

	for i := 1; i <= 8; i++ {
		a.alloc(RestingOrder{ID: common.OrderID(i)})
	}
	assert.Equal(t, 8, a.len())
	assert.Equal(t, common.OrderID(8), a.at(7).ID)
}

func TestArenaIndicesStayValidAcrossRelease(t *testing.T) {
	a := newArena(4)

	idx0 := a.alloc(RestingOrder{ID: 1})
	idx1 := a.alloc(RestingOrder{ID: 2})
	a.release(idx0)

	// Releasing one cell must not disturb another issued index.
	assert.Equal(t, common.OrderID(2), a.at(idx1).ID)
}
