package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRingEvictsOldest(t *testing.T) {
	r := NewRing[int](3)
	for i := 1; i <= 3; i++ {
		assert.False(t, r.Push(i))
	}
	assert.True(t, r.Push(4))
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []int{2, 3, 4}, r.Values())

	last, ok := r.Last()
	assert.True(t, ok)
	assert.Equal(t, 4, last)
}

func TestRingTail(t *testing.T) {
	r := NewRing[int](5)
	for i := 0; i < 8; i++ {
		r.Push(i)
	}
	assert.Equal(t, []int{6, 7}, r.Tail(2))
	assert.Equal(t, []int{3, 4, 5, 6, 7}, r.Tail(10))
	assert.Nil(t, r.Tail(0))
}

func TestRingEmpty(t *testing.T) {
	r := NewRing[float64](2)
	_, ok := r.Last()
	assert.False(t, ok)
	assert.Empty(t, r.Values())
}
