package arena_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shubhamkmr04/chapel/internal/arena"
)

func TestStableAddresses(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	var a arena.Arena[int]

	p1 := a.New(5)
	assert.Equal(5, *p1)

	for i := range 16 {
		a.New(i + 5)
	}
	assert.Equal(5, *p1, "growing the arena must not move earlier values")

	for i := range 32 {
		a.New(i + 21)
	}
	assert.Equal(5, *p1)
	assert.Equal(49, a.Len())
}

func TestAllVisitsInOrder(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	var a arena.Arena[int]
	for i := range 40 {
		a.New(i)
	}

	var got []int
	a.All(func(v *int) bool {
		got = append(got, *v)
		return true
	})
	assert.Len(got, 40)
	for i, v := range got {
		assert.Equal(i, v)
	}
}

func TestAllStopsEarly(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	var a arena.Arena[int]
	for i := range 40 {
		a.New(i)
	}

	count := 0
	a.All(func(*int) bool {
		count++
		return count < 3
	})
	assert.Equal(3, count)
}
